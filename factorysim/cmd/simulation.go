package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sarchlab/conveyor/config"
	"github.com/sarchlab/conveyor/factory"
	"github.com/sarchlab/conveyor/machine"
	"github.com/sarchlab/conveyor/pipe"
	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/transfer"
)

// simulation is a factory built from a configuration.
type simulation struct {
	cfg      *config.Config
	factory  *factory.Factory
	chains   []factory.Chain
	resource resource.ID
	closers  []io.Closer
}

func buildSimulation(cfg *config.Config, stderr io.Writer) (*simulation, error) {
	kind, err := pipe.ParseKind(cfg.Simulation.PipeKind)
	if err != nil {
		return nil, err
	}

	order, err := transfer.ParsePhaseOrder(cfg.Simulation.PhaseOrder)
	if err != nil {
		return nil, err
	}

	s := &simulation{
		cfg:      cfg,
		resource: resource.NewType(cfg.Scenario.Resource).ID(),
	}

	builder := factory.MakeBuilder().
		WithPhaseOrder(order).
		WithWorkers(cfg.Simulation.Workers).
		WithEntryInterval(cfg.Simulation.EntryInterval)

	if cfg.Logging.Trace {
		w, err := s.logOutput(stderr)
		if err != nil {
			return nil, err
		}

		builder = builder.WithLinkHook(transfer.NewLogger(log.New(w, "", 0)))
	}

	s.factory = builder.Build("Factory")

	s.chains, err = factory.BuildChains(s.factory, factory.ChainSpec{
		Chains:     cfg.Scenario.Chains,
		PipeLength: cfg.Scenario.PipeLength,
		Kind:       kind,
		Resource:   s.resource,
		Machines:   machine.MakeBuilder(),
	})
	if err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func (s *simulation) logOutput(stderr io.Writer) (io.Writer, error) {
	switch s.cfg.Logging.Output {
	case "stdout":
		return os.Stdout, nil
	case "file":
		f, err := os.Create(s.cfg.Logging.FilePath)
		if err != nil {
			return nil, fmt.Errorf("cannot open trace file: %w", err)
		}

		s.closers = append(s.closers, f)

		return f, nil
	default:
		return stderr, nil
	}
}

// Delivered returns the number of units consumed by every sink.
func (s *simulation) Delivered() uint64 {
	var total uint64
	for _, c := range s.chains {
		total += c.Sink.Total()
	}

	return total
}

// InFlight returns the number of units inside pipes.
func (s *simulation) InFlight() int {
	n := 0
	for _, l := range s.factory.Network().Links() {
		n += l.Pipe().Len()
	}

	return n
}

func (s *simulation) Close() {
	for _, c := range s.closers {
		c.Close()
	}

	s.closers = nil
}
