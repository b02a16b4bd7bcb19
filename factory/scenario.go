package factory

import (
	"fmt"

	"github.com/sarchlab/conveyor/machine"
	"github.com/sarchlab/conveyor/pipe"
	"github.com/sarchlab/conveyor/port"
	"github.com/sarchlab/conveyor/resource"
)

// ChainSpec describes a row of identical production chains.
type ChainSpec struct {
	Chains     int
	PipeLength int
	Kind       pipe.Kind
	Resource   resource.ID
	Machines   machine.Builder
}

// Chain is one source -> passthrough -> sink production line.
type Chain struct {
	Source      *machine.UnlimitedSource
	Passthrough *machine.Passthrough
	Sink        *machine.Sink
	In          PipeHandle
	Out         PipeHandle
}

// BuildChains adds the chains described by spec to f. Each chain runs from
// port B of a source, through ports A and B of a passthrough, to port A of a
// sink.
func BuildChains(f *Factory, spec ChainSpec) ([]Chain, error) {
	chains := make([]Chain, 0, spec.Chains)

	for i := 0; i < spec.Chains; i++ {
		c := Chain{
			Source: spec.Machines.BuildUnlimitedSource(
				fmt.Sprintf("Source%d", i), spec.Resource),
			Passthrough: spec.Machines.BuildPassthrough(
				fmt.Sprintf("Passthrough%d", i)),
			Sink: spec.Machines.BuildSink(fmt.Sprintf("Sink%d", i)),
		}

		src := f.AddMachine(c.Source)
		mid := f.AddMachine(c.Passthrough)
		dst := f.AddMachine(c.Sink)

		var err error

		c.In, err = f.connect(spec, PortRef{src, port.B}, PortRef{mid, port.A})
		if err != nil {
			return nil, err
		}

		c.Out, err = f.connect(spec, PortRef{mid, port.B}, PortRef{dst, port.A})
		if err != nil {
			return nil, err
		}

		chains = append(chains, c)
	}

	return chains, nil
}

func (f *Factory) connect(spec ChainSpec, src, dst PortRef) (PipeHandle, error) {
	h, err := f.CreatePipe(spec.PipeLength, spec.Kind)
	if err != nil {
		return 0, err
	}

	if err := f.Link(h, &src, &dst); err != nil {
		return 0, err
	}

	return h, nil
}
