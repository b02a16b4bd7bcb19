package factory

import (
	"github.com/sarchlab/conveyor/hooking"
	"github.com/sarchlab/conveyor/idgen"
	"github.com/sarchlab/conveyor/timing"
	"github.com/sarchlab/conveyor/transfer"
)

// Builder can build factories.
type Builder struct {
	order         transfer.PhaseOrder
	workers       int
	entryInterval uint32
	linkHooks     []hooking.Hook
}

// MakeBuilder creates a Builder with default parameters: links send before
// they receive, run on one goroutine, and admit one unit per pipe length.
func MakeBuilder() Builder {
	return Builder{
		order:   transfer.SendFirst,
		workers: 1,
	}
}

// WithPhaseOrder sets which phase of a link runs first.
func (b Builder) WithPhaseOrder(order transfer.PhaseOrder) Builder {
	b.order = order
	return b
}

// WithWorkers sets how many goroutines links may run on. Zero means
// GOMAXPROCS.
func (b Builder) WithWorkers(n int) Builder {
	b.workers = n
	return b
}

// WithEntryInterval sets the default entry interval of every link. Zero
// keeps the per-link default, the pipe length.
func (b Builder) WithEntryInterval(ticks uint32) Builder {
	b.entryInterval = ticks
	return b
}

// WithLinkHook attaches a hook to every link the factory creates.
func (b Builder) WithLinkHook(h hooking.Hook) Builder {
	b.linkHooks = append(b.linkHooks[:len(b.linkHooks):len(b.linkHooks)], h)
	return b
}

// Build creates a factory.
func (b Builder) Build(name string) *Factory {
	return &Factory{
		name:  name,
		clock: timing.NewClock(),
		network: transfer.MakeNetworkBuilder().
			WithPhaseOrder(b.order).
			WithWorkers(b.workers).
			Build(),
		entryInterval: b.entryInterval,
		linkHooks:     b.linkHooks,
		entityIDs:     idgen.New(),
		pipeIDs:       idgen.New(),
		entities:      make(map[Entity]*entity),
		pipes:         make(map[PipeHandle]*pipeEntry),
	}
}
