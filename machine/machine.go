// Package machine provides the entities that produce, move and consume
// resource units at the ends of pipes.
package machine

import (
	"github.com/sarchlab/conveyor/port"
	"github.com/sarchlab/conveyor/power"
	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/timing"
)

// NumPorts is the number of ports every built-in machine owns.
const NumPorts = 4

// A Machine updates its own ports once per tick, before any pipe moves.
type Machine interface {
	Name() string
	Ports() *port.Set
	Gate() power.Gate

	// Tick updates the machine and returns true if it made progress.
	Tick(now timing.Tick) bool
}

// Base implements the bookkeeping shared by machines.
type Base struct {
	name  string
	ports *port.Set
	gate  power.Gate
}

// Name returns the name of the machine.
func (b *Base) Name() string {
	return b.name
}

// Ports returns the ports of the machine.
func (b *Base) Ports() *port.Set {
	return b.ports
}

// Gate returns the power gate of the machine.
func (b *Base) Gate() power.Gate {
	return b.gate
}

// Builder can build the built-in machines.
type Builder struct {
	portCapacity uint32
	gate         power.Gate
}

// MakeBuilder creates a Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		portCapacity: port.Unbounded,
		gate:         power.AlwaysOn,
	}
}

// WithPortCapacity sets the capacity of every port of the machine.
func (b Builder) WithPortCapacity(c uint32) Builder {
	b.portCapacity = c
	return b
}

// WithGate sets the power gate of the machine.
func (b Builder) WithGate(g power.Gate) Builder {
	b.gate = g
	return b
}

func (b Builder) base(name string) Base {
	return Base{
		name:  name,
		ports: port.NewSet(name, NumPorts, b.portCapacity),
		gate:  b.gate,
	}
}

// BuildUnlimitedSource creates a source of id.
func (b Builder) BuildUnlimitedSource(name string, id resource.ID) *UnlimitedSource {
	return &UnlimitedSource{Base: b.base(name), resource: id}
}

// BuildPassthrough creates a passthrough machine.
func (b Builder) BuildPassthrough(name string) *Passthrough {
	return &Passthrough{Base: b.base(name)}
}

// BuildSink creates a sink.
func (b Builder) BuildSink(name string) *Sink {
	return &Sink{
		Base:     b.base(name),
		consumed: make(map[resource.ID]uint64),
	}
}
