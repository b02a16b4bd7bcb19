package machine

import (
	"github.com/sarchlab/conveyor/port"
	"github.com/sarchlab/conveyor/timing"
)

// Passthrough moves one unit per tick from port A to port B.
type Passthrough struct {
	Base

	moved uint64
}

// Moved returns how many units the machine has moved.
func (m *Passthrough) Moved() uint64 {
	return m.moved
}

// Tick moves a unit if port B can take it.
func (m *Passthrough) Tick(_ timing.Tick) bool {
	in := m.ports.Port(port.A)
	out := m.ports.Port(port.B)

	id, _, ok := in.Recv(1)
	if !ok {
		return false
	}

	accepted, err := out.Send(id, 1)
	if err != nil || accepted == 0 {
		return false
	}

	in.Take(1)
	m.moved++

	return true
}
