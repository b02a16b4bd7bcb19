package machine

import (
	"github.com/sarchlab/conveyor/port"
	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/timing"
)

// UnlimitedSource offers one unit of its resource on port B every tick and
// discards whatever arrives on port A.
type UnlimitedSource struct {
	Base

	resource resource.ID
}

// Resource returns the resource the source produces.
func (s *UnlimitedSource) Resource() resource.ID {
	return s.resource
}

// Tick refills port B and empties port A.
func (s *UnlimitedSource) Tick(_ timing.Tick) bool {
	s.ports.Port(port.B).Set(s.resource, 1)
	s.ports.Port(port.A).Clear()

	return true
}
