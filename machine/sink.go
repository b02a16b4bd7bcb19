package machine

import (
	"maps"
	"math"

	"github.com/sarchlab/conveyor/port"
	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/timing"
)

// Sink empties port A every tick and counts what it consumed.
type Sink struct {
	Base

	consumed map[resource.ID]uint64
}

// Tick consumes everything on port A.
func (s *Sink) Tick(_ timing.Tick) bool {
	id, n, ok := s.ports.Port(port.A).Withdraw(math.MaxUint32)
	if !ok {
		return false
	}

	s.consumed[id] += uint64(n)

	return true
}

// Consumed returns how many units of id the sink consumed.
func (s *Sink) Consumed(id resource.ID) uint64 {
	return s.consumed[id]
}

// ConsumedAll returns the consumed count of every resource.
func (s *Sink) ConsumedAll() map[resource.ID]uint64 {
	return maps.Clone(s.consumed)
}

// Total returns how many units the sink consumed.
func (s *Sink) Total() uint64 {
	var total uint64
	for _, n := range s.consumed {
		total += n
	}

	return total
}
