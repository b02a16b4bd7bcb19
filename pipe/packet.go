package pipe

import (
	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/timing"
)

type packet struct {
	arrival timing.Tick
	id      resource.ID
}

// PacketPipe records the absolute arrival tick of every unit. Readiness is a
// single subtraction on the head.
type PacketPipe struct {
	slots ring[packet]
}

// NewPacketPipe creates an empty PacketPipe.
func NewPacketPipe(capacity int) *PacketPipe {
	return &PacketPipe{slots: newRing[packet](capacity)}
}

// Capacity returns the number of slots.
func (p *PacketPipe) Capacity() int { return p.slots.Cap() }

// Len returns the number of units in flight.
func (p *PacketPipe) Len() int { return p.slots.Len() }

// IsFull checks if every slot is taken.
func (p *PacketPipe) IsFull() bool { return p.slots.IsFull() }

// IsEmpty checks if no unit is in flight.
func (p *PacketPipe) IsEmpty() bool { return p.slots.IsEmpty() }

// IsReadyToConsume checks if the head has crossed the pipe.
func (p *PacketPipe) IsReadyToConsume(now timing.Tick) bool {
	if p.slots.IsEmpty() {
		return false
	}

	return now.Since(p.slots.Front().arrival) >= uint32(p.slots.Cap())
}

// Enqueue adds a unit at the input end.
func (p *PacketPipe) Enqueue(now timing.Tick, id resource.ID) {
	mustCarry(id)
	p.slots.PushBack(packet{arrival: now, id: id})
}

// Peek returns the head unit.
func (p *PacketPipe) Peek() resource.ID {
	return p.slots.Front().id
}

// Consume removes the head unit.
func (p *PacketPipe) Consume() {
	p.slots.PopFront()
}

// Resolve returns the slot view from the output end.
func (p *PacketPipe) Resolve(now timing.Tick) []resource.ID {
	n := p.slots.Len()
	ids := make([]resource.ID, n)
	elapsed := make([]uint32, n)

	for i := 0; i < n; i++ {
		s := p.slots.At(i)
		ids[i] = s.id
		elapsed[i] = now.Since(s.arrival)
	}

	return layout(p.slots.Cap(), ids, elapsed)
}

// Drain removes every unit in flight.
func (p *PacketPipe) Drain() []resource.ID {
	out := make([]resource.ID, 0, p.slots.Len())
	for !p.slots.IsEmpty() {
		out = append(out, p.slots.PopFront().id)
	}

	return out
}
