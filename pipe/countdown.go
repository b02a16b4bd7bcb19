package pipe

import (
	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/timing"
)

type countdown struct {
	remaining uint32
	id        resource.ID
}

// CountdownPipe stores, for every unit, the ticks it still has to travel
// after the unit in front of it arrives. Advance only ever counts down the
// first unit still moving, so a tick costs constant time however many units
// are in flight.
type CountdownPipe struct {
	slots    ring[countdown]
	synced   timing.Tick
	tailDue  timing.Tick
	arrived  int
	started bool
}

// NewCountdownPipe creates an empty CountdownPipe.
func NewCountdownPipe(capacity int) *CountdownPipe {
	return &CountdownPipe{slots: newRing[countdown](capacity)}
}

// Capacity returns the number of slots.
func (p *CountdownPipe) Capacity() int { return p.slots.Cap() }

// Len returns the number of units in flight.
func (p *CountdownPipe) Len() int { return p.slots.Len() }

// IsFull checks if every slot is taken.
func (p *CountdownPipe) IsFull() bool { return p.slots.IsFull() }

// IsEmpty checks if no unit is in flight.
func (p *CountdownPipe) IsEmpty() bool { return p.slots.IsEmpty() }

// Advance counts the pipe down to tick now.
func (p *CountdownPipe) Advance(now timing.Tick) {
	if !p.started {
		p.synced = now
		p.started = true

		return
	}

	lag := now.Since(p.synced)
	p.synced = now

	i := p.arrived
	for lag > 0 && i < p.slots.Len() {
		s := p.slots.At(i)
		step := min(lag, s.remaining)
		s.remaining -= step
		lag -= step

		if s.remaining > 0 {
			break
		}

		i++
	}

	for i < p.slots.Len() && p.slots.At(i).remaining == 0 {
		i++
	}

	p.arrived = i
}

// IsReadyToConsume checks if the head has crossed the pipe.
func (p *CountdownPipe) IsReadyToConsume(now timing.Tick) bool {
	if p.slots.IsEmpty() {
		return false
	}

	return p.slots.Front().remaining <= now.Since(p.synced)
}

// Enqueue adds a unit at the input end.
func (p *CountdownPipe) Enqueue(now timing.Tick, id resource.ID) {
	mustCarry(id)

	if p.slots.IsFull() {
		panic(ErrFull)
	}

	p.Advance(now)

	base := p.tailDue
	if p.arrived == p.slots.Len() {
		base = p.synced
	}

	due := now + timing.Tick(p.slots.Cap())
	p.slots.PushBack(countdown{remaining: due.Since(base), id: id})
	p.tailDue = due
}

// Peek returns the head unit.
func (p *CountdownPipe) Peek() resource.ID {
	return p.slots.Front().id
}

// Consume removes the head unit. Ticks the head still had to travel carry
// over to the unit behind it.
func (p *CountdownPipe) Consume() {
	head := p.slots.PopFront()

	if p.arrived > 0 {
		p.arrived--
		return
	}

	if !p.slots.IsEmpty() {
		p.slots.Front().remaining += head.remaining
	}
}

// Resolve returns the slot view from the output end.
func (p *CountdownPipe) Resolve(now timing.Tick) []resource.ID {
	n := p.slots.Len()
	ids := make([]resource.ID, n)
	elapsed := make([]uint32, n)
	capacity := uint32(p.slots.Cap())
	lag := now.Since(p.synced)

	var offset uint32

	for i := 0; i < n; i++ {
		s := p.slots.At(i)
		offset += s.remaining

		left := uint32(0)
		if offset > lag {
			left = offset - lag
		}

		ids[i] = s.id
		elapsed[i] = capacity - min(left, capacity)
	}

	return layout(p.slots.Cap(), ids, elapsed)
}

// Drain removes every unit in flight.
func (p *CountdownPipe) Drain() []resource.ID {
	out := make([]resource.ID, 0, p.slots.Len())
	for !p.slots.IsEmpty() {
		out = append(out, p.slots.PopFront().id)
	}

	p.arrived = 0

	return out
}
