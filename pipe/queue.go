package pipe

import (
	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/timing"
)

// QueuePipe keeps the remaining travel distance of every unit in one queue
// and the units themselves in another. Distances are brought up to date
// lazily, whenever the pipe is advanced or written. It is the simplest and
// least compact backing.
type QueuePipe struct {
	capacity  int
	remaining []uint32
	ids       []resource.ID
	synced    timing.Tick
}

// NewQueuePipe creates an empty QueuePipe.
func NewQueuePipe(capacity int) *QueuePipe {
	return &QueuePipe{capacity: capacity}
}

// Capacity returns the number of slots.
func (p *QueuePipe) Capacity() int { return p.capacity }

// Len returns the number of units in flight.
func (p *QueuePipe) Len() int { return len(p.ids) }

// IsFull checks if every slot is taken.
func (p *QueuePipe) IsFull() bool { return len(p.ids) >= p.capacity }

// IsEmpty checks if no unit is in flight.
func (p *QueuePipe) IsEmpty() bool { return len(p.ids) == 0 }

// Advance brings every distance up to tick now.
func (p *QueuePipe) Advance(now timing.Tick) {
	lag := now.Since(p.synced)
	p.synced = now

	if lag == 0 {
		return
	}

	for i, r := range p.remaining {
		if r <= lag {
			p.remaining[i] = 0
			continue
		}

		p.remaining[i] = r - lag
	}
}

// IsReadyToConsume checks if the head has crossed the pipe.
func (p *QueuePipe) IsReadyToConsume(now timing.Tick) bool {
	if len(p.ids) == 0 {
		return false
	}

	return p.remaining[0] <= now.Since(p.synced)
}

// Enqueue adds a unit at the input end.
func (p *QueuePipe) Enqueue(now timing.Tick, id resource.ID) {
	mustCarry(id)

	if p.IsFull() {
		panic(ErrFull)
	}

	if len(p.ids) == 0 {
		p.synced = now
	} else {
		p.Advance(now)
	}

	p.remaining = append(p.remaining, uint32(p.capacity))
	p.ids = append(p.ids, id)
}

// Peek returns the head unit.
func (p *QueuePipe) Peek() resource.ID {
	if len(p.ids) == 0 {
		panic(ErrEmpty)
	}

	return p.ids[0]
}

// Consume removes the head unit.
func (p *QueuePipe) Consume() {
	if len(p.ids) == 0 {
		panic(ErrEmpty)
	}

	p.remaining = p.remaining[1:]
	p.ids = p.ids[1:]
}

// Resolve returns the slot view from the output end.
func (p *QueuePipe) Resolve(now timing.Tick) []resource.ID {
	n := len(p.ids)
	elapsed := make([]uint32, n)
	lag := now.Since(p.synced)
	capacity := uint32(p.capacity)

	for i, r := range p.remaining {
		left := uint32(0)
		if r > lag {
			left = r - lag
		}

		elapsed[i] = capacity - min(left, capacity)
	}

	return layout(p.capacity, p.ids, elapsed)
}

// Drain removes every unit in flight.
func (p *QueuePipe) Drain() []resource.ID {
	out := p.ids

	p.ids = nil
	p.remaining = nil

	return out
}
