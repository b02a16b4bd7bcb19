package pipe

import (
	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/timing"
)

// PackedMaxCapacity is the largest capacity of a PackedPipe.
const PackedMaxCapacity = 16

// PackedPipe keeps up to 16 units inline and stamps each with the low 4 bits
// of its arrival tick, all in one 64-bit word. Only the arrival of the newest
// unit is kept in full. A second word holds one bit per slot that latches
// once the unit in that slot has crossed the pipe.
//
// The elapsed time of a unit is estimated from below, from its stamp and
// from the newest arrival, so a unit is never reported ready early. When
// Advance is called every tick the estimate is exact, because every unit is
// latched at the tick it crosses the pipe, which is at most 16 ticks after
// it arrived.
type PackedPipe struct {
	ids      [PackedMaxCapacity]resource.ID
	stamps   uint64
	crossed  uint16
	tail     timing.Tick
	length   uint8
	capacity uint8
}

// NewPackedPipe creates an empty PackedPipe. Capacities above
// PackedMaxCapacity panic; use New to get an error instead.
func NewPackedPipe(capacity int) *PackedPipe {
	if capacity < 1 || capacity > PackedMaxCapacity {
		panic(ErrInvalidCapacity)
	}

	return &PackedPipe{capacity: uint8(capacity)}
}

// Capacity returns the number of slots.
func (p *PackedPipe) Capacity() int { return int(p.capacity) }

// Len returns the number of units in flight.
func (p *PackedPipe) Len() int { return int(p.length) }

// IsFull checks if every slot is taken.
func (p *PackedPipe) IsFull() bool { return p.length == p.capacity }

// IsEmpty checks if no unit is in flight.
func (p *PackedPipe) IsEmpty() bool { return p.length == 0 }

// Advance latches every unit that has crossed the pipe by tick now.
func (p *PackedPipe) Advance(now timing.Tick) {
	for i := 0; i < int(p.length); i++ {
		if p.hasCrossed(i) {
			continue
		}

		if p.elapsed(i, now) >= uint32(p.capacity) {
			p.crossed |= 1 << uint(i)
		}
	}
}

// IsReadyToConsume checks if the head has crossed the pipe.
func (p *PackedPipe) IsReadyToConsume(now timing.Tick) bool {
	if p.length == 0 {
		return false
	}

	return p.hasCrossed(0) || p.elapsed(0, now) >= uint32(p.capacity)
}

// Enqueue adds a unit at the input end.
func (p *PackedPipe) Enqueue(now timing.Tick, id resource.ID) {
	mustCarry(id)

	if p.length == p.capacity {
		panic(ErrFull)
	}

	shift := 4 * uint(p.length)
	p.stamps &^= 0xF << shift
	p.stamps |= uint64(now&0xF) << shift
	p.crossed &^= 1 << uint(p.length)
	p.ids[p.length] = id
	p.tail = now
	p.length++
}

// Peek returns the head unit.
func (p *PackedPipe) Peek() resource.ID {
	if p.length == 0 {
		panic(ErrEmpty)
	}

	return p.ids[0]
}

// Consume removes the head unit.
func (p *PackedPipe) Consume() {
	if p.length == 0 {
		panic(ErrEmpty)
	}

	copy(p.ids[:], p.ids[1:p.length])
	p.ids[p.length-1] = resource.None
	p.stamps >>= 4
	p.crossed >>= 1
	p.length--
}

func (p *PackedPipe) hasCrossed(i int) bool {
	return p.crossed&(1<<uint(i)) != 0
}

func (p *PackedPipe) stamp(i int) uint32 {
	return uint32(p.stamps>>(4*uint(i))) & 0xF
}

// elapsed returns a lower bound of the ticks unit i has spent in the pipe.
// It is exact when the true value is between 1 and 16, or when i is the
// newest unit.
func (p *PackedPipe) elapsed(i int, now timing.Tick) uint32 {
	s := p.stamp(i)

	// The latest tick no later than the newest arrival carrying stamp s.
	latest := timing.Tick(uint32(p.tail)&^0xF | s)
	if latest > p.tail {
		latest -= 16
	}

	e := now.Since(latest)

	if p.tail == now && s == uint32(now&0xF) {
		return e
	}

	return max(e, (uint32(now)-s-1)&0xF+1)
}

// Resolve returns the slot view from the output end.
func (p *PackedPipe) Resolve(now timing.Tick) []resource.ID {
	n := int(p.length)
	ids := make([]resource.ID, n)
	elapsed := make([]uint32, n)

	for i := 0; i < n; i++ {
		ids[i] = p.ids[i]
		elapsed[i] = p.elapsed(i, now)

		if p.hasCrossed(i) {
			elapsed[i] = max(elapsed[i], uint32(p.capacity))
		}
	}

	return layout(int(p.capacity), ids, elapsed)
}

// Drain removes every unit in flight.
func (p *PackedPipe) Drain() []resource.ID {
	out := make([]resource.ID, p.length)
	copy(out, p.ids[:p.length])

	p.ids = [PackedMaxCapacity]resource.ID{}
	p.stamps = 0
	p.crossed = 0
	p.length = 0

	return out
}
