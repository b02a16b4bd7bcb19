package pipe

import "github.com/sarchlab/conveyor/resource"

// layout places units into slots indexed from the output end. A unit enters
// at slot capacity-1 and moves one slot per tick until it reaches slot 0,
// where it waits until it leaves. Units never overtake or share a slot, so a
// stalled head compresses the units behind it. elapsed[i] is the number of
// ticks unit i (head first) has spent in the pipe.
func layout(
	capacity int,
	ids []resource.ID,
	elapsed []uint32,
) []resource.ID {
	out := make([]resource.ID, capacity)
	n := len(ids)

	if n == 0 {
		return out
	}

	pos := make([]int, n)
	prev := -1

	for i := 0; i < n; i++ {
		e := min(elapsed[i], uint32(capacity-1))
		p := capacity - 1 - int(e)

		if p <= prev {
			p = prev + 1
		}

		pos[i] = p
		prev = p
	}

	limit := capacity - 1
	for i := n - 1; i >= 0; i-- {
		if pos[i] > limit {
			pos[i] = limit
		}

		limit = pos[i] - 1
	}

	for i, p := range pos {
		out[p] = ids[i]
	}

	return out
}
