package transfer

import "github.com/sarchlab/conveyor/port"

// Partition splits links into batches that can run concurrently. No two
// links in a batch touch the same port, and a link is always placed in a
// later batch than every earlier link it shares a port with. Running the
// batches in order, each batch in any order, therefore gives the same result
// as running the links one by one in the given order.
func Partition(links []*Link) [][]*Link {
	var batches [][]*Link

	last := make(map[*port.Port]int)

	for _, l := range links {
		b := 0

		for _, p := range l.Ports() {
			if used, ok := last[p]; ok && used+1 > b {
				b = used + 1
			}
		}

		if b == len(batches) {
			batches = append(batches, nil)
		}

		batches[b] = append(batches[b], l)

		for _, p := range l.Ports() {
			last[p] = b
		}
	}

	return batches
}
