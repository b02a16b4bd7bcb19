package transfer

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/conveyor/timing"
)

// minParallelBatch is the batch size below which a batch runs on the calling
// goroutine.
const minParallelBatch = 64

// A Network runs the links of a factory once per tick.
type Network struct {
	order   PhaseOrder
	workers int

	links   []*Link
	batches [][]*Link
	dirty   bool
}

// NetworkBuilder can build networks.
type NetworkBuilder struct {
	order   PhaseOrder
	workers int
}

// MakeNetworkBuilder creates a NetworkBuilder with default parameters. By
// default links send before they receive and run on one goroutine.
func MakeNetworkBuilder() NetworkBuilder {
	return NetworkBuilder{
		order:   SendFirst,
		workers: 1,
	}
}

// WithPhaseOrder sets which phase of a link runs first.
func (b NetworkBuilder) WithPhaseOrder(order PhaseOrder) NetworkBuilder {
	b.order = order
	return b
}

// WithWorkers sets how many goroutines may run links concurrently. Zero means
// GOMAXPROCS.
func (b NetworkBuilder) WithWorkers(n int) NetworkBuilder {
	b.workers = n
	return b
}

// Build creates a network.
func (b NetworkBuilder) Build() *Network {
	workers := b.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Network{
		order:   b.order,
		workers: workers,
	}
}

// PhaseOrder returns the phase order of the network.
func (n *Network) PhaseOrder() PhaseOrder {
	return n.order
}

// Workers returns the number of goroutines links may run on.
func (n *Network) Workers() int {
	return n.workers
}

// Add appends a link. Links run in the order they were added.
func (n *Network) Add(l *Link) {
	n.links = append(n.links, l)
	n.dirty = true
}

// Remove removes a link. It returns false if the link is not in the network.
func (n *Network) Remove(l *Link) bool {
	for i, existing := range n.links {
		if existing == l {
			n.links = append(n.links[:i], n.links[i+1:]...)
			n.dirty = true

			return true
		}
	}

	return false
}

// Links returns the links in the order they run.
func (n *Network) Links() []*Link {
	return n.links
}

// Batches returns the port-disjoint batches the links run in.
func (n *Network) Batches() [][]*Link {
	if n.dirty || n.batches == nil {
		n.batches = Partition(n.links)
		n.dirty = false
	}

	return n.batches
}

// Step runs every link for tick now.
func (n *Network) Step(now timing.Tick) {
	if n.workers <= 1 {
		for _, l := range n.links {
			l.Tick(now, n.order)
		}

		return
	}

	for _, batch := range n.Batches() {
		n.runBatch(batch, now)
	}
}

func (n *Network) runBatch(batch []*Link, now timing.Tick) {
	if len(batch) < minParallelBatch {
		for _, l := range batch {
			l.Tick(now, n.order)
		}

		return
	}

	chunk := (len(batch) + n.workers - 1) / n.workers

	var g errgroup.Group

	for start := 0; start < len(batch); start += chunk {
		part := batch[start:min(start+chunk, len(batch))]

		g.Go(func() error {
			for _, l := range part {
				l.Tick(now, n.order)
			}

			return nil
		})
	}

	_ = g.Wait()
}
