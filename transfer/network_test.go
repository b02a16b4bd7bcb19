package transfer_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/conveyor/pipe"
	"github.com/sarchlab/conveyor/port"
	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/timing"
	"github.com/sarchlab/conveyor/transfer"
)

type chainWorld struct {
	network *transfer.Network
	sources []*port.Port
	sinks   []*port.Port
}

// buildChains creates n chains of source -> belt -> buffer -> belt -> sink.
// Every fifth chain also feeds a second resource into its buffer, so some
// belts stall on conflicts.
func buildChains(n int, b transfer.NetworkBuilder) *chainWorld {
	w := &chainWorld{network: b.Build()}

	var second []*transfer.Link

	for i := 0; i < n; i++ {
		src := port.NewPort(fmt.Sprintf("Src%d", i), port.Unbounded)
		mid := port.NewPort(fmt.Sprintf("Buf%d", i), 3)
		dst := port.NewPort(fmt.Sprintf("Dst%d", i), port.Unbounded)

		first := transfer.NewLink(fmt.Sprintf("In%d", i),
			pipe.NewPacketPipe(4), src, mid, transfer.WithEntryInterval(1))
		out := transfer.NewLink(fmt.Sprintf("Out%d", i),
			pipe.NewCountdownPipe(6), mid, dst, transfer.WithEntryInterval(2))

		w.network.Add(first)
		second = append(second, out)

		if i%5 == 0 {
			alt := port.NewPort(fmt.Sprintf("Alt%d", i), port.Unbounded)
			alt.Set(coal, 50)
			w.network.Add(transfer.NewLink(fmt.Sprintf("Alt%d", i),
				pipe.NewPackedPipe(3), alt, mid))
		}

		w.sources = append(w.sources, src)
		w.sinks = append(w.sinks, dst)
	}

	for _, l := range second {
		w.network.Add(l)
	}

	return w
}

func (w *chainWorld) run(ticks int) {
	for now := timing.Tick(0); now < timing.Tick(ticks); now++ {
		for _, src := range w.sources {
			src.Set(ore, 1)
		}

		w.network.Step(now)
	}
}

var _ = Describe("Network", func() {
	It("should run links in the order they were added", func() {
		a := port.NewPort("A", port.Unbounded)
		b := port.NewPort("B", port.Unbounded)
		c := port.NewPort("C", port.Unbounded)
		a.Set(ore, 1)

		n := transfer.MakeNetworkBuilder().Build()
		n.Add(transfer.NewLink("AB", pipe.NewPacketPipe(1), a, b))
		n.Add(transfer.NewLink("BC", pipe.NewPacketPipe(1), b, c))

		n.Step(0)
		n.Step(1)

		Expect(b.Stored()).To(Equal(uint32(0)))
		Expect(n.Links()[1].Pipe().Len()).To(Equal(1))

		n.Step(2)
		Expect(c.Stored()).To(Equal(uint32(1)))
	})

	It("should remove links", func() {
		n := transfer.MakeNetworkBuilder().Build()
		l := transfer.NewLink("Inert", pipe.NewPacketPipe(1), nil, nil)
		n.Add(l)

		Expect(n.Remove(l)).To(BeTrue())
		Expect(n.Remove(l)).To(BeFalse())
		Expect(n.Links()).To(BeEmpty())
	})

	It("should give the same result in parallel as serially", func() {
		serial := buildChains(150, transfer.MakeNetworkBuilder())
		parallel := buildChains(150,
			transfer.MakeNetworkBuilder().WithWorkers(4))

		Expect(parallel.network.Workers()).To(Equal(4))

		serial.run(300)
		parallel.run(300)

		for i := range serial.sinks {
			Expect(parallel.sinks[i].Snapshot()).
				To(Equal(serial.sinks[i].Snapshot()))
		}

		for i, l := range serial.network.Links() {
			pl := parallel.network.Links()[i]
			Expect(pl.Stats()).To(Equal(l.Stats()), l.Name())
			Expect(pl.Pipe().Resolve(300)).To(Equal(l.Pipe().Resolve(300)))
		}
	})

	It("should conserve units", func() {
		w := buildChains(10, transfer.MakeNetworkBuilder().WithWorkers(2))
		injected := 0

		for now := timing.Tick(0); now < 200; now++ {
			for _, src := range w.sources {
				if src.IsEmpty() {
					src.Set(ore, 1)
					injected++
				}
			}

			w.network.Step(now)
		}

		ports := make(map[*port.Port]bool)
		total := 0

		for _, l := range w.network.Links() {
			total += countOf(l.Pipe(), ore)

			for _, p := range l.Ports() {
				ports[p] = true
			}
		}

		for p := range ports {
			if id, n, ok := p.Get(); ok && id == ore {
				total += int(n)
			}
		}

		Expect(total).To(Equal(injected))
	})
})

func countOf(p pipe.Pipe, id resource.ID) int {
	n := 0

	for _, slot := range p.Resolve(0) {
		if slot == id {
			n++
		}
	}

	return n
}

var _ = Describe("Partition", func() {
	It("should never put two links sharing a port in one batch", func() {
		w := buildChains(40, transfer.MakeNetworkBuilder())

		for _, batch := range transfer.Partition(w.network.Links()) {
			seen := make(map[*port.Port]bool)

			for _, l := range batch {
				for _, p := range l.Ports() {
					Expect(seen[p]).To(BeFalse(), p.Name())
					seen[p] = true
				}
			}
		}
	})

	It("should keep links that share a port in their original order", func() {
		a := port.NewPort("A", port.Unbounded)
		b := port.NewPort("B", port.Unbounded)
		c := port.NewPort("C", port.Unbounded)
		d := port.NewPort("D", port.Unbounded)

		ab := transfer.NewLink("AB", pipe.NewPacketPipe(1), a, b)
		cd := transfer.NewLink("CD", pipe.NewPacketPipe(1), c, d)
		bc := transfer.NewLink("BC", pipe.NewPacketPipe(1), b, c)
		da := transfer.NewLink("DA", pipe.NewPacketPipe(1), d, a)

		batches := transfer.Partition([]*transfer.Link{ab, cd, bc, da})

		Expect(batches).To(Equal([][]*transfer.Link{{ab, cd}, {bc, da}}))
	})

	It("should be deterministic", func() {
		w := buildChains(30, transfer.MakeNetworkBuilder())

		Expect(transfer.Partition(w.network.Links())).
			To(Equal(transfer.Partition(w.network.Links())))
	})
})
