package pipe_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/conveyor/pipe"
	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/timing"
)

const (
	ore  resource.ID = 1
	coal resource.ID = 2
	sand resource.ID = 3
	salt resource.ID = 4
)

const none = resource.None

var _ = Describe("Resolve", func() {
	var p *pipe.PacketPipe

	BeforeEach(func() {
		p = pipe.NewPacketPipe(4)
	})

	It("should show an empty pipe as empty slots", func() {
		Expect(p.Resolve(0)).To(Equal([]resource.ID{none, none, none, none}))
	})

	It("should move a unit from the input end to the output end", func() {
		p.Enqueue(0, ore)

		Expect(p.Resolve(0)).To(Equal([]resource.ID{none, none, none, ore}))
		Expect(p.Resolve(2)).To(Equal([]resource.ID{none, ore, none, none}))
		Expect(p.Resolve(3)).To(Equal([]resource.ID{ore, none, none, none}))
		Expect(p.Resolve(10)).To(Equal([]resource.ID{ore, none, none, none}))
	})

	It("should compress units behind a stalled head", func() {
		p.Enqueue(0, ore)
		p.Enqueue(1, coal)
		p.Enqueue(2, sand)
		p.Enqueue(3, salt)

		Expect(p.Resolve(3)).To(Equal([]resource.ID{ore, coal, sand, salt}))
		Expect(p.Resolve(30)).To(Equal([]resource.ID{ore, coal, sand, salt}))
	})

	It("should keep gaps between sparse units", func() {
		p.Enqueue(0, ore)
		p.Enqueue(2, coal)

		Expect(p.Resolve(2)).To(Equal([]resource.ID{none, ore, none, coal}))
	})
})

var _ = Describe("PackedPipe", func() {
	It("should latch crossed units so long stalls do not delay them", func() {
		p := pipe.NewPackedPipe(16)

		for now := 0; now < 16; now++ {
			p.Advance(timing.Tick(now))
			p.Enqueue(timing.Tick(now), resource.ID(now+1))
		}

		for now := 16; now < 120; now++ {
			p.Advance(timing.Tick(now))
			Expect(p.IsReadyToConsume(timing.Tick(now))).To(BeTrue())
		}

		p.Consume()
		p.Enqueue(120, 17)
		p.Advance(121)

		Expect(p.Peek()).To(Equal(resource.ID(2)))
		Expect(p.IsReadyToConsume(121)).To(BeTrue())
	})

	It("should refuse capacities above 16", func() {
		Expect(func() { pipe.NewPackedPipe(17) }).To(Panic())
	})
})

var _ = Describe("CountdownPipe", func() {
	It("should carry remaining ticks over when consumed early", func() {
		p := pipe.NewCountdownPipe(4)
		p.Enqueue(0, ore)
		p.Enqueue(1, coal)

		p.Consume()

		Expect(p.IsReadyToConsume(4)).To(BeFalse())
		Expect(p.IsReadyToConsume(5)).To(BeTrue())
	})
})
