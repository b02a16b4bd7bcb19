package power_test

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/conveyor/power"
)

var _ = Describe("Network", func() {
	It("should have power while demand is covered by the capped supply", func() {
		n := power.NewNetwork("Grid", 100)

		n.ChangeSupply(0, 150)
		n.ChangeDemand(0, 100)
		Expect(n.HasPower()).To(BeTrue())

		n.ChangeDemand(100, 101)
		Expect(n.HasPower()).To(BeFalse())

		n.ChangeDemand(101, 40)
		Expect(n.Demand()).To(Equal(uint32(40)))
		Expect(n.HasPower()).To(BeTrue())
	})

	It("should accumulate concurrent changes", func() {
		n := power.NewNetwork("Grid", 1000)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)

			go func() {
				defer wg.Done()
				n.ChangeSupply(0, 10)
				n.ChangeSupply(10, 4)
			}()
		}

		wg.Wait()

		Expect(n.Supply()).To(Equal(uint32(200)))
	})
})

var _ = Describe("Device", func() {
	var grid *power.Network

	BeforeEach(func() {
		grid = power.NewNetwork("Grid", 100)
	})

	It("should apply and revert", func() {
		d := power.Device{Network: grid, Request: 5, Provide: 20}

		Expect(d.Apply()).To(BeTrue())
		Expect(grid.Supply()).To(Equal(uint32(20)))
		Expect(grid.Demand()).To(Equal(uint32(5)))

		Expect(d.Revert()).To(BeTrue())
		Expect(grid.Supply()).To(BeZero())
		Expect(grid.Demand()).To(BeZero())
	})

	It("should move between networks", func() {
		other := power.NewNetwork("Other", 100)
		old := power.Device{Network: grid, Request: 5}
		old.Apply()

		moved := power.Device{Network: other, Request: 7}
		Expect(moved.Update(old)).To(BeTrue())

		Expect(grid.Demand()).To(BeZero())
		Expect(other.Demand()).To(Equal(uint32(7)))
	})

	It("should not power disconnected consumers", func() {
		Expect(power.Device{Request: 1}.HasPower()).To(BeFalse())
		Expect(power.Device{}.HasPower()).To(BeTrue())
		Expect(power.Device{Request: 1}.Apply()).To(BeFalse())
	})
})

var _ = Describe("Registry", func() {
	It("should keep networks in step with devices", func() {
		grid := power.NewNetwork("Grid", 100)
		r := power.NewRegistry()
		gate := r.Gate(2)

		r.Insert(1, power.Device{Network: grid, Provide: 10})
		r.Insert(2, power.Device{Network: grid, Request: 10})
		Expect(gate.HasPower()).To(BeTrue())

		old, err := r.Update(2, power.Device{Network: grid, Request: 30})
		Expect(err).NotTo(HaveOccurred())
		Expect(old.Request).To(Equal(uint32(10)))
		Expect(gate.HasPower()).To(BeFalse())

		_, ok := r.Remove(2)
		Expect(ok).To(BeTrue())
		Expect(grid.Demand()).To(BeZero())
		Expect(gate.HasPower()).To(BeTrue())
	})

	It("should reject updates of unknown devices", func() {
		r := power.NewRegistry()

		_, err := r.Update(9, power.Device{})

		Expect(err).To(MatchError(power.ErrUnknownDevice))
	})
})
