package port_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/conveyor/hooking"
	"github.com/sarchlab/conveyor/port"
)

var _ = Describe("Port", func() {
	var p *port.Port

	BeforeEach(func() {
		p = port.NewPort("Chest.A", 4)
	})

	It("should clamp sends to the remaining capacity", func() {
		accepted, err := p.Send(ore, 10)

		Expect(err).NotTo(HaveOccurred())
		Expect(accepted).To(Equal(uint32(4)))
		Expect(p.Remaining()).To(BeZero())

		accepted, err = p.Send(ore, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(accepted).To(BeZero())
	})

	It("should report conflicts", func() {
		p.Set(ore, 1)

		_, err := p.Send(plate, 1)

		Expect(err).To(MatchError(port.ErrResourceConflict))
		Expect(p.Stored()).To(Equal(uint32(1)))
	})

	It("should withdraw atomically", func() {
		p.Set(ore, 3)

		id, n, ok := p.Withdraw(2)

		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(ore))
		Expect(n).To(Equal(uint32(2)))
		Expect(p.Stored()).To(Equal(uint32(1)))
	})

	It("should panic when set above capacity", func() {
		Expect(func() { p.Set(ore, 5) }).To(Panic())
	})

	It("should invoke hooks on send and withdraw", func() {
		var positions []*hooking.HookPos
		var items []port.Transaction

		p.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			positions = append(positions, ctx.Pos)
			items = append(items, ctx.Item.(port.Transaction))
		}))

		_, _ = p.Send(ore, 2)
		p.Withdraw(1)
		p.Take(1)

		Expect(positions).To(Equal([]*hooking.HookPos{
			port.HookPosPortSend,
			port.HookPosPortWithdraw,
			port.HookPosPortWithdraw,
		}))
		Expect(items[0]).To(Equal(port.Transaction{Resource: ore, Count: 2}))
		Expect(items[2]).To(Equal(port.Transaction{Resource: ore, Count: 1}))
	})
})

var _ = Describe("Set", func() {
	It("should name ports after their slots", func() {
		s := port.NewSet("Assembler", 4, port.Unbounded)

		Expect(s.Len()).To(Equal(4))
		Expect(s.Port(port.A).Name()).To(Equal("Assembler.A"))
		Expect(s.Port(port.D).Name()).To(Equal("Assembler.D"))
		Expect(s.Has(port.Slot(4))).To(BeFalse())
		Expect(func() { s.Port(port.Slot(4)) }).To(Panic())
	})
})
