package transfer_test

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/conveyor/hooking"
	"github.com/sarchlab/conveyor/pipe"
	"github.com/sarchlab/conveyor/port"
	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/transfer"
)

const (
	ore  resource.ID = 1
	coal resource.ID = 2
)

var _ = Describe("Link", func() {
	var (
		mockCtrl *gomock.Controller
		p        *MockPipe
		src, dst *port.Port
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		p = NewMockPipe(mockCtrl)
		p.EXPECT().Capacity().Return(4).AnyTimes()

		src = port.NewPort("Source.B", port.Unbounded)
		dst = port.NewPort("Sink.A", port.Unbounded)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should default the entry interval to the capacity", func() {
		l := transfer.NewLink("Belt", p, src, dst)

		Expect(l.EntryInterval()).To(Equal(uint32(4)))
	})

	It("should panic when linking a port to itself", func() {
		Expect(func() { transfer.NewLink("Loop", p, src, src) }).To(Panic())
	})

	Context("send phase", func() {
		var l *transfer.Link

		BeforeEach(func() {
			l = transfer.NewLink("Belt", p, nil, dst)
		})

		It("should not touch the head before it is ready", func() {
			p.EXPECT().IsReadyToConsume(gomock.Any()).Return(false)

			Expect(l.Send(3)).To(BeFalse())
		})

		It("should deliver a ready head", func() {
			p.EXPECT().IsReadyToConsume(gomock.Any()).Return(true)
			p.EXPECT().Peek().Return(ore)
			p.EXPECT().Consume()

			Expect(l.Send(4)).To(BeTrue())

			id, count, _ := dst.Get()
			Expect(id).To(Equal(ore))
			Expect(count).To(Equal(uint32(1)))
			Expect(l.Stats().Delivered).To(Equal(uint64(1)))
		})

		It("should stall on a different resident resource", func() {
			dst.Set(ore, 5)
			p.EXPECT().IsReadyToConsume(gomock.Any()).Return(true)
			p.EXPECT().Peek().Return(coal)

			Expect(l.Send(4)).To(BeFalse())

			id, count, _ := dst.Get()
			Expect(id).To(Equal(ore))
			Expect(count).To(Equal(uint32(5)))
			Expect(l.Stats().ConflictStalls).To(Equal(uint64(1)))
		})

		It("should stall on a full destination", func() {
			full := port.NewPort("Chest.A", 2)
			full.Set(ore, 2)
			l = transfer.NewLink("Belt", p, nil, full)

			p.EXPECT().IsReadyToConsume(gomock.Any()).Return(true)
			p.EXPECT().Peek().Return(ore)

			Expect(l.Send(4)).To(BeFalse())
			Expect(l.Stats().FullStalls).To(Equal(uint64(1)))
		})

		It("should skip receiving without a source", func() {
			p.EXPECT().IsReadyToConsume(gomock.Any()).Return(false)

			l.Tick(0, transfer.SendFirst)
		})
	})

	Context("receive phase", func() {
		var l *transfer.Link

		BeforeEach(func() {
			l = transfer.NewLink("Belt", p, src, nil)
		})

		It("should take one unit into the pipe", func() {
			src.Set(ore, 3)
			p.EXPECT().IsFull().Return(false)
			p.EXPECT().Enqueue(gomock.Any(), ore)

			Expect(l.Receive(0)).To(BeTrue())
			Expect(src.Stored()).To(Equal(uint32(2)))
			Expect(l.Stats().Accepted).To(Equal(uint64(1)))
		})

		It("should not take from an empty source", func() {
			p.EXPECT().IsFull().Return(false)

			Expect(l.Receive(0)).To(BeFalse())
		})

		It("should not take into a full pipe", func() {
			src.Set(ore, 3)
			p.EXPECT().IsFull().Return(true)

			Expect(l.Receive(0)).To(BeFalse())
			Expect(src.Stored()).To(Equal(uint32(3)))
		})

		It("should wait for the entry interval", func() {
			src.Set(ore, 3)
			p.EXPECT().IsFull().Return(false).AnyTimes()
			p.EXPECT().Enqueue(gomock.Any(), ore).Times(2)

			Expect(l.Receive(0)).To(BeTrue())
			Expect(l.Receive(1)).To(BeFalse())
			Expect(l.Receive(3)).To(BeFalse())
			Expect(l.Receive(4)).To(BeTrue())
		})
	})

	Context("phase order", func() {
		var (
			real    pipe.Pipe
			options = transfer.WithEntryInterval(1)
		)

		BeforeEach(func() {
			real = pipe.NewPacketPipe(2)
			real.Enqueue(0, ore)
			real.Enqueue(1, ore)
			src.Set(ore, 10)
		})

		It("should refill a freed slot in the same tick when sending first", func() {
			l := transfer.NewLink("Belt", real, src, dst, options)

			l.Tick(2, transfer.SendFirst)

			Expect(dst.Stored()).To(Equal(uint32(1)))
			Expect(real.Len()).To(Equal(2))
			Expect(src.Stored()).To(Equal(uint32(9)))
		})

		It("should leave the slot free when receiving first", func() {
			l := transfer.NewLink("Belt", real, src, dst, options)

			l.Tick(2, transfer.ReceiveFirst)

			Expect(dst.Stored()).To(Equal(uint32(1)))
			Expect(real.Len()).To(Equal(1))
			Expect(src.Stored()).To(Equal(uint32(10)))
		})
	})

	It("should log transfers", func() {
		buf := new(bytes.Buffer)
		real := pipe.NewPacketPipe(1)
		l := transfer.NewLink("Belt", real, src, dst)
		l.AcceptHook(transfer.NewLogger(log.New(buf, "", 0)))
		src.Set(ore, 1)

		l.Tick(0, transfer.SendFirst)
		l.Tick(1, transfer.SendFirst)

		Expect(buf.String()).To(ContainSubstring("0,Belt,Link Enqueue"))
		Expect(buf.String()).To(ContainSubstring("1,Belt,Link Deliver"))
	})

	It("should report stalls to hooks", func() {
		var reasons []any

		real := pipe.NewPacketPipe(1)
		real.Enqueue(0, coal)
		dst.Set(ore, 1)

		l := transfer.NewLink("Belt", real, nil, dst)
		l.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == transfer.HookPosLinkStall {
				reasons = append(reasons, ctx.Detail)
			}
		}))

		l.Tick(1, transfer.SendFirst)

		Expect(reasons).To(HaveLen(1))
		Expect(reasons[0]).To(MatchError(port.ErrResourceConflict))
		Expect(real.Len()).To(Equal(1))
	})
})
