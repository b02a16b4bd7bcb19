package pipe

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/conveyor/resource"
)

var _ = Describe("ring", func() {
	var r ring[int]

	BeforeEach(func() {
		r = newRing[int](3)
	})

	It("should wrap around", func() {
		for i := 0; i < 10; i++ {
			r.PushBack(i)
			Expect(r.PopFront()).To(Equal(i))
		}

		Expect(r.IsEmpty()).To(BeTrue())
	})

	It("should index from the front", func() {
		r.PushBack(1)
		r.PushBack(2)
		r.PopFront()
		r.PushBack(3)
		r.PushBack(4)

		Expect(*r.At(0)).To(Equal(2))
		Expect(*r.At(2)).To(Equal(4))
		Expect(r.IsFull()).To(BeTrue())
		Expect(func() { r.At(3) }).To(Panic())
	})

	It("should refuse pushes when full and pops when empty", func() {
		Expect(func() { r.PopFront() }).To(PanicWith(ErrEmpty))

		r.PushBack(1)
		r.PushBack(2)
		r.PushBack(3)

		Expect(func() { r.PushBack(4) }).To(PanicWith(ErrFull))
	})
})

var _ = Describe("layout", func() {
	It("should pull units back when the tail would overflow", func() {
		out := layout(3, []resource.ID{1, 2, 3}, []uint32{0, 0, 0})

		Expect(out).To(Equal([]resource.ID{1, 2, 3}))
	})
})
