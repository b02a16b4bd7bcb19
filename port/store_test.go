package port_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/conveyor/port"
	"github.com/sarchlab/conveyor/resource"
)

const (
	ore   resource.ID = 1
	plate resource.ID = 2
)

var _ = Describe("Store", func() {
	var s *port.Store

	BeforeEach(func() {
		s = &port.Store{}
	})

	It("should report nothing when empty", func() {
		_, _, ok := s.Get()
		Expect(ok).To(BeFalse())

		id, count := s.GetOr(plate)
		Expect(id).To(Equal(plate))
		Expect(count).To(BeZero())
		Expect(s.IsEmptyOr(plate)).To(BeTrue())
	})

	It("should accept the resident resource", func() {
		s.Set(ore, 3)

		accepted, err := s.TrySend(ore, 2)

		Expect(err).NotTo(HaveOccurred())
		Expect(accepted).To(Equal(uint32(2)))
		Expect(s.Stored()).To(Equal(uint32(5)))
	})

	It("should reject a different resource and stay unchanged", func() {
		s.Set(ore, 3)

		accepted, err := s.TrySend(plate, 1)

		Expect(accepted).To(BeZero())
		Expect(errors.Is(err, port.ErrResourceConflict)).To(BeTrue())

		var conflict *port.ConflictError
		Expect(errors.As(err, &conflict)).To(BeTrue())
		Expect(conflict.Resident).To(Equal(ore))
		Expect(conflict.Offered).To(Equal(plate))

		id, count, _ := s.Get()
		Expect(id).To(Equal(ore))
		Expect(count).To(Equal(uint32(3)))
	})

	It("should accept any resource once drained", func() {
		s.Set(ore, 1)
		s.Pop(1)

		Expect(s.Resource()).To(Equal(resource.None))

		_, err := s.TrySend(plate, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Resource()).To(Equal(plate))
	})

	It("should not mutate on TryRecv", func() {
		s.Set(ore, 2)

		id, n, ok := s.TryRecv(5)

		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(ore))
		Expect(n).To(Equal(uint32(2)))
		Expect(s.Stored()).To(Equal(uint32(2)))
	})

	It("should panic when popping more than stored", func() {
		s.Set(ore, 1)

		Expect(func() { s.Pop(2) }).To(Panic())
	})

	It("should only add to a non-empty store", func() {
		Expect(s.TryAdd(1)).To(BeFalse())

		s.Set(ore, 1)
		Expect(s.TryAdd(4)).To(BeTrue())
		Expect(s.Stored()).To(Equal(uint32(5)))
	})

	It("should treat a zero-count set as clear", func() {
		s.Set(ore, 0)

		Expect(s.IsEmpty()).To(BeTrue())
		Expect(s.Resource()).To(Equal(resource.None))
	})
})
