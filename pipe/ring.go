package pipe

// ring is a fixed-capacity circular FIFO over an owned slice.
type ring[T any] struct {
	data []T
	head int
	size int
}

func newRing[T any](capacity int) ring[T] {
	return ring[T]{data: make([]T, capacity)}
}

func (r *ring[T]) Len() int      { return r.size }
func (r *ring[T]) Cap() int      { return len(r.data) }
func (r *ring[T]) IsEmpty() bool { return r.size == 0 }
func (r *ring[T]) IsFull() bool  { return r.size == len(r.data) }

func (r *ring[T]) index(i int) int {
	j := r.head + i
	if j >= len(r.data) {
		j -= len(r.data)
	}

	return j
}

// At returns a pointer to the i-th element counted from the front.
func (r *ring[T]) At(i int) *T {
	if i < 0 || i >= r.size {
		panic("ring: index out of range")
	}

	return &r.data[r.index(i)]
}

func (r *ring[T]) Front() *T {
	if r.size == 0 {
		panic(ErrEmpty)
	}

	return &r.data[r.head]
}

func (r *ring[T]) PushBack(v T) {
	if r.size == len(r.data) {
		panic(ErrFull)
	}

	r.data[r.index(r.size)] = v
	r.size++
}

func (r *ring[T]) PopFront() T {
	if r.size == 0 {
		panic(ErrEmpty)
	}

	var zero T

	v := r.data[r.head]
	r.data[r.head] = zero

	r.head++
	if r.head == len(r.data) {
		r.head = 0
	}

	r.size--

	return v
}
