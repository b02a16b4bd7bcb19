// Package pipe provides the transport queues that carry resource units
// between ports.
//
// A pipe of capacity C is a FIFO that holds at most C units. A unit entering
// at tick t becomes ready to leave at tick t+C, so C is both the length and
// the transit time of the pipe. Four backings implement the same contract
// with different space and time trade-offs; see Kind.
package pipe

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/timing"
)

var (
	// ErrFull is raised when enqueuing into a full pipe.
	ErrFull = errors.New("pipe: full")

	// ErrEmpty is raised when peeking or consuming an empty pipe.
	ErrEmpty = errors.New("pipe: empty")

	// ErrInvalidCapacity is returned by New for capacities the kind cannot
	// hold.
	ErrInvalidCapacity = errors.New("pipe: invalid capacity")
)

// MaxCapacity is the largest capacity of any pipe.
const MaxCapacity = math.MaxUint16

// A Pipe is a capacity-bounded FIFO with a fixed transit time.
type Pipe interface {
	// Capacity returns the number of slots, which is also the transit time
	// in ticks.
	Capacity() int

	// Len returns the number of units in flight.
	Len() int

	IsFull() bool
	IsEmpty() bool

	// IsReadyToConsume checks if the head unit has spent at least Capacity
	// ticks in the pipe.
	IsReadyToConsume(now timing.Tick) bool

	// Enqueue adds a unit at the input end. It panics with ErrFull if the
	// pipe is full.
	Enqueue(now timing.Tick, id resource.ID)

	// Peek returns the head unit. It panics with ErrEmpty if the pipe is
	// empty.
	Peek() resource.ID

	// Consume removes the head unit. It panics with ErrEmpty if the pipe is
	// empty.
	Consume()

	// Resolve returns what each slot holds at tick now, indexed from the
	// output end. Empty slots are resource.None. The pipe is not modified.
	Resolve(now timing.Tick) []resource.ID

	// Drain removes every unit in flight and returns them head first.
	Drain() []resource.ID
}

// An Advancer is a pipe that keeps per-tick bookkeeping. Pipes work without
// Advance being called, but calling it once per tick keeps every operation
// constant-time.
type Advancer interface {
	Advance(now timing.Tick)
}

// Kind selects a pipe backing.
type Kind uint8

const (
	// KindPacket stores absolute arrival ticks in a ring buffer. It is the
	// default.
	KindPacket Kind = iota

	// KindCountdown stores gap-encoded remaining ticks in a ring buffer and
	// only counts down the front of the pipe.
	KindCountdown

	// KindPacked stores up to 16 units inline with 4-bit arrival stamps.
	KindPacked

	// KindQueue stores remaining distances and units in two growable
	// queues.
	KindQueue
)

var kindNames = []string{"packet", "countdown", "packed", "queue"}

// Kinds lists every backing.
func Kinds() []Kind {
	return []Kind{KindPacket, KindCountdown, KindPacked, KindQueue}
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind turns a kind name back into a Kind.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if strings.EqualFold(n, name) {
			return Kind(i), nil
		}
	}

	return 0, fmt.Errorf("pipe: unknown kind %q", name)
}

// MaxCapacityOf returns the largest capacity a kind supports.
func MaxCapacityOf(k Kind) int {
	if k == KindPacked {
		return PackedMaxCapacity
	}

	return MaxCapacity
}

// KindOf returns the kind of a pipe created by this package.
func KindOf(p Pipe) (Kind, bool) {
	switch p.(type) {
	case *PacketPipe:
		return KindPacket, true
	case *CountdownPipe:
		return KindCountdown, true
	case *PackedPipe:
		return KindPacked, true
	case *QueuePipe:
		return KindQueue, true
	}

	return 0, false
}

// New creates an empty pipe of the given kind.
func New(kind Kind, capacity int) (Pipe, error) {
	if int(kind) >= len(kindNames) {
		return nil, fmt.Errorf("pipe: unknown kind %d", kind)
	}

	if capacity < 1 || capacity > MaxCapacityOf(kind) {
		return nil, fmt.Errorf("%w: %s pipe cannot have capacity %d",
			ErrInvalidCapacity, kind, capacity)
	}

	switch kind {
	case KindCountdown:
		return NewCountdownPipe(capacity), nil
	case KindPacked:
		return NewPackedPipe(capacity), nil
	case KindQueue:
		return NewQueuePipe(capacity), nil
	default:
		return NewPacketPipe(capacity), nil
	}
}

func mustCarry(id resource.ID) {
	if id == resource.None {
		panic("pipe: cannot carry no resource")
	}
}
