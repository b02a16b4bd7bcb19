// Package transfer moves resource units between ports through pipes.
//
// Every tick, each link runs two phases. In the send phase the unit at the
// head of the pipe, if it has crossed the pipe, is handed to the destination
// port. In the receive phase one unit is taken from the source port into the
// pipe, if the pipe has room. A phase is skipped when the link has no port on
// that side.
package transfer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/conveyor/hooking"
	"github.com/sarchlab/conveyor/pipe"
	"github.com/sarchlab/conveyor/port"
	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/timing"
)

// HookPosLinkEnqueue marks when a unit enters a pipe from its source port.
var HookPosLinkEnqueue = &hooking.HookPos{Name: "Link Enqueue"}

// HookPosLinkDeliver marks when a unit leaves a pipe into its destination.
var HookPosLinkDeliver = &hooking.HookPos{Name: "Link Deliver"}

// HookPosLinkStall marks when a ready unit cannot be delivered. The hook
// detail is the error that stalled it.
var HookPosLinkStall = &hooking.HookPos{Name: "Link Stall"}

// ErrDestinationFull is the stall reason when the destination has no room.
var ErrDestinationFull = errors.New("transfer: destination full")

// PhaseOrder decides which phase of a link runs first within a tick.
type PhaseOrder uint8

const (
	// SendFirst delivers before receiving, so a slot freed by a delivery
	// takes a new unit in the same tick.
	SendFirst PhaseOrder = iota

	// ReceiveFirst receives before delivering.
	ReceiveFirst
)

func (o PhaseOrder) String() string {
	if o == ReceiveFirst {
		return "receive-first"
	}

	return "send-first"
}

// ParsePhaseOrder parses "send-first" or "receive-first".
func ParsePhaseOrder(s string) (PhaseOrder, error) {
	switch strings.ToLower(s) {
	case "", "send-first":
		return SendFirst, nil
	case "receive-first":
		return ReceiveFirst, nil
	}

	return 0, fmt.Errorf("transfer: unknown phase order %q", s)
}

// Stats counts what happened on a link.
type Stats struct {
	Accepted       uint64
	Delivered      uint64
	ConflictStalls uint64
	FullStalls     uint64
}

// A Link is a pipe together with the ports it moves units between. Either
// port may be nil.
type Link struct {
	hooking.HookableBase

	name     string
	pipe     pipe.Pipe
	src      *port.Port
	dst      *port.Port
	interval uint32

	entered   bool
	lastEntry timing.Tick
	stats     Stats
}

// LinkOption configures a Link.
type LinkOption func(*Link)

// WithEntryInterval sets the minimum number of ticks between two units
// entering the pipe. Zero means the pipe capacity, which is the default; one
// lets a unit enter every tick.
func WithEntryInterval(ticks uint32) LinkOption {
	return func(l *Link) {
		l.interval = ticks
	}
}

// NewLink creates a link. A link from a port to itself panics.
func NewLink(
	name string,
	p pipe.Pipe,
	src, dst *port.Port,
	opts ...LinkOption,
) *Link {
	if src != nil && src == dst {
		panic("transfer: link from a port to itself")
	}

	l := &Link{
		name: name,
		pipe: p,
		src:  src,
		dst:  dst,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.interval == 0 {
		l.interval = uint32(p.Capacity())
	}

	return l
}

// Name returns the name of the link.
func (l *Link) Name() string {
	return l.name
}

// Pipe returns the pipe of the link.
func (l *Link) Pipe() pipe.Pipe {
	return l.pipe
}

// Source returns the port units are received from, or nil.
func (l *Link) Source() *port.Port {
	return l.src
}

// Destination returns the port units are sent to, or nil.
func (l *Link) Destination() *port.Port {
	return l.dst
}

// EntryInterval returns the minimum number of ticks between entries.
func (l *Link) EntryInterval() uint32 {
	return l.interval
}

// Stats returns the counters of the link.
func (l *Link) Stats() Stats {
	return l.stats
}

// IsInert checks if the link has no port at all.
func (l *Link) IsInert() bool {
	return l.src == nil && l.dst == nil
}

// Tick runs both phases of the link for tick now.
func (l *Link) Tick(now timing.Tick, order PhaseOrder) {
	if a, ok := l.pipe.(pipe.Advancer); ok {
		a.Advance(now)
	}

	if order == ReceiveFirst {
		l.Receive(now)
		l.Send(now)

		return
	}

	l.Send(now)
	l.Receive(now)
}

// Send delivers the head unit into the destination if it has crossed the
// pipe and the destination can take it. It returns true if a unit moved.
func (l *Link) Send(now timing.Tick) bool {
	if l.dst == nil || !l.pipe.IsReadyToConsume(now) {
		return false
	}

	head := l.pipe.Peek()

	accepted, err := l.dst.Send(head, 1)
	if err != nil {
		l.stats.ConflictStalls++
		l.invoke(now, HookPosLinkStall, head, err)

		return false
	}

	if accepted == 0 {
		l.stats.FullStalls++
		l.invoke(now, HookPosLinkStall, head, ErrDestinationFull)

		return false
	}

	l.pipe.Consume()
	l.stats.Delivered++
	l.invoke(now, HookPosLinkDeliver, head, nil)

	return true
}

// Receive takes one unit from the source into the pipe if the pipe has room
// and the entry interval has passed. It returns true if a unit moved.
func (l *Link) Receive(now timing.Tick) bool {
	if l.src == nil || l.pipe.IsFull() || !l.entryOpen(now) {
		return false
	}

	id, _, ok := l.src.Withdraw(1)
	if !ok {
		return false
	}

	l.pipe.Enqueue(now, id)
	l.entered = true
	l.lastEntry = now
	l.stats.Accepted++
	l.invoke(now, HookPosLinkEnqueue, id, nil)

	return true
}

func (l *Link) entryOpen(now timing.Tick) bool {
	return !l.entered || now.Since(l.lastEntry) >= l.interval
}

// Ports returns the ports the link touches.
func (l *Link) Ports() []*port.Port {
	ports := make([]*port.Port, 0, 2)

	if l.src != nil {
		ports = append(ports, l.src)
	}

	if l.dst != nil {
		ports = append(ports, l.dst)
	}

	return ports
}

func (l *Link) invoke(
	now timing.Tick,
	pos *hooking.HookPos,
	id resource.ID,
	detail any,
) {
	if l.NumHooks() == 0 {
		return
	}

	l.InvokeHook(hooking.HookCtx{
		Domain: l,
		Now:    now,
		Pos:    pos,
		Item:   id,
		Detail: detail,
	})
}
