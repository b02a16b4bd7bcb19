// Package factory assembles machines, ports and pipes into a factory and
// advances it one tick at a time.
package factory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/sarchlab/conveyor/hooking"
	"github.com/sarchlab/conveyor/idgen"
	"github.com/sarchlab/conveyor/machine"
	"github.com/sarchlab/conveyor/pipe"
	"github.com/sarchlab/conveyor/port"
	"github.com/sarchlab/conveyor/resource"
	"github.com/sarchlab/conveyor/timing"
	"github.com/sarchlab/conveyor/transfer"
)

// HookPosBeforeTick marks the start of a tick, after the clock advanced.
var HookPosBeforeTick = &hooking.HookPos{Name: "Before Tick"}

// HookPosAfterTick marks the end of a tick, after every link ran.
var HookPosAfterTick = &hooking.HookPos{Name: "After Tick"}

// Entity identifies a machine or a standalone port.
type Entity = idgen.ID

// PortRef names one port of an entity.
type PortRef struct {
	Entity Entity
	Slot   port.Slot
}

// PipeHandle identifies a pipe of a factory.
type PipeHandle idgen.ID

// Stats counts what happened in a factory.
type Stats struct {
	Ticks   uint64
	Removed uint64
}

type entity struct {
	name    string
	ports   *port.Set
	machine machine.Machine
}

type pipeEntry struct {
	name string
	kind pipe.Kind
	pipe pipe.Pipe
	link *transfer.Link
}

// A Factory owns every entity, port and pipe of a simulation.
//
// The construction methods must not be called while a tick is running.
type Factory struct {
	hooking.HookableBase

	name          string
	clock         *timing.Clock
	network       *transfer.Network
	entryInterval uint32
	linkHooks     []hooking.Hook

	entityIDs idgen.Generator
	pipeIDs   idgen.Generator

	entities  map[Entity]*entity
	machines  []machine.Machine
	pipes     map[PipeHandle]*pipeEntry
	pipeOrder []PipeHandle

	stateLock sync.RWMutex
	pauseLock sync.Mutex
	isPaused  atomic.Bool

	ticks   atomic.Uint64
	removed atomic.Uint64
}

// Name returns the name of the factory.
func (f *Factory) Name() string {
	return f.name
}

// Now returns the current tick.
func (f *Factory) Now() timing.Tick {
	return f.clock.Now()
}

// Network returns the network that runs the links.
func (f *Factory) Network() *transfer.Network {
	return f.network
}

// Stats returns the counters of the factory.
func (f *Factory) Stats() Stats {
	return Stats{
		Ticks:   f.ticks.Load(),
		Removed: f.removed.Load(),
	}
}

// CreatePort creates a standalone port, such as a chest, and returns a
// reference to it.
func (f *Factory) CreatePort(capacity uint32) PortRef {
	id := f.entityIDs.Generate()
	name := fmt.Sprintf("%s.Storage%d", f.name, id)

	f.entities[id] = &entity{
		name:  name,
		ports: port.NewSet(name, 1, capacity),
	}

	return PortRef{Entity: id, Slot: port.A}
}

// AddMachine registers a machine. Machines tick in the order they are
// added.
func (f *Factory) AddMachine(m machine.Machine) Entity {
	id := f.entityIDs.Generate()

	f.entities[id] = &entity{
		name:    m.Name(),
		ports:   m.Ports(),
		machine: m,
	}
	f.machines = append(f.machines, m)

	return id
}

// Machines returns the machines in the order they tick.
func (f *Factory) Machines() []machine.Machine {
	return f.machines
}

// Ports returns every port of every entity, in the order the entities were
// created.
func (f *Factory) Ports() []*port.Port {
	ids := make([]Entity, 0, len(f.entities))
	for id := range f.entities {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	var ports []*port.Port
	for _, id := range ids {
		ports = append(ports, f.entities[id].ports.All()...)
	}

	return ports
}

// Port resolves a port reference.
func (f *Factory) Port(ref PortRef) (*port.Port, error) {
	e, ok := f.entities[ref.Entity]
	if !ok || !e.ports.Has(ref.Slot) {
		return nil, fmt.Errorf("%w: entity %d slot %s",
			ErrUnknownPort, ref.Entity, ref.Slot)
	}

	return e.ports.Port(ref.Slot), nil
}

// CreatePipe creates an unlinked pipe of the given length and kind.
func (f *Factory) CreatePipe(length int, kind pipe.Kind) (PipeHandle, error) {
	p, err := pipe.New(kind, length)
	if err != nil {
		return 0, err
	}

	h := PipeHandle(f.pipeIDs.Generate())
	f.pipes[h] = &pipeEntry{
		name: fmt.Sprintf("%s.Pipe%d", f.name, h),
		kind: kind,
		pipe: p,
	}
	f.pipeOrder = append(f.pipeOrder, h)

	return h, nil
}

// Pipe returns the pipe behind a handle.
func (f *Factory) Pipe(h PipeHandle) (pipe.Pipe, error) {
	entry, ok := f.pipes[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPipe, h)
	}

	return entry.pipe, nil
}

// PipeInfo describes a pipe of a factory. Link is nil for unlinked pipes.
type PipeInfo struct {
	Handle PipeHandle
	Name   string
	Kind   pipe.Kind
	Pipe   pipe.Pipe
	Link   *transfer.Link
}

// Describe returns what the factory knows about a pipe.
func (f *Factory) Describe(h PipeHandle) (PipeInfo, error) {
	entry, ok := f.pipes[h]
	if !ok {
		return PipeInfo{}, fmt.Errorf("%w: %d", ErrUnknownPipe, h)
	}

	return PipeInfo{
		Handle: h,
		Name:   entry.name,
		Kind:   entry.kind,
		Pipe:   entry.pipe,
		Link:   entry.link,
	}, nil
}

// LinkOf returns the link of a pipe, if it is linked.
func (f *Factory) LinkOf(h PipeHandle) (*transfer.Link, bool) {
	entry, ok := f.pipes[h]
	if !ok || entry.link == nil {
		return nil, false
	}

	return entry.link, true
}

// Pipes returns the handles of every pipe in creation order.
func (f *Factory) Pipes() []PipeHandle {
	return f.pipeOrder
}

// Link connects a pipe to the port it receives from and the port it sends
// to. Either may be nil. A pipe can only be linked once.
func (f *Factory) Link(
	h PipeHandle,
	src, dst *PortRef,
	opts ...transfer.LinkOption,
) error {
	entry, ok := f.pipes[h]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPipe, h)
	}

	if entry.link != nil {
		return fmt.Errorf("%w: %s is already linked",
			ErrInvalidTopology, entry.name)
	}

	srcPort, err := f.optionalPort(src)
	if err != nil {
		return err
	}

	dstPort, err := f.optionalPort(dst)
	if err != nil {
		return err
	}

	if srcPort != nil && srcPort == dstPort {
		return fmt.Errorf("%w: %s cannot connect %s to itself",
			ErrInvalidTopology, entry.name, srcPort.Name())
	}

	if f.entryInterval > 0 {
		opts = append([]transfer.LinkOption{
			transfer.WithEntryInterval(f.entryInterval),
		}, opts...)
	}

	l := transfer.NewLink(entry.name, entry.pipe, srcPort, dstPort, opts...)
	for _, hook := range f.linkHooks {
		l.AcceptHook(hook)
	}

	entry.link = l
	f.network.Add(l)

	return nil
}

func (f *Factory) optionalPort(ref *PortRef) (*port.Port, error) {
	if ref == nil {
		return nil, nil
	}

	p, err := f.Port(*ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTopology, err)
	}

	return p, nil
}

// RemovePipe removes a pipe and returns the units that were in flight, head
// first. The caller decides what happens to them.
func (f *Factory) RemovePipe(h PipeHandle) ([]resource.ID, error) {
	entry, ok := f.pipes[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPipe, h)
	}

	if entry.link != nil {
		f.network.Remove(entry.link)
	}

	delete(f.pipes, h)

	for i, existing := range f.pipeOrder {
		if existing == h {
			f.pipeOrder = append(f.pipeOrder[:i], f.pipeOrder[i+1:]...)
			break
		}
	}

	units := entry.pipe.Drain()
	f.removed.Add(uint64(len(units)))

	return units, nil
}

// Step runs one tick and returns it. Machines update first, skipping those
// without power, then every link moves units.
func (f *Factory) Step() timing.Tick {
	f.pauseLock.Lock()
	defer f.pauseLock.Unlock()

	f.stateLock.Lock()
	defer f.stateLock.Unlock()

	now := f.clock.Advance()
	f.invoke(now, HookPosBeforeTick)

	for _, m := range f.machines {
		if !m.Gate().HasPower() {
			continue
		}

		m.Tick(now)
	}

	f.network.Step(now)
	f.ticks.Add(1)

	f.invoke(now, HookPosAfterTick)

	return now
}

// Run steps the factory n times. It stops early when ctx is done.
func (f *Factory) Run(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		f.Step()
	}

	return nil
}

// View runs fn while no tick is in progress.
func (f *Factory) View(fn func()) {
	f.stateLock.RLock()
	defer f.stateLock.RUnlock()

	fn()
}

// Pause prevents the factory from starting more ticks.
func (f *Factory) Pause() {
	if f.isPaused.Swap(true) {
		return
	}

	f.pauseLock.Lock()
}

// Continue allows a paused factory to tick again.
func (f *Factory) Continue() {
	if !f.isPaused.Swap(false) {
		return
	}

	f.pauseLock.Unlock()
}

// IsPaused checks if the factory is paused.
func (f *Factory) IsPaused() bool {
	return f.isPaused.Load()
}

func (f *Factory) invoke(now timing.Tick, pos *hooking.HookPos) {
	if f.NumHooks() == 0 {
		return
	}

	f.InvokeHook(hooking.HookCtx{
		Domain: f,
		Now:    now,
		Pos:    pos,
		Item:   f,
	})
}
