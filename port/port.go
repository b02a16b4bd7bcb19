package port

import (
	"fmt"
	"math"
	"sync"

	"github.com/sarchlab/conveyor/hooking"
	"github.com/sarchlab/conveyor/resource"
)

// Unbounded is the capacity of a port that accepts as many units as a count
// can represent.
const Unbounded uint32 = math.MaxUint32

// HookPosPortSend marks when units are accepted into a port.
var HookPosPortSend = &hooking.HookPos{Name: "Port Send"}

// HookPosPortWithdraw marks when units are taken out of a port.
var HookPosPortWithdraw = &hooking.HookPos{Name: "Port Withdraw"}

// Transaction is the hook item of port hooks.
type Transaction struct {
	Resource resource.ID
	Count    uint32
}

// A Port is a named, capacity-bounded Store that machines and pipes share.
// Every method locks the port for its own duration only.
type Port struct {
	hooking.HookableBase

	lock     sync.Mutex
	name     string
	capacity uint32
	store    Store
}

// NewPort creates an empty port.
func NewPort(name string, capacity uint32) *Port {
	if capacity == 0 {
		panic(fmt.Sprintf("port %s: capacity must be positive", name))
	}

	return &Port{
		name:     name,
		capacity: capacity,
	}
}

// Name returns the name of the port.
func (p *Port) Name() string {
	return p.name
}

// Capacity returns the maximum number of units the port holds.
func (p *Port) Capacity() uint32 {
	return p.capacity
}

// Get returns the resident resource and count.
func (p *Port) Get() (resource.ID, uint32, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.store.Get()
}

// GetOr returns the resident resource and count, or fallback and 0.
func (p *Port) GetOr(fallback resource.ID) (resource.ID, uint32) {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.store.GetOr(fallback)
}

// Stored returns the number of units held.
func (p *Port) Stored() uint32 {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.store.Stored()
}

// IsEmpty checks if the port holds nothing.
func (p *Port) IsEmpty() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.store.IsEmpty()
}

// IsEmptyOr checks if the port is empty or holds id.
func (p *Port) IsEmptyOr(id resource.ID) bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.store.IsEmptyOr(id)
}

// Remaining returns how many more units fit.
func (p *Port) Remaining() uint32 {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.capacity - p.store.Stored()
}

// Snapshot returns a copy of the underlying store.
func (p *Port) Snapshot() Store {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.store
}

// Set overwrites the content. Setting more than the capacity panics.
func (p *Port) Set(id resource.ID, count uint32) {
	if count > p.capacity {
		panic(ErrOverflow)
	}

	p.lock.Lock()
	p.store.Set(id, count)
	p.lock.Unlock()
}

// Clear empties the port.
func (p *Port) Clear() {
	p.lock.Lock()
	p.store.Clear()
	p.lock.Unlock()
}

// Send offers count units of id and returns how many were accepted. The
// accepted count is clamped to the remaining capacity and may be zero. A
// different resident resource yields a *ConflictError and nothing changes.
func (p *Port) Send(id resource.ID, count uint32) (uint32, error) {
	p.lock.Lock()

	resident, _ := p.store.GetOr(id)
	if resident != id {
		p.lock.Unlock()
		return 0, &ConflictError{Resident: resident, Offered: id}
	}

	count = min(count, p.capacity-p.store.Stored())
	if count == 0 {
		p.lock.Unlock()
		return 0, nil
	}

	accepted, err := p.store.TrySend(id, count)
	p.lock.Unlock()

	if err != nil {
		return 0, err
	}

	p.invoke(HookPosPortSend, id, accepted)

	return accepted, nil
}

// Recv reports what a receive of up to count units would yield without
// changing the port.
func (p *Port) Recv(count uint32) (resource.ID, uint32, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.store.TryRecv(count)
}

// Take removes count units. Taking more than stored panics.
func (p *Port) Take(count uint32) {
	p.lock.Lock()
	id := p.store.Resource()
	p.store.Pop(count)
	p.lock.Unlock()

	p.invoke(HookPosPortWithdraw, id, count)
}

// Withdraw removes up to count units in one step and returns what was
// removed.
func (p *Port) Withdraw(count uint32) (resource.ID, uint32, bool) {
	p.lock.Lock()

	id, n, ok := p.store.TryRecv(count)
	if !ok {
		p.lock.Unlock()
		return resource.None, 0, false
	}

	p.store.Pop(n)
	p.lock.Unlock()

	p.invoke(HookPosPortWithdraw, id, n)

	return id, n, true
}

func (p *Port) invoke(pos *hooking.HookPos, id resource.ID, count uint32) {
	if p.NumHooks() == 0 {
		return
	}

	p.InvokeHook(hooking.HookCtx{
		Domain: p,
		Pos:    pos,
		Item:   Transaction{Resource: id, Count: count},
	})
}
