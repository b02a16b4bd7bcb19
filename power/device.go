package power

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sarchlab/conveyor/idgen"
)

// ErrUnknownDevice is returned when a registry has no device for an entity.
var ErrUnknownDevice = errors.New("power: unknown device")

// A Device consumes or provides power on one network. A device without a
// network is not connected.
type Device struct {
	Network *Network
	Request uint32
	Provide uint32
}

// Apply adds the device to its network. It returns false if the device is
// not connected.
func (d Device) Apply() bool {
	if d.Network == nil {
		return false
	}

	d.Network.ChangeSupply(0, d.Provide)
	d.Network.ChangeDemand(0, d.Request)

	return true
}

// Revert removes the device from its network. It returns false if the
// device is not connected.
func (d Device) Revert() bool {
	if d.Network == nil {
		return false
	}

	d.Network.ChangeSupply(d.Provide, 0)
	d.Network.ChangeDemand(d.Request, 0)

	return true
}

// Update replaces old with d on the networks. If the device moved to another
// network, it leaves the old one first.
func (d Device) Update(old Device) bool {
	if old.Network != d.Network {
		old.Revert()
		return d.Apply()
	}

	if d.Network == nil {
		return false
	}

	d.Network.ChangeSupply(old.Provide, d.Provide)
	d.Network.ChangeDemand(old.Request, d.Request)

	return true
}

// HasPower checks if the device may run. Devices that request nothing always
// may; disconnected devices that request power may not.
func (d Device) HasPower() bool {
	if d.Request == 0 {
		return true
	}

	if d.Network == nil {
		return false
	}

	return d.Network.HasPower()
}

// A Registry keeps the current device of every powered entity and keeps the
// networks up to date as devices are added, changed and removed.
type Registry struct {
	lock    sync.RWMutex
	devices map[idgen.ID]Device
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[idgen.ID]Device)}
}

// Insert registers the device of an entity and applies it. An existing
// device of the entity is replaced.
func (r *Registry) Insert(id idgen.ID, d Device) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if old, ok := r.devices[id]; ok {
		d.Update(old)
	} else {
		d.Apply()
	}

	r.devices[id] = d
}

// Update replaces the device of an entity and returns the previous one.
func (r *Registry) Update(id idgen.ID, d Device) (Device, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	old, ok := r.devices[id]
	if !ok {
		return Device{}, fmt.Errorf("%w: entity %d", ErrUnknownDevice, id)
	}

	d.Update(old)
	r.devices[id] = d

	return old, nil
}

// Remove unregisters the device of an entity and reverts it.
func (r *Registry) Remove(id idgen.ID) (Device, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	d, ok := r.devices[id]
	if !ok {
		return Device{}, false
	}

	d.Revert()
	delete(r.devices, id)

	return d, true
}

// Get returns the device of an entity.
func (r *Registry) Get(id idgen.ID) (Device, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	d, ok := r.devices[id]

	return d, ok
}

// Gate returns a gate that follows the current device of an entity. An
// entity without a device always has power.
func (r *Registry) Gate(id idgen.ID) Gate {
	return registryGate{registry: r, id: id}
}

type registryGate struct {
	registry *Registry
	id       idgen.ID
}

func (g registryGate) HasPower() bool {
	d, ok := g.registry.Get(g.id)
	if !ok {
		return true
	}

	return d.HasPower()
}
