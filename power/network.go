// Package power tracks supply and demand on power networks and decides which
// machines may run.
package power

import "sync/atomic"

// Gate tells a machine whether it may run this tick.
type Gate interface {
	HasPower() bool
}

type alwaysOn struct{}

func (alwaysOn) HasPower() bool { return true }

// AlwaysOn is the gate of machines that need no power.
var AlwaysOn Gate = alwaysOn{}

// A Network accumulates the supply and demand of the devices attached to it.
// Changes are applied as deltas and are safe for concurrent use.
type Network struct {
	name        string
	supplyLimit uint32

	supply atomic.Uint32
	demand atomic.Uint32
}

// NewNetwork creates a network that delivers at most supplyLimit, whatever
// its devices provide.
func NewNetwork(name string, supplyLimit uint32) *Network {
	return &Network{name: name, supplyLimit: supplyLimit}
}

// Name returns the name of the network.
func (n *Network) Name() string {
	return n.name
}

// SupplyLimit returns the most the network can deliver.
func (n *Network) SupplyLimit() uint32 {
	return n.supplyLimit
}

// Supply returns the total provided by devices.
func (n *Network) Supply() uint32 {
	return n.supply.Load()
}

// Demand returns the total requested by devices.
func (n *Network) Demand() uint32 {
	return n.demand.Load()
}

// ChangeSupply replaces a contribution of from with to.
func (n *Network) ChangeSupply(from, to uint32) {
	change(&n.supply, from, to)
}

// ChangeDemand replaces a request of from with to.
func (n *Network) ChangeDemand(from, to uint32) {
	change(&n.demand, from, to)
}

// HasPower checks if the demand is covered by the capped supply.
func (n *Network) HasPower() bool {
	return n.demand.Load() <= min(n.supply.Load(), n.supplyLimit)
}

func change(v *atomic.Uint32, from, to uint32) {
	switch {
	case to > from:
		v.Add(to - from)
	case to < from:
		v.Add(^(from - to - 1))
	}
}
