package port

import "fmt"

// Slot addresses a port within a Set.
type Slot uint8

// The slots used by the built-in machines.
const (
	A Slot = iota
	B
	C
	D
)

// String returns the slot letter.
func (s Slot) String() string {
	if s < 26 {
		return string(rune('A' + s))
	}

	return fmt.Sprintf("Slot%d", s)
}

// Set is the fixed group of ports owned by one entity.
type Set struct {
	ports []*Port
}

// NewSet creates n empty ports named owner.A, owner.B, and so on.
func NewSet(owner string, n int, capacity uint32) *Set {
	s := &Set{ports: make([]*Port, n)}
	for i := range s.ports {
		s.ports[i] = NewPort(fmt.Sprintf("%s.%s", owner, Slot(i)), capacity)
	}

	return s
}

// Port returns the port at slot. Out-of-range slots panic.
func (s *Set) Port(slot Slot) *Port {
	if int(slot) >= len(s.ports) {
		panic(fmt.Sprintf("port set has no slot %s", slot))
	}

	return s.ports[slot]
}

// Has checks if the slot exists.
func (s *Set) Has(slot Slot) bool {
	return int(slot) < len(s.ports)
}

// Len returns the number of ports.
func (s *Set) Len() int {
	return len(s.ports)
}

// All returns the ports in slot order.
func (s *Set) All() []*Port {
	return s.ports
}
