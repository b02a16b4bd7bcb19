// Package resource identifies the commodities that move through a factory.
//
// A commodity is declared once as a Type and receives its ID lazily, the
// first time the ID is requested. IDs come from a shared counter and are
// never reused.
package resource

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// ID is the opaque identity of a commodity. The zero value is None.
type ID uint16

// None means "no resource".
const None ID = 0

// ErrExhausted is raised when more commodities are declared than an ID can
// represent. It is fatal.
var ErrExhausted = errors.New("resource: resource ids exhausted")

// String returns the registered name of the id in the default registry.
func (id ID) String() string {
	if id == None {
		return "none"
	}

	return DefaultRegistry.Name(id)
}

// Registry hands out IDs and remembers their names.
type Registry struct {
	next  atomic.Uint32
	mu    sync.RWMutex
	names map[ID]string
}

// DefaultRegistry is the process-wide registry used by NewType.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry. The first ID it hands out is 1.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[ID]string),
	}
}

// Register allocates a new ID. It panics with ErrExhausted when no IDs are
// left.
func (r *Registry) Register(name string) ID {
	n := r.next.Add(1)
	if n > math.MaxUint16 {
		panic(ErrExhausted)
	}

	id := ID(n)

	r.mu.Lock()
	r.names[id] = name
	r.mu.Unlock()

	return id
}

// Name returns the name an ID was registered with.
func (r *Registry) Name(id ID) string {
	r.mu.RLock()
	name, ok := r.names[id]
	r.mu.RUnlock()

	if !ok {
		return fmt.Sprintf("resource#%d", id)
	}

	return name
}

// Count returns how many IDs have been handed out.
func (r *Registry) Count() int {
	n := r.next.Load()
	if n > math.MaxUint16 {
		return math.MaxUint16
	}

	return int(n)
}

// Type is a declared commodity. The zero value is not usable; create it with
// NewType or NewTypeIn.
type Type struct {
	name     string
	registry *Registry

	once sync.Once
	id   ID
}

// NewType declares a commodity in the default registry.
func NewType(name string) *Type {
	return NewTypeIn(DefaultRegistry, name)
}

// NewTypeIn declares a commodity in the given registry.
func NewTypeIn(r *Registry, name string) *Type {
	return &Type{name: name, registry: r}
}

// Name returns the name of the commodity.
func (t *Type) Name() string {
	return t.name
}

// ID returns the ID of the commodity, registering it on first use. Concurrent
// first calls observe the same ID.
func (t *Type) ID() ID {
	t.once.Do(func() {
		t.id = t.registry.Register(t.name)
	})

	return t.id
}
