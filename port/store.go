// Package port provides the single-commodity buffers that machines expose and
// pipes connect to.
package port

import (
	"math"

	"github.com/sarchlab/conveyor/resource"
)

// Store holds a count of a single resource. A store with a zero count holds
// no resource, whatever id it stored before. The zero value is an empty
// store. Store is not safe for concurrent use; Port wraps it with a lock.
type Store struct {
	id    resource.ID
	count uint32
}

// Get returns the resident resource and its count. It returns false when the
// store is empty.
func (s *Store) Get() (resource.ID, uint32, bool) {
	if s.count == 0 {
		return resource.None, 0, false
	}

	return s.id, s.count, true
}

// GetOr returns the resident resource and count, or fallback and 0 if the
// store is empty.
func (s *Store) GetOr(fallback resource.ID) (resource.ID, uint32) {
	if s.count == 0 {
		return fallback, 0
	}

	return s.id, s.count
}

// Resource returns the resident resource, or None.
func (s *Store) Resource() resource.ID {
	if s.count == 0 {
		return resource.None
	}

	return s.id
}

// Stored returns the number of units held.
func (s *Store) Stored() uint32 {
	return s.count
}

// IsEmpty checks if no units are held.
func (s *Store) IsEmpty() bool {
	return s.count == 0
}

// IsEmptyOr checks if the store is empty or holds id.
func (s *Store) IsEmptyOr(id resource.ID) bool {
	return s.count == 0 || s.id == id
}

// Set overwrites the content of the store.
func (s *Store) Set(id resource.ID, count uint32) {
	if count == 0 {
		s.Clear()
		return
	}

	if id == resource.None {
		panic("port: cannot store units of no resource")
	}

	s.id = id
	s.count = count
}

// Clear empties the store.
func (s *Store) Clear() {
	s.id = resource.None
	s.count = 0
}

// TrySend offers count units of id. It returns a *ConflictError if another
// resource is resident; otherwise all units are accepted.
func (s *Store) TrySend(id resource.ID, count uint32) (uint32, error) {
	if count == 0 {
		return 0, nil
	}

	if s.count > 0 && s.id != id {
		return 0, &ConflictError{Resident: s.id, Offered: id}
	}

	s.mustFit(count)

	if s.count == 0 {
		s.id = id
	}

	s.count += count

	return count, nil
}

// TryRecv reports what a receive of up to count units would yield. It does
// not change the store; call Pop to commit.
func (s *Store) TryRecv(count uint32) (resource.ID, uint32, bool) {
	if s.count == 0 || count == 0 {
		return resource.None, 0, false
	}

	return s.id, min(count, s.count), true
}

// Pop removes count units. Removing more than stored panics.
func (s *Store) Pop(count uint32) {
	if count > s.count {
		panic("port: popping more units than stored")
	}

	s.count -= count
	if s.count == 0 {
		s.id = resource.None
	}
}

// TryAdd adds count units of the resident resource. It fails on an empty
// store, which has no resource to add to.
func (s *Store) TryAdd(count uint32) bool {
	if s.count == 0 {
		return false
	}

	s.mustFit(count)
	s.count += count

	return true
}

func (s *Store) mustFit(count uint32) {
	if count > math.MaxUint32-s.count {
		panic(ErrOverflow)
	}
}
