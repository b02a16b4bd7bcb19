package port

import (
	"errors"
	"fmt"

	"github.com/sarchlab/conveyor/resource"
)

// ErrResourceConflict is the sentinel matched by every ConflictError.
var ErrResourceConflict = errors.New("port: resource conflict")

// ErrOverflow is raised when a store or port would hold more units than it
// can. Callers must check Remaining before adding.
var ErrOverflow = errors.New("port: capacity exceeded")

// ConflictError reports that a store holding one resource was offered
// another. The store is left untouched.
type ConflictError struct {
	Resident resource.ID
	Offered  resource.ID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("port: holds %v, cannot accept %v",
		e.Resident, e.Offered)
}

// Unwrap makes errors.Is(err, ErrResourceConflict) hold.
func (e *ConflictError) Unwrap() error {
	return ErrResourceConflict
}
