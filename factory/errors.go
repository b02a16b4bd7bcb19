package factory

import "errors"

var (
	// ErrInvalidTopology is returned when a link cannot be made: a port
	// linked to itself, an unknown port, or a pipe that is already linked.
	ErrInvalidTopology = errors.New("factory: invalid topology")

	// ErrUnknownPipe is returned for handles of pipes that do not exist.
	ErrUnknownPipe = errors.New("factory: unknown pipe")

	// ErrUnknownPort is returned for references to ports that do not exist.
	ErrUnknownPort = errors.New("factory: unknown port")
)
