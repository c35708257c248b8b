package vga

import "errors"

var (
	// ErrUnsupported reports a function, sub-function, mode or page that is
	// not implemented. It is never fatal.
	ErrUnsupported = errors.New("unsupported")
	// ErrInvalidGeometry reports a degenerate rectangle or position. Callers
	// treat it as a no-op.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrHostSurface reports that the host display failed a mode switch or a
	// colour allocation.
	ErrHostSurface = errors.New("host surface failure")
	// ErrNoMemory reports a block transfer attempted without guest memory.
	ErrNoMemory = errors.New("no guest memory attached")
)
