package engine

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInletExists       = errors.New("network already has an inlet")
	ErrNoInlet           = errors.New("network has no inlet")
	ErrNoOutlets         = errors.New("network has no outlets with flow")
	ErrNegativeFlow      = errors.New("flow must not be negative")
	ErrDegenerateSegment = errors.New("segment collapses to a single grid point")
)
