package core

import "errors"

// Errors
var (
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidPrice     = errors.New("invalid price")
	ErrInvalidSide      = errors.New("invalid side")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrInvalidTimeStep  = errors.New("invalid time step")
	ErrOrderExists      = errors.New("order exists")
	ErrNonexistentOrder = errors.New("nonexistent order")
	ErrExcessiveFill    = errors.New("fill exceeds remaining quantity")
	ErrAlreadyRun       = errors.New("simulation already run")
)
