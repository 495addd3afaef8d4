package core

import (
	"errors"
	"fmt"

	"github.com/pelagiclabs/telemetry-simulator/model"
)

var (
	// ErrValidation covers malformed or out-of-range parameters: non-positive
	// step lengths or velocities, bad delay ranges, detection-range functions
	// returning values outside [0,1]. Never recovered locally.
	ErrValidation = errors.New("invalid parameter")

	// ErrEmptyInput is returned when a simulation is given zero transmissions
	// or zero receivers. An empty result would be ambiguous between "no
	// detections" and "nothing to simulate", so this aborts instead.
	ErrEmptyInput = errors.New("empty input")

	// ErrBoundaryViolation covers start points outside the permitted region
	// and exhausted rejection-sampling budgets while searching for a valid
	// step. Wrapped by BoundaryViolationError.
	ErrBoundaryViolation = errors.New("boundary violation")

	// ErrNoPath is returned by PathFinder implementations that cannot
	// produce an in-water route between two points.
	ErrNoPath = errors.New("no in-water path")
)

// BoundaryViolationError reports where a random walk failed: the step index
// being generated and the last position that was attempted.
type BoundaryViolationError struct {
	Step      int
	Attempted model.Point
	Reason    string
}

func (e *BoundaryViolationError) Error() string {
	return fmt.Sprintf("%v at step %d (attempted x=%v y=%v): %s",
		ErrBoundaryViolation, e.Step, e.Attempted.X, e.Attempted.Y, e.Reason)
}

func (e *BoundaryViolationError) Unwrap() error { return ErrBoundaryViolation }
