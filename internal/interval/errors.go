package interval

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeInvalid indicates an interval that is malformed on its own:
	// missing date or times, end not after start, or a blank label.
	ErrShapeInvalid = errors.New("invalid interval")

	// ErrConflict indicates an interval overlapping another of the same kind
	// on the same day.
	ErrConflict = errors.New("interval conflict")
)

// ShapeError describes which field made an interval invalid.
type ShapeError struct {
	Field  string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ShapeError) Is(target error) bool {
	return target == ErrShapeInvalid
}

// ConflictError names the committed interval a candidate collided with.
type ConflictError struct {
	Kind Kind
	With Interval
}

func (e *ConflictError) Error() string {
	switch e.Kind {
	case KindPlan:
		return fmt.Sprintf("plan block overlaps with existing block: %s", e.With)
	case KindActual:
		return fmt.Sprintf("session overlaps with existing session: %s", e.With)
	}
	return fmt.Sprintf("interval overlaps with existing interval: %s", e.With)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
