package interval

import "strings"

// Validate checks the shape invariants every interval must satisfy before it
// is compared with others: a date, times within the day, end strictly after
// start, and a label that is not blank.
func Validate(iv Interval) error {
	if iv.Date.IsZero() {
		return &ShapeError{Field: "date", Reason: "is required"}
	}
	if !iv.Start.Valid() || !iv.End.Valid() {
		return &ShapeError{Field: "time", Reason: "start and end must lie within the day"}
	}
	if iv.End <= iv.Start {
		return &ShapeError{Field: "end", Reason: "end time must be after start time"}
	}
	if strings.TrimSpace(iv.Label) == "" {
		return &ShapeError{Field: "label", Reason: "is required"}
	}
	return nil
}
