package interval

// CheckNoConflict reports whether candidate may join existing, the committed
// intervals of the same kind for candidate's day. When excludeID is non-nil
// the interval with that ID is skipped, so an interval being moved or resized
// never collides with its own previous position.
//
// The first overlapping interval found is returned as a *ConflictError; order
// of existing is irrelevant. Intervals filed under another day never
// conflict. Nothing is mutated: checking and then committing is up to the
// caller and is not atomic.
func CheckNoConflict(candidate Interval, existing []Interval, excludeID *int64) error {
	for _, iv := range existing {
		if excludeID != nil && iv.ID == *excludeID {
			continue
		}
		if !iv.SameDay(candidate) {
			continue
		}
		if Overlaps(candidate, iv) {
			kind := candidate.Kind
			if kind == "" {
				kind = iv.Kind
			}
			return &ConflictError{Kind: kind, With: iv}
		}
	}
	return nil
}
