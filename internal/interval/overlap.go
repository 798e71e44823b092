package interval

// Overlaps reports whether a and b share at least one minute. Intervals are
// treated as half-open, so a range ending exactly where another starts is
// adjacent, not overlapping.
func Overlaps(a, b Interval) bool {
	return rangesOverlap(a.Start, a.End, b.Start, b.End)
}

// OverlapMinutes is the length of the intersection of a and b, or zero when
// they do not overlap. Dates are not compared; callers pair intervals of the
// same day.
func OverlapMinutes(a, b Interval) int {
	if !Overlaps(a, b) {
		return 0
	}
	return int(min(a.End, b.End) - max(a.Start, b.Start))
}

// Duration is the length of iv in minutes.
func Duration(iv Interval) int {
	return int(iv.End - iv.Start)
}

func rangesOverlap(s1, e1, s2, e2 TimeOfDay) bool {
	return s1 < e2 && s2 < e1
}
