package schedule

// Interval is a half-open [Start, End) time window within one day.
type Interval struct {
	Start string
	End   string
}

// Overlaps reports whether two half-open HH:MM intervals intersect.
// Touching endpoints do not conflict. Malformed times report no overlap;
// callers validate formats before reaching this check.
func Overlaps(a, b Interval) bool {
	aStart, err := Minutes(a.Start)
	if err != nil {
		return false
	}
	aEnd, err := Minutes(a.End)
	if err != nil {
		return false
	}
	bStart, err := Minutes(b.Start)
	if err != nil {
		return false
	}
	bEnd, err := Minutes(b.End)
	if err != nil {
		return false
	}
	return aStart < bEnd && aEnd > bStart
}

// FirstOverlap returns the first existing interval conflicting with the
// candidate, or nil. The test is symmetric so ordering never matters.
func FirstOverlap(candidate Interval, existing []Interval) *Interval {
	for i := range existing {
		if Overlaps(candidate, existing[i]) {
			return &existing[i]
		}
	}
	return nil
}
