package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Hours describes the configured business-hours window and per-employee
// hour limits. Start/End are clock hours; a slot may end exactly at End
// but never start there.
type Hours struct {
	Start    int
	End      int
	MinHours int
	MaxHours int
}

var clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidClockTime reports whether s is a 24-hour HH:MM string.
func ValidClockTime(s string) bool {
	return clockRe.MatchString(s)
}

// Minutes converts an HH:MM string to minutes since midnight.
func Minutes(s string) (int, error) {
	if !ValidClockTime(s) {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	parts := strings.SplitN(s, ":", 2)
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m, nil
}

// HourOf returns the hour component of an HH:MM string, or -1 when malformed.
func HourOf(s string) int {
	if !ValidClockTime(s) {
		return -1
	}
	h, _ := strconv.Atoi(s[:2])
	return h
}

// ValidRange reports whether start strictly precedes end on the same day.
// Malformed inputs are never a valid range.
func ValidRange(start, end string) bool {
	s, err := Minutes(start)
	if err != nil {
		return false
	}
	e, err := Minutes(end)
	if err != nil {
		return false
	}
	return s < e
}

// WithinBusinessHours reports whether the time's hour component falls inside
// the window. The End boundary is inclusive only for end times, so a shift
// may finish exactly at closing but not begin there.
func (h Hours) WithinBusinessHours(t string, isEndTime bool) bool {
	hour := HourOf(t)
	if hour < 0 {
		return false
	}
	if isEndTime {
		return hour >= h.Start && hour <= h.End
	}
	return hour >= h.Start && hour < h.End
}

// ContainsHour reports whether a whole-hour slot lies inside [Start, End).
func (h Hours) ContainsHour(hour int) bool {
	return hour >= h.Start && hour < h.End
}
