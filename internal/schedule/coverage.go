package schedule

import "time"

// ActiveAtHour reports whether any active block covers the given hour.
func ActiveAtHour(blocks []HourBlock, hour int) bool {
	for _, block := range blocks {
		if block.Hour == hour && block.Active {
			return true
		}
	}
	return false
}

// ActiveStaffCount counts employees with an active block at the given hour.
func ActiveStaffCount(employees []GridEmployee, hour int) int {
	count := 0
	for i := range employees {
		if ActiveAtHour(employees[i].Blocks, hour) {
			count++
		}
	}
	return count
}

// HourCoverage is the staffing level for one clock hour.
type HourCoverage struct {
	Hour        int `json:"hour"`
	ActiveStaff int `json:"active_staff"`
}

// HourlyCoverage computes staff counts for every hour in the business window.
func (h Hours) HourlyCoverage(employees []GridEmployee) []HourCoverage {
	if h.End <= h.Start {
		return nil
	}
	coverage := make([]HourCoverage, 0, h.End-h.Start)
	for hour := h.Start; hour < h.End; hour++ {
		coverage = append(coverage, HourCoverage{
			Hour:        hour,
			ActiveStaff: ActiveStaffCount(employees, hour),
		})
	}
	return coverage
}

// CurrentCoverage reports staffing at the wall-clock hour of now.
func CurrentCoverage(employees []GridEmployee, now time.Time) (activeStaff, totalStaff int) {
	return ActiveStaffCount(employees, now.Hour()), len(employees)
}
