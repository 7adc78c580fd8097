package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func gridWith(hoursActive ...int) GridEmployee {
	employee := GridEmployee{ID: "emp-1"}
	for h := 6; h < 17; h++ {
		active := false
		for _, a := range hoursActive {
			if a == h {
				active = true
			}
		}
		employee.Blocks = append(employee.Blocks, HourBlock{Hour: h, Active: active})
	}
	return employee
}

func TestValidateSlotChangeUnknownEmployee(t *testing.T) {
	hours := Hours{Start: 6, End: 17, MaxHours: 8}
	decision := hours.ValidateSlotChange([]GridEmployee{gridWith(9)}, "missing", 10, 9)
	assert.False(t, decision.OK)
	assert.Equal(t, "employee not found", decision.Reason)
}

func TestValidateSlotChangeOutsideWindow(t *testing.T) {
	hours := Hours{Start: 6, End: 17, MaxHours: 8}
	employees := []GridEmployee{gridWith(9)}

	decision := hours.ValidateSlotChange(employees, "emp-1", 18, 9)
	assert.False(t, decision.OK)
	assert.Equal(t, "schedule must be between 06:00 and 17:00", decision.Reason)

	// The closing hour itself is not a valid slot start.
	decision = hours.ValidateSlotChange(employees, "emp-1", 17, 9)
	assert.False(t, decision.OK)

	decision = hours.ValidateSlotChange(employees, "emp-1", 5, 9)
	assert.False(t, decision.OK)
}

func TestValidateSlotChangeMaxHours(t *testing.T) {
	hours := Hours{Start: 6, End: 17, MaxHours: 8}

	// Eight active hours, moving one of them elsewhere stays at eight.
	employees := []GridEmployee{gridWith(6, 7, 8, 9, 10, 11, 12, 13)}
	decision := hours.ValidateSlotChange(employees, "emp-1", 14, 13)
	assert.True(t, decision.OK)

	// Adding a ninth hour crosses the cap.
	decision = hours.ValidateSlotChange(employees, "emp-1", 14, -1)
	assert.False(t, decision.OK)
	assert.Equal(t, "cannot schedule more than 8 hours per employee", decision.Reason)
}

func TestValidateSlotChangeAllowed(t *testing.T) {
	hours := Hours{Start: 6, End: 17, MaxHours: 8}
	employees := []GridEmployee{gridWith(9, 10)}
	decision := hours.ValidateSlotChange(employees, "emp-1", 11, -1)
	assert.True(t, decision.OK)
	assert.Empty(t, decision.Reason)
}
