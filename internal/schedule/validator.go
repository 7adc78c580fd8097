package schedule

import "fmt"

// HourBlock is one cell of the hour-granularity schedule grid.
type HourBlock struct {
	Hour   int
	Active bool
}

// GridEmployee is the minimal employee view the grid validator needs.
type GridEmployee struct {
	ID     string
	Blocks []HourBlock
}

// SlotDecision is the outcome of validating a grid mutation.
type SlotDecision struct {
	OK     bool
	Reason string
}

// ValidateSlotChange decides whether an employee may activate newHour while
// vacating currentHour. The count of active hours excludes the vacated slot;
// reaching MaxHours already rejects the change, so the limit is a hard cap.
// Pure function, no I/O.
func (h Hours) ValidateSlotChange(employees []GridEmployee, employeeID string, newHour, currentHour int) SlotDecision {
	var employee *GridEmployee
	for i := range employees {
		if employees[i].ID == employeeID {
			employee = &employees[i]
			break
		}
	}
	if employee == nil {
		return SlotDecision{Reason: "employee not found"}
	}

	if !h.ContainsHour(newHour) {
		return SlotDecision{
			Reason: fmt.Sprintf("schedule must be between %02d:00 and %02d:00", h.Start, h.End),
		}
	}

	active := 0
	for _, block := range employee.Blocks {
		if block.Active && block.Hour != currentHour {
			active++
		}
	}
	if active >= h.MaxHours {
		return SlotDecision{
			Reason: fmt.Sprintf("cannot schedule more than %d hours per employee", h.MaxHours),
		}
	}

	return SlotDecision{OK: true}
}
