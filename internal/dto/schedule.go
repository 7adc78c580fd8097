package dto

import (
	"github.com/staffdeskhq/staffdesk-api/internal/models"
	"github.com/staffdeskhq/staffdesk-api/internal/schedule"
)

// EmployeeDaySchedule carries one employee's blocks for a single date.
type EmployeeDaySchedule struct {
	Employee models.Employee    `json:"employee"`
	Blocks   []models.TimeBlock `json:"blocks"`
}

// DayScheduleResponse is the cached day-schedule read model.
type DayScheduleResponse struct {
	Date      string                `json:"date"`
	Employees []EmployeeDaySchedule `json:"employees"`
	FromCache bool                  `json:"-"`
}

// CoverageResponse reports per-hour staffing for one date.
type CoverageResponse struct {
	Date         string                  `json:"date"`
	TotalStaff   int                     `json:"total_staff"`
	MinimumStaff int                     `json:"minimum_staff"`
	Hours        []schedule.HourCoverage `json:"hours"`
	Understaffed []int                   `json:"understaffed_hours"`
	FromCache    bool                    `json:"-"`
}

// BlockUpdate is one hour-grid mutation within a batch.
type BlockUpdate struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Hour       int    `json:"hour" validate:"min=0,max=23"`
	IsActive   bool   `json:"is_active"`
}

// InitializeDayResult summarizes a time-block initialization run.
type InitializeDayResult struct {
	Date          string `json:"date"`
	EmployeeCount int    `json:"employee_count"`
	BlocksCreated int    `json:"blocks_created"`
	Skipped       bool   `json:"skipped"`
}
