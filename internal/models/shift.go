package models

import "time"

// Shift is a flat per-date work record used by the legacy schedule grid.
type Shift struct {
	ID         string    `db:"id" json:"id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	Date       string    `db:"date" json:"date"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ShiftFilter narrows shift listings.
type ShiftFilter struct {
	EmployeeID string
	DateFrom   string
	DateTo     string
}
