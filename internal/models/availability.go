package models

import "time"

// Availability is a recurring weekly window during which an employee may be
// scheduled. DayOfWeek follows time.Weekday numbering (Sunday = 0). One row
// per (employee, weekday); start must precede end.
type Availability struct {
	ID         string    `db:"id" json:"id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	DayOfWeek  int       `db:"day_of_week" json:"day_of_week"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
