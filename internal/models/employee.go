package models

import "time"

// Employee roles and schedule types recognized by the roster.
const (
	RoleTeacher      = "teacher"
	RoleParaEducator = "para-educator"
	RoleAdmin        = "admin"

	ScheduleTypeFixed    = "fixed"
	ScheduleTypeFlexible = "flexible"
)

// ValidRole reports whether role belongs to the recognized set.
func ValidRole(role string) bool {
	switch role {
	case RoleTeacher, RoleParaEducator, RoleAdmin:
		return true
	}
	return false
}

// ValidScheduleType reports whether t is a recognized schedule type.
func ValidScheduleType(t string) bool {
	return t == ScheduleTypeFixed || t == ScheduleTypeFlexible
}

// Employee represents one staff member on the roster.
type Employee struct {
	ID                   string    `db:"id" json:"id"`
	Name                 string    `db:"name" json:"name"`
	Email                string    `db:"email" json:"email"`
	Role                 string    `db:"role" json:"role"`
	ScheduleType         string    `db:"schedule_type" json:"schedule_type"`
	DefaultStartTime     *string   `db:"default_start_time" json:"default_start_time,omitempty"`
	DefaultEndTime       *string   `db:"default_end_time" json:"default_end_time,omitempty"`
	DailyCapacityMinutes int       `db:"daily_capacity_minutes" json:"daily_capacity_minutes"`
	IsActive             bool      `db:"is_active" json:"is_active"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// EmployeeFilter captures filtering options for listing employees.
type EmployeeFilter struct {
	Search    string
	Role      string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
