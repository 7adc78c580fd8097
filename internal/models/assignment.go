package models

import "time"

// Assignment binds a para-educator to a student for a half-open [start, end)
// window on one date. No two assignments for the same employee may overlap
// on the same date.
type Assignment struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	EmployeeID      string    `db:"employee_id" json:"employee_id"`
	Date            string    `db:"date" json:"date"`
	StartTime       string    `db:"start_time" json:"start_time"`
	EndTime         string    `db:"end_time" json:"end_time"`
	RequiresSupport bool      `db:"requires_support" json:"requires_support"`
	Location        *string   `db:"location" json:"location,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// AssignmentDetail joins the student onto an assignment for API responses.
type AssignmentDetail struct {
	Assignment
	StudentName         string `db:"student_name" json:"student_name"`
	StudentGrade        string `db:"student_grade" json:"student_grade"`
	StudentSupportLevel int    `db:"student_support_level" json:"student_support_level"`
}
