package models

import "time"

// Time block types.
const (
	BlockTypeWork  = "work"
	BlockTypeBreak = "break"
	BlockTypeLunch = "lunch"
)

// ValidBlockType reports whether t is a recognized block type.
func ValidBlockType(t string) bool {
	switch t {
	case BlockTypeWork, BlockTypeBreak, BlockTypeLunch:
		return true
	}
	return false
}

// TimeBlock is a concrete schedule entry for one employee on one calendar
// date, either materialized from recurring availability or explicitly
// overridden. Active blocks for one employee+date never overlap.
type TimeBlock struct {
	ID         string    `db:"id" json:"id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	Date       string    `db:"date" json:"date"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	BlockType  string    `db:"block_type" json:"block_type"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
