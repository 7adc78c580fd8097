package models

import "time"

// Student represents a student receiving scheduled support.
type Student struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Grade        string    `db:"grade" json:"grade"`
	SupportLevel int       `db:"support_level" json:"support_level"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ValidSupportLevel reports whether level is within the recognized range.
func ValidSupportLevel(level int) bool {
	return level >= 1 && level <= 3
}
