package models

import "time"

// Purge levels escalate from deactivation to full record removal.
const (
	PurgeLevelSoft     = "soft"
	PurgeLevelHard     = "hard"
	PurgeLevelComplete = "complete"

	PurgeRoleAll = "all"
)

// ValidPurgeLevel reports whether level is a recognized purge level.
func ValidPurgeLevel(level string) bool {
	switch level {
	case PurgeLevelSoft, PurgeLevelHard, PurgeLevelComplete:
		return true
	}
	return false
}

// PurgeLog records one administrative purge operation.
type PurgeLog struct {
	ID              string    `db:"id" json:"id"`
	PurgeLevel      string    `db:"purge_level" json:"purge_level"`
	Role            string    `db:"role" json:"role"`
	InitiatedBy     *string   `db:"initiated_by" json:"initiated_by,omitempty"`
	RecordsAffected int       `db:"records_affected" json:"records_affected"`
	BackupCreated   bool      `db:"backup_created" json:"backup_created"`
	BackupFile      *string   `db:"backup_file" json:"backup_file,omitempty"`
	InitiatedAt     time.Time `db:"initiated_at" json:"initiated_at"`
}

// PurgeLogFilter narrows purge log listings.
type PurgeLogFilter struct {
	Role      string
	StartDate *time.Time
	EndDate   *time.Time
}
