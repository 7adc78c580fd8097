package dto

import "time"

// PurgeRequest describes an administrative purge operation.
type PurgeRequest struct {
	Level       string `json:"level" validate:"required,oneof=soft hard complete"`
	Role        string `json:"role" validate:"required,oneof=teacher para-educator admin all"`
	Backup      bool   `json:"backup"`
	InitiatedBy string `json:"initiated_by"`
}

// PurgeResponse reports the outcome of a purge.
type PurgeResponse struct {
	Level           string     `json:"level"`
	Role            string     `json:"role"`
	RecordsAffected int        `json:"records_affected"`
	BackupQueued    bool       `json:"backup_queued"`
	BackupToken     string     `json:"backup_token,omitempty"`
	BackupExpiresAt *time.Time `json:"backup_expires_at,omitempty"`
}
