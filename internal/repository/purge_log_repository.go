package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
)

const purgeLogColumns = "id, purge_level, role, initiated_by, records_affected, backup_created, backup_file, initiated_at"

// PurgeLogRepository records administrative purge operations.
type PurgeLogRepository struct {
	db *sqlx.DB
}

// NewPurgeLogRepository constructs a PurgeLogRepository.
func NewPurgeLogRepository(db *sqlx.DB) *PurgeLogRepository {
	return &PurgeLogRepository{db: db}
}

// Create appends one purge log entry.
func (r *PurgeLogRepository) Create(ctx context.Context, entry *models.PurgeLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.InitiatedAt.IsZero() {
		entry.InitiatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO data_purge_log (id, purge_level, role, initiated_by, records_affected, backup_created, backup_file, initiated_at)
		VALUES (:id, :purge_level, :role, :initiated_by, :records_affected, :backup_created, :backup_file, :initiated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create purge log: %w", err)
	}
	return nil
}

// SetBackupFile records the backup artifact produced for an entry.
func (r *PurgeLogRepository) SetBackupFile(ctx context.Context, id, backupFile string) error {
	const query = `UPDATE data_purge_log SET backup_created = TRUE, backup_file = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, backupFile); err != nil {
		return fmt.Errorf("set purge backup file: %w", err)
	}
	return nil
}

// List returns purge history, newest first.
func (r *PurgeLogRepository) List(ctx context.Context, filter models.PurgeLogFilter) ([]models.PurgeLog, error) {
	base := "FROM data_purge_log WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("initiated_at >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("initiated_at <= $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY initiated_at DESC", purgeLogColumns, base)
	var entries []models.PurgeLog
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list purge log: %w", err)
	}
	return entries, nil
}
