package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
)

const timeBlockColumns = "id, employee_id, date, start_time, end_time, block_type, is_active, created_at, updated_at"

// TimeBlockRepository manages per-date schedule entries.
type TimeBlockRepository struct {
	db *sqlx.DB
}

// NewTimeBlockRepository constructs a TimeBlockRepository.
func NewTimeBlockRepository(db *sqlx.DB) *TimeBlockRepository {
	return &TimeBlockRepository{db: db}
}

// ListByDate returns all blocks for one calendar date.
func (r *TimeBlockRepository) ListByDate(ctx context.Context, date string) ([]models.TimeBlock, error) {
	query := fmt.Sprintf("SELECT %s FROM time_blocks WHERE date = $1 ORDER BY employee_id ASC, start_time ASC", timeBlockColumns)
	var blocks []models.TimeBlock
	if err := r.db.SelectContext(ctx, &blocks, query, date); err != nil {
		return nil, fmt.Errorf("list time blocks: %w", err)
	}
	return blocks, nil
}

// ListByEmployeeDate returns one employee's blocks for a date.
func (r *TimeBlockRepository) ListByEmployeeDate(ctx context.Context, employeeID, date string) ([]models.TimeBlock, error) {
	query := fmt.Sprintf("SELECT %s FROM time_blocks WHERE employee_id = $1 AND date = $2 ORDER BY start_time ASC", timeBlockColumns)
	var blocks []models.TimeBlock
	if err := r.db.SelectContext(ctx, &blocks, query, employeeID, date); err != nil {
		return nil, fmt.Errorf("list employee time blocks: %w", err)
	}
	return blocks, nil
}

// FindByID fetches one block.
func (r *TimeBlockRepository) FindByID(ctx context.Context, id string) (*models.TimeBlock, error) {
	query := fmt.Sprintf("SELECT %s FROM time_blocks WHERE id = $1", timeBlockColumns)
	var block models.TimeBlock
	if err := r.db.GetContext(ctx, &block, query, id); err != nil {
		return nil, err
	}
	return &block, nil
}

// ExistsForDate reports whether any block exists for the date, used to make
// day initialization idempotent.
func (r *TimeBlockRepository) ExistsForDate(ctx context.Context, date string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM time_blocks WHERE date = $1 LIMIT 1", date); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check time blocks for date: %w", err)
	}
	return true, nil
}

// InsertBatch writes a set of blocks in one transaction.
func (r *TimeBlockRepository) InsertBatch(ctx context.Context, blocks []models.TimeBlock) error {
	if len(blocks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin time block insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	for i := range blocks {
		if blocks[i].ID == "" {
			blocks[i].ID = uuid.NewString()
		}
		blocks[i].CreatedAt = now
		blocks[i].UpdatedAt = now
		const query = `INSERT INTO time_blocks (id, employee_id, date, start_time, end_time, block_type, is_active, created_at, updated_at)
			VALUES (:id, :employee_id, :date, :start_time, :end_time, :block_type, :is_active, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, blocks[i]); err != nil {
			return fmt.Errorf("insert time block: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit time block insert: %w", err)
	}
	return nil
}

// Update rewrites a block's window, type and active flag.
func (r *TimeBlockRepository) Update(ctx context.Context, block *models.TimeBlock) error {
	block.UpdatedAt = time.Now().UTC()
	const query = `UPDATE time_blocks SET start_time = :start_time, end_time = :end_time, block_type = :block_type, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("update time block: %w", err)
	}
	return nil
}

// SetHourActive flips the block covering a whole-hour slot for one
// employee+date. Activating a slot that has never been materialized inserts
// the block; deactivating one is a no-op.
func (r *TimeBlockRepository) SetHourActive(ctx context.Context, employeeID, date string, hour int, active bool) error {
	start := fmt.Sprintf("%02d:00", hour)
	end := fmt.Sprintf("%02d:00", hour+1)
	now := time.Now().UTC()

	const update = `UPDATE time_blocks SET is_active = $1, updated_at = $2
		WHERE employee_id = $3 AND date = $4 AND start_time = $5 AND end_time = $6`
	res, err := r.db.ExecContext(ctx, update, active, now, employeeID, date, start, end)
	if err != nil {
		return fmt.Errorf("update hour block: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("count hour block update: %w", err)
	}
	if affected > 0 {
		return nil
	}
	// Deactivating a slot that was never materialized needs no row.
	if !active {
		return nil
	}

	block := models.TimeBlock{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
		BlockType:  models.BlockTypeWork,
		IsActive:   active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	const insert = `INSERT INTO time_blocks (id, employee_id, date, start_time, end_time, block_type, is_active, created_at, updated_at)
		VALUES (:id, :employee_id, :date, :start_time, :end_time, :block_type, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, insert, block); err != nil {
		return fmt.Errorf("insert hour block: %w", err)
	}
	return nil
}

// Delete removes one block.
func (r *TimeBlockRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM time_blocks WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete time block: %w", err)
	}
	return nil
}

// ListByEmployees returns all blocks belonging to the given employees.
// Used to snapshot schedule data before a purge.
func (r *TimeBlockRepository) ListByEmployees(ctx context.Context, employeeIDs []string) ([]models.TimeBlock, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT "+timeBlockColumns+" FROM time_blocks WHERE employee_id IN (?)", employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("build time block snapshot: %w", err)
	}
	var blocks []models.TimeBlock
	if err := r.db.SelectContext(ctx, &blocks, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("snapshot time blocks: %w", err)
	}
	return blocks, nil
}

// DeleteByEmployees removes schedule data for the given employees and
// reports how many rows were dropped. Used by purge operations.
func (r *TimeBlockRepository) DeleteByEmployees(ctx context.Context, employeeIDs []string) (int, error) {
	if len(employeeIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("DELETE FROM time_blocks WHERE employee_id IN (?)", employeeIDs)
	if err != nil {
		return 0, fmt.Errorf("build time block purge: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("purge time blocks: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count purged time blocks: %w", err)
	}
	return int(affected), nil
}
