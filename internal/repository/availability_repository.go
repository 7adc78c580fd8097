package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
)

const availabilityColumns = "id, employee_id, day_of_week, start_time, end_time, created_at, updated_at"

// AvailabilityRepository manages recurring weekly availability windows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an AvailabilityRepository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListByEmployee returns an employee's weekly windows ordered by weekday.
func (r *AvailabilityRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.Availability, error) {
	query := fmt.Sprintf("SELECT %s FROM employee_availability WHERE employee_id = $1 ORDER BY day_of_week ASC, start_time ASC", availabilityColumns)
	var windows []models.Availability
	if err := r.db.SelectContext(ctx, &windows, query, employeeID); err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	return windows, nil
}

// ListByDay returns every employee's window for one weekday.
func (r *AvailabilityRepository) ListByDay(ctx context.Context, dayOfWeek int) ([]models.Availability, error) {
	query := fmt.Sprintf("SELECT %s FROM employee_availability WHERE day_of_week = $1 ORDER BY employee_id ASC, start_time ASC", availabilityColumns)
	var windows []models.Availability
	if err := r.db.SelectContext(ctx, &windows, query, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list availability by day: %w", err)
	}
	return windows, nil
}

// Upsert writes one window keyed on (employee_id, day_of_week).
func (r *AvailabilityRepository) Upsert(ctx context.Context, window *models.Availability) error {
	if window.ID == "" {
		window.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if window.CreatedAt.IsZero() {
		window.CreatedAt = now
	}
	window.UpdatedAt = now

	const query = `INSERT INTO employee_availability (id, employee_id, day_of_week, start_time, end_time, created_at, updated_at)
		VALUES (:id, :employee_id, :day_of_week, :start_time, :end_time, :created_at, :updated_at)
		ON CONFLICT (employee_id, day_of_week) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, window); err != nil {
		return fmt.Errorf("upsert availability: %w", err)
	}
	return nil
}

// ReplaceForEmployee swaps an employee's full weekly set in one transaction.
func (r *AvailabilityRepository) ReplaceForEmployee(ctx context.Context, employeeID string, windows []models.Availability) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin availability replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM employee_availability WHERE employee_id = $1", employeeID); err != nil {
		return fmt.Errorf("clear availability: %w", err)
	}

	now := time.Now().UTC()
	for i := range windows {
		windows[i].EmployeeID = employeeID
		if windows[i].ID == "" {
			windows[i].ID = uuid.NewString()
		}
		windows[i].CreatedAt = now
		windows[i].UpdatedAt = now
		const query = `INSERT INTO employee_availability (id, employee_id, day_of_week, start_time, end_time, created_at, updated_at)
			VALUES (:id, :employee_id, :day_of_week, :start_time, :end_time, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, windows[i]); err != nil {
			return fmt.Errorf("insert availability: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit availability replace: %w", err)
	}
	return nil
}

// DeleteByEmployee removes all windows for an employee.
func (r *AvailabilityRepository) DeleteByEmployee(ctx context.Context, employeeID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM employee_availability WHERE employee_id = $1", employeeID); err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	return nil
}

// DeleteByEmployees removes windows for the given employees.
func (r *AvailabilityRepository) DeleteByEmployees(ctx context.Context, employeeIDs []string) (int, error) {
	if len(employeeIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("DELETE FROM employee_availability WHERE employee_id IN (?)", employeeIDs)
	if err != nil {
		return 0, fmt.Errorf("build availability purge: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("purge availability: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count purged availability: %w", err)
	}
	return int(affected), nil
}
