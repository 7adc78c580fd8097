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

const shiftColumns = "id, employee_id, date, start_time, end_time, created_at"

// ShiftRepository manages flat per-date shift records.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository constructs a ShiftRepository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// List returns shifts matching the filter, newest date first.
func (r *ShiftRepository) List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, error) {
	base := "FROM shifts WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)+1))
		args = append(args, filter.EmployeeID)
	}
	if filter.DateFrom != "" {
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, filter.DateTo)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY date DESC, start_time ASC", shiftColumns, base)
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query, args...); err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return shifts, nil
}

// Create inserts a new shift record.
func (r *ShiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	if shift.ID == "" {
		shift.ID = uuid.NewString()
	}
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO shifts (id, employee_id, date, start_time, end_time, created_at)
		VALUES (:id, :employee_id, :date, :start_time, :end_time, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}

// ListByEmployees returns all shifts belonging to the given employees.
// Used to snapshot schedule data before a purge.
func (r *ShiftRepository) ListByEmployees(ctx context.Context, employeeIDs []string) ([]models.Shift, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT "+shiftColumns+" FROM shifts WHERE employee_id IN (?)", employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("build shift snapshot: %w", err)
	}
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("snapshot shifts: %w", err)
	}
	return shifts, nil
}

// DeleteByEmployees removes shifts for the given employees.
func (r *ShiftRepository) DeleteByEmployees(ctx context.Context, employeeIDs []string) (int, error) {
	if len(employeeIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("DELETE FROM shifts WHERE employee_id IN (?)", employeeIDs)
	if err != nil {
		return 0, fmt.Errorf("build shift purge: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("purge shifts: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count purged shifts: %w", err)
	}
	return int(affected), nil
}
