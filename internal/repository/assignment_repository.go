package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
)

const assignmentColumns = "id, student_id, employee_id, date, start_time, end_time, requires_support, location, created_at, updated_at"

// AssignmentRepository manages para-educator student-support assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByEmployeeDate returns one employee's assignments for a date.
func (r *AssignmentRepository) ListByEmployeeDate(ctx context.Context, employeeID, date string) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM student_schedules WHERE employee_id = $1 AND date = $2 ORDER BY start_time ASC", assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, employeeID, date); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

// ListDetailByEmployeeDate joins student info onto an employee's assignments.
func (r *AssignmentRepository) ListDetailByEmployeeDate(ctx context.Context, employeeID, date string) ([]models.AssignmentDetail, error) {
	const query = `SELECT ss.id, ss.student_id, ss.employee_id, ss.date, ss.start_time, ss.end_time, ss.requires_support, ss.location, ss.created_at, ss.updated_at,
			s.name AS student_name, s.grade AS student_grade, s.support_level AS student_support_level
		FROM student_schedules ss
		JOIN students s ON s.id = ss.student_id
		WHERE ss.employee_id = $1 AND ss.date = $2
		ORDER BY ss.start_time ASC`
	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, employeeID, date); err != nil {
		return nil, fmt.Errorf("list assignment details: %w", err)
	}
	return details, nil
}

// ListByStudent returns a student's assignments ordered by date and time.
func (r *AssignmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Assignment, error) {
	query := fmt.Sprintf("SELECT %s FROM student_schedules WHERE student_id = $1 ORDER BY date ASC, start_time ASC", assignmentColumns)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, studentID); err != nil {
		return nil, fmt.Errorf("list student assignments: %w", err)
	}
	return assignments, nil
}

// CreateExclusive inserts the assignment inside one transaction that holds a
// per-employee advisory lock while existing same-date windows are re-read.
// The caller's overlap check runs between lock and insert via the check
// callback, so two racing bookings for the same employee serialize instead
// of both passing a stale read.
func (r *AssignmentRepository) CreateExclusive(ctx context.Context, assignment *models.Assignment, check func(existing []models.Assignment) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", employeeLockKey(assignment.EmployeeID)); err != nil {
		return fmt.Errorf("acquire employee lock: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM student_schedules WHERE employee_id = $1 AND date = $2 ORDER BY start_time ASC", assignmentColumns)
	var existing []models.Assignment
	if err := tx.SelectContext(ctx, &existing, query, assignment.EmployeeID, assignment.Date); err != nil {
		return fmt.Errorf("read existing assignments: %w", err)
	}

	if check != nil {
		if err := check(existing); err != nil {
			return err
		}
	}

	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	const insert = `INSERT INTO student_schedules (id, student_id, employee_id, date, start_time, end_time, requires_support, location, created_at, updated_at)
		VALUES (:id, :student_id, :employee_id, :date, :start_time, :end_time, :requires_support, :location, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, assignment); err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assignment insert: %w", err)
	}
	return nil
}

// Delete removes one assignment scoped to its employee.
func (r *AssignmentRepository) Delete(ctx context.Context, employeeID, assignmentID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM student_schedules WHERE id = $1 AND employee_id = $2", assignmentID, employeeID)
	if err != nil {
		return false, fmt.Errorf("delete assignment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("count deleted assignments: %w", err)
	}
	return affected > 0, nil
}

// ListByEmployees returns all assignments belonging to the given employees.
// Used to snapshot schedule data before a purge.
func (r *AssignmentRepository) ListByEmployees(ctx context.Context, employeeIDs []string) ([]models.Assignment, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT "+assignmentColumns+" FROM student_schedules WHERE employee_id IN (?)", employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("build assignment snapshot: %w", err)
	}
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("snapshot assignments: %w", err)
	}
	return assignments, nil
}

// DeleteByEmployees removes assignments for the given employees.
func (r *AssignmentRepository) DeleteByEmployees(ctx context.Context, employeeIDs []string) (int, error) {
	if len(employeeIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In("DELETE FROM student_schedules WHERE employee_id IN (?)", employeeIDs)
	if err != nil {
		return 0, fmt.Errorf("build assignment purge: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("purge assignments: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count purged assignments: %w", err)
	}
	return int(affected), nil
}

// employeeLockKey folds an employee UUID into the int64 keyspace used by
// pg_advisory_xact_lock.
func employeeLockKey(employeeID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(employeeID))
	return int64(h.Sum64())
}
