package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
)

const employeeColumns = "id, name, email, role, schedule_type, default_start_time, default_end_time, daily_capacity_minutes, is_active, created_at, updated_at"

// EmployeeRepository manages persistence for the staff roster.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository constructs an EmployeeRepository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// List returns employees matching filters along with total count.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	base := "FROM employees WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "name"
	}
	allowedSorts := map[string]string{
		"name":       "name",
		"email":      "email",
		"role":       "role",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "name"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", employeeColumns, base, column, order, size, offset)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	return employees, total, nil
}

// ListAll returns every employee ordered by name, without pagination.
func (r *EmployeeRepository) ListAll(ctx context.Context) ([]models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees ORDER BY name ASC", employeeColumns)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

// ListActive returns every active employee ordered by name.
func (r *EmployeeRepository) ListActive(ctx context.Context) ([]models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE is_active = TRUE ORDER BY name ASC", employeeColumns)
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query); err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	return employees, nil
}

// ListByRole returns employees for a role, optionally restricted to active
// ones. Role "all" matches everyone.
func (r *EmployeeRepository) ListByRole(ctx context.Context, role string, activeOnly bool) ([]models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE 1=1", employeeColumns)
	var args []interface{}
	if role != models.PurgeRoleAll {
		query += " AND role = $1"
		args = append(args, role)
	}
	if activeOnly {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY name ASC"
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, fmt.Errorf("list employees by role: %w", err)
	}
	return employees, nil
}

// FindByID fetches an employee by ID.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE id = $1", employeeColumns)
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindByName fetches an employee by name, case-insensitively.
func (r *EmployeeRepository) FindByName(ctx context.Context, name string) (*models.Employee, error) {
	query := fmt.Sprintf("SELECT %s FROM employees WHERE LOWER(name) = LOWER($1)", employeeColumns)
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, name); err != nil {
		return nil, err
	}
	return &employee, nil
}

// ExistsByEmail checks if another employee uses the same email.
func (r *EmployeeRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM employees WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check employee email: %w", err)
	}
	return true, nil
}

// Create inserts a new employee record.
func (r *EmployeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now

	const query = `INSERT INTO employees (id, name, email, role, schedule_type, default_start_time, default_end_time, daily_capacity_minutes, is_active, created_at, updated_at)
		VALUES (:id, :name, :email, :role, :schedule_type, :default_start_time, :default_end_time, :daily_capacity_minutes, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// Update modifies an existing employee record.
func (r *EmployeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	employee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE employees SET name = :name, email = :email, role = :role, schedule_type = :schedule_type, default_start_time = :default_start_time, default_end_time = :default_end_time, daily_capacity_minutes = :daily_capacity_minutes, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, employee); err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

// UpsertByName inserts the employee or, when the name is already taken,
// refreshes the existing row. Used by the CSV import pipeline.
func (r *EmployeeRepository) UpsertByName(ctx context.Context, employee *models.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now

	const query = `INSERT INTO employees (id, name, email, role, schedule_type, default_start_time, default_end_time, daily_capacity_minutes, is_active, created_at, updated_at)
		VALUES (:id, :name, :email, :role, :schedule_type, :default_start_time, :default_end_time, :daily_capacity_minutes, :is_active, :created_at, :updated_at)
		ON CONFLICT (name) DO UPDATE SET
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			schedule_type = EXCLUDED.schedule_type,
			default_start_time = EXCLUDED.default_start_time,
			default_end_time = EXCLUDED.default_end_time,
			is_active = TRUE,
			updated_at = EXCLUDED.updated_at
		RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, employee)
	if err != nil {
		return fmt.Errorf("upsert employee: %w", err)
	}
	defer rows.Close() //nolint:errcheck
	if rows.Next() {
		if err := rows.Scan(&employee.ID); err != nil {
			return fmt.Errorf("scan upserted employee id: %w", err)
		}
	}
	return nil
}

// Deactivate sets an employee's active flag to false.
func (r *EmployeeRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE employees SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate employee: %w", err)
	}
	return nil
}

// DeactivateByRole marks employees for a role inactive and reports how many
// rows changed. Role "all" matches everyone.
func (r *EmployeeRepository) DeactivateByRole(ctx context.Context, role string) (int, error) {
	query := "UPDATE employees SET is_active = FALSE, updated_at = $1"
	args := []interface{}{time.Now().UTC()}
	if role != models.PurgeRoleAll {
		query += " WHERE role = $2"
		args = append(args, role)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deactivate employees by role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deactivated employees: %w", err)
	}
	return int(affected), nil
}

// DeleteByRole removes employee rows for a role. Dependent schedule data is
// expected to cascade at the database level.
func (r *EmployeeRepository) DeleteByRole(ctx context.Context, role string) (int, error) {
	query := "DELETE FROM employees"
	var args []interface{}
	if role != models.PurgeRoleAll {
		query += " WHERE role = $1"
		args = append(args, role)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete employees by role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted employees: %w", err)
	}
	return int(affected), nil
}
