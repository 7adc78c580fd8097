package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
)

func newEmployeeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func employeeRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "role", "schedule_type", "default_start_time",
		"default_end_time", "daily_capacity_minutes", "is_active", "created_at", "updated_at",
	}).AddRow("emp-1", "Jane Doe", "jane@school.test", "teacher", "fixed", "08:00", "14:00", 360, true, time.Now(), time.Now())
}

func TestEmployeeRepositoryList(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + employeeColumns + " FROM employees WHERE 1=1 AND role = $1 ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WithArgs("teacher").
		WillReturnRows(employeeRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM employees WHERE 1=1 AND role = $1")).
		WithArgs("teacher").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.EmployeeFilter{Role: "teacher"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryListRejectsUnknownSort(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + employeeColumns + " FROM employees WHERE 1=1 ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(employeeRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM employees WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), models.EmployeeFilter{SortBy: "role; DROP TABLE employees"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryListByRoleAll(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + employeeColumns + " FROM employees WHERE 1=1 ORDER BY name ASC")).
		WillReturnRows(employeeRows())

	list, err := repo.ListByRole(context.Background(), models.PurgeRoleAll, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryListByRoleActiveOnly(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + employeeColumns + " FROM employees WHERE 1=1 AND role = $1 AND is_active = TRUE ORDER BY name ASC")).
		WithArgs("para-educator").
		WillReturnRows(employeeRows())

	_, err := repo.ListByRole(context.Background(), "para-educator", true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM employees WHERE LOWER(email) = LOWER($1) AND id <> $2 LIMIT 1")).
		WithArgs("jane@school.test", "emp-2").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "jane@school.test", "emp-2")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM employees WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("nobody@school.test").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsByEmail(context.Background(), "nobody@school.test", "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryCreateAndDeactivate(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectExec("INSERT INTO employees").
		WithArgs(sqlmock.AnyArg(), "Jane Doe", "jane@school.test", "teacher", "fixed",
			sqlmock.AnyArg(), sqlmock.AnyArg(), 360, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	employee := &models.Employee{
		Name:                 "Jane Doe",
		Email:                "jane@school.test",
		Role:                 "teacher",
		ScheduleType:         "fixed",
		DailyCapacityMinutes: 360,
		IsActive:             true,
	}
	require.NoError(t, repo.Create(context.Background(), employee))
	assert.NotEmpty(t, employee.ID)

	mock.ExpectExec("UPDATE employees SET is_active = FALSE").
		WithArgs("emp-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "emp-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryUpsertByName(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectQuery("INSERT INTO employees .+ ON CONFLICT \\(name\\) DO UPDATE SET").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("emp-existing"))

	employee := &models.Employee{Name: "Jane Doe", Email: "jane@school.test", Role: "teacher", ScheduleType: "fixed", IsActive: true}
	require.NoError(t, repo.UpsertByName(context.Background(), employee))
	assert.Equal(t, "emp-existing", employee.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryDeactivateByRole(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE employees SET is_active = FALSE, updated_at = $1 WHERE role = $2")).
		WithArgs(sqlmock.AnyArg(), "teacher").
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.DeactivateByRole(context.Background(), "teacher")
	require.NoError(t, err)
	assert.Equal(t, 3, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepositoryDeleteByRoleAll(t *testing.T) {
	db, mock, cleanup := newEmployeeRepoMock(t)
	defer cleanup()
	repo := NewEmployeeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees")).
		WillReturnResult(sqlmock.NewResult(0, 5))

	affected, err := repo.DeleteByRole(context.Background(), models.PurgeRoleAll)
	require.NoError(t, err)
	assert.Equal(t, 5, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
