package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
)

func newAssignmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func assignmentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "student_id", "employee_id", "date", "start_time", "end_time", "requires_support", "location", "created_at", "updated_at"})
}

func TestAssignmentRepositoryCreateExclusive(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(employeeLockKey("emp-1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + assignmentColumns + " FROM student_schedules WHERE employee_id = $1 AND date = $2 ORDER BY start_time ASC")).
		WithArgs("emp-1", "2025-03-10").
		WillReturnRows(assignmentRows().AddRow("asn-1", "stu-1", "emp-1", "2025-03-10", "08:00", "09:00", false, nil, time.Now(), time.Now()))
	mock.ExpectExec("INSERT INTO student_schedules").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	var seen []models.Assignment
	assignment := &models.Assignment{StudentID: "stu-1", EmployeeID: "emp-1", Date: "2025-03-10", StartTime: "09:00", EndTime: "10:00"}
	err := repo.CreateExclusive(context.Background(), assignment, func(existing []models.Assignment) error {
		seen = existing
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, assignment.ID)
	require.Len(t, seen, 1)
	assert.Equal(t, "asn-1", seen[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCreateExclusiveCheckAborts(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(employeeLockKey("emp-1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + assignmentColumns + " FROM student_schedules WHERE employee_id = $1 AND date = $2 ORDER BY start_time ASC")).
		WithArgs("emp-1", "2025-03-10").
		WillReturnRows(assignmentRows())
	mock.ExpectRollback()

	conflict := errors.New("window taken")
	assignment := &models.Assignment{StudentID: "stu-1", EmployeeID: "emp-1", Date: "2025-03-10", StartTime: "09:00", EndTime: "10:00"}
	err := repo.CreateExclusive(context.Background(), assignment, func(existing []models.Assignment) error {
		return conflict
	})
	require.ErrorIs(t, err, conflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_schedules WHERE id = $1 AND employee_id = $2")).
		WithArgs("asn-1", "emp-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.Delete(context.Background(), "emp-1", "asn-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_schedules WHERE id = $1 AND employee_id = $2")).
		WithArgs("asn-missing", "emp-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err = repo.Delete(context.Background(), "emp-1", "asn-missing")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryListDetail(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "employee_id", "date", "start_time", "end_time", "requires_support", "location", "created_at", "updated_at", "student_name", "student_grade", "student_support_level"}).
		AddRow("asn-1", "stu-1", "emp-1", "2025-03-10", "09:00", "10:00", true, "Room 12", time.Now(), time.Now(), "Alex", "3", 2)
	mock.ExpectQuery("SELECT ss.id, ss.student_id, .+ JOIN students s ON s.id = ss.student_id").
		WithArgs("emp-1", "2025-03-10").
		WillReturnRows(rows)

	details, err := repo.ListDetailByEmployeeDate(context.Background(), "emp-1", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Alex", details[0].StudentName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
