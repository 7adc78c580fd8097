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

func newTimeBlockRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimeBlockRepositoryListByDate(t *testing.T) {
	db, mock, cleanup := newTimeBlockRepoMock(t)
	defer cleanup()
	repo := NewTimeBlockRepository(db)

	rows := sqlmock.NewRows([]string{"id", "employee_id", "date", "start_time", "end_time", "block_type", "is_active", "created_at", "updated_at"}).
		AddRow("blk-1", "emp-1", "2025-03-10", "09:00", "10:00", "work", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + timeBlockColumns + " FROM time_blocks WHERE date = $1 ORDER BY employee_id ASC, start_time ASC")).
		WithArgs("2025-03-10").
		WillReturnRows(rows)

	blocks, err := repo.ListByDate(context.Background(), "2025-03-10")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "emp-1", blocks[0].EmployeeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeBlockRepositoryExistsForDate(t *testing.T) {
	db, mock, cleanup := newTimeBlockRepoMock(t)
	defer cleanup()
	repo := NewTimeBlockRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM time_blocks WHERE date = $1 LIMIT 1")).
		WithArgs("2025-03-10").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	exists, err := repo.ExistsForDate(context.Background(), "2025-03-10")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM time_blocks WHERE date = $1 LIMIT 1")).
		WithArgs("2025-03-11").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	exists, err = repo.ExistsForDate(context.Background(), "2025-03-11")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeBlockRepositoryInsertBatch(t *testing.T) {
	db, mock, cleanup := newTimeBlockRepoMock(t)
	defer cleanup()
	repo := NewTimeBlockRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO time_blocks").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO time_blocks").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	blocks := []models.TimeBlock{
		{EmployeeID: "emp-1", Date: "2025-03-10", StartTime: "08:00", EndTime: "14:00", BlockType: models.BlockTypeWork, IsActive: true},
		{EmployeeID: "emp-2", Date: "2025-03-10", StartTime: "09:00", EndTime: "17:00", BlockType: models.BlockTypeWork, IsActive: true},
	}
	require.NoError(t, repo.InsertBatch(context.Background(), blocks))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeBlockRepositoryInsertBatchEmpty(t *testing.T) {
	db, mock, cleanup := newTimeBlockRepoMock(t)
	defer cleanup()
	repo := NewTimeBlockRepository(db)

	require.NoError(t, repo.InsertBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeBlockRepositorySetHourActiveUpdatesExisting(t *testing.T) {
	db, mock, cleanup := newTimeBlockRepoMock(t)
	defer cleanup()
	repo := NewTimeBlockRepository(db)

	mock.ExpectExec("UPDATE time_blocks SET is_active").
		WithArgs(true, sqlmock.AnyArg(), "emp-1", "2025-03-10", "09:00", "10:00").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetHourActive(context.Background(), "emp-1", "2025-03-10", 9, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeBlockRepositorySetHourActiveInsertsMissingSlot(t *testing.T) {
	db, mock, cleanup := newTimeBlockRepoMock(t)
	defer cleanup()
	repo := NewTimeBlockRepository(db)

	mock.ExpectExec("UPDATE time_blocks SET is_active").
		WithArgs(true, sqlmock.AnyArg(), "emp-1", "2025-03-10", "16:00", "17:00").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO time_blocks").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SetHourActive(context.Background(), "emp-1", "2025-03-10", 16, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeBlockRepositorySetHourActiveDeactivateMissingSlotIsNoop(t *testing.T) {
	db, mock, cleanup := newTimeBlockRepoMock(t)
	defer cleanup()
	repo := NewTimeBlockRepository(db)

	mock.ExpectExec("UPDATE time_blocks SET is_active").
		WithArgs(false, sqlmock.AnyArg(), "emp-1", "2025-03-10", "16:00", "17:00").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.SetHourActive(context.Background(), "emp-1", "2025-03-10", 16, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeBlockRepositoryListByEmployees(t *testing.T) {
	db, mock, cleanup := newTimeBlockRepoMock(t)
	defer cleanup()
	repo := NewTimeBlockRepository(db)

	rows := sqlmock.NewRows([]string{"id", "employee_id", "date", "start_time", "end_time", "block_type", "is_active", "created_at", "updated_at"}).
		AddRow("blk-1", "emp-1", "2025-03-10", "09:00", "10:00", "work", true, time.Now(), time.Now()).
		AddRow("blk-2", "emp-2", "2025-03-10", "10:00", "11:00", "work", true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT .+ FROM time_blocks WHERE employee_id IN").
		WithArgs("emp-1", "emp-2").
		WillReturnRows(rows)

	blocks, err := repo.ListByEmployees(context.Background(), []string{"emp-1", "emp-2"})
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "blk-2", blocks[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())

	blocks, err = repo.ListByEmployees(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestTimeBlockRepositoryDeleteByEmployees(t *testing.T) {
	db, mock, cleanup := newTimeBlockRepoMock(t)
	defer cleanup()
	repo := NewTimeBlockRepository(db)

	mock.ExpectExec("DELETE FROM time_blocks WHERE employee_id IN").
		WithArgs("emp-1", "emp-2").
		WillReturnResult(sqlmock.NewResult(0, 4))

	affected, err := repo.DeleteByEmployees(context.Background(), []string{"emp-1", "emp-2"})
	require.NoError(t, err)
	assert.Equal(t, 4, affected)
	assert.NoError(t, mock.ExpectationsWereMet())

	affected, err = repo.DeleteByEmployees(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, affected)
}
