package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffdeskhq/staffdesk-api/internal/dto"
	"github.com/staffdeskhq/staffdesk-api/internal/models"
	"github.com/staffdeskhq/staffdesk-api/internal/schedule"
	"github.com/staffdeskhq/staffdesk-api/pkg/config"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
)

type activeEmployeesStub struct {
	employees []models.Employee
	err       error
}

func (s *activeEmployeesStub) ListActive(ctx context.Context) ([]models.Employee, error) {
	return s.employees, s.err
}

type dayAvailabilityStub struct {
	windows []models.Availability
}

func (s *dayAvailabilityStub) ListByDay(ctx context.Context, dayOfWeek int) ([]models.Availability, error) {
	return s.windows, nil
}

type timeBlockRepoStub struct {
	blocks     map[string]*models.TimeBlock
	byDate     []models.TimeBlock
	exists     bool
	inserted   []models.TimeBlock
	updated    []*models.TimeBlock
	hourWrites []string
}

func (s *timeBlockRepoStub) ListByDate(ctx context.Context, date string) ([]models.TimeBlock, error) {
	return s.byDate, nil
}

func (s *timeBlockRepoStub) ListByEmployeeDate(ctx context.Context, employeeID, date string) ([]models.TimeBlock, error) {
	var out []models.TimeBlock
	for _, block := range s.byDate {
		if block.EmployeeID == employeeID && block.Date == date {
			out = append(out, block)
		}
	}
	return out, nil
}

func (s *timeBlockRepoStub) FindByID(ctx context.Context, id string) (*models.TimeBlock, error) {
	if block, ok := s.blocks[id]; ok {
		return block, nil
	}
	return nil, sql.ErrNoRows
}

func (s *timeBlockRepoStub) ExistsForDate(ctx context.Context, date string) (bool, error) {
	return s.exists, nil
}

func (s *timeBlockRepoStub) InsertBatch(ctx context.Context, blocks []models.TimeBlock) error {
	s.inserted = append(s.inserted, blocks...)
	return nil
}

func (s *timeBlockRepoStub) Update(ctx context.Context, block *models.TimeBlock) error {
	s.updated = append(s.updated, block)
	return nil
}

func (s *timeBlockRepoStub) SetHourActive(ctx context.Context, employeeID, date string, hour int, active bool) error {
	state := "off"
	if active {
		state = "on"
	}
	s.hourWrites = append(s.hourWrites, path.Join(employeeID, date, state))
	return nil
}

// memoryCacheRepo is an in-memory CacheRepository for exercising read-through
// behavior without Redis.
type memoryCacheRepo struct {
	values  map[string][]byte
	deletes []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{values: map[string][]byte{}}
}

func (r *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := r.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.values[key] = raw
	return nil
}

func (r *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	r.deletes = append(r.deletes, pattern)
	r.values = map[string][]byte{}
	return nil
}

func newScheduleFixture(cacheRepo *memoryCacheRepo) (*ScheduleService, *activeEmployeesStub, *dayAvailabilityStub, *timeBlockRepoStub) {
	employees := &activeEmployeesStub{}
	availability := &dayAvailabilityStub{}
	blocks := &timeBlockRepoStub{blocks: map[string]*models.TimeBlock{}}
	hours := schedule.Hours{Start: 6, End: 17, MinHours: 6, MaxHours: 8}
	cfg := config.ScheduleConfig{
		CacheEnabled:     cacheRepo != nil,
		CacheTTL:         5 * time.Minute,
		DefaultStartTime: "09:00",
		DefaultEndTime:   "17:00",
		MinimumStaff:     2,
	}
	var cache *CacheService
	if cacheRepo != nil {
		cache = NewCacheService(cacheRepo, nil, cfg.CacheTTL, nil, true)
	} else {
		cache = NewCacheService(nil, nil, cfg.CacheTTL, nil, false)
	}
	svc := NewScheduleService(employees, availability, blocks, cache, hours, cfg, nil)
	return svc, employees, availability, blocks
}

func TestDayScheduleGroupsBlocks(t *testing.T) {
	svc, employees, _, blocks := newScheduleFixture(nil)
	employees.employees = []models.Employee{{ID: "emp-1", Name: "Jane"}, {ID: "emp-2", Name: "Sam"}}
	blocks.byDate = []models.TimeBlock{
		{ID: "b1", EmployeeID: "emp-1", Date: "2025-03-10", StartTime: "09:00", EndTime: "12:00", IsActive: true},
	}

	day, err := svc.DaySchedule(context.Background(), "2025-03-10")
	require.NoError(t, err)
	require.Len(t, day.Employees, 2)
	assert.Len(t, day.Employees[0].Blocks, 1)
	assert.Empty(t, day.Employees[1].Blocks)
	assert.False(t, day.FromCache)
}

func TestDayScheduleUsesCache(t *testing.T) {
	cacheRepo := newMemoryCacheRepo()
	svc, employees, _, _ := newScheduleFixture(cacheRepo)
	employees.employees = []models.Employee{{ID: "emp-1", Name: "Jane"}}

	first, err := svc.DaySchedule(context.Background(), "2025-03-10")
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := svc.DaySchedule(context.Background(), "2025-03-10")
	require.NoError(t, err)
	assert.True(t, second.FromCache)
}

func TestDayScheduleRejectsBadDate(t *testing.T) {
	svc, _, _, _ := newScheduleFixture(nil)
	_, err := svc.DaySchedule(context.Background(), "03/10/2025")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestInitializeDayDefaultsAndAvailability(t *testing.T) {
	svc, employees, availability, blocks := newScheduleFixture(nil)
	employees.employees = []models.Employee{{ID: "emp-1"}, {ID: "emp-2"}}
	// 2025-03-10 is a Monday.
	availability.windows = []models.Availability{
		{EmployeeID: "emp-1", DayOfWeek: 1, StartTime: "07:00", EndTime: "13:00"},
	}

	result, err := svc.InitializeDay(context.Background(), "2025-03-10")
	require.NoError(t, err)
	assert.False(t, result.Skipped)
	assert.Equal(t, 2, result.EmployeeCount)
	assert.Equal(t, 2, result.BlocksCreated)

	require.Len(t, blocks.inserted, 2)
	assert.Equal(t, "07:00", blocks.inserted[0].StartTime)
	assert.Equal(t, "09:00", blocks.inserted[1].StartTime)
	assert.Equal(t, "17:00", blocks.inserted[1].EndTime)
	assert.True(t, blocks.inserted[1].IsActive)
}

func TestInitializeDayIdempotent(t *testing.T) {
	svc, _, _, blocks := newScheduleFixture(nil)
	blocks.exists = true

	result, err := svc.InitializeDay(context.Background(), "2025-03-10")
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, blocks.inserted)
}

func TestMoveBlockValidated(t *testing.T) {
	svc, employees, _, blocks := newScheduleFixture(nil)
	employees.employees = []models.Employee{{ID: "emp-1"}}
	blocks.byDate = []models.TimeBlock{
		{EmployeeID: "emp-1", Date: "2025-03-10", StartTime: "09:00", EndTime: "10:00", IsActive: true},
	}

	require.NoError(t, svc.MoveBlock(context.Background(), "2025-03-10", "emp-1", 9, 11))
	require.Len(t, blocks.hourWrites, 2)
	assert.Equal(t, "emp-1/2025-03-10/off", blocks.hourWrites[0])
	assert.Equal(t, "emp-1/2025-03-10/on", blocks.hourWrites[1])
}

func TestMoveBlockRejectsOutsideWindow(t *testing.T) {
	svc, employees, _, blocks := newScheduleFixture(nil)
	employees.employees = []models.Employee{{ID: "emp-1"}}

	err := svc.MoveBlock(context.Background(), "2025-03-10", "emp-1", 9, 18)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Empty(t, blocks.hourWrites)
}

func TestMoveBlockRejectsVacatedHourOutsideWindow(t *testing.T) {
	svc, employees, _, blocks := newScheduleFixture(nil)
	employees.employees = []models.Employee{{ID: "emp-1"}}

	err := svc.MoveBlock(context.Background(), "2025-03-10", "emp-1", 25, 9)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Empty(t, blocks.hourWrites)
}

func TestMoveBlockUnknownEmployee(t *testing.T) {
	svc, _, _, _ := newScheduleFixture(nil)

	err := svc.MoveBlock(context.Background(), "2025-03-10", "ghost", 9, 10)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestBatchUpdateStopsAtFirstRejection(t *testing.T) {
	svc, employees, _, blocks := newScheduleFixture(nil)
	employees.employees = []models.Employee{{ID: "emp-1"}}

	err := svc.BatchUpdate(context.Background(), "2025-03-10", []dto.BlockUpdate{
		{EmployeeID: "emp-1", Hour: 9, IsActive: true},
		{EmployeeID: "emp-1", Hour: 18, IsActive: true},
	})
	require.Error(t, err)
	// The first toggle landed before the rejection.
	assert.Len(t, blocks.hourWrites, 1)
}

func TestBatchUpdateRejectsDeactivationOutsideWindow(t *testing.T) {
	svc, employees, _, blocks := newScheduleFixture(nil)
	employees.employees = []models.Employee{{ID: "emp-1"}}

	err := svc.BatchUpdate(context.Background(), "2026-03-02", []dto.BlockUpdate{
		{EmployeeID: "emp-1", Hour: 25, IsActive: false},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
	assert.Empty(t, blocks.hourWrites)
}

func TestUpdateBlockRejectsOverlap(t *testing.T) {
	svc, _, _, blocks := newScheduleFixture(nil)
	blocks.blocks["b1"] = &models.TimeBlock{
		ID: "b1", EmployeeID: "emp-1", Date: "2025-03-10",
		StartTime: "09:00", EndTime: "10:00", BlockType: models.BlockTypeWork, IsActive: true,
	}
	blocks.byDate = []models.TimeBlock{
		*blocks.blocks["b1"],
		{ID: "b2", EmployeeID: "emp-1", Date: "2025-03-10", StartTime: "11:00", EndTime: "12:00", IsActive: true},
	}

	_, err := svc.UpdateBlock(context.Background(), "b1", UpdateTimeBlockRequest{
		StartTime: "10:30", EndTime: "11:30", BlockType: models.BlockTypeWork, IsActive: true,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
	assert.Empty(t, blocks.updated)
}

func TestUpdateBlockTouchingIsAllowed(t *testing.T) {
	svc, _, _, blocks := newScheduleFixture(nil)
	blocks.blocks["b1"] = &models.TimeBlock{
		ID: "b1", EmployeeID: "emp-1", Date: "2025-03-10",
		StartTime: "09:00", EndTime: "10:00", BlockType: models.BlockTypeWork, IsActive: true,
	}
	blocks.byDate = []models.TimeBlock{
		*blocks.blocks["b1"],
		{ID: "b2", EmployeeID: "emp-1", Date: "2025-03-10", StartTime: "11:00", EndTime: "12:00", IsActive: true},
	}

	updated, err := svc.UpdateBlock(context.Background(), "b1", UpdateTimeBlockRequest{
		StartTime: "10:00", EndTime: "11:00", BlockType: models.BlockTypeWork, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "10:00", updated.StartTime)
	require.Len(t, blocks.updated, 1)
}

func TestCoverageFlagsUnderstaffedHours(t *testing.T) {
	svc, employees, _, blocks := newScheduleFixture(nil)
	employees.employees = []models.Employee{{ID: "emp-1"}, {ID: "emp-2"}}
	blocks.byDate = []models.TimeBlock{
		{EmployeeID: "emp-1", Date: "2025-03-10", StartTime: "09:00", EndTime: "11:00", IsActive: true},
		{EmployeeID: "emp-2", Date: "2025-03-10", StartTime: "09:00", EndTime: "10:00", IsActive: true},
	}

	coverage, err := svc.Coverage(context.Background(), "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, 2, coverage.TotalStaff)
	assert.Equal(t, 2, coverage.MinimumStaff)

	byHour := map[int]int{}
	for _, h := range coverage.Hours {
		byHour[h.Hour] = h.ActiveStaff
	}
	assert.Equal(t, 2, byHour[9])
	assert.Equal(t, 1, byHour[10])
	assert.Contains(t, coverage.Understaffed, 10)
	assert.NotContains(t, coverage.Understaffed, 9)
}
