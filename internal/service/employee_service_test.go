package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
	"github.com/staffdeskhq/staffdesk-api/internal/schedule"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
)

type employeeRepoStub struct {
	employees   map[string]*models.Employee
	listItems   []models.Employee
	listTotal   int
	emailExists bool
	created     []*models.Employee
	updated     []*models.Employee
	deactivated []string
	listErr     error
	createErr   error
}

func (s *employeeRepoStub) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	return s.listItems, s.listTotal, s.listErr
}

func (s *employeeRepoStub) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	if employee, ok := s.employees[id]; ok {
		return employee, nil
	}
	return nil, sql.ErrNoRows
}

func (s *employeeRepoStub) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return s.emailExists, nil
}

func (s *employeeRepoStub) Create(ctx context.Context, employee *models.Employee) error {
	if s.createErr != nil {
		return s.createErr
	}
	employee.ID = "emp-created"
	s.created = append(s.created, employee)
	return nil
}

func (s *employeeRepoStub) Update(ctx context.Context, employee *models.Employee) error {
	s.updated = append(s.updated, employee)
	return nil
}

func (s *employeeRepoStub) Deactivate(ctx context.Context, id string) error {
	s.deactivated = append(s.deactivated, id)
	return nil
}

type availabilityRepoStub struct {
	windows  []models.Availability
	replaced [][]models.Availability
	listErr  error
}

func (s *availabilityRepoStub) ListByEmployee(ctx context.Context, employeeID string) ([]models.Availability, error) {
	return s.windows, s.listErr
}

func (s *availabilityRepoStub) ReplaceForEmployee(ctx context.Context, employeeID string, windows []models.Availability) error {
	s.replaced = append(s.replaced, windows)
	return nil
}

func newEmployeeFixture() (*EmployeeService, *employeeRepoStub, *availabilityRepoStub) {
	repo := &employeeRepoStub{employees: map[string]*models.Employee{}}
	availability := &availabilityRepoStub{}
	hours := schedule.Hours{Start: 6, End: 17, MinHours: 6, MaxHours: 8}
	return NewEmployeeService(repo, availability, hours, nil, nil), repo, availability
}

func strPtr(s string) *string { return &s }

func TestEmployeeCreateFixed(t *testing.T) {
	svc, repo, _ := newEmployeeFixture()

	employee, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Name:             " Jane Doe ",
		Email:            "jane@example.org",
		Role:             models.RoleTeacher,
		ScheduleType:     models.ScheduleTypeFixed,
		DefaultStartTime: strPtr("08:00"),
		DefaultEndTime:   strPtr("15:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", employee.Name)
	assert.Equal(t, 480, employee.DailyCapacityMinutes)
	assert.True(t, employee.IsActive)
	require.Len(t, repo.created, 1)
}

func TestEmployeeCreateFixedRequiresDefaults(t *testing.T) {
	svc, repo, _ := newEmployeeFixture()

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Name:         "Jane Doe",
		Email:        "jane@example.org",
		Role:         models.RoleTeacher,
		ScheduleType: models.ScheduleTypeFixed,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Empty(t, repo.created)
}

func TestEmployeeCreateRejectsOutsideBusinessHours(t *testing.T) {
	svc, _, _ := newEmployeeFixture()

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Name:             "Jane Doe",
		Email:            "jane@example.org",
		Role:             models.RoleTeacher,
		ScheduleType:     models.ScheduleTypeFixed,
		DefaultStartTime: strPtr("05:00"),
		DefaultEndTime:   strPtr("15:00"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "business hours")
}

func TestEmployeeCreateDuplicateEmail(t *testing.T) {
	svc, repo, _ := newEmployeeFixture()
	repo.emailExists = true

	_, err := svc.Create(context.Background(), CreateEmployeeRequest{
		Name:         "Jane Doe",
		Email:        "jane@example.org",
		Role:         models.RoleAdmin,
		ScheduleType: models.ScheduleTypeFlexible,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusConflict, appErr.Status)
}

func TestEmployeeUpdateNotFound(t *testing.T) {
	svc, _, _ := newEmployeeFixture()

	_, err := svc.Update(context.Background(), "missing", UpdateEmployeeRequest{
		Name:         "Jane Doe",
		Email:        "jane@example.org",
		Role:         models.RoleTeacher,
		ScheduleType: models.ScheduleTypeFlexible,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestEmployeeUpdateFlexibleDropsDefaults(t *testing.T) {
	svc, repo, _ := newEmployeeFixture()
	repo.employees["emp-1"] = &models.Employee{
		ID:               "emp-1",
		Name:             "Jane Doe",
		Email:            "jane@example.org",
		Role:             models.RoleTeacher,
		ScheduleType:     models.ScheduleTypeFixed,
		DefaultStartTime: strPtr("08:00"),
		DefaultEndTime:   strPtr("15:00"),
		IsActive:         true,
	}

	updated, err := svc.Update(context.Background(), "emp-1", UpdateEmployeeRequest{
		Name:         "Jane Doe",
		Email:        "jane@example.org",
		Role:         models.RoleTeacher,
		ScheduleType: models.ScheduleTypeFlexible,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DefaultStartTime)
	assert.Nil(t, updated.DefaultEndTime)
	require.Len(t, repo.updated, 1)
}

func TestEmployeeDeactivate(t *testing.T) {
	svc, repo, _ := newEmployeeFixture()
	repo.employees["emp-1"] = &models.Employee{ID: "emp-1", IsActive: true}

	require.NoError(t, svc.Deactivate(context.Background(), "emp-1"))
	assert.Equal(t, []string{"emp-1"}, repo.deactivated)

	err := svc.Deactivate(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestReplaceAvailabilityRejectsDuplicateDay(t *testing.T) {
	svc, repo, availability := newEmployeeFixture()
	repo.employees["emp-1"] = &models.Employee{ID: "emp-1"}

	_, err := svc.ReplaceAvailability(context.Background(), "emp-1", []AvailabilityWindow{
		{DayOfWeek: 1, StartTime: "08:00", EndTime: "12:00"},
		{DayOfWeek: 1, StartTime: "13:00", EndTime: "15:00"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate day_of_week")
	assert.Empty(t, availability.replaced)
}

func TestReplaceAvailabilityValidatesWindows(t *testing.T) {
	svc, repo, availability := newEmployeeFixture()
	repo.employees["emp-1"] = &models.Employee{ID: "emp-1"}

	_, err := svc.ReplaceAvailability(context.Background(), "emp-1", []AvailabilityWindow{
		{DayOfWeek: 1, StartTime: "15:00", EndTime: "08:00"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end time must be after start time")
	assert.Empty(t, availability.replaced)
}

func TestReplaceAvailabilityStoresWindows(t *testing.T) {
	svc, repo, availability := newEmployeeFixture()
	repo.employees["emp-1"] = &models.Employee{ID: "emp-1"}
	availability.windows = []models.Availability{{EmployeeID: "emp-1", DayOfWeek: 1, StartTime: "08:00", EndTime: "12:00"}}

	saved, err := svc.ReplaceAvailability(context.Background(), "emp-1", []AvailabilityWindow{
		{DayOfWeek: 1, StartTime: "08:00", EndTime: "12:00"},
	})
	require.NoError(t, err)
	require.Len(t, availability.replaced, 1)
	assert.Equal(t, 1, availability.replaced[0][0].DayOfWeek)
	require.Len(t, saved, 1)
}
