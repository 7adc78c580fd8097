package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
	"github.com/staffdeskhq/staffdesk-api/internal/schedule"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error)
	FindByID(ctx context.Context, id string) (*models.Employee, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, employee *models.Employee) error
	Update(ctx context.Context, employee *models.Employee) error
	Deactivate(ctx context.Context, id string) error
}

type availabilityRepository interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]models.Availability, error)
	ReplaceForEmployee(ctx context.Context, employeeID string, windows []models.Availability) error
}

// CreateEmployeeRequest represents payload for adding staff.
type CreateEmployeeRequest struct {
	Name                 string  `json:"name" validate:"required"`
	Email                string  `json:"email" validate:"required,email"`
	Role                 string  `json:"role" validate:"required,oneof=teacher para-educator admin"`
	ScheduleType         string  `json:"schedule_type" validate:"required,oneof=fixed flexible"`
	DefaultStartTime     *string `json:"default_start_time"`
	DefaultEndTime       *string `json:"default_end_time"`
	DailyCapacityMinutes int     `json:"daily_capacity_minutes" validate:"omitempty,min=0,max=1440"`
}

// UpdateEmployeeRequest represents payload for editing staff.
type UpdateEmployeeRequest struct {
	Name                 string  `json:"name" validate:"required"`
	Email                string  `json:"email" validate:"required,email"`
	Role                 string  `json:"role" validate:"required,oneof=teacher para-educator admin"`
	ScheduleType         string  `json:"schedule_type" validate:"required,oneof=fixed flexible"`
	DefaultStartTime     *string `json:"default_start_time"`
	DefaultEndTime       *string `json:"default_end_time"`
	DailyCapacityMinutes *int    `json:"daily_capacity_minutes" validate:"omitempty,min=0,max=1440"`
	IsActive             *bool   `json:"is_active"`
}

// AvailabilityWindow is one entry of a weekly availability replacement.
type AvailabilityWindow struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// EmployeeService orchestrates roster operations.
type EmployeeService struct {
	repo         employeeRepository
	availability availabilityRepository
	hours        schedule.Hours
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(repo employeeRepository, availability availabilityRepository, hours schedule.Hours, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{repo: repo, availability: availability, hours: hours, validator: validate, logger: logger}
}

// List returns employees plus pagination data.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return employees, pagination, nil
}

// Get returns an employee by id.
func (s *EmployeeService) Get(ctx context.Context, id string) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return employee, nil
}

// Create registers a new employee record.
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}
	start, end, err := s.defaultTimes(req.ScheduleType, req.DefaultStartTime, req.DefaultEndTime)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}

	capacity := req.DailyCapacityMinutes
	if capacity <= 0 {
		capacity = 480
	}

	employee := &models.Employee{
		Name:                 strings.TrimSpace(req.Name),
		Email:                strings.TrimSpace(req.Email),
		Role:                 req.Role,
		ScheduleType:         req.ScheduleType,
		DefaultStartTime:     start,
		DefaultEndTime:       end,
		DailyCapacityMinutes: capacity,
		IsActive:             true,
	}

	if err := s.repo.Create(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}
	return employee, nil
}

// Update modifies an existing employee.
func (s *EmployeeService) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}

	start, end, err := s.defaultTimes(req.ScheduleType, req.DefaultStartTime, req.DefaultEndTime)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}

	employee.Name = strings.TrimSpace(req.Name)
	employee.Email = strings.TrimSpace(req.Email)
	employee.Role = req.Role
	employee.ScheduleType = req.ScheduleType
	employee.DefaultStartTime = start
	employee.DefaultEndTime = end
	if req.DailyCapacityMinutes != nil {
		employee.DailyCapacityMinutes = *req.DailyCapacityMinutes
	}
	if req.IsActive != nil {
		employee.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return employee, nil
}

// Deactivate marks an employee inactive.
func (s *EmployeeService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate employee")
	}
	return nil
}

// Availability returns an employee's weekly windows.
func (s *EmployeeService) Availability(ctx context.Context, id string) ([]models.Availability, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	windows, err := s.availability.ListByEmployee(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	return windows, nil
}

// ReplaceAvailability swaps an employee's weekly set after validating every
// window against time format, range and business hours.
func (s *EmployeeService) ReplaceAvailability(ctx context.Context, id string, windows []AvailabilityWindow) ([]models.Availability, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(windows))
	records := make([]models.Availability, 0, len(windows))
	for _, w := range windows {
		if err := s.validator.Struct(w); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability window")
		}
		if seen[w.DayOfWeek] {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate day_of_week in availability set")
		}
		seen[w.DayOfWeek] = true
		if err := s.validateWindow(w.StartTime, w.EndTime); err != nil {
			return nil, err
		}
		records = append(records, models.Availability{
			DayOfWeek: w.DayOfWeek,
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
		})
	}

	if err := s.availability.ReplaceForEmployee(ctx, id, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace availability")
	}

	saved, err := s.availability.ListByEmployee(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	return saved, nil
}

func (s *EmployeeService) validateWindow(start, end string) error {
	if !schedule.ValidClockTime(start) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid start time format, use HH:MM (24-hour)")
	}
	if !schedule.ValidClockTime(end) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid end time format, use HH:MM (24-hour)")
	}
	if !schedule.ValidRange(start, end) {
		return appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	if !s.hours.WithinBusinessHours(start, false) {
		return appErrors.Clone(appErrors.ErrValidation, "start time falls outside business hours")
	}
	if !s.hours.WithinBusinessHours(end, true) {
		return appErrors.Clone(appErrors.ErrValidation, "end time falls outside business hours")
	}
	return nil
}

// defaultTimes validates and normalizes the fixed-schedule default window.
// Flexible employees carry no defaults.
func (s *EmployeeService) defaultTimes(scheduleType string, start, end *string) (*string, *string, error) {
	if scheduleType != models.ScheduleTypeFixed {
		return nil, nil, nil
	}
	if start == nil || end == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "fixed schedules require default start and end times")
	}
	st := strings.TrimSpace(*start)
	en := strings.TrimSpace(*end)
	if err := s.validateWindow(st, en); err != nil {
		return nil, nil, err
	}
	return &st, &en, nil
}
