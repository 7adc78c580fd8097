package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
	"github.com/staffdeskhq/staffdesk-api/internal/schedule"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
)

type shiftRepository interface {
	List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, error)
	Create(ctx context.Context, shift *models.Shift) error
}

type shiftEmployeeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

// CreateShiftRequest records one flat shift entry.
type CreateShiftRequest struct {
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
	Date       string `json:"date" validate:"required"`
	StartTime  string `json:"start_time" validate:"required"`
	EndTime    string `json:"end_time" validate:"required"`
}

// ShiftService manages flat per-date shift records kept alongside the
// block-based schedule for reporting.
type ShiftService struct {
	repo      shiftRepository
	employees shiftEmployeeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewShiftService constructs a ShiftService.
func NewShiftService(repo shiftRepository, employees shiftEmployeeRepository, validate *validator.Validate, logger *zap.Logger) *ShiftService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftService{
		repo:      repo,
		employees: employees,
		validator: validate,
		logger:    logger,
	}
}

// List returns shifts matching the filter.
func (s *ShiftService) List(ctx context.Context, filter models.ShiftFilter) ([]models.Shift, error) {
	shifts, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shifts")
	}
	return shifts, nil
}

// Create records a shift after basic window validation.
func (s *ShiftService) Create(ctx context.Context, req CreateShiftRequest) (*models.Shift, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, use YYYY-MM-DD")
	}
	if !schedule.ValidClockTime(req.StartTime) || !schedule.ValidClockTime(req.EndTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid time format, use HH:MM (24-hour)")
	}
	if !schedule.ValidRange(req.StartTime, req.EndTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	if _, err := s.employees.FindByID(ctx, req.EmployeeID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}

	shift := &models.Shift{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}
	if err := s.repo.Create(ctx, shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shift")
	}
	return shift, nil
}
