package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
	"github.com/staffdeskhq/staffdesk-api/internal/schedule"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
)

type assignmentRepository interface {
	ListByEmployeeDate(ctx context.Context, employeeID, date string) ([]models.Assignment, error)
	ListDetailByEmployeeDate(ctx context.Context, employeeID, date string) ([]models.AssignmentDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Assignment, error)
	CreateExclusive(ctx context.Context, assignment *models.Assignment, check func(existing []models.Assignment) error) error
	Delete(ctx context.Context, employeeID, assignmentID string) (bool, error)
}

type assignmentEmployeeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Employee, error)
}

type assignmentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// CreateAssignmentRequest binds a student to a para-educator's day.
type CreateAssignmentRequest struct {
	StudentID       string  `json:"student_id" validate:"required,uuid"`
	Date            string  `json:"date" validate:"required"`
	StartTime       string  `json:"start_time" validate:"required"`
	EndTime         string  `json:"end_time" validate:"required"`
	RequiresSupport bool    `json:"requires_support"`
	Location        *string `json:"location,omitempty" validate:"omitempty,max=120"`
}

// AssignmentService manages para-educator student assignments. Overlap
// exclusion is enforced inside the repository's locked transaction so two
// concurrent writers cannot both pass the check.
type AssignmentService struct {
	repo      assignmentRepository
	employees assignmentEmployeeRepository
	students  assignmentStudentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, employees assignmentEmployeeRepository, students assignmentStudentRepository, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		repo:      repo,
		employees: employees,
		students:  students,
		validator: validate,
		logger:    logger,
	}
}

// ListForDay returns a para-educator's assignments for one date, with the
// student joined in, ordered by start time.
func (s *AssignmentService) ListForDay(ctx context.Context, employeeID, date string) ([]models.AssignmentDetail, error) {
	if _, err := s.paraEducator(ctx, employeeID); err != nil {
		return nil, err
	}
	assignments, err := s.repo.ListDetailByEmployeeDate(ctx, employeeID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// ListForStudent returns every assignment referencing a student.
func (s *AssignmentService) ListForStudent(ctx context.Context, studentID string) ([]models.Assignment, error) {
	assignments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Create adds an assignment, rejecting any window that overlaps one the
// employee already has on that date.
func (s *AssignmentService) Create(ctx context.Context, employeeID string, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if !schedule.ValidClockTime(req.StartTime) || !schedule.ValidClockTime(req.EndTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid time format, use HH:MM (24-hour)")
	}
	if !schedule.ValidRange(req.StartTime, req.EndTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}

	if _, err := s.paraEducator(ctx, employeeID); err != nil {
		return nil, err
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	assignment := &models.Assignment{
		StudentID:       req.StudentID,
		EmployeeID:      employeeID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		RequiresSupport: req.RequiresSupport,
		Location:        req.Location,
	}

	candidate := schedule.Interval{Start: req.StartTime, End: req.EndTime}
	err := s.repo.CreateExclusive(ctx, assignment, func(existing []models.Assignment) error {
		intervals := make([]schedule.Interval, 0, len(existing))
		for _, current := range existing {
			intervals = append(intervals, schedule.Interval{Start: current.StartTime, End: current.EndTime})
		}
		if conflict := schedule.FirstOverlap(candidate, intervals); conflict != nil {
			return appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("assignment overlaps existing %s-%s window", conflict.Start, conflict.End))
		}
		return nil
	})
	if err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}

	s.logger.Info("assignment created",
		zap.String("employee_id", employeeID),
		zap.String("student_id", req.StudentID),
		zap.String("date", req.Date))
	return assignment, nil
}

// Delete removes one assignment scoped to its employee.
func (s *AssignmentService) Delete(ctx context.Context, employeeID, assignmentID string) error {
	deleted, err := s.repo.Delete(ctx, employeeID, assignmentID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return nil
}

func (s *AssignmentService) paraEducator(ctx context.Context, employeeID string) (*models.Employee, error) {
	employee, err := s.employees.FindByID(ctx, employeeID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
	}
	if employee.Role != models.RoleParaEducator {
		return nil, appErrors.Clone(appErrors.ErrValidation, "employee is not a para-educator")
	}
	return employee, nil
}
