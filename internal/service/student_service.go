package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) (bool, error)
}

type studentAssignmentRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Assignment, error)
}

// CreateStudentRequest carries the payload for creating a student.
type CreateStudentRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=120"`
	Grade        string `json:"grade" validate:"required,max=20"`
	SupportLevel int    `json:"support_level" validate:"required,min=1,max=3"`
}

// UpdateStudentRequest carries partial updates for a student.
type UpdateStudentRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Grade        *string `json:"grade,omitempty" validate:"omitempty,max=20"`
	SupportLevel *int    `json:"support_level,omitempty" validate:"omitempty,min=1,max=3"`
}

// StudentService manages the student roster.
type StudentService struct {
	repo        studentRepository
	assignments studentAssignmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, assignments studentAssignmentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:        repo,
		assignments: assignments,
		validator:   validate,
		logger:      logger,
	}
}

// List returns all students ordered by name.
func (s *StudentService) List(ctx context.Context) ([]models.Student, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Get returns one student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create adds a student.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	student := &models.Student{
		Name:         req.Name,
		Grade:        req.Grade,
		SupportLevel: req.SupportLevel,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.logger.Info("student created", zap.String("student_id", student.ID))
	return student, nil
}

// Update applies partial changes to a student.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Grade != nil {
		student.Grade = *req.Grade
	}
	if req.SupportLevel != nil {
		student.SupportLevel = *req.SupportLevel
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student unless assignments still reference them.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	assignments, err := s.assignments.ListByStudent(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignments")
	}
	if len(assignments) > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "student has active assignments")
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}
