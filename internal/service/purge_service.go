package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/staffdeskhq/staffdesk-api/internal/dto"
	"github.com/staffdeskhq/staffdesk-api/internal/models"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
	"github.com/staffdeskhq/staffdesk-api/pkg/jobs"
	"github.com/staffdeskhq/staffdesk-api/pkg/storage"
)

type purgeEmployeeRepository interface {
	ListByRole(ctx context.Context, role string, activeOnly bool) ([]models.Employee, error)
	DeactivateByRole(ctx context.Context, role string) (int, error)
	DeleteByRole(ctx context.Context, role string) (int, error)
}

type purgeAvailabilityRepository interface {
	ListByEmployee(ctx context.Context, employeeID string) ([]models.Availability, error)
	DeleteByEmployees(ctx context.Context, employeeIDs []string) (int, error)
}

type purgeRelatedRepository interface {
	DeleteByEmployees(ctx context.Context, employeeIDs []string) (int, error)
}

type purgeBlockRepository interface {
	purgeRelatedRepository
	ListByEmployees(ctx context.Context, employeeIDs []string) ([]models.TimeBlock, error)
}

type purgeAssignmentRepository interface {
	purgeRelatedRepository
	ListByEmployees(ctx context.Context, employeeIDs []string) ([]models.Assignment, error)
}

type purgeShiftRepository interface {
	purgeRelatedRepository
	ListByEmployees(ctx context.Context, employeeIDs []string) ([]models.Shift, error)
}

type purgeLogRepository interface {
	Create(ctx context.Context, entry *models.PurgeLog) error
	SetBackupFile(ctx context.Context, id, backupFile string) error
	List(ctx context.Context, filter models.PurgeLogFilter) ([]models.PurgeLog, error)
}

type backupStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type backupPayload struct {
	LogID   string
	RelPath string
	Data    []byte
}

type backupSnapshot struct {
	GeneratedAt  time.Time             `json:"generated_at"`
	Level        string                `json:"level"`
	Role         string                `json:"role"`
	Employees    []models.Employee     `json:"employees"`
	Availability []models.Availability `json:"availability"`
	TimeBlocks   []models.TimeBlock    `json:"time_blocks,omitempty"`
	Assignments  []models.Assignment   `json:"assignments,omitempty"`
	Shifts       []models.Shift        `json:"shifts,omitempty"`
}

// PurgeService performs escalating staff-data purges. A soft purge
// deactivates employees, a hard purge also removes their schedule data, and
// a complete purge deletes the employee records themselves. Backups are
// snapshotted in memory before any deletion and written to disk by a
// background worker, so the purge response never waits on the filesystem.
type PurgeService struct {
	employees    purgeEmployeeRepository
	availability purgeAvailabilityRepository
	blocks       purgeBlockRepository
	assignments  purgeAssignmentRepository
	shifts       purgeShiftRepository
	log          purgeLogRepository
	store        backupStore
	signer       *storage.SignedURLSigner
	cache        *CacheService
	queue        *jobs.Queue
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewPurgeService constructs a PurgeService and its backup worker queue.
func NewPurgeService(
	employees purgeEmployeeRepository,
	availability purgeAvailabilityRepository,
	blocks purgeBlockRepository,
	assignments purgeAssignmentRepository,
	shifts purgeShiftRepository,
	log purgeLogRepository,
	store backupStore,
	signer *storage.SignedURLSigner,
	cache *CacheService,
	workers, retries int,
	validate *validator.Validate,
	logger *zap.Logger,
) *PurgeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PurgeService{
		employees:    employees,
		availability: availability,
		blocks:       blocks,
		assignments:  assignments,
		shifts:       shifts,
		log:          log,
		store:        store,
		signer:       signer,
		cache:        cache,
		validator:    validate,
		logger:       logger,
	}
	s.queue = jobs.NewQueue("purge-backup", s.handleBackupJob, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: retries,
		Logger:     logger,
	})
	return s
}

// Start launches the backup worker pool.
func (s *PurgeService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop drains the backup workers.
func (s *PurgeService) Stop() { s.queue.Stop() }

// Purge executes a purge request and records it in the purge log.
func (s *PurgeService) Purge(ctx context.Context, req dto.PurgeRequest) (*dto.PurgeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	targets, err := s.employees.ListByRole(ctx, req.Role, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load purge targets")
	}

	var snapshot []byte
	if req.Backup {
		snapshot, err = s.snapshot(ctx, req, targets)
		if err != nil {
			return nil, err
		}
	}

	affected, err := s.execute(ctx, req, targets)
	if err != nil {
		return nil, err
	}
	s.invalidateScheduleCache(ctx)

	entry := &models.PurgeLog{
		PurgeLevel:      req.Level,
		Role:            req.Role,
		RecordsAffected: affected,
	}
	if req.InitiatedBy != "" {
		entry.InitiatedBy = &req.InitiatedBy
	}
	if err := s.log.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record purge")
	}

	response := &dto.PurgeResponse{
		Level:           req.Level,
		Role:            req.Role,
		RecordsAffected: affected,
	}

	if req.Backup {
		relPath := fmt.Sprintf("backups/purge-%s.json", entry.ID)
		token, expiresAt, err := s.signer.Generate(entry.ID, relPath)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign backup token")
		}
		if err := s.queue.Enqueue(jobs.Job{
			ID:      entry.ID,
			Type:    "purge_backup",
			Payload: backupPayload{LogID: entry.ID, RelPath: relPath, Data: snapshot},
		}); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue backup")
		}
		response.BackupQueued = true
		response.BackupToken = token
		response.BackupExpiresAt = &expiresAt
	}

	s.logger.Info("purge executed",
		zap.String("level", req.Level),
		zap.String("role", req.Role),
		zap.Int("records_affected", affected),
		zap.Bool("backup", req.Backup))
	return response, nil
}

// History returns purge log entries matching the filter, newest first.
func (s *PurgeService) History(ctx context.Context, filter models.PurgeLogFilter) ([]models.PurgeLog, error) {
	entries, err := s.log.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list purge history")
	}
	return entries, nil
}

// OpenBackup validates a signed token and returns the backup file.
func (s *PurgeService) OpenBackup(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid or expired backup token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "backup file not found")
	}
	return file, nil
}

func (s *PurgeService) snapshot(ctx context.Context, req dto.PurgeRequest, targets []models.Employee) ([]byte, error) {
	snap := backupSnapshot{
		GeneratedAt: time.Now().UTC(),
		Level:       req.Level,
		Role:        req.Role,
		Employees:   targets,
	}
	ids := make([]string, 0, len(targets))
	for _, employee := range targets {
		ids = append(ids, employee.ID)
		windows, err := s.availability.ListByEmployee(ctx, employee.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot availability")
		}
		snap.Availability = append(snap.Availability, windows...)
	}
	// Hard and complete purges delete schedule data, so capture it too.
	if req.Level != models.PurgeLevelSoft {
		var err error
		if snap.TimeBlocks, err = s.blocks.ListByEmployees(ctx, ids); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot time blocks")
		}
		if snap.Assignments, err = s.assignments.ListByEmployees(ctx, ids); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot assignments")
		}
		if snap.Shifts, err = s.shifts.ListByEmployees(ctx, ids); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot shifts")
		}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode backup")
	}
	return data, nil
}

func (s *PurgeService) execute(ctx context.Context, req dto.PurgeRequest, targets []models.Employee) (int, error) {
	ids := make([]string, 0, len(targets))
	for _, employee := range targets {
		ids = append(ids, employee.ID)
	}

	affected := 0
	switch req.Level {
	case models.PurgeLevelSoft:
		count, err := s.employees.DeactivateByRole(ctx, req.Role)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate employees")
		}
		affected += count
	case models.PurgeLevelHard, models.PurgeLevelComplete:
		for _, repo := range []purgeRelatedRepository{s.assignments, s.blocks, s.shifts, s.availability} {
			count, err := repo.DeleteByEmployees(ctx, ids)
			if err != nil {
				return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge schedule data")
			}
			affected += count
		}
		if req.Level == models.PurgeLevelComplete {
			count, err := s.employees.DeleteByRole(ctx, req.Role)
			if err != nil {
				return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete employees")
			}
			affected += count
		} else {
			count, err := s.employees.DeactivateByRole(ctx, req.Role)
			if err != nil {
				return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate employees")
			}
			affected += count
		}
	}
	return affected, nil
}

func (s *PurgeService) handleBackupJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(backupPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for job %s", job.ID)
	}
	if _, err := s.store.Save(payload.RelPath, payload.Data); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	if err := s.log.SetBackupFile(ctx, payload.LogID, payload.RelPath); err != nil {
		return fmt.Errorf("record backup: %w", err)
	}
	s.logger.Info("purge backup written", zap.String("log_id", payload.LogID), zap.String("file", payload.RelPath))
	return nil
}

func (s *PurgeService) invalidateScheduleCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "schedule:*"); err != nil {
		s.logger.Warn("schedule cache invalidation failed", zap.Error(err))
	}
}
