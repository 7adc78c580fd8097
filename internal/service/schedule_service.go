package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/staffdeskhq/staffdesk-api/internal/dto"
	"github.com/staffdeskhq/staffdesk-api/internal/models"
	"github.com/staffdeskhq/staffdesk-api/internal/schedule"
	"github.com/staffdeskhq/staffdesk-api/pkg/config"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type scheduleEmployeeRepository interface {
	ListActive(ctx context.Context) ([]models.Employee, error)
}

type scheduleAvailabilityRepository interface {
	ListByDay(ctx context.Context, dayOfWeek int) ([]models.Availability, error)
}

type timeBlockRepository interface {
	ListByDate(ctx context.Context, date string) ([]models.TimeBlock, error)
	ListByEmployeeDate(ctx context.Context, employeeID, date string) ([]models.TimeBlock, error)
	FindByID(ctx context.Context, id string) (*models.TimeBlock, error)
	ExistsForDate(ctx context.Context, date string) (bool, error)
	InsertBatch(ctx context.Context, blocks []models.TimeBlock) error
	Update(ctx context.Context, block *models.TimeBlock) error
	SetHourActive(ctx context.Context, employeeID, date string, hour int, active bool) error
}

// UpdateTimeBlockRequest rewrites one block's window and state.
type UpdateTimeBlockRequest struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	BlockType string `json:"block_type" validate:"required,oneof=work break lunch"`
	IsActive  bool   `json:"is_active"`
}

// ScheduleService is the server-side day-schedule read model plus its
// mutation facade. Reads go through a Redis cache keyed by date; local
// state is only ever refreshed after the database write succeeds.
type ScheduleService struct {
	employees    scheduleEmployeeRepository
	availability scheduleAvailabilityRepository
	blocks       timeBlockRepository
	cache        *CacheService
	hours        schedule.Hours
	cfg          config.ScheduleConfig
	logger       *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(employees scheduleEmployeeRepository, availability scheduleAvailabilityRepository, blocks timeBlockRepository, cache *CacheService, hours schedule.Hours, cfg config.ScheduleConfig, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		employees:    employees,
		availability: availability,
		blocks:       blocks,
		cache:        cache,
		hours:        hours,
		cfg:          cfg,
		logger:       logger,
	}
}

func dayScheduleKey(date string) string { return "schedule:day:" + date }
func coverageKey(date string) string    { return "schedule:coverage:" + date }

// DaySchedule returns active employees with their blocks for one date.
func (s *ScheduleService) DaySchedule(ctx context.Context, date string) (*dto.DayScheduleResponse, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, use YYYY-MM-DD")
	}

	var cached dto.DayScheduleResponse
	if hit, _ := s.cache.Get(ctx, dayScheduleKey(date), &cached); hit {
		cached.FromCache = true
		return &cached, nil
	}

	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	blocks, err := s.blocks.ListByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time blocks")
	}

	byEmployee := make(map[string][]models.TimeBlock, len(employees))
	for _, block := range blocks {
		byEmployee[block.EmployeeID] = append(byEmployee[block.EmployeeID], block)
	}

	response := &dto.DayScheduleResponse{Date: date, Employees: make([]dto.EmployeeDaySchedule, 0, len(employees))}
	for _, employee := range employees {
		entry := dto.EmployeeDaySchedule{Employee: employee, Blocks: byEmployee[employee.ID]}
		if entry.Blocks == nil {
			entry.Blocks = []models.TimeBlock{}
		}
		response.Employees = append(response.Employees, entry)
	}

	_ = s.cache.Set(ctx, dayScheduleKey(date), response, s.cfg.CacheTTL)
	return response, nil
}

// InitializeDay materializes work blocks for a date from each active
// employee's recurring availability, defaulting when none exists. Running
// it twice for the same date is a no-op.
func (s *ScheduleService) InitializeDay(ctx context.Context, date string) (*dto.InitializeDayResult, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, use YYYY-MM-DD")
	}

	exists, err := s.blocks.ExistsForDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing blocks")
	}
	if exists {
		return &dto.InitializeDayResult{Date: date, Skipped: true}, nil
	}

	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	windows, err := s.availability.ListByDay(ctx, int(day.Weekday()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}

	byEmployee := make(map[string][]models.Availability, len(employees))
	for _, window := range windows {
		byEmployee[window.EmployeeID] = append(byEmployee[window.EmployeeID], window)
	}

	var blocks []models.TimeBlock
	for _, employee := range employees {
		employeeWindows := byEmployee[employee.ID]
		if len(employeeWindows) == 0 {
			blocks = append(blocks, models.TimeBlock{
				EmployeeID: employee.ID,
				Date:       date,
				StartTime:  s.cfg.DefaultStartTime,
				EndTime:    s.cfg.DefaultEndTime,
				BlockType:  models.BlockTypeWork,
				IsActive:   true,
			})
			continue
		}
		for _, window := range employeeWindows {
			blocks = append(blocks, models.TimeBlock{
				EmployeeID: employee.ID,
				Date:       date,
				StartTime:  window.StartTime,
				EndTime:    window.EndTime,
				BlockType:  models.BlockTypeWork,
				IsActive:   true,
			})
		}
	}

	if err := s.blocks.InsertBatch(ctx, blocks); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time blocks")
	}
	s.invalidate(ctx)

	return &dto.InitializeDayResult{Date: date, EmployeeCount: len(employees), BlocksCreated: len(blocks)}, nil
}

// MoveBlock shifts an employee's whole-hour slot from one hour to another
// after running the grid validator against current state.
func (s *ScheduleService) MoveBlock(ctx context.Context, date, employeeID string, fromHour, toHour int) error {
	if !s.hours.ContainsHour(fromHour) {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("schedule must be between %02d:00 and %02d:00", s.hours.Start, s.hours.End))
	}

	grid, err := s.gridForDate(ctx, date)
	if err != nil {
		return err
	}

	decision := s.hours.ValidateSlotChange(grid, employeeID, toHour, fromHour)
	if !decision.OK {
		if decision.Reason == "employee not found" {
			return appErrors.Clone(appErrors.ErrNotFound, decision.Reason)
		}
		return appErrors.Clone(appErrors.ErrValidation, decision.Reason)
	}

	if err := s.blocks.SetHourActive(ctx, employeeID, date, fromHour, false); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to vacate hour block")
	}
	if err := s.blocks.SetHourActive(ctx, employeeID, date, toHour, true); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate hour block")
	}
	s.invalidate(ctx)
	return nil
}

// BatchUpdate applies a set of hour-grid toggles. Each activation passes
// through the grid validator; the batch stops at the first rejection so the
// caller sees a consistent grid.
func (s *ScheduleService) BatchUpdate(ctx context.Context, date string, updates []dto.BlockUpdate) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid date, use YYYY-MM-DD")
	}

	for _, update := range updates {
		if !s.hours.ContainsHour(update.Hour) {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("hour must be between %d and %d", s.hours.Start, s.hours.End-1))
		}
		if update.IsActive {
			grid, err := s.gridForDate(ctx, date)
			if err != nil {
				return err
			}
			decision := s.hours.ValidateSlotChange(grid, update.EmployeeID, update.Hour, -1)
			if !decision.OK {
				if decision.Reason == "employee not found" {
					return appErrors.Clone(appErrors.ErrNotFound, decision.Reason)
				}
				return appErrors.Clone(appErrors.ErrValidation, decision.Reason)
			}
		}
		if err := s.blocks.SetHourActive(ctx, update.EmployeeID, date, update.Hour, update.IsActive); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update hour block")
		}
	}

	s.invalidate(ctx)
	return nil
}

// UpdateBlock rewrites one block's window after checking time validity and
// overlap against the employee's other active blocks on the same date.
func (s *ScheduleService) UpdateBlock(ctx context.Context, id string, req UpdateTimeBlockRequest) (*models.TimeBlock, error) {
	if !schedule.ValidClockTime(req.StartTime) || !schedule.ValidClockTime(req.EndTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid time format, use HH:MM (24-hour)")
	}
	if !schedule.ValidRange(req.StartTime, req.EndTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end time must be after start time")
	}
	if !models.ValidBlockType(req.BlockType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid block type")
	}

	block, err := s.blocks.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time block not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time block")
	}

	if req.IsActive {
		siblings, err := s.blocks.ListByEmployeeDate(ctx, block.EmployeeID, block.Date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time blocks")
		}
		candidate := schedule.Interval{Start: req.StartTime, End: req.EndTime}
		for _, sibling := range siblings {
			if sibling.ID == block.ID || !sibling.IsActive {
				continue
			}
			if schedule.Overlaps(candidate, schedule.Interval{Start: sibling.StartTime, End: sibling.EndTime}) {
				return nil, appErrors.Clone(appErrors.ErrConflict,
					fmt.Sprintf("block overlaps existing %s-%s entry", sibling.StartTime, sibling.EndTime))
			}
		}
	}

	block.StartTime = req.StartTime
	block.EndTime = req.EndTime
	block.BlockType = req.BlockType
	block.IsActive = req.IsActive

	if err := s.blocks.Update(ctx, block); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update time block")
	}
	s.invalidate(ctx)
	return block, nil
}

// Coverage reports per-hour staffing across the business window for a date.
func (s *ScheduleService) Coverage(ctx context.Context, date string) (*dto.CoverageResponse, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, use YYYY-MM-DD")
	}

	var cached dto.CoverageResponse
	if hit, _ := s.cache.Get(ctx, coverageKey(date), &cached); hit {
		cached.FromCache = true
		return &cached, nil
	}

	grid, err := s.gridForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	hours := s.hours.HourlyCoverage(grid)
	var understaffed []int
	for _, h := range hours {
		if h.ActiveStaff < s.cfg.MinimumStaff {
			understaffed = append(understaffed, h.Hour)
		}
	}

	response := &dto.CoverageResponse{
		Date:         date,
		TotalStaff:   len(grid),
		MinimumStaff: s.cfg.MinimumStaff,
		Hours:        hours,
		Understaffed: understaffed,
	}
	_ = s.cache.Set(ctx, coverageKey(date), response, s.cfg.CacheTTL)
	return response, nil
}

// gridForDate projects a date's active blocks onto the hour grid the pure
// validators operate on. A block marks an hour when it covers any part of it.
func (s *ScheduleService) gridForDate(ctx context.Context, date string) ([]schedule.GridEmployee, error) {
	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	blocks, err := s.blocks.ListByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time blocks")
	}

	byEmployee := make(map[string][]models.TimeBlock, len(employees))
	for _, block := range blocks {
		byEmployee[block.EmployeeID] = append(byEmployee[block.EmployeeID], block)
	}

	grid := make([]schedule.GridEmployee, 0, len(employees))
	for _, employee := range employees {
		entry := schedule.GridEmployee{ID: employee.ID}
		for hour := s.hours.Start; hour < s.hours.End; hour++ {
			active := false
			for _, block := range byEmployee[employee.ID] {
				if !block.IsActive {
					continue
				}
				startMin, err := schedule.Minutes(block.StartTime)
				if err != nil {
					continue
				}
				endMin, err := schedule.Minutes(block.EndTime)
				if err != nil {
					continue
				}
				if startMin < (hour+1)*60 && endMin > hour*60 {
					active = true
					break
				}
			}
			entry.Blocks = append(entry.Blocks, schedule.HourBlock{Hour: hour, Active: active})
		}
		grid = append(grid, entry)
	}
	return grid, nil
}

func (s *ScheduleService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "schedule:*"); err != nil {
		s.logger.Warn("schedule cache invalidation failed", zap.Error(err))
	}
}
