package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/staffdeskhq/staffdesk-api/internal/dto"
	"github.com/staffdeskhq/staffdesk-api/internal/models"
	"github.com/staffdeskhq/staffdesk-api/internal/schedule"
)

// weekdays covered by the import format, aligned with day_of_week numbering
// (Monday = 1).
var importWeekdays = [5]string{"monday", "tuesday", "wednesday", "thursday", "friday"}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type importEmployeeRepository interface {
	FindByName(ctx context.Context, name string) (*models.Employee, error)
	UpsertByName(ctx context.Context, employee *models.Employee) error
}

type importAvailabilityRepository interface {
	Upsert(ctx context.Context, window *models.Availability) error
}

// ImportService runs the CSV employee-import pipeline: parse, validate the
// whole batch, then upsert row by row. Validation failures abort before any
// write; database failures are scoped to their row so the batch keeps going.
type ImportService struct {
	employees    importEmployeeRepository
	availability importAvailabilityRepository
	hours        schedule.Hours
	maxRows      int
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(employees importEmployeeRepository, availability importAvailabilityRepository, hours schedule.Hours, maxRows int, metrics *MetricsService, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = 500
	}
	return &ImportService{
		employees:    employees,
		availability: availability,
		hours:        hours,
		maxRows:      maxRows,
		metrics:      metrics,
		logger:       logger,
	}
}

// Import processes raw CSV content and returns an ImportResult. It never
// returns an error for bad input; every failure lands in the result.
func (s *ImportService) Import(ctx context.Context, content string, opts dto.ImportOptions) *dto.ImportResult {
	result := &dto.ImportResult{
		Errors:              []dto.ImportError{},
		ImportedEmployeeIDs: []string{},
	}

	rows, errs := s.parse(content)
	if len(errs) > 0 {
		result.Errors = errs
		return result
	}
	result.TotalRows = len(rows)

	if len(rows) == 0 {
		result.Errors = append(result.Errors, dto.ImportError{
			Row: -1, Field: "file", Message: "no valid data rows found in import file",
		})
		return result
	}
	if len(rows) > s.maxRows {
		result.Errors = append(result.Errors, dto.ImportError{
			Row: -1, Field: "file", Message: fmt.Sprintf("file exceeds the %d row import limit", s.maxRows),
		})
		return result
	}

	if errs := s.validate(rows); len(errs) > 0 {
		result.Errors = errs
		return result
	}

	if opts.DryRun {
		result.Success = true
		result.SkippedRows = len(rows)
		return result
	}

	for i, row := range rows {
		imported, skipped, err := s.importRow(ctx, row, opts)
		if err != nil {
			s.logger.Warn("import row failed", zap.Int("row", i), zap.String("name", row.Name), zap.Error(err))
			result.Errors = append(result.Errors, dto.ImportError{
				Row: i, Field: "database", Message: err.Error(), Value: row.Name,
			})
			s.metrics.RecordImportRow(false)
			continue
		}
		if skipped {
			result.SkippedRows++
			continue
		}
		result.SuccessfulImports++
		result.ImportedEmployeeIDs = append(result.ImportedEmployeeIDs, imported)
		s.metrics.RecordImportRow(true)
	}

	result.Success = result.SuccessfulImports+result.SkippedRows == result.TotalRows
	return result
}

// parse reads the CSV into rows. Lines starting with // are a template
// convention and stripped before parsing.
func (s *ImportService) parse(content string) ([]dto.ImportRow, []dto.ImportError) {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		kept = append(kept, line)
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(kept, "\n")))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, []dto.ImportError{{Row: -1, Field: "csv_parse", Message: err.Error()}}
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	var rows []dto.ImportRow
	for _, record := range records[1:] {
		if isBlankRecord(record) {
			continue
		}
		fields := make(map[string]string, len(header))
		for i, value := range record {
			if i < len(header) {
				fields[header[i]] = strings.TrimSpace(value)
			}
		}
		row := dto.ImportRow{
			Name:         fields["name"],
			Email:        fields["email"],
			Role:         strings.ToLower(fields["role"]),
			ScheduleType: strings.ToLower(fields["schedule_type"]),
			StartTime:    firstNonEmpty(fields["start_time"], fields["default_start_time"]),
			EndTime:      firstNonEmpty(fields["end_time"], fields["default_end_time"]),
		}
		for d, day := range importWeekdays {
			row.Days[d] = true
			if raw, ok := fields[day]; ok {
				row.Days[d] = parseBool(raw)
			}
			row.DayStart[d] = fields[day+"_start"]
			row.DayEnd[d] = fields[day+"_end"]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// validate applies the full row ruleset and cross-row duplicate checks,
// collecting every error instead of short-circuiting.
func (s *ImportService) validate(rows []dto.ImportRow) []dto.ImportError {
	var errs []dto.ImportError

	names := make(map[string]bool, len(rows))
	emails := make(map[string]bool, len(rows))
	for i, row := range rows {
		if row.Name != "" {
			key := strings.ToLower(strings.TrimSpace(row.Name))
			if names[key] {
				errs = append(errs, dto.ImportError{Row: i, Field: "name", Message: "duplicate employee name found", Value: row.Name})
			}
			names[key] = true
		}
		if row.Email != "" {
			key := strings.ToLower(row.Email)
			if emails[key] {
				errs = append(errs, dto.ImportError{Row: i, Field: "email", Message: "duplicate email address found", Value: row.Email})
			}
			emails[key] = true
		}
	}

	for i, row := range rows {
		errs = append(errs, s.validateRow(row, i)...)
	}
	return errs
}

func (s *ImportService) validateRow(row dto.ImportRow, index int) []dto.ImportError {
	var errs []dto.ImportError

	if strings.TrimSpace(row.Name) == "" {
		errs = append(errs, dto.ImportError{Row: index, Field: "name", Message: "name is required", Value: row.Name})
	}

	if strings.TrimSpace(row.Email) == "" {
		errs = append(errs, dto.ImportError{Row: index, Field: "email", Message: "email is required", Value: row.Email})
	} else if !emailRe.MatchString(row.Email) {
		errs = append(errs, dto.ImportError{Row: index, Field: "email", Message: "invalid email format", Value: row.Email})
	}

	if !models.ValidRole(row.Role) {
		errs = append(errs, dto.ImportError{Row: index, Field: "role", Message: `role must be "teacher", "para-educator", or "admin"`, Value: row.Role})
	}
	if !models.ValidScheduleType(row.ScheduleType) {
		errs = append(errs, dto.ImportError{Row: index, Field: "schedule_type", Message: `schedule type must be "fixed" or "flexible"`, Value: row.ScheduleType})
	}

	if row.ScheduleType == models.ScheduleTypeFixed {
		errs = append(errs, s.validateTimePair(index, "start_time", "end_time", "time_range", row.StartTime, row.EndTime)...)
	}

	for d, day := range importWeekdays {
		start, end := row.DayStart[d], row.DayEnd[d]
		if start == "" && end == "" {
			continue
		}
		if start == "" || end == "" {
			errs = append(errs, dto.ImportError{
				Row: index, Field: day, Message: "both " + day + "_start and " + day + "_end are required", Value: start + end,
			})
			continue
		}
		errs = append(errs, s.validateTimePair(index, day+"_start", day+"_end", day+"_range", start, end)...)
	}

	return errs
}

// validateTimePair checks format on both times, then range and business
// hours only for the parts that parsed.
func (s *ImportService) validateTimePair(index int, startField, endField, rangeField, start, end string) []dto.ImportError {
	var errs []dto.ImportError

	startOK := schedule.ValidClockTime(start)
	endOK := schedule.ValidClockTime(end)
	if !startOK {
		errs = append(errs, dto.ImportError{Row: index, Field: startField, Message: "invalid time format, use HH:MM (24-hour)", Value: start})
	}
	if !endOK {
		errs = append(errs, dto.ImportError{Row: index, Field: endField, Message: "invalid time format, use HH:MM (24-hour)", Value: end})
	}

	if startOK && endOK && !schedule.ValidRange(start, end) {
		errs = append(errs, dto.ImportError{Row: index, Field: rangeField, Message: "end time must be after start time", Value: start + " - " + end})
	}
	if startOK && !s.hours.WithinBusinessHours(start, false) {
		errs = append(errs, dto.ImportError{
			Row: index, Field: startField,
			Message: fmt.Sprintf("start time must be within business hours (%02d:00-%02d:00)", s.hours.Start, s.hours.End),
			Value:   start,
		})
	}
	if endOK && !s.hours.WithinBusinessHours(end, true) {
		errs = append(errs, dto.ImportError{
			Row: index, Field: endField,
			Message: fmt.Sprintf("end time must be within business hours (%02d:00-%02d:00)", s.hours.Start, s.hours.End),
			Value:   end,
		})
	}
	return errs
}

// importRow upserts one employee plus derived availability. Returns the
// employee id, or skipped=true when SkipDuplicates matched an existing name.
func (s *ImportService) importRow(ctx context.Context, row dto.ImportRow, opts dto.ImportOptions) (string, bool, error) {
	if opts.SkipDuplicates {
		existing, err := s.employees.FindByName(ctx, row.Name)
		if err == nil && existing != nil {
			return existing.ID, true, nil
		}
	}

	employee := &models.Employee{
		Name:                 strings.TrimSpace(row.Name),
		Email:                strings.TrimSpace(row.Email),
		Role:                 row.Role,
		ScheduleType:         row.ScheduleType,
		DailyCapacityMinutes: 480,
		IsActive:             true,
	}
	if row.ScheduleType == models.ScheduleTypeFixed {
		start, end := row.StartTime, row.EndTime
		employee.DefaultStartTime = &start
		employee.DefaultEndTime = &end
	}

	upsertStart := time.Now()
	if err := s.employees.UpsertByName(ctx, employee); err != nil {
		return "", false, err
	}
	s.metrics.ObserveDBQuery("employee_upsert", time.Since(upsertStart))

	for d := range importWeekdays {
		if !row.Days[d] {
			continue
		}
		start := firstNonEmpty(row.DayStart[d], row.StartTime)
		end := firstNonEmpty(row.DayEnd[d], row.EndTime)
		if start == "" || end == "" {
			continue
		}
		window := &models.Availability{
			EmployeeID: employee.ID,
			DayOfWeek:  d + 1,
			StartTime:  start,
			EndTime:    end,
		}
		if err := s.availability.Upsert(ctx, window); err != nil {
			return "", false, err
		}
	}

	return employee.ID, false, nil
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "1", "yes", "y":
		return true
	}
	return false
}
