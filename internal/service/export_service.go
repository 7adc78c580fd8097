package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/staffdeskhq/staffdesk-api/internal/dto"
	"github.com/staffdeskhq/staffdesk-api/internal/models"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
	"github.com/staffdeskhq/staffdesk-api/pkg/export"
)

type exportEmployeeRepository interface {
	ListAll(ctx context.Context) ([]models.Employee, error)
}

type exportScheduleProvider interface {
	DaySchedule(ctx context.Context, date string) (*dto.DayScheduleResponse, error)
}

// ExportService renders roster and schedule data into downloadable files.
type ExportService struct {
	employees exportEmployeeRepository
	schedules exportScheduleProvider
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(employees exportEmployeeRepository, schedules exportScheduleProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		employees: employees,
		schedules: schedules,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

// ImportTemplateCSV returns the staff import template with a commented
// example row.
func (s *ExportService) ImportTemplateCSV() []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("// Staff import template. Lines starting with // are ignored.\n")
	buf.WriteString("// role: teacher, para-educator or admin. schedule_type: fixed or flexible.\n")
	buf.WriteString("// Day columns take true/false. Per-day windows use HH:MM, both halves or neither.\n")
	buf.WriteString("name,email,role,schedule_type,default_start_time,default_end_time,monday,tuesday,wednesday,thursday,friday,monday_start,monday_end\n")
	buf.WriteString("// Jane Doe,jane@example.org,teacher,fixed,08:00,15:00,true,true,true,true,false,,\n")
	return buf.Bytes()
}

// EmployeesCSV renders the full roster as CSV.
func (s *ExportService) EmployeesCSV(ctx context.Context) ([]byte, error) {
	employees, err := s.employees.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}

	dataset := export.Dataset{
		Headers: []string{"name", "email", "role", "schedule_type", "default_start_time", "default_end_time", "active"},
	}
	for _, employee := range employees {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"name":               employee.Name,
			"email":              employee.Email,
			"role":               employee.Role,
			"schedule_type":      employee.ScheduleType,
			"default_start_time": stringOrEmpty(employee.DefaultStartTime),
			"default_end_time":   stringOrEmpty(employee.DefaultEndTime),
			"active":             fmt.Sprintf("%t", employee.IsActive),
		})
	}

	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}

// DaySchedulePDF renders one date's schedule as a printable PDF.
func (s *ExportService) DaySchedulePDF(ctx context.Context, date string) ([]byte, error) {
	day, err := s.schedules.DaySchedule(ctx, date)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: []string{"employee", "role", "blocks"}}
	for _, entry := range day.Employees {
		var windows []string
		for _, block := range entry.Blocks {
			if !block.IsActive {
				continue
			}
			windows = append(windows, fmt.Sprintf("%s-%s %s", block.StartTime, block.EndTime, block.BlockType))
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"employee": entry.Employee.Name,
			"role":     entry.Employee.Role,
			"blocks":   strings.Join(windows, ", "),
		})
	}

	data, err := s.pdf.Render(dataset, fmt.Sprintf("Schedule %s", date))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return data, nil
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
