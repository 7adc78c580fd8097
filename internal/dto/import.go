package dto

// ImportOptions tunes the CSV employee import pipeline.
type ImportOptions struct {
	// SkipDuplicates skips rows whose employee name already exists instead
	// of upserting them.
	SkipDuplicates bool
	// DryRun validates the file without performing any writes.
	DryRun bool
}

// ImportError describes one rejected row, field scoped.
type ImportError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ImportResult is the outcome of an employee import attempt. Success holds
// only when every row either imported or was deliberately skipped.
type ImportResult struct {
	Success             bool          `json:"success"`
	TotalRows           int           `json:"total_rows"`
	SuccessfulImports   int           `json:"successful_imports"`
	SkippedRows         int           `json:"skipped_rows"`
	Errors              []ImportError `json:"errors"`
	ImportedEmployeeIDs []string      `json:"imported_employee_ids"`
}

// ImportRow is one parsed CSV line before materialization.
type ImportRow struct {
	Name         string
	Email        string
	Role         string
	ScheduleType string
	StartTime    string
	EndTime      string
	// Days marks weekday inclusion parsed from boolean columns,
	// indexed Monday..Friday.
	Days [5]bool
	// DayStart/DayEnd carry explicit per-day windows when the file uses
	// the {day}_start/{day}_end column variant; empty means "use default".
	DayStart [5]string
	DayEnd   [5]string
}
