package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/staffdeskhq/staffdesk-api/internal/dto"
	"github.com/staffdeskhq/staffdesk-api/internal/models"
	"github.com/staffdeskhq/staffdesk-api/internal/service"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
	"github.com/staffdeskhq/staffdesk-api/pkg/response"
)

// EmployeeHandler wires employee services to HTTP routes.
type EmployeeHandler struct {
	employees   *service.EmployeeService
	importer    *service.ImportService
	exports     *service.ExportService
	maxBodySize int64
}

// NewEmployeeHandler constructs a new EmployeeHandler.
func NewEmployeeHandler(employees *service.EmployeeService, importer *service.ImportService, exports *service.ExportService, maxBodySize int64) *EmployeeHandler {
	if maxBodySize <= 0 {
		maxBodySize = 1 << 20
	}
	return &EmployeeHandler{
		employees:   employees,
		importer:    importer,
		exports:     exports,
		maxBodySize: maxBodySize,
	}
}

// List godoc
// @Summary List employees
// @Tags Employees
// @Produce json
// @Param search query string false "Search by name/email"
// @Param role query string false "Filter by role"
// @Param active query bool false "Filter by active status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (name,email,role,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	filter := models.EmployeeFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Role:      c.Query("role"),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if active := c.Query("active"); active != "" {
		switch strings.ToLower(active) {
		case "true":
			val := true
			filter.Active = &val
		case "false":
			val := false
			filter.Active = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	employees, pagination, err := h.employees.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees, pagination)
}

// Get godoc
// @Summary Get employee detail
// @Tags Employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	employee, err := h.employees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Create godoc
// @Summary Create employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param payload body service.CreateEmployeeRequest true "Employee payload"
// @Success 201 {object} response.Envelope
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req service.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid employee payload"))
		return
	}
	employee, err := h.employees.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, employee)
}

// Update godoc
// @Summary Update employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param payload body service.UpdateEmployeeRequest true "Employee payload"
// @Success 200 {object} response.Envelope
// @Router /employees/{id} [put]
// @Router /employees/{id} [patch]
func (h *EmployeeHandler) Update(c *gin.Context) {
	var req service.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid employee payload"))
		return
	}
	employee, err := h.employees.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Deactivate godoc
// @Summary Deactivate employee
// @Tags Employees
// @Param id path string true "Employee ID"
// @Success 204 "No Content"
// @Router /employees/{id} [delete]
func (h *EmployeeHandler) Deactivate(c *gin.Context) {
	if err := h.employees.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Availability godoc
// @Summary Get employee weekly availability
// @Tags Employees
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/availability [get]
func (h *EmployeeHandler) Availability(c *gin.Context) {
	windows, err := h.employees.Availability(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}

// ReplaceAvailability godoc
// @Summary Replace employee weekly availability
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param payload body []service.AvailabilityWindow true "Availability windows"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/availability [put]
func (h *EmployeeHandler) ReplaceAvailability(c *gin.Context) {
	var windows []service.AvailabilityWindow
	if err := c.ShouldBindJSON(&windows); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	saved, err := h.employees.ReplaceAvailability(c.Request.Context(), c.Param("id"), windows)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved, nil)
}

// Import godoc
// @Summary Import employees from CSV
// @Tags Employees
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param skip_duplicates formData bool false "Skip rows matching existing names"
// @Param dry_run formData bool false "Validate without writing"
// @Success 200 {object} response.Envelope
// @Router /employees/import [post]
func (h *EmployeeHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "csv file is required"))
		return
	}
	defer file.Close() //nolint:errcheck

	if header.Size > h.maxBodySize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds maximum allowed size"))
		return
	}

	content, err := io.ReadAll(io.LimitReader(file, h.maxBodySize+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read file"))
		return
	}
	if int64(len(content)) > h.maxBodySize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds maximum allowed size"))
		return
	}

	opts := dto.ImportOptions{
		SkipDuplicates: c.PostForm("skip_duplicates") == "true",
		DryRun:         c.PostForm("dry_run") == "true",
	}

	result := h.importer.Import(c.Request.Context(), string(content), opts)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	response.JSON(c, status, result, nil)
}

// ImportTemplate godoc
// @Summary Download the CSV import template
// @Tags Employees
// @Produce text/csv
// @Success 200 {file} file
// @Router /employees/import/template [get]
func (h *EmployeeHandler) ImportTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="staff-import-template.csv"`)
	c.Data(http.StatusOK, "text/csv", h.exports.ImportTemplateCSV())
}

// Export godoc
// @Summary Export the employee roster as CSV
// @Tags Employees
// @Produce text/csv
// @Success 200 {file} file
// @Router /employees/export [get]
func (h *EmployeeHandler) Export(c *gin.Context) {
	data, err := h.exports.EmployeesCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="employees.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}
