package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
	"github.com/staffdeskhq/staffdesk-api/internal/service"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
	"github.com/staffdeskhq/staffdesk-api/pkg/response"
)

type assignmentService interface {
	ListForDay(ctx context.Context, employeeID, date string) ([]models.AssignmentDetail, error)
	Create(ctx context.Context, employeeID string, req service.CreateAssignmentRequest) (*models.Assignment, error)
	Delete(ctx context.Context, employeeID, assignmentID string) error
}

type paraRosterService interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Employee, error)
}

// ParaEducatorHandler wires the para-educator roster and student-assignment
// services to HTTP routes.
type ParaEducatorHandler struct {
	roster      paraRosterService
	assignments assignmentService
}

// NewParaEducatorHandler constructs a new ParaEducatorHandler.
func NewParaEducatorHandler(roster paraRosterService, assignments assignmentService) *ParaEducatorHandler {
	return &ParaEducatorHandler{roster: roster, assignments: assignments}
}

// List godoc
// @Summary List para-educators
// @Tags ParaEducators
// @Produce json
// @Param search query string false "Name or email search"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /para-educators [get]
func (h *ParaEducatorHandler) List(c *gin.Context) {
	filter := models.EmployeeFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Role:      models.RoleParaEducator,
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

	paras, pagination, err := h.roster.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, paras, pagination)
}

// Get godoc
// @Summary Get one para-educator
// @Tags ParaEducators
// @Produce json
// @Param id path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /para-educators/{id} [get]
func (h *ParaEducatorHandler) Get(c *gin.Context) {
	employee, err := h.roster.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if employee.Role != models.RoleParaEducator {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "para-educator not found"))
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// ListAssignments godoc
// @Summary List a para-educator's assignments for a date
// @Tags ParaEducators
// @Produce json
// @Param id path string true "Employee ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /para-educators/{id}/assignments [get]
func (h *ParaEducatorHandler) ListAssignments(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date query parameter is required"))
		return
	}
	assignments, err := h.assignments.ListForDay(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// CreateAssignment godoc
// @Summary Assign a student to a para-educator
// @Tags ParaEducators
// @Accept json
// @Produce json
// @Param id path string true "Employee ID"
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /para-educators/{id}/assignments [post]
func (h *ParaEducatorHandler) CreateAssignment(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}
	assignment, err := h.assignments.Create(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// DeleteAssignment godoc
// @Summary Remove one assignment
// @Tags ParaEducators
// @Param id path string true "Employee ID"
// @Param assignmentId path string true "Assignment ID"
// @Success 204 "No Content"
// @Router /para-educators/{id}/assignments/{assignmentId} [delete]
func (h *ParaEducatorHandler) DeleteAssignment(c *gin.Context) {
	if err := h.assignments.Delete(c.Request.Context(), c.Param("id"), c.Param("assignmentId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
