package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
	"github.com/staffdeskhq/staffdesk-api/internal/service"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
	"github.com/staffdeskhq/staffdesk-api/pkg/response"
)

// ShiftHandler wires the shift service to HTTP routes.
type ShiftHandler struct {
	shifts *service.ShiftService
}

// NewShiftHandler constructs a new ShiftHandler.
func NewShiftHandler(shifts *service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shifts: shifts}
}

// List godoc
// @Summary List shifts
// @Tags Shifts
// @Produce json
// @Param employee_id query string false "Filter by employee"
// @Param from query string false "Date range start (YYYY-MM-DD)"
// @Param to query string false "Date range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /shifts [get]
func (h *ShiftHandler) List(c *gin.Context) {
	filter := models.ShiftFilter{
		EmployeeID: c.Query("employee_id"),
		DateFrom:   c.Query("from"),
		DateTo:     c.Query("to"),
	}
	shifts, err := h.shifts.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, shifts, nil)
}

// Create godoc
// @Summary Record a shift
// @Tags Shifts
// @Accept json
// @Produce json
// @Param payload body service.CreateShiftRequest true "Shift payload"
// @Success 201 {object} response.Envelope
// @Router /shifts [post]
func (h *ShiftHandler) Create(c *gin.Context) {
	var req service.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shift payload"))
		return
	}
	shift, err := h.shifts.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, shift)
}
