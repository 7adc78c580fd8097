package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/staffdeskhq/staffdesk-api/internal/dto"
	"github.com/staffdeskhq/staffdesk-api/internal/service"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
	"github.com/staffdeskhq/staffdesk-api/pkg/response"
)

// ScheduleHandler wires the day-schedule services to HTTP routes.
type ScheduleHandler struct {
	schedules *service.ScheduleService
	exports   *service.ExportService
}

// NewScheduleHandler constructs a new ScheduleHandler.
func NewScheduleHandler(schedules *service.ScheduleService, exports *service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, exports: exports}
}

type moveBlockRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	FromHour   int    `json:"from_hour"`
	ToHour     int    `json:"to_hour"`
}

type batchUpdateRequest struct {
	Updates []dto.BlockUpdate `json:"updates" binding:"required"`
}

// Day godoc
// @Summary Get the schedule for one date
// @Tags Schedule
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedule/{date} [get]
func (h *ScheduleHandler) Day(c *gin.Context) {
	day, err := h.schedules.DaySchedule(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{"from_cache": day.FromCache}
	response.JSON(c, http.StatusOK, day, nil, meta)
}

// Initialize godoc
// @Summary Initialize time blocks for a date from weekly availability
// @Tags Schedule
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedule/{date}/initialize [post]
func (h *ScheduleHandler) Initialize(c *gin.Context) {
	result, err := h.schedules.InitializeDay(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

type initializeDayRequest struct {
	Date string `json:"date" binding:"required"`
}

// InitializeFromBody godoc
// @Summary Initialize time blocks for a date from weekly availability
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body initializeDayRequest true "Initialize payload"
// @Success 200 {object} response.Envelope
// @Router /time-blocks/initialize [post]
func (h *ScheduleHandler) InitializeFromBody(c *gin.Context) {
	var req initializeDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid initialize payload"))
		return
	}
	result, err := h.schedules.InitializeDay(c.Request.Context(), req.Date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// MoveBlock godoc
// @Summary Move an employee's hour block to another hour
// @Tags Schedule
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param payload body moveBlockRequest true "Move payload"
// @Success 204 "No Content"
// @Router /schedule/{date}/move [patch]
func (h *ScheduleHandler) MoveBlock(c *gin.Context) {
	var req moveBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid move payload"))
		return
	}
	if err := h.schedules.MoveBlock(c.Request.Context(), c.Param("date"), req.EmployeeID, req.FromHour, req.ToHour); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// BatchUpdate godoc
// @Summary Apply a batch of hour-grid toggles
// @Tags Schedule
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param payload body batchUpdateRequest true "Batch payload"
// @Success 204 "No Content"
// @Router /schedule/{date}/blocks [patch]
func (h *ScheduleHandler) BatchUpdate(c *gin.Context) {
	var req batchUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}
	if err := h.schedules.BatchUpdate(c.Request.Context(), c.Param("date"), req.Updates); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateBlock godoc
// @Summary Rewrite one time block
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Time block ID"
// @Param payload body service.UpdateTimeBlockRequest true "Block payload"
// @Success 200 {object} response.Envelope
// @Router /time-blocks/{id} [put]
func (h *ScheduleHandler) UpdateBlock(c *gin.Context) {
	var req service.UpdateTimeBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid block payload"))
		return
	}
	block, err := h.schedules.UpdateBlock(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, block, nil)
}

// Coverage godoc
// @Summary Get per-hour staffing coverage for a date
// @Tags Schedule
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedule/{date}/coverage [get]
func (h *ScheduleHandler) Coverage(c *gin.Context) {
	coverage, err := h.schedules.Coverage(c.Request.Context(), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, coverage, nil)
}

// ExportPDF godoc
// @Summary Export one date's schedule as PDF
// @Tags Schedule
// @Produce application/pdf
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /schedule/{date}/export [get]
func (h *ScheduleHandler) ExportPDF(c *gin.Context) {
	date := c.Param("date")
	data, err := h.exports.DaySchedulePDF(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="schedule-%s.pdf"`, date))
	c.Data(http.StatusOK, "application/pdf", data)
}
