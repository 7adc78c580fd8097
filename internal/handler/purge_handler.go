package handler

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/staffdeskhq/staffdesk-api/internal/dto"
	"github.com/staffdeskhq/staffdesk-api/internal/models"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
	"github.com/staffdeskhq/staffdesk-api/pkg/response"
)

type purgeService interface {
	Purge(ctx context.Context, req dto.PurgeRequest) (*dto.PurgeResponse, error)
	History(ctx context.Context, filter models.PurgeLogFilter) ([]models.PurgeLog, error)
	OpenBackup(token string) (*os.File, error)
}

// PurgeHandler wires the purge service to HTTP routes.
type PurgeHandler struct {
	purges purgeService
}

// NewPurgeHandler constructs a new PurgeHandler.
func NewPurgeHandler(purges purgeService) *PurgeHandler {
	return &PurgeHandler{purges: purges}
}

// Purge godoc
// @Summary Execute a staff-data purge
// @Tags Purge
// @Accept json
// @Produce json
// @Param payload body dto.PurgeRequest true "Purge payload"
// @Success 200 {object} response.Envelope
// @Router /purge [post]
func (h *PurgeHandler) Purge(c *gin.Context) {
	var req dto.PurgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid purge payload"))
		return
	}
	result, err := h.purges.Purge(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// History godoc
// @Summary List purge history
// @Tags Purge
// @Produce json
// @Param role query string false "Filter by role"
// @Param from query string false "Initiated after (YYYY-MM-DD)"
// @Param to query string false "Initiated before (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /purge/history [get]
func (h *PurgeHandler) History(c *gin.Context) {
	filter := models.PurgeLogFilter{Role: c.Query("role")}
	if from := c.Query("from"); from != "" {
		if parsed, err := time.Parse("2006-01-02", from); err == nil {
			filter.StartDate = &parsed
		}
	}
	if to := c.Query("to"); to != "" {
		if parsed, err := time.Parse("2006-01-02", to); err == nil {
			end := parsed.Add(24*time.Hour - time.Nanosecond)
			filter.EndDate = &end
		}
	}

	entries, err := h.purges.History(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// DownloadBackup godoc
// @Summary Download a purge backup via signed token
// @Tags Purge
// @Produce application/json
// @Param token query string true "Signed backup token"
// @Success 200 {file} file
// @Router /purge/backup [get]
func (h *PurgeHandler) DownloadBackup(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token query parameter is required"))
		return
	}
	file, err := h.purges.OpenBackup(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", `attachment; filename="purge-backup.json"`)
	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
