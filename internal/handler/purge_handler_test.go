package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffdeskhq/staffdesk-api/internal/dto"
	"github.com/staffdeskhq/staffdesk-api/internal/models"
	appErrors "github.com/staffdeskhq/staffdesk-api/pkg/errors"
)

type purgeServiceMock struct {
	purgeResp   *dto.PurgeResponse
	purgeErr    error
	historyResp []models.PurgeLog
	historyErr  error
	backupPath  string
	backupErr   error
	lastReq     dto.PurgeRequest
	lastFilter  models.PurgeLogFilter
	purgeCalled bool
}

func (m *purgeServiceMock) Purge(ctx context.Context, req dto.PurgeRequest) (*dto.PurgeResponse, error) {
	m.purgeCalled = true
	m.lastReq = req
	return m.purgeResp, m.purgeErr
}

func (m *purgeServiceMock) History(ctx context.Context, filter models.PurgeLogFilter) ([]models.PurgeLog, error) {
	m.lastFilter = filter
	return m.historyResp, m.historyErr
}

func (m *purgeServiceMock) OpenBackup(token string) (*os.File, error) {
	if m.backupErr != nil {
		return nil, m.backupErr
	}
	return os.Open(m.backupPath)
}

func TestPurgeHandlerPurge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &purgeServiceMock{
		purgeResp: &dto.PurgeResponse{Level: "soft", Role: "teacher", RecordsAffected: 3},
	}
	handler := NewPurgeHandler(mockSvc)

	payload, _ := json.Marshal(dto.PurgeRequest{Level: "soft", Role: "teacher"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/purge", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Purge(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.purgeCalled)
	assert.Equal(t, "soft", mockSvc.lastReq.Level)
}

func TestPurgeHandlerPurgeInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &purgeServiceMock{}
	handler := NewPurgeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/purge", bytes.NewBufferString(`{"level":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Purge(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.purgeCalled)
}

func TestPurgeHandlerHistoryParsesRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &purgeServiceMock{}
	handler := NewPurgeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/purge/history?role=teacher&from=2025-03-01&to=2025-03-31", nil)
	c.Request = req

	handler.History(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "teacher", mockSvc.lastFilter.Role)
	require.NotNil(t, mockSvc.lastFilter.StartDate)
	require.NotNil(t, mockSvc.lastFilter.EndDate)
	assert.Equal(t, 2025, mockSvc.lastFilter.StartDate.Year())
	assert.Equal(t, 31, mockSvc.lastFilter.EndDate.Day())
}

func TestPurgeHandlerDownloadBackup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	backupPath := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(backupPath, []byte(`{"level":"soft"}`), 0o644))
	mockSvc := &purgeServiceMock{backupPath: backupPath}
	handler := NewPurgeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/purge/backup?token=abc", nil)
	c.Request = req

	handler.DownloadBackup(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "purge-backup.json")
	assert.JSONEq(t, `{"level":"soft"}`, w.Body.String())
}

func TestPurgeHandlerDownloadBackupRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewPurgeHandler(&purgeServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/purge/backup", nil)
	c.Request = req

	handler.DownloadBackup(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPurgeHandlerDownloadBackupInvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &purgeServiceMock{
		backupErr: appErrors.Clone(appErrors.ErrValidation, "invalid or expired backup token"),
	}
	handler := NewPurgeHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/purge/backup?token=bad", nil)
	c.Request = req

	handler.DownloadBackup(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
