package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffdeskhq/staffdesk-api/internal/models"
	"github.com/staffdeskhq/staffdesk-api/internal/schedule"
	"github.com/staffdeskhq/staffdesk-api/internal/service"
)

type employeeRepoHTTPStub struct {
	employee *models.Employee
	updated  *models.Employee
}

func (s *employeeRepoHTTPStub) List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, int, error) {
	return []models.Employee{*s.employee}, 1, nil
}

func (s *employeeRepoHTTPStub) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	clone := *s.employee
	return &clone, nil
}

func (s *employeeRepoHTTPStub) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	return false, nil
}

func (s *employeeRepoHTTPStub) Create(ctx context.Context, employee *models.Employee) error {
	return nil
}

func (s *employeeRepoHTTPStub) Update(ctx context.Context, employee *models.Employee) error {
	s.updated = employee
	return nil
}

func (s *employeeRepoHTTPStub) Deactivate(ctx context.Context, id string) error { return nil }

type availabilityRepoHTTPStub struct{}

func (availabilityRepoHTTPStub) ListByEmployee(ctx context.Context, employeeID string) ([]models.Availability, error) {
	return nil, nil
}

func (availabilityRepoHTTPStub) ReplaceForEmployee(ctx context.Context, employeeID string, windows []models.Availability) error {
	return nil
}

func TestEmployeeUpdateAcceptsPutAndPatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &employeeRepoHTTPStub{employee: &models.Employee{
		ID:           "emp-1",
		Name:         "Jane Doe",
		Email:        "jane@example.org",
		Role:         models.RoleTeacher,
		ScheduleType: models.ScheduleTypeFlexible,
	}}
	svc := service.NewEmployeeService(repo, availabilityRepoHTTPStub{}, schedule.Hours{Start: 6, End: 17, MaxHours: 8}, nil, nil)
	h := NewEmployeeHandler(svc, nil, nil, 0)

	router := gin.New()
	router.PUT("/employees/:id", h.Update)
	router.PATCH("/employees/:id", h.Update)

	payload, _ := json.Marshal(service.UpdateEmployeeRequest{
		Name:         "Jane Q Doe",
		Email:        "jane@example.org",
		Role:         models.RoleTeacher,
		ScheduleType: models.ScheduleTypeFlexible,
	})
	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(method, "/employees/emp-1", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	require.NotNil(t, repo.updated)
	assert.Equal(t, "Jane Q Doe", repo.updated.Name)
}
