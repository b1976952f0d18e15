package update_schedule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/config/models"
)

type mockService struct {
	got *models.UpdateScheduleRequest
	err error
}

func (m *mockService) Update(_ context.Context, companyID int64, req *models.UpdateScheduleRequest) (*models.ScheduleResponse, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.ScheduleResponse{CompanyID: companyID, OpeningTime: *req.OpeningTime}, nil
}

type mockLogger struct{}

func (mockLogger) Info(string, ...interface{})  {}
func (mockLogger) Warn(string, ...interface{})  {}
func (mockLogger) Error(string, ...interface{}) {}

func newRequest(body string) *http.Request {
	r := httptest.NewRequest(http.MethodPut, "/api/v1/companies/7/schedule", strings.NewReader(body))
	return mux.SetURLVars(r, map[string]string{"companyId": "7"})
}

func TestHandle_OK(t *testing.T) {
	svc := &mockService{}
	rec := httptest.NewRecorder()

	NewHandler(svc, mockLogger{}).Handle(rec, newRequest(
		`{"openingTime":"08:00","dayOverrides":[{"weekday":0,"active":true,"openingTime":"10:00","closingTime":"12:00"}]}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, "08:00", *svc.got.OpeningTime)
	assert.Nil(t, svc.got.ClosingTime)
	require.Len(t, svc.got.DayOverrides, 1)
	assert.Equal(t, "10:00", svc.got.DayOverrides[0].OpeningTime)
}

func TestHandle_Errors(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(&mockService{}, mockLogger{}).Handle(rec, newRequest(`{"slotDuration":15}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	NewHandler(&mockService{err: domain.NewValidationError("closingTime", "must be after openingTime")}, mockLogger{}).
		Handle(rec, newRequest(`{"openingTime":"19:00"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"closingTime"`)
}
