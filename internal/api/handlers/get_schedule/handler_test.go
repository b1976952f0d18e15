package get_schedule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/config"
	"github.com/m04kA/SMC-SchedulingService/internal/service/config/models"
)

type mockService struct {
	err error
}

func (m *mockService) Get(_ context.Context, companyID int64) (*models.ScheduleResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.ScheduleResponse{
		CompanyID:   companyID,
		WorkingDays: []int{1, 2, 3, 4, 5},
		OpeningTime: "09:00",
		ClosingTime: "18:00",
		Timezone:    domain.DefaultTimezone,
	}, nil
}

type mockLogger struct{}

func (mockLogger) Info(string, ...interface{})  {}
func (mockLogger) Warn(string, ...interface{})  {}
func (mockLogger) Error(string, ...interface{}) {}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		companyID  string
		err        error
		wantStatus int
		wantBody   string
	}{
		{name: "found", companyID: "7", wantStatus: http.StatusOK, wantBody: `"workingDays":[1,2,3,4,5]`},
		{name: "bad id", companyID: "x", wantStatus: http.StatusBadRequest, wantBody: `"kind":"validation"`},
		{name: "not configured", companyID: "7", err: config.ErrConfigNotFound, wantStatus: http.StatusNotFound, wantBody: `"kind":"not_found"`},
		{name: "transient", companyID: "7", err: domain.ErrTransientStore, wantStatus: http.StatusServiceUnavailable, wantBody: `"kind":"transient_store"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/companies/"+tt.companyID+"/schedule", nil)
			r = mux.SetURLVars(r, map[string]string{"companyId": tt.companyID})
			rec := httptest.NewRecorder()

			NewHandler(&mockService{err: tt.err}, mockLogger{}).Handle(rec, r)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
