package cancel_booking

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
)

type mockService struct {
	gotID  int64
	gotReq *models.CancelBookingRequest
	err    error
}

func (m *mockService) Cancel(_ context.Context, id int64, req *models.CancelBookingRequest) (*models.AppointmentResponse, error) {
	m.gotID = id
	m.gotReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.AppointmentResponse{ID: id, CompanyID: 7, Status: "cancelled", CancellationReason: req.Reason}, nil
}

type mockLogger struct{}

func (mockLogger) Info(string, ...interface{})  {}
func (mockLogger) Warn(string, ...interface{})  {}
func (mockLogger) Error(string, ...interface{}) {}

func newRequest(id, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPatch, "/api/v1/bookings/"+id+"/cancel", strings.NewReader(body))
	return mux.SetURLVars(r, map[string]string{"bookingId": id})
}

func TestHandle_EmptyBody(t *testing.T) {
	svc := &mockService{}
	rec := httptest.NewRecorder()

	NewHandler(svc, mockLogger{}).Handle(rec, newRequest("12", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(12), svc.gotID)
	assert.Nil(t, svc.gotReq.Reason)
	assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)
}

func TestHandle_WithReason(t *testing.T) {
	svc := &mockService{}
	rec := httptest.NewRecorder()

	NewHandler(svc, mockLogger{}).Handle(rec, newRequest("12", `{"reason":"  imprevisto  "}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.gotReq.Reason)
	assert.Equal(t, "imprevisto", *svc.gotReq.Reason)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		body       string
		err        error
		wantStatus int
	}{
		{name: "bad id", id: "x", wantStatus: http.StatusBadRequest},
		{name: "bad body", id: "12", body: `{"reason":`, wantStatus: http.StatusBadRequest},
		{name: "not found", id: "12", err: bookings.ErrAppointmentNotFound, wantStatus: http.StatusNotFound},
		{name: "already cancelled", id: "12", err: bookings.ErrCannotCancel, wantStatus: http.StatusConflict},
		{name: "internal", id: "12", err: bookings.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHandler(&mockService{err: tt.err}, mockLogger{}).Handle(rec, newRequest(tt.id, tt.body))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
