package get_company_bookings

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
)

const (
	msgInvalidCompanyID = "ID da empresa inválido"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/companies/{companyId}/bookings
// Query params: date | from, to, status, includeInactive (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(mux.Vars(r)["companyId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /companies/{id}/bookings - Invalid company ID: %v", err)
		handlers.RespondInvalidParam(w, "companyId", msgInvalidCompanyID)
		return
	}

	serviceReq, err := ToServiceRequest(companyID, r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /companies/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondDomainError(w, err)
		return
	}

	result, err := h.service.GetCompanyBookings(r.Context(), serviceReq)
	if err != nil {
		if handlers.IsServerError(err) {
			h.logger.Error("GET /companies/{id}/bookings - Failed to get bookings: company_id=%d, error=%v",
				companyID, err)
		} else {
			h.logger.Warn("GET /companies/{id}/bookings - Request rejected: company_id=%d, error=%v", companyID, err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("GET /companies/{id}/bookings - Bookings retrieved successfully: company_id=%d, count=%d",
		companyID, len(result.Appointments))
	handlers.RespondJSON(w, http.StatusOK, result)
}
