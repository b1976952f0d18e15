package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidCompanyID = "ID da empresa inválido"
	msgInvalidServiceID = "ID do serviço inválido"
	msgMissingServiceID = "ID do serviço é obrigatório"
	msgMissingDate      = "data é obrigatória"
	msgInvalidDate      = "formato de data inválido, esperado AAAA-MM-DD"
	msgServiceNotFound  = "serviço não encontrado"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/companies/{companyId}/available-slots
// Query params: serviceId (required), date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(mux.Vars(r)["companyId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /companies/{id}/available-slots - Invalid company ID: %v", err)
		handlers.RespondInvalidParam(w, "companyId", msgInvalidCompanyID)
		return
	}

	serviceIDStr := r.URL.Query().Get("serviceId")
	if serviceIDStr == "" {
		h.logger.Warn("GET /companies/{id}/available-slots - Missing service ID")
		handlers.RespondInvalidParam(w, "serviceId", msgMissingServiceID)
		return
	}

	serviceID, err := strconv.ParseInt(serviceIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /companies/{id}/available-slots - Invalid service ID: %v", err)
		handlers.RespondInvalidParam(w, "serviceId", msgInvalidServiceID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /companies/{id}/available-slots - Missing date")
		handlers.RespondInvalidParam(w, "date", msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(companyID, serviceID, dateStr)
	if err != nil {
		h.logger.Warn("GET /companies/{id}/available-slots - Invalid date format: %v", err)
		handlers.RespondInvalidParam(w, "date", msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /companies/{id}/available-slots - Service not found: company_id=%d, service_id=%d",
				companyID, serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case handlers.IsServerError(err):
			h.logger.Error("GET /companies/{id}/available-slots - Failed to get slots: company_id=%d, service_id=%d, error=%v",
				companyID, serviceID, err)
			handlers.RespondDomainError(w, err)

		default:
			h.logger.Warn("GET /companies/{id}/available-slots - Request rejected: company_id=%d, service_id=%d, error=%v",
				companyID, serviceID, err)
			handlers.RespondDomainError(w, err)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("GET /companies/{id}/available-slots - Slots retrieved successfully: company_id=%d, service_id=%d, date=%s, slots_count=%d, closed=%t",
		companyID, serviceID, dateStr, len(result.Slots), result.Closed)
	handlers.RespondJSON(w, http.StatusOK, response)
}
