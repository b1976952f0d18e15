package create_booking

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	createBooking "github.com/m04kA/SMC-SchedulingService/internal/usecase/create_booking"
)

const (
	msgInvalidCompanyID = "ID da empresa inválido"
	msgSlotNotAvailable = "horário indisponível"
	msgCompanyClosed    = "estabelecimento fechado nesta data"
	msgServiceNotFound  = "serviço não encontrado"
	msgScheduleNotFound = "agenda da empresa não configurada"
	msgQuotaExceeded    = "limite mensal de agendamentos atingido"
	msgStoreUnavailable = "serviço temporariamente indisponível, tente novamente"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/companies/{companyId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(mux.Vars(r)["companyId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /companies/{id}/bookings - Invalid company ID: %v", err)
		handlers.RespondInvalidParam(w, "companyId", msgInvalidCompanyID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /companies/{id}/bookings - Invalid request body: %v", err)
		handlers.RespondInvalidPayload(w)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(companyID)
	if err != nil {
		h.logger.Warn("POST /companies/{id}/bookings - Failed to parse request: %v", err)
		handlers.RespondDomainError(w, err)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		var quotaErr *domain.QuotaExceededError

		switch {
		case errors.Is(err, createBooking.ErrSlotNotAvailable):
			h.logger.Warn("POST /companies/{id}/bookings - Slot not available: company_id=%d, date=%s, time=%s",
				companyID, req.Date, req.Time)
			handlers.RespondConflict(w, domain.KindSlotTaken, msgSlotNotAvailable, nil)

		case errors.As(err, &quotaErr):
			h.logger.Warn("POST /companies/{id}/bookings - Monthly quota exceeded: company_id=%d, current=%d, limit=%d",
				companyID, quotaErr.Current, quotaErr.Limit)
			handlers.RespondUnprocessable(w, domain.KindQuotaExceeded, msgQuotaExceeded,
				handlers.QuotaDetails{Current: quotaErr.Current, Limit: quotaErr.Limit})

		case errors.Is(err, createBooking.ErrCompanyClosed):
			h.logger.Warn("POST /companies/{id}/bookings - Company closed: company_id=%d, date=%s", companyID, req.Date)
			handlers.RespondUnprocessable(w, domain.KindClosedDay, msgCompanyClosed, nil)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /companies/{id}/bookings - Service not found: company_id=%d, service_id=%d",
				companyID, req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrConfigNotFound):
			h.logger.Error("POST /companies/{id}/bookings - Schedule configuration missing: company_id=%d", companyID)
			handlers.RespondError(w, http.StatusInternalServerError, domain.KindConfiguration, msgScheduleNotFound, nil)

		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /companies/{id}/bookings - Validation failed: company_id=%d, error=%v", companyID, err)
			handlers.RespondDomainError(w, err)

		case errors.Is(err, domain.ErrTransientStore):
			h.logger.Error("POST /companies/{id}/bookings - Store unavailable: company_id=%d, error=%v", companyID, err)
			w.Header().Set("Retry-After", "1")
			handlers.RespondError(w, http.StatusServiceUnavailable, domain.KindTransientStore, msgStoreUnavailable, nil)

		default:
			h.logger.Error("POST /companies/{id}/bookings - Failed to create booking: company_id=%d, error=%v",
				companyID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	response := FromUseCaseResponse(result)

	h.logger.Info("POST /companies/{id}/bookings - Booking created successfully: booking_id=%d, client_id=%d, company_id=%d",
		result.ID, result.ClientID, companyID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
