package get_client_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-SchedulingService/internal/service/clients"
)

const (
	msgInvalidCompanyID = "ID da empresa inválido"
	msgMissingPhone     = "telefone é obrigatório"
)

type Handler struct {
	clients  ClientService
	bookings BookingService
	logger   Logger
}

func NewHandler(clients ClientService, bookings BookingService, logger Logger) *Handler {
	return &Handler{
		clients:  clients,
		bookings: bookings,
		logger:   logger,
	}
}

// Handle GET /api/v1/companies/{companyId}/clients/bookings?phone=
// История записей клиента, включая отмененные
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(mux.Vars(r)["companyId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /companies/{id}/clients/bookings - Invalid company ID: %v", err)
		handlers.RespondInvalidParam(w, "companyId", msgInvalidCompanyID)
		return
	}

	phone := r.URL.Query().Get("phone")
	if phone == "" {
		h.logger.Warn("GET /companies/{id}/clients/bookings - Missing phone")
		handlers.RespondInvalidParam(w, "phone", msgMissingPhone)
		return
	}

	// Клиент ищется только на чтение, неизвестный телефон дает пустую историю
	client, err := h.clients.Lookup(r.Context(), companyID, phone)
	if err != nil {
		if errors.Is(err, clients.ErrClientNotFound) {
			h.logger.Info("GET /companies/{id}/clients/bookings - Unknown client: company_id=%d", companyID)
			handlers.RespondJSON(w, http.StatusOK, models.FromDomainAppointmentList(nil))
			return
		}
		if handlers.IsServerError(err) {
			h.logger.Error("GET /companies/{id}/clients/bookings - Failed to resolve client: company_id=%d, error=%v",
				companyID, err)
		} else {
			h.logger.Warn("GET /companies/{id}/clients/bookings - Invalid phone: company_id=%d, error=%v", companyID, err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	clientID := client.ID
	result, err := h.bookings.GetCompanyBookings(r.Context(), &models.GetCompanyBookingsRequest{
		CompanyID:       companyID,
		ClientID:        &clientID,
		IncludeInactive: true,
	})
	if err != nil {
		h.logger.Error("GET /companies/{id}/clients/bookings - Failed to get bookings: company_id=%d, client_id=%d, error=%v",
			companyID, clientID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("GET /companies/{id}/clients/bookings - Bookings retrieved successfully: company_id=%d, client_id=%d, count=%d",
		companyID, clientID, len(result.Appointments))
	handlers.RespondJSON(w, http.StatusOK, result)
}
