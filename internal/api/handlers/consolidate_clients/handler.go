package consolidate_clients

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/service/clients"
)

const (
	msgInvalidCompanyID = "ID da empresa inválido"
	msgMissingPhone     = "telefone é obrigatório"
	msgClientNotFound   = "cliente não encontrado"
)

type Handler struct {
	service ClientService
	logger  Logger
}

func NewHandler(service ClientService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/companies/{companyId}/clients/consolidate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(mux.Vars(r)["companyId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /companies/{id}/clients/consolidate - Invalid company ID: %v", err)
		handlers.RespondInvalidParam(w, "companyId", msgInvalidCompanyID)
		return
	}

	var req ConsolidateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /companies/{id}/clients/consolidate - Invalid request body: %v", err)
		handlers.RespondInvalidPayload(w)
		return
	}
	if req.Phone == "" {
		h.logger.Warn("POST /companies/{id}/clients/consolidate - Missing phone")
		handlers.RespondInvalidParam(w, "phone", msgMissingPhone)
		return
	}

	client, err := h.service.Consolidate(r.Context(), companyID, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, clients.ErrClientNotFound):
			h.logger.Warn("POST /companies/{id}/clients/consolidate - Client not found: company_id=%d", companyID)
			handlers.RespondNotFound(w, msgClientNotFound)

		case handlers.IsServerError(err):
			h.logger.Error("POST /companies/{id}/clients/consolidate - Failed to consolidate: company_id=%d, error=%v",
				companyID, err)
			handlers.RespondDomainError(w, err)

		default:
			h.logger.Warn("POST /companies/{id}/clients/consolidate - Request rejected: company_id=%d, error=%v",
				companyID, err)
			handlers.RespondDomainError(w, err)
		}
		return
	}

	h.logger.Info("POST /companies/{id}/clients/consolidate - Clients consolidated: company_id=%d, kept_client_id=%d",
		companyID, client.ID)
	handlers.RespondJSON(w, http.StatusOK, FromDomainClient(client))
}
