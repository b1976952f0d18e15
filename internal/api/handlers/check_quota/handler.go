package check_quota

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
)

const (
	msgInvalidCompanyID = "ID da empresa inválido"
	msgMissingPhone     = "telefone é obrigatório"
)

type Handler struct {
	service QuotaService
	logger  Logger
}

func NewHandler(service QuotaService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/companies/{companyId}/quota?phone=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(mux.Vars(r)["companyId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /companies/{id}/quota - Invalid company ID: %v", err)
		handlers.RespondInvalidParam(w, "companyId", msgInvalidCompanyID)
		return
	}

	phone := r.URL.Query().Get("phone")
	if phone == "" {
		h.logger.Warn("GET /companies/{id}/quota - Missing phone")
		handlers.RespondInvalidParam(w, "phone", msgMissingPhone)
		return
	}

	status, err := h.service.CheckMonthlyQuota(r.Context(), companyID, phone)
	if err != nil {
		if handlers.IsServerError(err) {
			h.logger.Error("GET /companies/{id}/quota - Failed to check quota: company_id=%d, error=%v", companyID, err)
		} else {
			h.logger.Warn("GET /companies/{id}/quota - Request rejected: company_id=%d, error=%v", companyID, err)
		}
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("GET /companies/{id}/quota - Quota checked: company_id=%d, allowed=%t, current=%d, limit=%d",
		companyID, status.Allowed, status.CurrentCount, status.Limit)
	handlers.RespondJSON(w, http.StatusOK, FromDomain(status))
}
