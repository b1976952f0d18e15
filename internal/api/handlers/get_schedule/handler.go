package get_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/service/config"
)

const (
	msgInvalidCompanyID = "ID da empresa inválido"
	msgNotFound         = "agenda da empresa não configurada"
)

type Handler struct {
	service ConfigService
	logger  Logger
}

func NewHandler(service ConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/companies/{companyId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(mux.Vars(r)["companyId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /companies/{id}/schedule - Invalid company ID: %v", err)
		handlers.RespondInvalidParam(w, "companyId", msgInvalidCompanyID)
		return
	}

	result, err := h.service.Get(r.Context(), companyID)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			h.logger.Warn("GET /companies/{id}/schedule - Schedule not found: company_id=%d", companyID)
			handlers.RespondNotFound(w, msgNotFound)
			return
		}

		h.logger.Error("GET /companies/{id}/schedule - Failed to get schedule: company_id=%d, error=%v",
			companyID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("GET /companies/{id}/schedule - Schedule retrieved successfully: company_id=%d, overrides=%d",
		companyID, len(result.DayOverrides))
	handlers.RespondJSON(w, http.StatusOK, result)
}
