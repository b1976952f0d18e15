package update_schedule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-SchedulingService/internal/api/handlers"
	"github.com/m04kA/SMC-SchedulingService/internal/domain"
	"github.com/m04kA/SMC-SchedulingService/internal/service/config/models"
)

const (
	msgInvalidCompanyID = "ID da empresa inválido"
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

// Handle PUT /api/v1/companies/{companyId}/schedule
// Частичное обновление: поля, которых нет в теле, не меняются.
// Если конфигурации еще нет, она создается от значений по умолчанию.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(mux.Vars(r)["companyId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /companies/{id}/schedule - Invalid company ID: %v", err)
		handlers.RespondInvalidParam(w, "companyId", msgInvalidCompanyID)
		return
	}

	var req models.UpdateScheduleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /companies/{id}/schedule - Invalid request body: %v", err)
		handlers.RespondInvalidPayload(w)
		return
	}

	result, err := h.service.Update(r.Context(), companyID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("PUT /companies/{id}/schedule - Invalid data: company_id=%d, error=%v", companyID, err)
			handlers.RespondDomainError(w, err)

		default:
			h.logger.Error("PUT /companies/{id}/schedule - Failed to update schedule: company_id=%d, error=%v",
				companyID, err)
			handlers.RespondDomainError(w, err)
		}
		return
	}

	h.logger.Info("PUT /companies/{id}/schedule - Schedule updated successfully: company_id=%d", companyID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
