package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// Сообщения для пользователя (pt-BR)
const (
	msgValidation     = "dados inválidos"
	msgNotFound       = "registro não encontrado"
	msgClosedDay      = "estabelecimento fechado nesta data"
	msgSlotTaken      = "horário indisponível"
	msgQuotaExceeded  = "limite mensal de agendamentos atingido"
	msgConfiguration  = "agenda da empresa não configurada"
	msgUnavailable    = "serviço temporariamente indisponível, tente novamente"
	msgInternalError  = "erro interno do servidor"
	msgInvalidPayload = "corpo da requisição inválido"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Kind    string      `json:"kind"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ValidationDetails поле, не прошедшее проверку
type ValidationDetails struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// QuotaDetails счетчики месячного лимита
type QuotaDetails struct {
	Current int `json:"current"`
	Limit   int `json:"limit"`
}

// DecodeJSON декодирует тело запроса, неизвестные поля считаются ошибкой
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// RespondJSON пишет data как JSON с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError пишет ErrorResponse
func RespondError(w http.ResponseWriter, status int, kind domain.ErrorKind, message string, details interface{}) {
	RespondJSON(w, status, ErrorResponse{Kind: string(kind), Message: message, Details: details})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, domain.KindValidation, message, nil)
}

// RespondInvalidParam 400 с указанием параметра
func RespondInvalidParam(w http.ResponseWriter, field, reason string) {
	RespondError(w, http.StatusBadRequest, domain.KindValidation, msgValidation, ValidationDetails{Field: field, Reason: reason})
}

// RespondInvalidPayload 400 для тела, которое не удалось разобрать
func RespondInvalidPayload(w http.ResponseWriter) {
	RespondBadRequest(w, msgInvalidPayload)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, domain.KindNotFound, message, nil)
}

func RespondConflict(w http.ResponseWriter, kind domain.ErrorKind, message string, details interface{}) {
	RespondError(w, http.StatusConflict, kind, message, details)
}

func RespondUnprocessable(w http.ResponseWriter, kind domain.ErrorKind, message string, details interface{}) {
	RespondError(w, http.StatusUnprocessableEntity, kind, message, details)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, domain.KindInternal, msgInternalError, nil)
}

// RespondDomainError переводит ошибку сервиса в HTTP ответ по ее domain.ErrorKind
func RespondDomainError(w http.ResponseWriter, err error) {
	switch kind := domain.KindOf(err); kind {
	case domain.KindValidation:
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			RespondError(w, http.StatusBadRequest, kind, msgValidation, ValidationDetails{Field: vErr.Field, Reason: vErr.Reason})
			return
		}
		RespondError(w, http.StatusBadRequest, kind, msgValidation, nil)

	case domain.KindNotFound:
		RespondNotFound(w, msgNotFound)

	case domain.KindClosedDay:
		RespondUnprocessable(w, kind, msgClosedDay, nil)

	case domain.KindSlotTaken:
		RespondConflict(w, kind, msgSlotTaken, nil)

	case domain.KindQuotaExceeded:
		var qErr *domain.QuotaExceededError
		if errors.As(err, &qErr) {
			RespondUnprocessable(w, kind, msgQuotaExceeded, QuotaDetails{Current: qErr.Current, Limit: qErr.Limit})
			return
		}
		RespondUnprocessable(w, kind, msgQuotaExceeded, nil)

	case domain.KindConfiguration:
		RespondError(w, http.StatusInternalServerError, kind, msgConfiguration, nil)

	case domain.KindTransientStore:
		w.Header().Set("Retry-After", "1")
		RespondError(w, http.StatusServiceUnavailable, kind, msgUnavailable, nil)

	default:
		RespondInternalError(w)
	}
}

// IsServerError ошибка, которую надо логировать как Error, а не Warn
func IsServerError(err error) bool {
	switch domain.KindOf(err) {
	case domain.KindInternal, domain.KindConfiguration, domain.KindTransientStore:
		return true
	}
	return false
}
