package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
)

// ErrorResponse стандартное тело ошибки API
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ValidationErrorResponse тело ответа с батчем нарушений валидации
type ValidationErrorResponse struct {
	Code       int                     `json:"code"`
	Message    string                  `json:"message"`
	Violations []domain.FieldViolation `json:"violations"`
}

// DecodeJSON декодирует тело запроса в dst, отклоняя неизвестные поля
func DecodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// RespondJSON пишет JSON ответ с указанным статусом
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	// Тело уже не переписать, остаётся только залогировать на стороне вызывающего
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError пишет ошибку с указанным статусом и сообщением
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{
		Code:    status,
		Message: message,
	})
}

// RespondBadRequest пишет ошибку 400
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

// RespondNotFound пишет ошибку 404
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondForbidden пишет ошибку 403
func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

// RespondInternalError пишет ошибку 500 без деталей
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
}

// RespondValidationErrors пишет 400 с полным батчем нарушений
func RespondValidationErrors(w http.ResponseWriter, message string, err error) bool {
	var violations domain.ValidationErrors
	if !errors.As(err, &violations) {
		return false
	}

	RespondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
		Code:       http.StatusBadRequest,
		Message:    message,
		Violations: violations,
	})
	return true
}
