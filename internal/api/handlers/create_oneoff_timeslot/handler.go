package create_oneoff_timeslot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/alysesue/bookings-api-sub004/internal/api/handlers"
	"github.com/alysesue/bookings-api-sub004/internal/api/middleware"
	oneoffsService "github.com/alysesue/bookings-api-sub004/internal/service/oneoffs"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidProviderID  = "некорректный ID исполнителя услуги"
	msgValidationFailed   = "запрос не прошёл валидацию"
	msgEventNotFound      = "событие не найдено"
	msgOverlapConflict    = "слот пересекается с существующим слотом исполнителя"
	msgAccessDenied       = "доступ запрещён"
)

type Handler struct {
	service OneOffService
	logger  Logger
}

func NewHandler(service OneOffService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/service-providers/{providerId}/oneoff-timeslots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	providerID, err := strconv.ParseInt(vars["providerId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /oneoff-timeslots - Invalid provider ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	var req CreateOneOffTimeslotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /oneoff-timeslots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	userID := middleware.UserID(r.Context())

	result, err := h.service.Create(r.Context(), req.ToServiceRequest(userID, providerID))
	if err != nil {
		if handlers.RespondValidationErrors(w, msgValidationFailed, err) {
			h.logger.Warn("POST /oneoff-timeslots - Validation failed: provider_id=%d, error=%v", providerID, err)
			return
		}

		switch {
		case errors.Is(err, oneoffsService.ErrEventNotFound):
			h.logger.Warn("POST /oneoff-timeslots - Event not found: provider_id=%d, error=%v", providerID, err)
			handlers.RespondNotFound(w, msgEventNotFound)

		case errors.Is(err, oneoffsService.ErrOverlapConflict):
			h.logger.Warn("POST /oneoff-timeslots - Overlap conflict: provider_id=%d, error=%v", providerID, err)
			handlers.RespondError(w, http.StatusConflict, msgOverlapConflict)

		case errors.Is(err, oneoffsService.ErrAccessDenied):
			h.logger.Warn("POST /oneoff-timeslots - Access denied: provider_id=%d, user_id=%d", providerID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, oneoffsService.ErrInvalidInput):
			h.logger.Warn("POST /oneoff-timeslots - Invalid input: provider_id=%d, error=%v", providerID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /oneoff-timeslots - Failed: provider_id=%d, error=%v", providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /oneoff-timeslots - Timeslot created: id=%d, provider_id=%d", result.ID, providerID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
