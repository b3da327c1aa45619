package update_oneoff_timeslot

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
	msgInvalidTimeslotID  = "некорректный ID слота"
	msgValidationFailed   = "запрос не прошёл валидацию"
	msgTimeslotNotFound   = "слот не найден"
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

// Handle PUT /api/v1/oneoff-timeslots/{timeslotId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	timeslotID, err := strconv.ParseInt(vars["timeslotId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /oneoff-timeslots/{id} - Invalid timeslot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTimeslotID)
		return
	}

	var req UpdateOneOffTimeslotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /oneoff-timeslots/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	userID := middleware.UserID(r.Context())

	result, err := h.service.Update(r.Context(), timeslotID, req.ToServiceRequest(userID))
	if err != nil {
		if handlers.RespondValidationErrors(w, msgValidationFailed, err) {
			h.logger.Warn("PUT /oneoff-timeslots/{id} - Validation failed: timeslot_id=%d, error=%v", timeslotID, err)
			return
		}

		switch {
		case errors.Is(err, oneoffsService.ErrTimeslotNotFound):
			h.logger.Warn("PUT /oneoff-timeslots/{id} - Timeslot not found: timeslot_id=%d", timeslotID)
			handlers.RespondNotFound(w, msgTimeslotNotFound)

		case errors.Is(err, oneoffsService.ErrEventNotFound):
			h.logger.Warn("PUT /oneoff-timeslots/{id} - Event not found: timeslot_id=%d, error=%v", timeslotID, err)
			handlers.RespondNotFound(w, msgEventNotFound)

		case errors.Is(err, oneoffsService.ErrOverlapConflict):
			h.logger.Warn("PUT /oneoff-timeslots/{id} - Overlap conflict: timeslot_id=%d, error=%v", timeslotID, err)
			handlers.RespondError(w, http.StatusConflict, msgOverlapConflict)

		case errors.Is(err, oneoffsService.ErrAccessDenied):
			h.logger.Warn("PUT /oneoff-timeslots/{id} - Access denied: timeslot_id=%d, user_id=%d", timeslotID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, oneoffsService.ErrInvalidInput):
			h.logger.Warn("PUT /oneoff-timeslots/{id} - Invalid input: timeslot_id=%d, error=%v", timeslotID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("PUT /oneoff-timeslots/{id} - Failed: timeslot_id=%d, error=%v", timeslotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /oneoff-timeslots/{id} - Timeslot updated: id=%d", result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
