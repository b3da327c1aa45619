package delete_oneoff_timeslot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/alysesue/bookings-api-sub004/internal/api/handlers"
	"github.com/alysesue/bookings-api-sub004/internal/api/middleware"
	oneoffsService "github.com/alysesue/bookings-api-sub004/internal/service/oneoffs"
	"github.com/alysesue/bookings-api-sub004/internal/service/oneoffs/models"
)

const (
	msgInvalidTimeslotID = "некорректный ID слота"
	msgTimeslotNotFound  = "слот не найден"
	msgAccessDenied      = "доступ запрещён"
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

// Handle DELETE /api/v1/oneoff-timeslots/{timeslotId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	timeslotID, err := strconv.ParseInt(vars["timeslotId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /oneoff-timeslots/{id} - Invalid timeslot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTimeslotID)
		return
	}

	userID := middleware.UserID(r.Context())
	req := &models.DeleteOneOffTimeslotRequest{UserID: userID}

	if err := h.service.Delete(r.Context(), timeslotID, req); err != nil {
		switch {
		case errors.Is(err, oneoffsService.ErrTimeslotNotFound):
			h.logger.Warn("DELETE /oneoff-timeslots/{id} - Timeslot not found: timeslot_id=%d", timeslotID)
			handlers.RespondNotFound(w, msgTimeslotNotFound)

		case errors.Is(err, oneoffsService.ErrAccessDenied):
			h.logger.Warn("DELETE /oneoff-timeslots/{id} - Access denied: timeslot_id=%d, user_id=%d", timeslotID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		default:
			h.logger.Error("DELETE /oneoff-timeslots/{id} - Failed: timeslot_id=%d, error=%v", timeslotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /oneoff-timeslots/{id} - Timeslot deleted: timeslot_id=%d", timeslotID)
	w.WriteHeader(http.StatusNoContent)
}
