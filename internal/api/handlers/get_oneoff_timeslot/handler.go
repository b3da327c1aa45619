package get_oneoff_timeslot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/alysesue/bookings-api-sub004/internal/api/handlers"
	oneoffsService "github.com/alysesue/bookings-api-sub004/internal/service/oneoffs"
)

const (
	msgInvalidTimeslotID = "некорректный ID слота"
	msgTimeslotNotFound  = "слот не найден"
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

// Handle GET /api/v1/oneoff-timeslots/{timeslotId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	timeslotID, err := strconv.ParseInt(vars["timeslotId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /oneoff-timeslots/{id} - Invalid timeslot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidTimeslotID)
		return
	}

	result, err := h.service.GetByID(r.Context(), timeslotID)
	if err != nil {
		switch {
		case errors.Is(err, oneoffsService.ErrTimeslotNotFound):
			h.logger.Warn("GET /oneoff-timeslots/{id} - Timeslot not found: timeslot_id=%d", timeslotID)
			handlers.RespondNotFound(w, msgTimeslotNotFound)

		default:
			h.logger.Error("GET /oneoff-timeslots/{id} - Failed: timeslot_id=%d, error=%v", timeslotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
