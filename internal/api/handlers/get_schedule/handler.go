package get_schedule

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alysesue/bookings-api-sub004/internal/api/handlers"
	schedulesService "github.com/alysesue/bookings-api-sub004/internal/service/schedules"
)

const (
	msgInvalidOwner     = "некорректный владелец расписания"
	msgScheduleNotFound = "расписание не найдено"
)

type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/{ownerKind}/{ownerId}/schedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	owner, err := handlers.OwnerFromVars(mux.Vars(r))
	if err != nil {
		h.logger.Warn("GET /schedule - Invalid owner: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOwner)
		return
	}

	result, err := h.service.GetSchedule(r.Context(), owner)
	if err != nil {
		switch {
		case errors.Is(err, schedulesService.ErrScheduleNotFound):
			h.logger.Warn("GET /schedule - Not found: owner=%s/%d", owner.Kind, owner.ID)
			handlers.RespondNotFound(w, msgScheduleNotFound)

		default:
			h.logger.Error("GET /schedule - Failed: owner=%s/%d, error=%v", owner.Kind, owner.ID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /schedule - Success: owner=%s/%d, items=%d", owner.Kind, owner.ID, len(result.Items))
	handlers.RespondJSON(w, http.StatusOK, result)
}
