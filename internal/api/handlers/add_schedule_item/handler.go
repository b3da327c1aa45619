package add_schedule_item

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alysesue/bookings-api-sub004/internal/api/handlers"
	"github.com/alysesue/bookings-api-sub004/internal/api/middleware"
	schedulesService "github.com/alysesue/bookings-api-sub004/internal/service/schedules"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidOwner       = "некорректный владелец расписания"
	msgOverlapConflict    = "слот пересекается с существующим слотом расписания"
	msgAccessDenied       = "доступ запрещён"
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

// Handle POST /api/v1/{ownerKind}/{ownerId}/schedule/items
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	owner, err := handlers.OwnerFromVars(mux.Vars(r))
	if err != nil {
		h.logger.Warn("POST /schedule/items - Invalid owner: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOwner)
		return
	}

	var req AddTimeslotItemRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /schedule/items - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	userID := middleware.UserID(r.Context())

	result, err := h.service.AddItem(r.Context(), owner, req.ToServiceRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, schedulesService.ErrOverlapConflict):
			h.logger.Warn("POST /schedule/items - Overlap conflict: owner=%s/%d, error=%v", owner.Kind, owner.ID, err)
			handlers.RespondError(w, http.StatusConflict, msgOverlapConflict)

		case errors.Is(err, schedulesService.ErrAccessDenied):
			h.logger.Warn("POST /schedule/items - Access denied: owner=%s/%d, user_id=%d", owner.Kind, owner.ID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, schedulesService.ErrInvalidInput):
			h.logger.Warn("POST /schedule/items - Invalid input: owner=%s/%d, error=%v", owner.Kind, owner.ID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /schedule/items - Failed: owner=%s/%d, error=%v", owner.Kind, owner.ID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /schedule/items - Item created: owner=%s/%d, item_id=%d", owner.Kind, owner.ID, result.ID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
