package remove_schedule_item

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/alysesue/bookings-api-sub004/internal/api/handlers"
	"github.com/alysesue/bookings-api-sub004/internal/api/middleware"
	schedulesService "github.com/alysesue/bookings-api-sub004/internal/service/schedules"
	"github.com/alysesue/bookings-api-sub004/internal/service/schedules/models"
)

const (
	msgInvalidOwner  = "некорректный владелец расписания"
	msgInvalidItemID = "некорректный ID слота расписания"
	msgItemNotFound  = "слот расписания не найден"
	msgAccessDenied  = "доступ запрещён"
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

// Handle DELETE /api/v1/{ownerKind}/{ownerId}/schedule/items/{itemId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	owner, err := handlers.OwnerFromVars(vars)
	if err != nil {
		h.logger.Warn("DELETE /schedule/items/{id} - Invalid owner: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOwner)
		return
	}

	itemID, err := strconv.ParseInt(vars["itemId"], 10, 64)
	if err != nil {
		h.logger.Warn("DELETE /schedule/items/{id} - Invalid item ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidItemID)
		return
	}

	userID := middleware.UserID(r.Context())
	req := &models.RemoveTimeslotItemRequest{UserID: userID}

	if err := h.service.RemoveItem(r.Context(), owner, itemID, req); err != nil {
		switch {
		case errors.Is(err, schedulesService.ErrItemNotFound), errors.Is(err, schedulesService.ErrScheduleNotFound):
			h.logger.Warn("DELETE /schedule/items/{id} - Not found: owner=%s/%d, item_id=%d", owner.Kind, owner.ID, itemID)
			handlers.RespondNotFound(w, msgItemNotFound)

		case errors.Is(err, schedulesService.ErrAccessDenied):
			h.logger.Warn("DELETE /schedule/items/{id} - Access denied: item_id=%d, user_id=%d", itemID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		default:
			h.logger.Error("DELETE /schedule/items/{id} - Failed: item_id=%d, error=%v", itemID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /schedule/items/{id} - Item removed: owner=%s/%d, item_id=%d", owner.Kind, owner.ID, itemID)
	w.WriteHeader(http.StatusNoContent)
}
