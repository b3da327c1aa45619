package update_schedule_item

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/alysesue/bookings-api-sub004/internal/api/handlers"
	"github.com/alysesue/bookings-api-sub004/internal/api/middleware"
	schedulesService "github.com/alysesue/bookings-api-sub004/internal/service/schedules"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidOwner       = "некорректный владелец расписания"
	msgInvalidItemID      = "некорректный ID слота расписания"
	msgItemNotFound       = "слот расписания не найден"
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

// Handle PUT /api/v1/{ownerKind}/{ownerId}/schedule/items/{itemId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	owner, err := handlers.OwnerFromVars(vars)
	if err != nil {
		h.logger.Warn("PUT /schedule/items/{id} - Invalid owner: %v", err)
		handlers.RespondBadRequest(w, msgInvalidOwner)
		return
	}

	itemID, err := strconv.ParseInt(vars["itemId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /schedule/items/{id} - Invalid item ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidItemID)
		return
	}

	var req UpdateTimeslotItemRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /schedule/items/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	userID := middleware.UserID(r.Context())

	result, err := h.service.UpdateItem(r.Context(), owner, itemID, req.ToServiceRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, schedulesService.ErrItemNotFound), errors.Is(err, schedulesService.ErrScheduleNotFound):
			h.logger.Warn("PUT /schedule/items/{id} - Not found: owner=%s/%d, item_id=%d", owner.Kind, owner.ID, itemID)
			handlers.RespondNotFound(w, msgItemNotFound)

		case errors.Is(err, schedulesService.ErrOverlapConflict):
			h.logger.Warn("PUT /schedule/items/{id} - Overlap conflict: item_id=%d, error=%v", itemID, err)
			handlers.RespondError(w, http.StatusConflict, msgOverlapConflict)

		case errors.Is(err, schedulesService.ErrAccessDenied):
			h.logger.Warn("PUT /schedule/items/{id} - Access denied: item_id=%d, user_id=%d", itemID, userID)
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, schedulesService.ErrInvalidInput):
			h.logger.Warn("PUT /schedule/items/{id} - Invalid input: item_id=%d, error=%v", itemID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("PUT /schedule/items/{id} - Failed: item_id=%d, error=%v", itemID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /schedule/items/{id} - Item updated: owner=%s/%d, item_id=%d", owner.Kind, owner.ID, result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
