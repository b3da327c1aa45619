package get_citizen_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/alysesue/bookings-api-sub004/internal/api/handlers"
	"github.com/alysesue/bookings-api-sub004/internal/api/middleware"
	bookingsService "github.com/alysesue/bookings-api-sub004/internal/service/bookings"
	"github.com/alysesue/bookings-api-sub004/internal/service/bookings/models"
)

const (
	msgInvalidCitizenID = "некорректный ID гражданина"
	msgInvalidStatus    = "некорректный статус бронирования"
	msgAccessDenied     = "доступ запрещён"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/citizens/{citizenId}/bookings
// Гражданин может смотреть только собственную историю
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	citizenID, err := strconv.ParseInt(mux.Vars(r)["citizenId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /citizens/{id}/bookings - Invalid citizen ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCitizenID)
		return
	}

	userID := middleware.UserID(r.Context())
	if citizenID != userID {
		h.logger.Warn("GET /citizens/{id}/bookings - Access denied: citizen_id=%d, user_id=%d", citizenID, userID)
		handlers.RespondForbidden(w, msgAccessDenied)
		return
	}

	req := &models.GetCitizenBookingsRequest{CitizenID: citizenID}
	if status := r.URL.Query().Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.GetCitizenBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookingsService.ErrInvalidInput):
			h.logger.Warn("GET /citizens/{id}/bookings - Invalid status: citizen_id=%d", citizenID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /citizens/{id}/bookings - Failed: citizen_id=%d, error=%v", citizenID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /citizens/{id}/bookings - %d bookings: citizen_id=%d", len(result.Bookings), citizenID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
