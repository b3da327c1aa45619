package create_booking

import (
	"errors"
	"net/http"

	"github.com/alysesue/bookings-api-sub004/internal/api/handlers"
	"github.com/alysesue/bookings-api-sub004/internal/api/middleware"
	createBooking "github.com/alysesue/bookings-api-sub004/internal/usecase/create_booking"
	"github.com/alysesue/bookings-api-sub004/pkg/metrics"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgCapacityExceeded    = "свободных мест на выбранное время не осталось"
	msgNoProviderAvailable = "нет доступного исполнителя на выбранное время"
	msgServiceNotFound     = "услуга не найдена"
	msgProviderNotFound    = "исполнитель не найден"
	msgTimeslotNotFound    = "разовый слот не найден"
	msgEventNotFound       = "событие не найдено"
	msgOccurrenceNotFound  = "выбранное время не совпадает с расписанием"
	msgBookingInPast       = "нельзя забронировать прошедшее время"
	msgInvalidDateRange    = "некорректное временное окно"
)

type Handler struct {
	useCase CreateBookingUseCase
	metrics *metrics.Metrics
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, m *metrics.Metrics, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		metrics: m,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	citizenID := middleware.UserID(r.Context())
	useCaseReq := req.ToUseCaseRequest(citizenID)

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrCapacityExceeded):
			h.logger.Warn("POST /bookings - Capacity exceeded: citizen_id=%d, service_id=%d", citizenID, req.ServiceID)
			if h.metrics != nil {
				h.metrics.CapacityConflictsTotal.WithLabelValues().Inc()
			}
			handlers.RespondError(w, http.StatusConflict, msgCapacityExceeded)

		case errors.Is(err, createBooking.ErrNoProviderAvailable):
			h.logger.Warn("POST /bookings - No provider available: citizen_id=%d, service_id=%d", citizenID, req.ServiceID)
			handlers.RespondError(w, http.StatusConflict, msgNoProviderAvailable)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			h.logger.Warn("POST /bookings - Service not found: service_id=%d", req.ServiceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrProviderNotFound):
			h.logger.Warn("POST /bookings - Provider not found: citizen_id=%d, service_id=%d", citizenID, req.ServiceID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, createBooking.ErrTimeslotNotFound):
			h.logger.Warn("POST /bookings - Timeslot not found: citizen_id=%d", citizenID)
			handlers.RespondNotFound(w, msgTimeslotNotFound)

		case errors.Is(err, createBooking.ErrEventNotFound):
			h.logger.Warn("POST /bookings - Event not found: citizen_id=%d", citizenID)
			handlers.RespondNotFound(w, msgEventNotFound)

		case errors.Is(err, createBooking.ErrOccurrenceNotFound):
			h.logger.Warn("POST /bookings - Occurrence not found: citizen_id=%d, service_id=%d", citizenID, req.ServiceID)
			handlers.RespondBadRequest(w, msgOccurrenceNotFound)

		case errors.Is(err, createBooking.ErrBookingInPast):
			h.logger.Warn("POST /bookings - Booking in past: citizen_id=%d", citizenID)
			handlers.RespondBadRequest(w, msgBookingInPast)

		case errors.Is(err, createBooking.ErrInvalidDateRange):
			h.logger.Warn("POST /bookings - Invalid date range: citizen_id=%d", citizenID)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: citizen_id=%d, error=%v", citizenID, err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: citizen_id=%d, service_id=%d, error=%v",
				citizenID, req.ServiceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if h.metrics != nil {
		source := "recurring"
		if result.OneOffTimeslotID != nil {
			source = "one_off"
		} else if result.EventID != nil {
			source = "event"
		}
		h.metrics.BookingsCreatedTotal.WithLabelValues(source).Inc()
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%d, citizen_id=%d, service_id=%d",
		result.ID, citizenID, req.ServiceID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
