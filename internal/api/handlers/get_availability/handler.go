package get_availability

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/alysesue/bookings-api-sub004/internal/api/handlers"
	"github.com/alysesue/bookings-api-sub004/internal/api/middleware"
	getAvailability "github.com/alysesue/bookings-api-sub004/internal/usecase/get_availability"
)

const (
	msgInvalidServiceID   = "некорректный ID услуги"
	msgInvalidQuery       = "некорректные параметры запроса, ожидаются startDate и endDate в формате YYYY-MM-DD"
	msgInvalidDateRange   = "некорректный период запроса"
	msgInvalidLabelFilter = "некорректный режим фильтрации по меткам, ожидается intersection или union"
	msgServiceNotFound    = "услуга не найдена"
	msgProviderNotFound   = "исполнитель не найден"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/services/{serviceId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	serviceID, err := strconv.ParseInt(mux.Vars(r)["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /availability - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	req, err := ParseQuery(serviceID, middleware.UserID(r.Context()), r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /availability - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrServiceNotFound):
			h.logger.Warn("GET /availability - Service not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailability.ErrProviderNotFound):
			h.logger.Warn("GET /availability - Provider not found: service_id=%d", serviceID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, getAvailability.ErrInvalidDateRange):
			h.logger.Warn("GET /availability - Invalid date range: service_id=%d", serviceID)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		case errors.Is(err, getAvailability.ErrInvalidLabelFilter):
			h.logger.Warn("GET /availability - Invalid label filter: service_id=%d", serviceID)
			handlers.RespondBadRequest(w, msgInvalidLabelFilter)

		case errors.Is(err, getAvailability.ErrInvalidInput):
			h.logger.Warn("GET /availability - Invalid input: service_id=%d, error=%v", serviceID, err)
			handlers.RespondBadRequest(w, msgInvalidQuery)

		default:
			h.logger.Error("GET /availability - Failed: service_id=%d, error=%v", serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /availability - %d occurrences: service_id=%d", len(result.Occurrences), serviceID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
