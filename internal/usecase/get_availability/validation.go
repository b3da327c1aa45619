package get_availability

import (
	"fmt"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) (domain.LabelFilterMode, error) {
	if req.ServiceID <= 0 {
		return "", fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.ServiceProviderID != nil && *req.ServiceProviderID <= 0 {
		return "", fmt.Errorf("%w: serviceProviderID must be positive", ErrInvalidInput)
	}

	if req.RangeStart.IsZero() || req.RangeEnd.IsZero() {
		return "", fmt.Errorf("%w: range start and end are required", ErrInvalidInput)
	}

	if !req.RangeStart.Before(req.RangeEnd) {
		return "", fmt.Errorf("%w: range start must be before range end", ErrInvalidDateRange)
	}

	mode, err := domain.ParseLabelFilterMode(req.LabelFilterMode)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidLabelFilter, req.LabelFilterMode)
	}

	return mode, nil
}
