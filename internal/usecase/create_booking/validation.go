package create_booking

import (
	"fmt"
	"time"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request, now time.Time) error {
	if req.CitizenID <= 0 {
		return fmt.Errorf("%w: citizenID must be positive", ErrInvalidInput)
	}

	if req.ServiceID <= 0 {
		return fmt.Errorf("%w: serviceID must be positive", ErrInvalidInput)
	}

	if req.ServiceProviderID != nil && *req.ServiceProviderID <= 0 {
		return fmt.Errorf("%w: serviceProviderID must be positive", ErrInvalidInput)
	}

	if req.OneOffTimeslotID != nil && req.EventID != nil {
		return fmt.Errorf("%w: oneOffTimeslotID and eventID are mutually exclusive", ErrInvalidInput)
	}

	// Окно события берётся из его огибающей
	if req.EventID != nil {
		return nil
	}

	if req.StartDateTime.IsZero() || req.EndDateTime.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidInput)
	}

	if !req.StartDateTime.Before(req.EndDateTime) {
		return fmt.Errorf("%w: start must be before end", ErrInvalidDateRange)
	}

	if req.StartDateTime.Before(now) {
		return ErrBookingInPast
	}

	return nil
}
