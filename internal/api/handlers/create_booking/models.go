package create_booking

import (
	"time"

	createBooking "github.com/alysesue/bookings-api-sub004/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceID         int64      `json:"serviceId"`
	ServiceProviderID *int64     `json:"serviceProviderId,omitempty"`
	StartDateTime     *time.Time `json:"startDateTime,omitempty"`
	EndDateTime       *time.Time `json:"endDateTime,omitempty"`
	OneOffTimeslotID  *int64     `json:"oneOffTimeslotId,omitempty"`
	EventID           *int64     `json:"eventId,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID                int64   `json:"id"`
	UUID              string  `json:"uuid"`
	CitizenID         int64   `json:"citizenId"`
	ServiceID         int64   `json:"serviceId"`
	ServiceProviderID int64   `json:"serviceProviderId"`
	StartDateTime     string  `json:"startDateTime"`
	EndDateTime       string  `json:"endDateTime"`
	Status            string  `json:"status"`
	OneOffTimeslotID  *int64  `json:"oneOffTimeslotId,omitempty"`
	EventID           *int64  `json:"eventId,omitempty"`
	Notes             *string `json:"notes,omitempty"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(citizenID int64) *createBooking.Request {
	req := &createBooking.Request{
		CitizenID:         citizenID,
		ServiceID:         r.ServiceID,
		ServiceProviderID: r.ServiceProviderID,
		OneOffTimeslotID:  r.OneOffTimeslotID,
		EventID:           r.EventID,
		Notes:             r.Notes,
	}

	if r.StartDateTime != nil {
		req.StartDateTime = *r.StartDateTime
	}
	if r.EndDateTime != nil {
		req.EndDateTime = *r.EndDateTime
	}

	return req
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingResponse {
	return &BookingResponse{
		ID:                resp.ID,
		UUID:              resp.UUID,
		CitizenID:         resp.CitizenID,
		ServiceID:         resp.ServiceID,
		ServiceProviderID: resp.ServiceProviderID,
		StartDateTime:     resp.StartDateTime.Format(time.RFC3339),
		EndDateTime:       resp.EndDateTime.Format(time.RFC3339),
		Status:            resp.Status,
		OneOffTimeslotID:  resp.OneOffTimeslotID,
		EventID:           resp.EventID,
		Notes:             resp.Notes,
		CreatedAt:         resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         resp.UpdatedAt.Format(time.RFC3339),
	}
}
