package models

import (
	"errors"
	"time"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// UpdateStatusRequest запрос на обновление статуса бронирования
type UpdateStatusRequest struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"`
}

// GetCitizenBookingsRequest запрос на получение бронирований гражданина
type GetCitizenBookingsRequest struct {
	CitizenID int64   `json:"citizenId"`
	Status    *string `json:"status,omitempty"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                int64  `json:"id"`
	UUID              string `json:"uuid"`
	CitizenID         int64  `json:"citizenId"`
	ServiceID         int64  `json:"serviceId"`
	ServiceProviderID int64  `json:"serviceProviderId"`
	StartDateTime     string `json:"startDateTime"` // ISO 8601
	EndDateTime       string `json:"endDateTime"`
	Status            string `json:"status"`

	OneOffTimeslotID *int64  `json:"oneOffTimeslotId,omitempty"`
	EventID          *int64  `json:"eventId,omitempty"`
	Notes            *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                b.ID,
		UUID:              b.UUID.String(),
		CitizenID:         b.CitizenID,
		ServiceID:         b.ServiceID,
		ServiceProviderID: b.ServiceProviderID,
		StartDateTime:     b.StartDateTime.Format(time.RFC3339),
		EndDateTime:       b.EndDateTime.Format(time.RFC3339),
		Status:            string(b.Status),
		OneOffTimeslotID:  b.OneOffTimeslotID,
		EventID:           b.EventID,
		Notes:             b.Notes,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}

	if b.CancellationReason != nil {
		resp.CancellationReason = b.CancellationReason
	}
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	validStatuses := []domain.BookingStatus{
		domain.StatusPending,
		domain.StatusAccepted,
		domain.StatusRejected,
		domain.StatusCancelled,
		domain.StatusOnHold,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
