package get_citizen_bookings

import (
	"context"

	"github.com/alysesue/bookings-api-sub004/internal/service/bookings/models"
)

type BookingService interface {
	GetCitizenBookings(ctx context.Context, req *models.GetCitizenBookingsRequest) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
