package add_schedule_item

import (
	"context"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	"github.com/alysesue/bookings-api-sub004/internal/service/schedules/models"
)

type ScheduleService interface {
	AddItem(ctx context.Context, owner domain.ScheduleOwner, req *models.AddTimeslotItemRequest) (*models.TimeslotItemResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
