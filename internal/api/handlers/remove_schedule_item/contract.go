package remove_schedule_item

import (
	"context"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	"github.com/alysesue/bookings-api-sub004/internal/service/schedules/models"
)

type ScheduleService interface {
	RemoveItem(ctx context.Context, owner domain.ScheduleOwner, itemID int64, req *models.RemoveTimeslotItemRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
