package update_schedule_item

import (
	"context"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	"github.com/alysesue/bookings-api-sub004/internal/service/schedules/models"
)

type ScheduleService interface {
	UpdateItem(ctx context.Context, owner domain.ScheduleOwner, itemID int64, req *models.UpdateTimeslotItemRequest) (*models.TimeslotItemResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
