package get_schedule

import (
	"context"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	"github.com/alysesue/bookings-api-sub004/internal/service/schedules/models"
)

type ScheduleService interface {
	GetSchedule(ctx context.Context, owner domain.ScheduleOwner) (*models.ScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
