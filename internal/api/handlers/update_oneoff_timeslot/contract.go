package update_oneoff_timeslot

import (
	"context"

	"github.com/alysesue/bookings-api-sub004/internal/service/oneoffs/models"
)

type OneOffService interface {
	Update(ctx context.Context, id int64, req *models.UpdateOneOffTimeslotRequest) (*models.OneOffTimeslotResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
