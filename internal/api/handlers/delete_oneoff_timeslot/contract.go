package delete_oneoff_timeslot

import (
	"context"

	"github.com/alysesue/bookings-api-sub004/internal/service/oneoffs/models"
)

type OneOffService interface {
	Delete(ctx context.Context, id int64, req *models.DeleteOneOffTimeslotRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
