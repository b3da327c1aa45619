package get_availability

import (
	"context"
	"time"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	"github.com/alysesue/bookings-api-sub004/internal/integrations/serviceregistry"
)

// ScheduleRepository интерфейс репозитория еженедельных расписаний
type ScheduleRepository interface {
	GetByProviderIDs(ctx context.Context, providerIDs []int64) ([]*domain.TimeslotsSchedule, error)
	GetByOwner(ctx context.Context, owner domain.ScheduleOwner) (*domain.TimeslotsSchedule, error)
}

// OneOffRepository интерфейс репозитория разовых слотов
type OneOffRepository interface {
	GetByProvidersInRange(ctx context.Context, providerIDs []int64, rangeStart, rangeEnd time.Time) ([]*domain.OneOffTimeslot, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	CountByOneOffTimeslots(ctx context.Context, timeslotIDs []int64, statuses []domain.BookingStatus) (map[int64]int, error)
}

// ServiceRegistryClient интерфейс клиента реестра услуг
type ServiceRegistryClient interface {
	GetService(ctx context.Context, serviceID int64) (*serviceregistry.Service, error)
	GetServiceProviderIDs(ctx context.Context, serviceID int64) ([]int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
