package create_booking

import (
	"context"
	"time"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	"github.com/alysesue/bookings-api-sub004/internal/integrations/serviceregistry"
	"github.com/alysesue/bookings-api-sub004/internal/usecase/get_availability"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	CreateBookedSlots(ctx context.Context, bookingID int64, timeslotIDs []int64) error
	GetWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	GetBookingIDsForOneOffTimeslot(ctx context.Context, timeslotID int64, statuses []domain.BookingStatus) ([]int64, error)
}

// ScheduleRepository интерфейс репозитория еженедельных расписаний
type ScheduleRepository interface {
	GetByOwner(ctx context.Context, owner domain.ScheduleOwner) (*domain.TimeslotsSchedule, error)
}

// OneOffRepository интерфейс репозитория разовых слотов
type OneOffRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.OneOffTimeslot, error)
	GetByEventID(ctx context.Context, eventID int64) ([]*domain.OneOffTimeslot, error)
	GetEventByID(ctx context.Context, id int64) (*domain.Event, error)
}

// ServiceRegistryClient интерфейс клиента реестра услуг
type ServiceRegistryClient interface {
	GetService(ctx context.Context, serviceID int64) (*serviceregistry.Service, error)
	GetServiceProviderIDs(ctx context.Context, serviceID int64) ([]int64, error)
}

// AvailabilityLookup интерфейс построителя доступности по исполнителям.
// Используется для автоподбора исполнителя, когда он не указан в запросе
type AvailabilityLookup interface {
	BuildProvidersLookup(ctx context.Context, req *get_availability.Request) (*get_availability.ServiceProvidersLookup, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
