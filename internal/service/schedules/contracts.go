package schedules

import (
	"context"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	"github.com/alysesue/bookings-api-sub004/internal/integrations/authservice"
)

// ScheduleRepository интерфейс репозитория еженедельных расписаний
type ScheduleRepository interface {
	GetByOwner(ctx context.Context, owner domain.ScheduleOwner) (*domain.TimeslotsSchedule, error)
	GetOrCreateByOwner(ctx context.Context, owner domain.ScheduleOwner) (*domain.TimeslotsSchedule, error)
	CreateItem(ctx context.Context, scheduleID int64, item *domain.TimeslotItem) (*domain.TimeslotItem, error)
	UpdateItem(ctx context.Context, item *domain.TimeslotItem) (*domain.TimeslotItem, error)
	DeleteItem(ctx context.Context, id int64) error
}

// AuthServiceClient интерфейс клиента для AuthService
type AuthServiceClient interface {
	CheckPermission(ctx context.Context, check authservice.PermissionCheck) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
