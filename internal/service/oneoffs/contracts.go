package oneoffs

import (
	"context"
	"time"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	"github.com/alysesue/bookings-api-sub004/internal/integrations/authservice"
)

// OneOffRepository интерфейс репозитория разовых слотов и событий
type OneOffRepository interface {
	Create(ctx context.Context, slot *domain.OneOffTimeslot) (*domain.OneOffTimeslot, error)
	Update(ctx context.Context, slot *domain.OneOffTimeslot) (*domain.OneOffTimeslot, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.OneOffTimeslot, error)
	GetByProvider(ctx context.Context, providerID int64) ([]*domain.OneOffTimeslot, error)
	GetByEventID(ctx context.Context, eventID int64) ([]*domain.OneOffTimeslot, error)
	GetEventByID(ctx context.Context, id int64) (*domain.Event, error)
	UpdateEventEnvelope(ctx context.Context, eventID int64, first, last time.Time) error
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
