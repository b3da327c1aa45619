package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusAccepted  BookingStatus = "accepted"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
	StatusOnHold    BookingStatus = "on_hold"
)

// CapacityPolicy определяет, какие статусы занимают место в слоте.
// Поведение on_hold настраивается: при переносе бронирования место может
// удерживаться до подтверждения, а может освобождаться сразу.
type CapacityPolicy struct {
	OnHoldConsumesCapacity bool
}

// DefaultCapacityPolicy политика по умолчанию: on_hold удерживает место
var DefaultCapacityPolicy = CapacityPolicy{OnHoldConsumesCapacity: true}

// ConsumingStatuses возвращает список статусов, занимающих место
func (p CapacityPolicy) ConsumingStatuses() []BookingStatus {
	statuses := []BookingStatus{StatusPending, StatusAccepted}
	if p.OnHoldConsumesCapacity {
		statuses = append(statuses, StatusOnHold)
	}
	return statuses
}

// Booking represents a citizen booking against a concrete occurrence
type Booking struct {
	ID                int64
	UUID              uuid.UUID
	CitizenID         int64
	ServiceID         int64
	ServiceProviderID int64
	StartDateTime     time.Time
	EndDateTime       time.Time
	Status            BookingStatus

	// Ссылка на разовый слот или событие; nil для бронирований по
	// регулярному расписанию (потребление считается по совпадению интервала)
	OneOffTimeslotID *int64
	EventID          *int64

	Notes              *string
	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ConsumesCapacity returns true if the booking counts against slot capacity
// under the given policy
func (b *Booking) ConsumesCapacity(policy CapacityPolicy) bool {
	switch b.Status {
	case StatusRejected, StatusCancelled:
		return false
	case StatusOnHold:
		return policy.OnHoldConsumesCapacity
	default:
		return true
	}
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusAccepted || b.Status == StatusOnHold
}

// IsCancelled returns true if the booking has been cancelled or rejected
func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled || b.Status == StatusRejected
}

// MatchesOccurrence returns true if the booking consumes the given recurring
// occurrence: the time ranges must match exactly
func (b *Booking) MatchesOccurrence(start, end time.Time) bool {
	return b.StartDateTime.Equal(start) && b.EndDateTime.Equal(end)
}

// BookedSlot связывает бронирование с конкретным разовым слотом.
// Бронирование события может занимать несколько слотов - по строке на каждый.
type BookedSlot struct {
	ID               int64
	BookingID        int64
	OneOffTimeslotID int64
}

// BookingsFilter фильтр для выборки бронирований
type BookingsFilter struct {
	ServiceProviderIDs []int64        // Провайдеры (обязательный параметр)
	RangeStart         *time.Time     // Начало периода (опционально)
	RangeEnd           *time.Time     // Конец периода (опционально)
	Statuses           []BookingStatus // Фильтр по статусам (опционально, если пусто - все)
}
