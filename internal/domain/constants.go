package domain

// Business validation constants
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 4000

	MinCapacity = 1

	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat     = "15:04"      // HH:MM
	DateFormat     = "2006-01-02" // YYYY-MM-DD
	DateTimeFormat = "2006-01-02T15:04:05Z07:00"
)

// NonConsumingStatuses статусы бронирований, не занимающие место в слоте.
// on_hold здесь отсутствует: занимает ли он место, решает CapacityPolicy.
var NonConsumingStatuses = []BookingStatus{
	StatusRejected,
	StatusCancelled,
}
