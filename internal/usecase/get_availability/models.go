package get_availability

import (
	"time"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
)

// Request модель запроса доступности
type Request struct {
	UserID            int64      // ID пользователя (для логирования, не влияет на результат)
	ServiceID         int64      // ID услуги
	ServiceProviderID *int64     // Конкретный исполнитель (опционально)
	RangeStart        time.Time  // Начало периода (включительно)
	RangeEnd          time.Time  // Конец периода (исключительно)
	LabelIDs          []int64    // Фильтр по меткам (опционально)
	LabelFilterMode   string     // "intersection" (по умолчанию) или "union"
}

// Response модель ответа со списком вхождений
type Response struct {
	ServiceID   int64        // ID услуги
	RangeStart  time.Time    // Начало периода
	RangeEnd    time.Time    // Конец периода
	Occurrences []Occurrence // Вхождения, отсортированные по началу
}

// Occurrence вхождение доступности в ответе.
// ServiceProviderID скрыт (nil) у свёрнутых по услуге вхождений.
type Occurrence struct {
	StartDateTime     time.Time `json:"startDateTime"`
	EndDateTime       time.Time `json:"endDateTime"`
	Capacity          int       `json:"capacity"`
	AvailabilityCount int       `json:"availabilityCount"`
	ServiceProviderID *int64    `json:"serviceProviderId,omitempty"`
	OneOffTimeslotID  *int64    `json:"oneOffTimeslotId,omitempty"`
	EventID           *int64    `json:"eventId,omitempty"`
	LabelIDs          []int64   `json:"labelIds,omitempty"`
}

// fromDomainOccurrence конвертирует доменное вхождение в модель ответа
func fromDomainOccurrence(occ *domain.Occurrence) Occurrence {
	result := Occurrence{
		StartDateTime:     occ.StartDateTime,
		EndDateTime:       occ.EndDateTime,
		Capacity:          occ.Capacity,
		AvailabilityCount: occ.AvailabilityCount,
		OneOffTimeslotID:  occ.OneOffTimeslotID,
		EventID:           occ.EventID,
		LabelIDs:          occ.LabelIDs,
	}

	if occ.ServiceProviderID != 0 {
		providerID := occ.ServiceProviderID
		result.ServiceProviderID = &providerID
	}

	return result
}
