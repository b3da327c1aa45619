package domain

import "time"

// Event группа разовых слотов с общим названием, описанием и ярлыками.
// Конверт [FirstStartDateTime, LastEndDateTime] производный: пересчитывается
// при каждом изменении состава слотов.
type Event struct {
	ID          int64
	ServiceID   int64
	Title       string
	Description *string
	LabelIDs    []int64

	FirstStartDateTime time.Time
	LastEndDateTime    time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecomputeEnvelope пересчитывает конверт события по текущему составу слотов.
// Возвращает false, если слотов не осталось (конверт не определён).
func (e *Event) RecomputeEnvelope(slots []*OneOffTimeslot) bool {
	if len(slots) == 0 {
		return false
	}

	first := slots[0].StartDateTime
	last := slots[0].EndDateTime

	for _, slot := range slots[1:] {
		if slot.StartDateTime.Before(first) {
			first = slot.StartDateTime
		}
		if slot.EndDateTime.After(last) {
			last = slot.EndDateTime
		}
	}

	e.FirstStartDateTime = first
	e.LastEndDateTime = last
	return true
}
