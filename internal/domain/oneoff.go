package domain

import (
	"fmt"
	"time"
)

// OneOffTimeslot разовый датированный слот провайдера.
// Может быть помечен ярлыками и сгруппирован в событие.
type OneOffTimeslot struct {
	ID                int64
	ServiceProviderID int64
	StartDateTime     time.Time
	EndDateTime       time.Time
	Capacity          int
	Title             *string
	Description       *string
	LabelIDs          []int64
	EventID           *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Overlaps returns true if the two slots of the same provider intersect.
// Half-open semantics: a slot ending exactly when another starts is NOT a
// conflict.
func (t *OneOffTimeslot) Overlaps(other *OneOffTimeslot) bool {
	if t.ServiceProviderID != other.ServiceProviderID {
		return false
	}
	return t.StartDateTime.Before(other.EndDateTime) && other.StartDateTime.Before(t.EndDateTime)
}

// HasLabel returns true if the slot carries the given label
func (t *OneOffTimeslot) HasLabel(labelID int64) bool {
	for _, id := range t.LabelIDs {
		if id == labelID {
			return true
		}
	}
	return false
}

// FindOverlapConflict ищет первый слот из existing, пересекающийся с candidate,
// пропуская слот с excludeID (при обновлении слот не конфликтует сам с собой).
// Возвращает ошибку, называющую конфликтующий слот, либо nil.
func FindOverlapConflict(candidate *OneOffTimeslot, existing []*OneOffTimeslot, excludeID int64) error {
	for _, slot := range existing {
		if excludeID != 0 && slot.ID == excludeID {
			continue
		}
		if candidate.Overlaps(slot) {
			return fmt.Errorf("%w: overlaps with one-off timeslot id=%d (%s - %s)",
				ErrOverlapConflict, slot.ID,
				slot.StartDateTime.Format(DateTimeFormat), slot.EndDateTime.Format(DateTimeFormat))
		}
	}
	return nil
}
