package domain

import (
	"fmt"
	"time"

	"github.com/alysesue/bookings-api-sub004/pkg/types"
)

// ScheduleOwnerKind вид владельца расписания
type ScheduleOwnerKind string

const (
	OwnerService         ScheduleOwnerKind = "service"
	OwnerServiceProvider ScheduleOwnerKind = "service_provider"
)

// ScheduleOwner владелец расписания: услуга или провайдер, ровно один из двух.
// Вариантный тип вместо пары nullable-полей исключает состояние "оба/ни одного".
type ScheduleOwner struct {
	Kind ScheduleOwnerKind
	ID   int64
}

// ServiceOwner создает владельца-услугу
func ServiceOwner(serviceID int64) ScheduleOwner {
	return ScheduleOwner{Kind: OwnerService, ID: serviceID}
}

// ProviderOwner создает владельца-провайдера
func ProviderOwner(providerID int64) ScheduleOwner {
	return ScheduleOwner{Kind: OwnerServiceProvider, ID: providerID}
}

// TimeslotItem одно правило регулярного недельного расписания
type TimeslotItem struct {
	ID        int64
	Weekday   time.Weekday // 0 = Sunday
	StartTime types.TimeOfDay
	EndTime   types.TimeOfDay
	Capacity  int
	ValidFrom *time.Time // nil = без нижней границы
	ValidTo   *time.Time // nil = без верхней границы

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет инварианты элемента расписания
func (i *TimeslotItem) Validate() error {
	if !i.StartTime.Before(i.EndTime) {
		return fmt.Errorf("%w: %s >= %s", ErrInvalidTimeRange, i.StartTime, i.EndTime)
	}
	if i.Capacity < MinCapacity {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, i.Capacity)
	}
	return nil
}

// CoversDay returns true if the item applies to the given calendar day:
// the weekday matches and the validity window (if any) covers the day
func (i *TimeslotItem) CoversDay(day time.Time) bool {
	if day.Weekday() != i.Weekday {
		return false
	}
	dayOnly := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	if i.ValidFrom != nil && dayOnly.Before(dateOnly(*i.ValidFrom)) {
		return false
	}
	if i.ValidTo != nil && dayOnly.After(dateOnly(*i.ValidTo)) {
		return false
	}
	return true
}

// conflictsWith проверяет пересечение двух правил: один день недели,
// пересекающиеся окна действия и пересекающиеся интервалы [start, end)
func (i *TimeslotItem) conflictsWith(other *TimeslotItem) bool {
	if i.Weekday != other.Weekday {
		return false
	}
	if !validityWindowsIntersect(i, other) {
		return false
	}
	return i.StartTime.Before(other.EndTime) && other.StartTime.Before(i.EndTime)
}

// validityWindowsIntersect проверяет пересечение окон [ValidFrom, ValidTo].
// nil-граница означает отсутствие ограничения с этой стороны.
func validityWindowsIntersect(a, b *TimeslotItem) bool {
	if a.ValidFrom != nil && b.ValidTo != nil && dateOnly(*b.ValidTo).Before(dateOnly(*a.ValidFrom)) {
		return false
	}
	if b.ValidFrom != nil && a.ValidTo != nil && dateOnly(*a.ValidTo).Before(dateOnly(*b.ValidFrom)) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// TimeslotsSchedule регулярное недельное расписание, принадлежащее
// ровно одному владельцу (услуге или провайдеру)
type TimeslotsSchedule struct {
	ID    int64
	Owner ScheduleOwner
	Items []TimeslotItem
}

// AddItem validates the candidate against all existing items and returns a new
// schedule snapshot with the item appended. On conflict the error names the
// conflicting item.
func (s TimeslotsSchedule) AddItem(candidate TimeslotItem) (TimeslotsSchedule, error) {
	if err := candidate.Validate(); err != nil {
		return s, err
	}

	if conflict := s.findConflict(&candidate, 0); conflict != nil {
		return s, overlapError(conflict)
	}

	updated := s.cloneItems()
	updated.Items = append(updated.Items, candidate)
	return updated, nil
}

// UpdateItem replaces the item with the given id after re-validating against
// all siblings. The previous version of the item does not count against itself.
func (s TimeslotsSchedule) UpdateItem(id int64, candidate TimeslotItem) (TimeslotsSchedule, error) {
	if err := candidate.Validate(); err != nil {
		return s, err
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return s, fmt.Errorf("%w: id=%d", ErrItemNotFound, id)
	}

	if conflict := s.findConflict(&candidate, id); conflict != nil {
		return s, overlapError(conflict)
	}

	updated := s.cloneItems()
	candidate.ID = id
	candidate.CreatedAt = s.Items[idx].CreatedAt
	updated.Items[idx] = candidate
	return updated, nil
}

// RemoveItem removes the item with the given id. No booking cleanup happens
// here: a booking referencing a removed recurring slot stays as history.
func (s TimeslotsSchedule) RemoveItem(id int64) (TimeslotsSchedule, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return s, fmt.Errorf("%w: id=%d", ErrItemNotFound, id)
	}

	updated := s.cloneItems()
	updated.Items = append(updated.Items[:idx], updated.Items[idx+1:]...)
	return updated, nil
}

// ItemsForDay возвращает правила, действующие в указанный день
func (s TimeslotsSchedule) ItemsForDay(day time.Time) []TimeslotItem {
	items := make([]TimeslotItem, 0)
	for _, item := range s.Items {
		if item.CoversDay(day) {
			items = append(items, item)
		}
	}
	return items
}

// findConflict ищет первый конфликтующий элемент, пропуская excludeID.
// Линейный проход достаточен: на один день недели приходится меньше
// двадцати правил.
func (s TimeslotsSchedule) findConflict(candidate *TimeslotItem, excludeID int64) *TimeslotItem {
	for i := range s.Items {
		existing := &s.Items[i]
		if excludeID != 0 && existing.ID == excludeID {
			continue
		}
		if existing.conflictsWith(candidate) {
			return existing
		}
	}
	return nil
}

func (s TimeslotsSchedule) indexOf(id int64) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s TimeslotsSchedule) cloneItems() TimeslotsSchedule {
	clone := s
	clone.Items = make([]TimeslotItem, len(s.Items))
	copy(clone.Items, s.Items)
	return clone
}

func overlapError(conflict *TimeslotItem) error {
	return fmt.Errorf("%w: overlaps with timeslot item id=%d (%s %s-%s)",
		ErrOverlapConflict, conflict.ID, conflict.Weekday, conflict.StartTime, conflict.EndTime)
}
