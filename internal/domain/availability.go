package domain

import (
	"errors"
	"sort"
	"time"
)

// ErrInvalidLabelFilterMode возвращается при неизвестном режиме фильтрации ярлыков
var ErrInvalidLabelFilterMode = errors.New("domain: invalid label filter mode")

// LabelFilterMode режим фильтрации по ярлыкам
type LabelFilterMode string

const (
	// FilterIntersection слот должен нести ВСЕ запрошенные ярлыки
	FilterIntersection LabelFilterMode = "intersection"
	// FilterUnion слот должен нести ХОТЯ БЫ ОДИН запрошенный ярлык
	FilterUnion LabelFilterMode = "union"
)

// ParseLabelFilterMode парсит режим фильтрации; пустая строка = intersection
func ParseLabelFilterMode(s string) (LabelFilterMode, error) {
	switch LabelFilterMode(s) {
	case "":
		return FilterIntersection, nil
	case FilterIntersection:
		return FilterIntersection, nil
	case FilterUnion:
		return FilterUnion, nil
	default:
		return "", ErrInvalidLabelFilterMode
	}
}

// Label непрозрачный ключ фильтрации; движок не владеет справочником ярлыков
type Label struct {
	ID         int64
	Text       string
	CategoryID *int64
}

// OccurrenceSource источник вхождения
type OccurrenceSource string

const (
	SourceRecurring OccurrenceSource = "recurring"
	SourceOneOff    OccurrenceSource = "one_off"
)

// Occurrence конкретный датированный интервал, развернутый из правила
// регулярного расписания или взятый из разового слота
type Occurrence struct {
	StartDateTime     time.Time
	EndDateTime       time.Time
	Capacity          int
	AvailabilityCount int
	Source            OccurrenceSource
	ServiceProviderID int64

	// Заполняются только для разовых слотов; регулярные вхождения ярлыков не несут
	OneOffTimeslotID *int64
	EventID          *int64
	LabelIDs         []int64
}

// IsFull returns true if the occurrence has no spare capacity
func (o *Occurrence) IsFull() bool {
	return o.AvailabilityCount <= 0
}

// MatchesLabels применяет фильтр по ярлыкам.
// intersection: ярлыки вхождения должны включать все запрошенные.
// union: достаточно одного общего ярлыка.
// Вхождения без ярлыков отбрасываются при любом непустом фильтре.
func (o *Occurrence) MatchesLabels(requested []int64, mode LabelFilterMode) bool {
	if len(requested) == 0 {
		return true
	}
	if len(o.LabelIDs) == 0 {
		return false
	}

	have := make(map[int64]struct{}, len(o.LabelIDs))
	for _, id := range o.LabelIDs {
		have[id] = struct{}{}
	}

	switch mode {
	case FilterUnion:
		for _, id := range requested {
			if _, ok := have[id]; ok {
				return true
			}
		}
		return false
	default: // intersection
		for _, id := range requested {
			if _, ok := have[id]; !ok {
				return false
			}
		}
		return true
	}
}

// SortOccurrences сортирует вхождения по возрастанию начала,
// при равенстве - по возрастанию конца
func SortOccurrences(occurrences []Occurrence) {
	sort.SliceStable(occurrences, func(i, j int) bool {
		if !occurrences[i].StartDateTime.Equal(occurrences[j].StartDateTime) {
			return occurrences[i].StartDateTime.Before(occurrences[j].StartDateTime)
		}
		return occurrences[i].EndDateTime.Before(occurrences[j].EndDateTime)
	})
}
