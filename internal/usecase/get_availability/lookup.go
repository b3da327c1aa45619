package get_availability

import (
	"sort"
	"time"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
)

// timeRange ключ группировки вхождений по точному интервалу
type timeRange struct {
	start int64
	end   int64
}

// ProviderOccurrence вхождение конкретного исполнителя внутри группы
type ProviderOccurrence struct {
	ServiceProviderID int64
	Occurrence        domain.Occurrence
}

// ServiceProvidersLookup аккумулятор вхождений, сгруппированных по точному
// интервалу [start, end). Используется свёрткой по услуге и автоподбором
// исполнителя: обе операции рассуждают в терминах "кто доступен в этом окне".
type ServiceProvidersLookup struct {
	groups map[timeRange][]ProviderOccurrence
	order  []timeRange
}

// NewServiceProvidersLookup создает пустой аккумулятор
func NewServiceProvidersLookup() *ServiceProvidersLookup {
	return &ServiceProvidersLookup{
		groups: make(map[timeRange][]ProviderOccurrence),
	}
}

// AddServiceProvider добавляет вхождение исполнителя в группу его интервала
func (l *ServiceProvidersLookup) AddServiceProvider(providerID int64, occ domain.Occurrence) {
	key := timeRange{start: occ.StartDateTime.UnixNano(), end: occ.EndDateTime.UnixNano()}

	if _, ok := l.groups[key]; !ok {
		l.order = append(l.order, key)
	}

	l.groups[key] = append(l.groups[key], ProviderOccurrence{
		ServiceProviderID: providerID,
		Occurrence:        occ,
	})
}

// Get возвращает вхождения всех исполнителей для точного интервала
func (l *ServiceProvidersLookup) Get(start, end time.Time) []ProviderOccurrence {
	return l.groups[timeRange{start: start.UnixNano(), end: end.UnixNano()}]
}

// Groups возвращает группы в порядке возрастания интервалов
func (l *ServiceProvidersLookup) Groups() [][]ProviderOccurrence {
	sorted := make([]timeRange, len(l.order))
	copy(sorted, l.order)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].start != sorted[j].start {
			return sorted[i].start < sorted[j].start
		}
		return sorted[i].end < sorted[j].end
	})

	result := make([][]ProviderOccurrence, 0, len(sorted))
	for _, key := range sorted {
		result = append(result, l.groups[key])
	}
	return result
}

// FirstAvailableProvider возвращает первого исполнителя со свободной ёмкостью
// в указанном окне; false - если такого нет
func (l *ServiceProvidersLookup) FirstAvailableProvider(start, end time.Time) (ProviderOccurrence, bool) {
	for _, po := range l.Get(start, end) {
		if !po.Occurrence.IsFull() {
			return po, true
		}
	}
	return ProviderOccurrence{}, false
}
