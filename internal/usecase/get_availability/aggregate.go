package get_availability

import (
	"time"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
)

// expandRecurring разворачивает правила еженедельных расписаний в датированные
// вхождения по каждому дню периода [rangeStart, rangeEnd).
// День попадает в развёртку, если совпадает день недели и окно действия
// правила покрывает дату; ярлыков регулярные вхождения не несут.
func expandRecurring(schedules []*domain.TimeslotsSchedule, rangeStart, rangeEnd time.Time) []domain.Occurrence {
	occurrences := make([]domain.Occurrence, 0)

	firstDay := time.Date(rangeStart.Year(), rangeStart.Month(), rangeStart.Day(), 0, 0, 0, 0, rangeStart.Location())

	for day := firstDay; day.Before(rangeEnd); day = day.AddDate(0, 0, 1) {
		for _, schedule := range schedules {
			for _, item := range schedule.ItemsForDay(day) {
				occStart := item.StartTime.At(day)
				occEnd := item.EndTime.At(day)

				// Полуоткрытое пересечение с запрошенным периодом
				if !occStart.Before(rangeEnd) || !occEnd.After(rangeStart) {
					continue
				}

				occurrences = append(occurrences, domain.Occurrence{
					StartDateTime:     occStart,
					EndDateTime:       occEnd,
					Capacity:          item.Capacity,
					AvailabilityCount: item.Capacity,
					Source:            domain.SourceRecurring,
					ServiceProviderID: schedule.Owner.ID,
				})
			}
		}
	}

	return occurrences
}

// withServiceSchedule подставляет расписание услуги исполнителям без
// собственных правил: правила услуги действуют как умолчание и целиком
// перекрываются собственным расписанием исполнителя.
func withServiceSchedule(schedules []*domain.TimeslotsSchedule, serviceSchedule *domain.TimeslotsSchedule, providerIDs []int64) []*domain.TimeslotsSchedule {
	if serviceSchedule == nil || len(serviceSchedule.Items) == 0 {
		return schedules
	}

	covered := make(map[int64]bool, len(schedules))
	for _, schedule := range schedules {
		if len(schedule.Items) > 0 {
			covered[schedule.Owner.ID] = true
		}
	}

	result := schedules
	for _, providerID := range providerIDs {
		if covered[providerID] {
			continue
		}
		result = append(result, &domain.TimeslotsSchedule{
			ID:    serviceSchedule.ID,
			Owner: domain.ProviderOwner(providerID),
			Items: serviceSchedule.Items,
		})
	}

	return result
}

// oneOffOccurrences конвертирует разовые слоты в вхождения, сохраняя
// ёмкость, ярлыки и привязку к событию
func oneOffOccurrences(slots []*domain.OneOffTimeslot) []domain.Occurrence {
	occurrences := make([]domain.Occurrence, 0, len(slots))

	for _, slot := range slots {
		slotID := slot.ID
		occurrences = append(occurrences, domain.Occurrence{
			StartDateTime:     slot.StartDateTime,
			EndDateTime:       slot.EndDateTime,
			Capacity:          slot.Capacity,
			AvailabilityCount: slot.Capacity,
			Source:            domain.SourceOneOff,
			ServiceProviderID: slot.ServiceProviderID,
			OneOffTimeslotID:  &slotID,
			EventID:           slot.EventID,
			LabelIDs:          slot.LabelIDs,
		})
	}

	return occurrences
}

// subtractConsumption вычитает занятую ёмкость из вхождений.
// Регулярные вхождения: бронирование занимает вхождение при ТОЧНОМ совпадении
// интервала, того же исполнителя и без ссылки на разовый слот.
// Разовые: по счётчикам строк booked_slots.
// Счётчик доступности никогда не уходит ниже нуля.
func subtractConsumption(
	occurrences []domain.Occurrence,
	bookings []*domain.Booking,
	oneOffCounts map[int64]int,
	policy domain.CapacityPolicy,
) {
	for i := range occurrences {
		occ := &occurrences[i]

		var consumed int
		switch occ.Source {
		case domain.SourceOneOff:
			if occ.OneOffTimeslotID != nil {
				consumed = oneOffCounts[*occ.OneOffTimeslotID]
			}
		default:
			consumed = countRecurringConsumption(occ, bookings, policy)
		}

		available := occ.Capacity - consumed
		if available < 0 {
			available = 0
		}
		occ.AvailabilityCount = available
	}
}

// countRecurringConsumption считает бронирования, занимающие регулярное вхождение
func countRecurringConsumption(occ *domain.Occurrence, bookings []*domain.Booking, policy domain.CapacityPolicy) int {
	count := 0
	for _, booking := range bookings {
		if booking.OneOffTimeslotID != nil {
			continue
		}
		if booking.ServiceProviderID != occ.ServiceProviderID {
			continue
		}
		if !booking.ConsumesCapacity(policy) {
			continue
		}
		if booking.MatchesOccurrence(occ.StartDateTime, occ.EndDateTime) {
			count++
		}
	}
	return count
}

// filterByLabels оставляет вхождения, проходящие фильтр по ярлыкам.
// При пустом фильтре возвращает всё как есть.
func filterByLabels(occurrences []domain.Occurrence, labelIDs []int64, mode domain.LabelFilterMode) []domain.Occurrence {
	if len(labelIDs) == 0 {
		return occurrences
	}

	filtered := make([]domain.Occurrence, 0, len(occurrences))
	for _, occ := range occurrences {
		if occ.MatchesLabels(labelIDs, mode) {
			filtered = append(filtered, occ)
		}
	}
	return filtered
}

// rollupByService сворачивает вхождения разных исполнителей с ТОЧНО
// совпадающими интервалами в одно: ёмкость и доступность суммируются,
// исполнитель скрывается. Частично пересекающиеся интервалы не сливаются.
func rollupByService(occurrences []domain.Occurrence) []domain.Occurrence {
	lookup := NewServiceProvidersLookup()
	for _, occ := range occurrences {
		lookup.AddServiceProvider(occ.ServiceProviderID, occ)
	}

	merged := make([]domain.Occurrence, 0, len(occurrences))
	for _, group := range lookup.Groups() {
		combined := domain.Occurrence{
			StartDateTime: group[0].Occurrence.StartDateTime,
			EndDateTime:   group[0].Occurrence.EndDateTime,
			Source:        group[0].Occurrence.Source,
		}

		labels := make(map[int64]struct{})
		for _, po := range group {
			combined.Capacity += po.Occurrence.Capacity
			combined.AvailabilityCount += po.Occurrence.AvailabilityCount
			for _, id := range po.Occurrence.LabelIDs {
				if _, ok := labels[id]; !ok {
					labels[id] = struct{}{}
					combined.LabelIDs = append(combined.LabelIDs, id)
				}
			}
		}

		merged = append(merged, combined)
	}

	return merged
}
