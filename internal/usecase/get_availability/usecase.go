package get_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	scheduleRepo "github.com/alysesue/bookings-api-sub004/internal/infra/storage/schedule"
	registryClient "github.com/alysesue/bookings-api-sub004/internal/integrations/serviceregistry"
)

// UseCase use case агрегации доступности услуги за период
type UseCase struct {
	scheduleRepo   ScheduleRepository
	oneoffRepo     OneOffRepository
	bookingRepo    BookingRepository
	registryClient ServiceRegistryClient
	policy         domain.CapacityPolicy
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	scheduleRepo ScheduleRepository,
	oneoffRepo OneOffRepository,
	bookingRepo BookingRepository,
	registryClient ServiceRegistryClient,
	policy domain.CapacityPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		scheduleRepo:   scheduleRepo,
		oneoffRepo:     oneoffRepo,
		bookingRepo:    bookingRepo,
		registryClient: registryClient,
		policy:         policy,
		logger:         logger,
	}
}

// Execute выполняет агрегацию доступности.
//
// Шаги:
//  1. Развернуть правила еженедельных расписаний в датированные вхождения;
//     исполнителям без собственных правил подставляется расписание услуги.
//  2. Добавить разовые слоты, пересекающие период.
//  3. Вычесть занятую ёмкость (точное совпадение интервала для регулярных,
//     строки booked_slots для разовых).
//  4. Применить фильтр по ярлыкам.
//  5. Свернуть по услуге, если конкретный исполнитель не запрошен.
//  6. Отсортировать по началу, при равенстве - по концу.
//
// Пустые данные дают пустой результат; полностью занятые вхождения
// возвращаются с нулевой доступностью.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailability: user=%d, service=%d, range=[%s, %s)",
		req.UserID, req.ServiceID,
		req.RangeStart.Format(domain.DateTimeFormat), req.RangeEnd.Format(domain.DateTimeFormat))

	// 1. Валидация входных данных
	mode, err := validateRequest(req)
	if err != nil {
		uc.logger.Warn("GetAvailability: validation failed: %v", err)
		return nil, err
	}

	// 2. Разрешаем услугу и её исполнителей через реестр
	providerIDs, err := uc.resolveProviders(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(providerIDs) == 0 {
		uc.logger.Info("GetAvailability: no providers for service=%d", req.ServiceID)
		return uc.emptyResponse(req), nil
	}

	// 3. Расписания исполнителей плюс расписание услуги как умолчание
	schedules, err := uc.scheduleRepo.GetByProviderIDs(ctx, providerIDs)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get schedules: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedules: %v", ErrInternal, err)
	}

	serviceSchedule, err := uc.getServiceSchedule(ctx, req.ServiceID)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get service schedule: %v", err)
		return nil, fmt.Errorf("%w: failed to get service schedule: %v", ErrInternal, err)
	}
	schedules = withServiceSchedule(schedules, serviceSchedule, providerIDs)

	// 4. Разовые слоты, пересекающие период
	oneOffSlots, err := uc.oneoffRepo.GetByProvidersInRange(ctx, providerIDs, req.RangeStart, req.RangeEnd)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get one-off timeslots: %v", err)
		return nil, fmt.Errorf("%w: failed to get one-off timeslots: %v", ErrInternal, err)
	}

	// 5. Развёртка и слияние источников
	occurrences := expandRecurring(schedules, req.RangeStart, req.RangeEnd)
	occurrences = append(occurrences, oneOffOccurrences(oneOffSlots)...)

	if len(occurrences) == 0 {
		return uc.emptyResponse(req), nil
	}

	// 6. Занятая ёмкость: бронирования периода + счётчики по разовым слотам
	consumingStatuses := uc.policy.ConsumingStatuses()

	bookings, err := uc.bookingRepo.GetWithFilter(ctx, domain.BookingsFilter{
		ServiceProviderIDs: providerIDs,
		RangeStart:         &req.RangeStart,
		RangeEnd:           &req.RangeEnd,
		Statuses:           consumingStatuses,
	})
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	oneOffIDs := make([]int64, 0, len(oneOffSlots))
	for _, slot := range oneOffSlots {
		oneOffIDs = append(oneOffIDs, slot.ID)
	}

	oneOffCounts, err := uc.bookingRepo.CountByOneOffTimeslots(ctx, oneOffIDs, consumingStatuses)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to count one-off consumption: %v", err)
		return nil, fmt.Errorf("%w: failed to count one-off consumption: %v", ErrInternal, err)
	}

	subtractConsumption(occurrences, bookings, oneOffCounts, uc.policy)

	// 7. Фильтр по ярлыкам
	occurrences = filterByLabels(occurrences, req.LabelIDs, mode)

	// 8. Свёртка по услуге, если исполнитель не зафиксирован
	if req.ServiceProviderID == nil {
		occurrences = rollupByService(occurrences)
	}

	// 9. Сортировка и сборка ответа
	domain.SortOccurrences(occurrences)

	result := make([]Occurrence, 0, len(occurrences))
	for i := range occurrences {
		view := fromDomainOccurrence(&occurrences[i])
		if req.ServiceProviderID == nil {
			view.ServiceProviderID = nil
		}
		result = append(result, view)
	}

	uc.logger.Info("GetAvailability: %d occurrences for service=%d", len(result), req.ServiceID)

	return &Response{
		ServiceID:   req.ServiceID,
		RangeStart:  req.RangeStart,
		RangeEnd:    req.RangeEnd,
		Occurrences: result,
	}, nil
}

// BuildProvidersLookup строит аккумулятор вхождений по исполнителям для
// периода: используется автоподбором исполнителя при создании бронирования
func (uc *UseCase) BuildProvidersLookup(ctx context.Context, req *Request) (*ServiceProvidersLookup, error) {
	providerReq := *req
	providerReq.ServiceProviderID = nil

	mode, err := validateRequest(&providerReq)
	if err != nil {
		return nil, err
	}

	providerIDs, err := uc.resolveProviders(ctx, &providerReq)
	if err != nil {
		return nil, err
	}

	lookup := NewServiceProvidersLookup()
	if len(providerIDs) == 0 {
		return lookup, nil
	}

	schedules, err := uc.scheduleRepo.GetByProviderIDs(ctx, providerIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get schedules: %v", ErrInternal, err)
	}

	serviceSchedule, err := uc.getServiceSchedule(ctx, providerReq.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get service schedule: %v", ErrInternal, err)
	}
	schedules = withServiceSchedule(schedules, serviceSchedule, providerIDs)

	oneOffSlots, err := uc.oneoffRepo.GetByProvidersInRange(ctx, providerIDs, providerReq.RangeStart, providerReq.RangeEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get one-off timeslots: %v", ErrInternal, err)
	}

	occurrences := expandRecurring(schedules, providerReq.RangeStart, providerReq.RangeEnd)
	occurrences = append(occurrences, oneOffOccurrences(oneOffSlots)...)

	consumingStatuses := uc.policy.ConsumingStatuses()

	bookings, err := uc.bookingRepo.GetWithFilter(ctx, domain.BookingsFilter{
		ServiceProviderIDs: providerIDs,
		RangeStart:         &providerReq.RangeStart,
		RangeEnd:           &providerReq.RangeEnd,
		Statuses:           consumingStatuses,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	oneOffIDs := make([]int64, 0, len(oneOffSlots))
	for _, slot := range oneOffSlots {
		oneOffIDs = append(oneOffIDs, slot.ID)
	}

	oneOffCounts, err := uc.bookingRepo.CountByOneOffTimeslots(ctx, oneOffIDs, consumingStatuses)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count one-off consumption: %v", ErrInternal, err)
	}

	subtractConsumption(occurrences, bookings, oneOffCounts, uc.policy)

	occurrences = filterByLabels(occurrences, providerReq.LabelIDs, mode)

	for _, occ := range occurrences {
		lookup.AddServiceProvider(occ.ServiceProviderID, occ)
	}

	return lookup, nil
}

// getServiceSchedule читает расписание, закреплённое за самой услугой.
// Его отсутствие не ошибка: услуга может работать только по личным
// расписаниям исполнителей.
func (uc *UseCase) getServiceSchedule(ctx context.Context, serviceID int64) (*domain.TimeslotsSchedule, error) {
	schedule, err := uc.scheduleRepo.GetByOwner(ctx, domain.ServiceOwner(serviceID))
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return schedule, nil
}

// resolveProviders определяет список исполнителей запроса: либо один
// запрошенный (с проверкой принадлежности услуге), либо все из реестра
func (uc *UseCase) resolveProviders(ctx context.Context, req *Request) ([]int64, error) {
	if _, err := uc.registryClient.GetService(ctx, req.ServiceID); err != nil {
		if errors.Is(err, registryClient.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailability: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailability: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	providerIDs, err := uc.registryClient.GetServiceProviderIDs(ctx, req.ServiceID)
	if err != nil {
		uc.logger.Error("GetAvailability: failed to get providers for service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get providers: %v", ErrInternal, err)
	}

	if req.ServiceProviderID == nil {
		return providerIDs, nil
	}

	for _, id := range providerIDs {
		if id == *req.ServiceProviderID {
			return []int64{id}, nil
		}
	}

	uc.logger.Warn("GetAvailability: provider id=%d does not belong to service id=%d",
		*req.ServiceProviderID, req.ServiceID)
	return nil, ErrProviderNotFound
}

func (uc *UseCase) emptyResponse(req *Request) *Response {
	return &Response{
		ServiceID:   req.ServiceID,
		RangeStart:  req.RangeStart,
		RangeEnd:    req.RangeEnd,
		Occurrences: []Occurrence{},
	}
}
