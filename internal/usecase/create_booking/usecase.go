package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	oneoffRepo "github.com/alysesue/bookings-api-sub004/internal/infra/storage/oneoff"
	scheduleRepo "github.com/alysesue/bookings-api-sub004/internal/infra/storage/schedule"
	registryClient "github.com/alysesue/bookings-api-sub004/internal/integrations/serviceregistry"
	"github.com/alysesue/bookings-api-sub004/internal/usecase/get_availability"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo  BookingRepository
	scheduleRepo ScheduleRepository
	oneoffRepo   OneOffRepository
	registry     ServiceRegistryClient
	availability AvailabilityLookup
	txManager    TransactionManager
	policy       domain.CapacityPolicy
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	oneoffRepo OneOffRepository,
	registry ServiceRegistryClient,
	availability AvailabilityLookup,
	txManager TransactionManager,
	policy domain.CapacityPolicy,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:  bookingRepo,
		scheduleRepo: scheduleRepo,
		oneoffRepo:   oneoffRepo,
		registry:     registry,
		availability: availability,
		txManager:    txManager,
		policy:       policy,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверка ёмкости и вставка выполняются в сериализуемой транзакции с
// блокировкой затронутых строк: при гонке за последнее место ровно одна
// из конкурирующих попыток создаёт бронирование, остальные получают
// ErrCapacityExceeded и могут безопасно повторить запрос.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: citizen=%d, service=%d, window=[%s, %s)",
		req.CitizenID, req.ServiceID,
		req.StartDateTime.Format(domain.DateTimeFormat), req.EndDateTime.Format(domain.DateTimeFormat))

	// 1. Валидация входных данных
	now := uc.timeProvider.Now()
	if err := validateRequest(req, now); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Разрешаем услугу и её исполнителей через реестр
	providerIDs, err := uc.resolveProviders(ctx, req)
	if err != nil {
		return nil, err
	}

	// 3. Автоподбор исполнителя, если не указан.
	// Для бронирований по слоту/событию исполнитель берётся из самого слота
	providerID := int64(0)
	if req.ServiceProviderID != nil {
		providerID = *req.ServiceProviderID
	} else if req.OneOffTimeslotID == nil && req.EventID == nil {
		providerID, err = uc.autoAssignProvider(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	var result *domain.Booking

	// 4. Проверка ёмкости и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		switch {
		case req.OneOffTimeslotID != nil:
			result, err = uc.createForOneOff(txCtx, req, providerID, providerIDs)
		case req.EventID != nil:
			result, err = uc.createForEvent(txCtx, req, providerIDs)
		default:
			result, err = uc.createForRecurring(txCtx, req, providerID)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrCapacityExceeded) {
			uc.logger.Warn("CreateBooking: capacity exceeded for citizen=%d, service=%d", req.CitizenID, req.ServiceID)
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d uuid=%s", result.ID, result.UUID)

	return &Response{
		ID:                result.ID,
		UUID:              result.UUID.String(),
		CitizenID:         result.CitizenID,
		ServiceID:         result.ServiceID,
		ServiceProviderID: result.ServiceProviderID,
		StartDateTime:     result.StartDateTime,
		EndDateTime:       result.EndDateTime,
		Status:            string(result.Status),
		OneOffTimeslotID:  result.OneOffTimeslotID,
		EventID:           result.EventID,
		Notes:             result.Notes,
		CreatedAt:         result.CreatedAt,
		UpdatedAt:         result.UpdatedAt,
	}, nil
}

// createForOneOff создает бронирование по разовому слоту
func (uc *UseCase) createForOneOff(ctx context.Context, req *Request, providerID int64, providerIDs []int64) (*domain.Booking, error) {
	slot, err := uc.oneoffRepo.GetByID(ctx, *req.OneOffTimeslotID)
	if err != nil {
		if errors.Is(err, oneoffRepo.ErrTimeslotNotFound) {
			return nil, ErrTimeslotNotFound
		}
		return nil, fmt.Errorf("%w: failed to get timeslot: %v", ErrInternal, err)
	}

	if providerID != 0 && slot.ServiceProviderID != providerID {
		return nil, ErrProviderNotFound
	}
	if !containsID(providerIDs, slot.ServiceProviderID) {
		return nil, ErrProviderNotFound
	}

	// Окно бронирования обязано совпадать со слотом
	if !req.StartDateTime.Equal(slot.StartDateTime) || !req.EndDateTime.Equal(slot.EndDateTime) {
		return nil, ErrOccurrenceNotFound
	}

	if err := uc.checkOneOffCapacity(ctx, slot); err != nil {
		return nil, err
	}

	booking, err := uc.insertBooking(ctx, req, slot.ServiceProviderID, slot.StartDateTime, slot.EndDateTime)
	if err != nil {
		return nil, err
	}

	if err := uc.bookingRepo.CreateBookedSlots(ctx, booking.ID, []int64{slot.ID}); err != nil {
		return nil, fmt.Errorf("%w: failed to create booked slot: %v", ErrInternal, err)
	}

	return booking, nil
}

// createForEvent создает бронирование события: занимается место в каждом
// слоте события, окно бронирования - огибающая события
func (uc *UseCase) createForEvent(ctx context.Context, req *Request, providerIDs []int64) (*domain.Booking, error) {
	event, err := uc.oneoffRepo.GetEventByID(ctx, *req.EventID)
	if err != nil {
		if errors.Is(err, oneoffRepo.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("%w: failed to get event: %v", ErrInternal, err)
	}

	slots, err := uc.oneoffRepo.GetByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get event timeslots: %v", ErrInternal, err)
	}
	if len(slots) == 0 {
		return nil, ErrOccurrenceNotFound
	}

	// Слоты события принадлежат одному исполнителю
	providerID := slots[0].ServiceProviderID
	for _, slot := range slots[1:] {
		if slot.ServiceProviderID != providerID {
			return nil, fmt.Errorf("%w: event spans multiple providers", ErrInvalidInput)
		}
	}

	if req.ServiceProviderID != nil && providerID != *req.ServiceProviderID {
		return nil, ErrProviderNotFound
	}
	if !containsID(providerIDs, providerID) {
		return nil, ErrProviderNotFound
	}

	slotIDs := make([]int64, 0, len(slots))
	for _, slot := range slots {
		if err := uc.checkOneOffCapacity(ctx, slot); err != nil {
			return nil, err
		}
		slotIDs = append(slotIDs, slot.ID)
	}

	booking, err := uc.insertBooking(ctx, req, providerID, event.FirstStartDateTime, event.LastEndDateTime)
	if err != nil {
		return nil, err
	}

	if err := uc.bookingRepo.CreateBookedSlots(ctx, booking.ID, slotIDs); err != nil {
		return nil, fmt.Errorf("%w: failed to create booked slots: %v", ErrInternal, err)
	}

	return booking, nil
}

// createForRecurring создает бронирование по вхождению еженедельного
// расписания: запрошенное окно должно ТОЧНО совпадать с развёрнутым вхождением.
// Исполнитель без собственных правил работает по расписанию услуги.
func (uc *UseCase) createForRecurring(ctx context.Context, req *Request, providerID int64) (*domain.Booking, error) {
	capacity, found, err := uc.matchProviderOccurrence(ctx, req, providerID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrOccurrenceNotFound
	}

	// Считаем занятость вхождения с блокировкой конкурирующих строк
	bookings, err := uc.bookingRepo.GetWithFilter(ctx, domain.BookingsFilter{
		ServiceProviderIDs: []int64{providerID},
		RangeStart:         &req.StartDateTime,
		RangeEnd:           &req.EndDateTime,
		Statuses:           uc.policy.ConsumingStatuses(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	consumed := 0
	for _, b := range bookings {
		if b.OneOffTimeslotID == nil && b.MatchesOccurrence(req.StartDateTime, req.EndDateTime) && b.ConsumesCapacity(uc.policy) {
			consumed++
		}
	}

	if consumed >= capacity {
		return nil, ErrCapacityExceeded
	}

	return uc.insertBooking(ctx, req, providerID, req.StartDateTime, req.EndDateTime)
}

// matchProviderOccurrence ищет вхождение для исполнителя: сначала в его
// личном расписании, при отсутствии собственных правил - в расписании услуги
func (uc *UseCase) matchProviderOccurrence(ctx context.Context, req *Request, providerID int64) (int, bool, error) {
	schedule, err := uc.scheduleRepo.GetByOwner(ctx, domain.ProviderOwner(providerID))
	if err != nil && !errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
		return 0, false, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	if schedule != nil && len(schedule.Items) > 0 {
		capacity, found := matchRecurringOccurrence(schedule, req.StartDateTime, req.EndDateTime)
		return capacity, found, nil
	}

	serviceSchedule, err := uc.scheduleRepo.GetByOwner(ctx, domain.ServiceOwner(req.ServiceID))
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: failed to get service schedule: %v", ErrInternal, err)
	}

	capacity, found := matchRecurringOccurrence(serviceSchedule, req.StartDateTime, req.EndDateTime)
	return capacity, found, nil
}

// checkOneOffCapacity проверяет свободную ёмкость разового слота с блокировкой
func (uc *UseCase) checkOneOffCapacity(ctx context.Context, slot *domain.OneOffTimeslot) error {
	bookedIDs, err := uc.bookingRepo.GetBookingIDsForOneOffTimeslot(ctx, slot.ID, uc.policy.ConsumingStatuses())
	if err != nil {
		return fmt.Errorf("%w: failed to count timeslot consumption: %v", ErrInternal, err)
	}

	if len(bookedIDs) >= slot.Capacity {
		return ErrCapacityExceeded
	}

	return nil
}

// insertBooking вставляет бронирование в статусе pending
func (uc *UseCase) insertBooking(ctx context.Context, req *Request, providerID int64, start, end time.Time) (*domain.Booking, error) {
	booking := &domain.Booking{
		UUID:              uuid.New(),
		CitizenID:         req.CitizenID,
		ServiceID:         req.ServiceID,
		ServiceProviderID: providerID,
		StartDateTime:     start,
		EndDateTime:       end,
		Status:            domain.StatusPending,
		OneOffTimeslotID:  req.OneOffTimeslotID,
		EventID:           req.EventID,
		Notes:             req.Notes,
	}

	created, err := uc.bookingRepo.Create(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
	}

	return created, nil
}

// autoAssignProvider подбирает первого исполнителя со свободной ёмкостью
// в запрошенном окне. Окончательная проверка ёмкости всё равно выполняется
// в транзакции - здесь только выбор кандидата
func (uc *UseCase) autoAssignProvider(ctx context.Context, req *Request) (int64, error) {
	lookup, err := uc.availability.BuildProvidersLookup(ctx, &get_availability.Request{
		UserID:     req.CitizenID,
		ServiceID:  req.ServiceID,
		RangeStart: req.StartDateTime,
		RangeEnd:   req.EndDateTime,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: failed to build providers lookup: %v", err)
		return 0, fmt.Errorf("%w: failed to build providers lookup: %v", ErrInternal, err)
	}

	po, ok := lookup.FirstAvailableProvider(req.StartDateTime, req.EndDateTime)
	if !ok {
		uc.logger.Warn("CreateBooking: no provider available for citizen=%d, service=%d", req.CitizenID, req.ServiceID)
		return 0, ErrNoProviderAvailable
	}

	uc.logger.Info("CreateBooking: auto-assigned provider=%d for citizen=%d", po.ServiceProviderID, req.CitizenID)
	return po.ServiceProviderID, nil
}

// resolveProviders разрешает услугу и проверяет принадлежность исполнителя
func (uc *UseCase) resolveProviders(ctx context.Context, req *Request) ([]int64, error) {
	if _, err := uc.registry.GetService(ctx, req.ServiceID); err != nil {
		if errors.Is(err, registryClient.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	providerIDs, err := uc.registry.GetServiceProviderIDs(ctx, req.ServiceID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get providers for service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get providers: %v", ErrInternal, err)
	}

	if req.ServiceProviderID != nil && !containsID(providerIDs, *req.ServiceProviderID) {
		uc.logger.Warn("CreateBooking: provider id=%d does not belong to service id=%d",
			*req.ServiceProviderID, req.ServiceID)
		return nil, ErrProviderNotFound
	}

	return providerIDs, nil
}

// matchRecurringOccurrence ищет вхождение расписания, ТОЧНО совпадающее
// с запрошенным окном; возвращает его ёмкость
func matchRecurringOccurrence(schedule *domain.TimeslotsSchedule, start, end time.Time) (int, bool) {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())

	for _, item := range schedule.ItemsForDay(day) {
		if item.StartTime.At(day).Equal(start) && item.EndTime.At(day).Equal(end) {
			return item.Capacity, true
		}
	}

	return 0, false
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
