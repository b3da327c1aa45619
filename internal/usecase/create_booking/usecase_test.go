package create_booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	oneoffRepo "github.com/alysesue/bookings-api-sub004/internal/infra/storage/oneoff"
	scheduleRepo "github.com/alysesue/bookings-api-sub004/internal/infra/storage/schedule"
	"github.com/alysesue/bookings-api-sub004/internal/integrations/serviceregistry"
	"github.com/alysesue/bookings-api-sub004/internal/usecase/get_availability"
	"github.com/alysesue/bookings-api-sub004/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct {
	now time.Time
}

func (f *fixedTime) Now() time.Time { return f.now }

// fakeTxManager имитирует сериализуемость, выполняя транзакции строго
// последовательно
type fakeTxManager struct {
	mu sync.Mutex
}

func (m *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	nextID   int64
	bookings []*domain.Booking
	slots    map[int64][]int64 // bookingID -> timeslotIDs
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{slots: make(map[int64][]int64)}
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	created := *booking
	created.ID = f.nextID
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.bookings = append(f.bookings, &created)
	return &created, nil
}

func (f *fakeBookingRepo) CreateBookedSlots(ctx context.Context, bookingID int64, timeslotIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[bookingID] = append(f.slots[bookingID], timeslotIDs...)
	return nil
}

func (f *fakeBookingRepo) GetWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]*domain.Booking, 0)
	for _, b := range f.bookings {
		for _, providerID := range filter.ServiceProviderIDs {
			if b.ServiceProviderID == providerID {
				result = append(result, b)
			}
		}
	}
	return result, nil
}

func (f *fakeBookingRepo) GetBookingIDsForOneOffTimeslot(ctx context.Context, timeslotID int64, statuses []domain.BookingStatus) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]int64, 0)
	for bookingID, slotIDs := range f.slots {
		for _, id := range slotIDs {
			if id == timeslotID {
				ids = append(ids, bookingID)
			}
		}
	}
	return ids, nil
}

type fakeScheduleRepo struct {
	schedules map[domain.ScheduleOwner]*domain.TimeslotsSchedule
}

func (f *fakeScheduleRepo) GetByOwner(ctx context.Context, owner domain.ScheduleOwner) (*domain.TimeslotsSchedule, error) {
	schedule, ok := f.schedules[owner]
	if !ok {
		return nil, scheduleRepo.ErrScheduleNotFound
	}
	return schedule, nil
}

type fakeOneOffRepo struct {
	slots  map[int64]*domain.OneOffTimeslot
	events map[int64]*domain.Event
}

func (f *fakeOneOffRepo) GetByID(ctx context.Context, id int64) (*domain.OneOffTimeslot, error) {
	slot, ok := f.slots[id]
	if !ok {
		return nil, oneoffRepo.ErrTimeslotNotFound
	}
	return slot, nil
}

func (f *fakeOneOffRepo) GetByEventID(ctx context.Context, eventID int64) ([]*domain.OneOffTimeslot, error) {
	result := make([]*domain.OneOffTimeslot, 0)
	for _, slot := range f.slots {
		if slot.EventID != nil && *slot.EventID == eventID {
			result = append(result, slot)
		}
	}
	return result, nil
}

func (f *fakeOneOffRepo) GetEventByID(ctx context.Context, id int64) (*domain.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, oneoffRepo.ErrEventNotFound
	}
	return event, nil
}

type fakeRegistry struct {
	serviceErr  error
	providerIDs []int64
}

func (f *fakeRegistry) GetService(ctx context.Context, serviceID int64) (*serviceregistry.Service, error) {
	if f.serviceErr != nil {
		return nil, f.serviceErr
	}
	return &serviceregistry.Service{ID: serviceID, Name: "passport renewal"}, nil
}

func (f *fakeRegistry) GetServiceProviderIDs(ctx context.Context, serviceID int64) ([]int64, error) {
	return f.providerIDs, nil
}

type fakeAvailability struct {
	lookup *get_availability.ServiceProvidersLookup
	err    error
}

func (f *fakeAvailability) BuildProvidersLookup(ctx context.Context, req *get_availability.Request) (*get_availability.ServiceProvidersLookup, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.lookup == nil {
		return get_availability.NewServiceProvidersLookup(), nil
	}
	return f.lookup, nil
}

// Фикстуры

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// Понедельник 2026-03-02, попадает в окно правила пн 09:00-10:00
var (
	mondayStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	mondayEnd   = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
)

func weeklySchedule(t *testing.T, owner domain.ScheduleOwner, capacity int) *domain.TimeslotsSchedule {
	t.Helper()
	start, err := types.ParseTimeOfDay("09:00")
	require.NoError(t, err)
	end, err := types.ParseTimeOfDay("10:00")
	require.NoError(t, err)

	return &domain.TimeslotsSchedule{
		ID:    owner.ID,
		Owner: owner,
		Items: []domain.TimeslotItem{{
			ID:        1,
			Weekday:   time.Monday,
			StartTime: start,
			EndTime:   end,
			Capacity:  capacity,
		}},
	}
}

func (e *testEnv) seedSchedule(schedule *domain.TimeslotsSchedule) {
	e.schedules.schedules[schedule.Owner] = schedule
}

type testEnv struct {
	bookings  *fakeBookingRepo
	schedules *fakeScheduleRepo
	oneoffs   *fakeOneOffRepo
	registry  *fakeRegistry
	lookup    *fakeAvailability
	uc        *UseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		bookings:  newFakeBookingRepo(),
		schedules: &fakeScheduleRepo{schedules: make(map[domain.ScheduleOwner]*domain.TimeslotsSchedule)},
		oneoffs:   &fakeOneOffRepo{slots: make(map[int64]*domain.OneOffTimeslot), events: make(map[int64]*domain.Event)},
		registry:  &fakeRegistry{providerIDs: []int64{1}},
		lookup:    &fakeAvailability{},
	}
	env.uc = NewUseCase(
		env.bookings,
		env.schedules,
		env.oneoffs,
		env.registry,
		env.lookup,
		&fakeTxManager{},
		domain.DefaultCapacityPolicy,
		nopLogger{},
	)
	env.uc.timeProvider = &fixedTime{now: testNow}
	return env
}

func recurringRequest(providerID *int64) *Request {
	return &Request{
		CitizenID:         100,
		ServiceID:         1,
		ServiceProviderID: providerID,
		StartDateTime:     mondayStart,
		EndDateTime:       mondayEnd,
	}
}

func TestExecute_Validation(t *testing.T) {
	env := newTestEnv(t)
	providerID := int64(1)

	req := recurringRequest(&providerID)
	req.CitizenID = 0
	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = recurringRequest(&providerID)
	req.StartDateTime, req.EndDateTime = req.EndDateTime, req.StartDateTime
	_, err = env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	req = recurringRequest(&providerID)
	req.StartDateTime = testNow.Add(-time.Hour)
	req.EndDateTime = testNow.Add(time.Hour)
	_, err = env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrBookingInPast)

	// Слот и событие взаимоисключающие
	slotID, eventID := int64(1), int64(2)
	req = recurringRequest(&providerID)
	req.OneOffTimeslotID = &slotID
	req.EventID = &eventID
	_, err = env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_ServiceAndProviderResolution(t *testing.T) {
	env := newTestEnv(t)
	env.registry.serviceErr = serviceregistry.ErrServiceNotFound

	providerID := int64(1)
	_, err := env.uc.Execute(context.Background(), recurringRequest(&providerID))
	assert.ErrorIs(t, err, ErrServiceNotFound)

	env = newTestEnv(t)
	stranger := int64(99)
	_, err = env.uc.Execute(context.Background(), recurringRequest(&stranger))
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestExecute_RecurringHappyPath(t *testing.T) {
	env := newTestEnv(t)
	env.seedSchedule(weeklySchedule(t, domain.ProviderOwner(1), 2))

	providerID := int64(1)
	resp, err := env.uc.Execute(context.Background(), recurringRequest(&providerID))
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ServiceProviderID)
	assert.Equal(t, mondayStart, resp.StartDateTime)
	assert.Equal(t, mondayEnd, resp.EndDateTime)
	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.NotEmpty(t, resp.UUID)
	assert.Nil(t, resp.OneOffTimeslotID)
}

func TestExecute_RecurringNoMatchingOccurrence(t *testing.T) {
	env := newTestEnv(t)
	env.seedSchedule(weeklySchedule(t, domain.ProviderOwner(1), 2))

	providerID := int64(1)

	// Окно шире вхождения
	req := recurringRequest(&providerID)
	req.EndDateTime = mondayEnd.Add(30 * time.Minute)
	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrOccurrenceNotFound)

	// У исполнителя вообще нет расписания
	delete(env.schedules.schedules, domain.ProviderOwner(1))
	_, err = env.uc.Execute(context.Background(), recurringRequest(&providerID))
	assert.ErrorIs(t, err, ErrOccurrenceNotFound)
}

func TestExecute_RecurringServiceScheduleFallback(t *testing.T) {
	// У исполнителя нет личного расписания: окна берутся из расписания,
	// закреплённого за услугой, вместе с его ёмкостью
	env := newTestEnv(t)
	env.seedSchedule(weeklySchedule(t, domain.ServiceOwner(1), 1))

	providerID := int64(1)
	resp, err := env.uc.Execute(context.Background(), recurringRequest(&providerID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ServiceProviderID)
	assert.Equal(t, mondayStart, resp.StartDateTime)

	// Ёмкость окна услуги тоже расходуется
	_, err = env.uc.Execute(context.Background(), recurringRequest(&providerID))
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// Личное расписание перекрывает правила услуги: его окно другое,
	// прежний запрос больше не совпадает ни с одним вхождением
	env = newTestEnv(t)
	env.seedSchedule(weeklySchedule(t, domain.ServiceOwner(1), 1))
	own := weeklySchedule(t, domain.ProviderOwner(1), 1)
	own.Items[0].Weekday = time.Tuesday
	env.seedSchedule(own)

	_, err = env.uc.Execute(context.Background(), recurringRequest(&providerID))
	assert.ErrorIs(t, err, ErrOccurrenceNotFound)
}

func TestExecute_RecurringCapacityExceeded(t *testing.T) {
	env := newTestEnv(t)
	env.seedSchedule(weeklySchedule(t, domain.ProviderOwner(1), 1))

	providerID := int64(1)

	_, err := env.uc.Execute(context.Background(), recurringRequest(&providerID))
	require.NoError(t, err)

	_, err = env.uc.Execute(context.Background(), recurringRequest(&providerID))
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestExecute_RecurringCancelledDoesNotConsume(t *testing.T) {
	env := newTestEnv(t)
	env.seedSchedule(weeklySchedule(t, domain.ProviderOwner(1), 1))
	env.bookings.bookings = append(env.bookings.bookings, &domain.Booking{
		ID:                1,
		ServiceProviderID: 1,
		StartDateTime:     mondayStart,
		EndDateTime:       mondayEnd,
		Status:            domain.StatusCancelled,
	})

	providerID := int64(1)
	_, err := env.uc.Execute(context.Background(), recurringRequest(&providerID))
	assert.NoError(t, err)
}

func TestExecute_ConcurrentLastSeat(t *testing.T) {
	env := newTestEnv(t)
	env.seedSchedule(weeklySchedule(t, domain.ProviderOwner(1), 1))

	providerID := int64(1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.uc.Execute(context.Background(), recurringRequest(&providerID))
		}(i)
	}
	wg.Wait()

	// Ровно одна из конкурирующих попыток успевает занять последнее место
	var success, exceeded int
	for _, err := range errs {
		switch {
		case err == nil:
			success++
		default:
			assert.ErrorIs(t, err, ErrCapacityExceeded)
			exceeded++
		}
	}
	assert.Equal(t, 1, success)
	assert.Equal(t, 1, exceeded)
}

func TestExecute_OneOffHappyPath(t *testing.T) {
	env := newTestEnv(t)
	slotID := int64(5)
	env.oneoffs.slots[slotID] = &domain.OneOffTimeslot{
		ID:                slotID,
		ServiceProviderID: 1,
		StartDateTime:     mondayStart,
		EndDateTime:       mondayEnd,
		Capacity:          1,
	}

	req := recurringRequest(nil)
	req.OneOffTimeslotID = &slotID

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ServiceProviderID)
	require.NotNil(t, resp.OneOffTimeslotID)
	assert.Equal(t, slotID, *resp.OneOffTimeslotID)

	// Слот занят в booked_slots
	ids, err := env.bookings.GetBookingIDsForOneOffTimeslot(context.Background(), slotID, nil)
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	// Второе бронирование упирается в ёмкость
	_, err = env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestExecute_OneOffWindowMustMatchSlot(t *testing.T) {
	env := newTestEnv(t)
	slotID := int64(5)
	env.oneoffs.slots[slotID] = &domain.OneOffTimeslot{
		ID:                slotID,
		ServiceProviderID: 1,
		StartDateTime:     mondayStart,
		EndDateTime:       mondayEnd,
		Capacity:          1,
	}

	req := recurringRequest(nil)
	req.OneOffTimeslotID = &slotID
	req.EndDateTime = mondayEnd.Add(time.Minute)

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrOccurrenceNotFound)
}

func TestExecute_OneOffNotFound(t *testing.T) {
	env := newTestEnv(t)
	missing := int64(404)

	req := recurringRequest(nil)
	req.OneOffTimeslotID = &missing

	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrTimeslotNotFound)
}

func TestExecute_EventBooking(t *testing.T) {
	env := newTestEnv(t)
	eventID := int64(3)

	env.oneoffs.events[eventID] = &domain.Event{
		ID:                 eventID,
		Title:              "naturalisation ceremony",
		FirstStartDateTime: mondayStart,
		LastEndDateTime:    mondayEnd.Add(3 * time.Hour),
	}
	env.oneoffs.slots[10] = &domain.OneOffTimeslot{
		ID: 10, ServiceProviderID: 1, EventID: &eventID,
		StartDateTime: mondayStart, EndDateTime: mondayEnd, Capacity: 1,
	}
	env.oneoffs.slots[11] = &domain.OneOffTimeslot{
		ID: 11, ServiceProviderID: 1, EventID: &eventID,
		StartDateTime: mondayEnd.Add(2 * time.Hour), EndDateTime: mondayEnd.Add(3 * time.Hour), Capacity: 1,
	}

	req := &Request{CitizenID: 100, ServiceID: 1, EventID: &eventID}

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// Окно бронирования - огибающая события
	assert.Equal(t, mondayStart, resp.StartDateTime)
	assert.Equal(t, mondayEnd.Add(3*time.Hour), resp.EndDateTime)

	// Занято место в каждом слоте события
	ids, err := env.bookings.GetBookingIDsForOneOffTimeslot(context.Background(), 10, nil)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	ids, err = env.bookings.GetBookingIDsForOneOffTimeslot(context.Background(), 11, nil)
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	// Второе бронирование отбивается ёмкостью первого же слота
	_, err = env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestExecute_EventNotFound(t *testing.T) {
	env := newTestEnv(t)
	missing := int64(404)

	req := &Request{CitizenID: 100, ServiceID: 1, EventID: &missing}
	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestExecute_AutoAssignProvider(t *testing.T) {
	env := newTestEnv(t)
	env.registry.providerIDs = []int64{1, 2}
	env.seedSchedule(weeklySchedule(t, domain.ProviderOwner(2), 1))

	lookup := get_availability.NewServiceProvidersLookup()
	lookup.AddServiceProvider(2, domain.Occurrence{
		StartDateTime:     mondayStart,
		EndDateTime:       mondayEnd,
		Capacity:          1,
		AvailabilityCount: 1,
		Source:            domain.SourceRecurring,
		ServiceProviderID: 2,
	})
	env.lookup.lookup = lookup

	resp, err := env.uc.Execute(context.Background(), recurringRequest(nil))
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.ServiceProviderID)
}

func TestExecute_NoProviderAvailable(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.uc.Execute(context.Background(), recurringRequest(nil))
	assert.ErrorIs(t, err, ErrNoProviderAvailable)
}
