package get_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	scheduleStorage "github.com/alysesue/bookings-api-sub004/internal/infra/storage/schedule"
	"github.com/alysesue/bookings-api-sub004/internal/integrations/serviceregistry"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeScheduleRepo struct {
	schedules []*domain.TimeslotsSchedule
	err       error
}

func (f *fakeScheduleRepo) GetByProviderIDs(ctx context.Context, providerIDs []int64) ([]*domain.TimeslotsSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make([]*domain.TimeslotsSchedule, 0)
	for _, schedule := range f.schedules {
		if schedule.Owner.Kind != domain.OwnerServiceProvider {
			continue
		}
		for _, id := range providerIDs {
			if schedule.Owner.ID == id {
				result = append(result, schedule)
			}
		}
	}
	return result, nil
}

func (f *fakeScheduleRepo) GetByOwner(ctx context.Context, owner domain.ScheduleOwner) (*domain.TimeslotsSchedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, schedule := range f.schedules {
		if schedule.Owner == owner {
			return schedule, nil
		}
	}
	return nil, scheduleStorage.ErrScheduleNotFound
}

type fakeOneOffRepo struct {
	slots []*domain.OneOffTimeslot
	err   error
}

func (f *fakeOneOffRepo) GetByProvidersInRange(ctx context.Context, providerIDs []int64, rangeStart, rangeEnd time.Time) ([]*domain.OneOffTimeslot, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := make([]*domain.OneOffTimeslot, 0)
	for _, slot := range f.slots {
		if !slot.StartDateTime.Before(rangeEnd) || !slot.EndDateTime.After(rangeStart) {
			continue
		}
		for _, id := range providerIDs {
			if slot.ServiceProviderID == id {
				result = append(result, slot)
			}
		}
	}
	return result, nil
}

type fakeBookingRepo struct {
	bookings     []*domain.Booking
	oneOffCounts map[int64]int
}

func (f *fakeBookingRepo) GetWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	return f.bookings, nil
}

func (f *fakeBookingRepo) CountByOneOffTimeslots(ctx context.Context, timeslotIDs []int64, statuses []domain.BookingStatus) (map[int64]int, error) {
	if f.oneOffCounts == nil {
		return map[int64]int{}, nil
	}
	return f.oneOffCounts, nil
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

func newTestUseCase(schedules *fakeScheduleRepo, oneoffs *fakeOneOffRepo, bookings *fakeBookingRepo, registry *fakeRegistry) *UseCase {
	return NewUseCase(schedules, oneoffs, bookings, registry, domain.DefaultCapacityPolicy, nopLogger{})
}

func availabilityRequest(serviceID int64, rangeStart, rangeEnd time.Time) *Request {
	return &Request{
		UserID:     100,
		ServiceID:  serviceID,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
	}
}

func TestExecute_ValidationErrors(t *testing.T) {
	uc := newTestUseCase(&fakeScheduleRepo{}, &fakeOneOffRepo{}, &fakeBookingRepo{}, &fakeRegistry{})
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := uc.Execute(context.Background(), availabilityRequest(0, base, base.AddDate(0, 0, 7)))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), availabilityRequest(1, base.AddDate(0, 0, 7), base))
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	req := availabilityRequest(1, base, base.AddDate(0, 0, 7))
	req.LabelFilterMode = "any"
	_, err = uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidLabelFilter)
}

func TestExecute_ServiceNotFound(t *testing.T) {
	registry := &fakeRegistry{serviceErr: serviceregistry.ErrServiceNotFound}
	uc := newTestUseCase(&fakeScheduleRepo{}, &fakeOneOffRepo{}, &fakeBookingRepo{}, registry)

	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := uc.Execute(context.Background(), availabilityRequest(42, base, base.AddDate(0, 0, 7)))
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_ProviderNotInService(t *testing.T) {
	registry := &fakeRegistry{providerIDs: []int64{1, 2}}
	uc := newTestUseCase(&fakeScheduleRepo{}, &fakeOneOffRepo{}, &fakeBookingRepo{}, registry)

	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	req := availabilityRequest(1, base, base.AddDate(0, 0, 7))
	stranger := int64(99)
	req.ServiceProviderID = &stranger

	_, err := uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestExecute_EmptyDataEmptyResult(t *testing.T) {
	registry := &fakeRegistry{providerIDs: []int64{1}}
	uc := newTestUseCase(&fakeScheduleRepo{}, &fakeOneOffRepo{}, &fakeBookingRepo{}, registry)

	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), availabilityRequest(1, base, base.AddDate(0, 0, 7)))
	require.NoError(t, err)
	assert.Empty(t, resp.Occurrences)
}

func TestExecute_RecurringWithConsumption(t *testing.T) {
	// Еженедельное правило пн 09:00-10:00 ёмкостью 2; одно подтверждённое
	// бронирование на 2026-03-02 оставляет одно свободное место
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	schedules := &fakeScheduleRepo{schedules: []*domain.TimeslotsSchedule{
		providerSchedule(1, weeklyItem(t, 1, time.Monday, "09:00", "10:00", 2)),
	}}
	bookings := &fakeBookingRepo{bookings: []*domain.Booking{
		{ServiceProviderID: 1, StartDateTime: start, EndDateTime: end, Status: domain.StatusAccepted},
	}}
	registry := &fakeRegistry{providerIDs: []int64{1}}

	uc := newTestUseCase(schedules, &fakeOneOffRepo{}, bookings, registry)

	rangeStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	req := availabilityRequest(1, rangeStart, rangeStart.AddDate(0, 0, 7))
	provider := int64(1)
	req.ServiceProviderID = &provider

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Occurrences, 1)

	occ := resp.Occurrences[0]
	assert.Equal(t, start, occ.StartDateTime)
	assert.Equal(t, 2, occ.Capacity)
	assert.Equal(t, 1, occ.AvailabilityCount)
	require.NotNil(t, occ.ServiceProviderID)
	assert.Equal(t, int64(1), *occ.ServiceProviderID)
}

func TestExecute_FullyBookedStaysVisible(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	schedules := &fakeScheduleRepo{schedules: []*domain.TimeslotsSchedule{
		providerSchedule(1, weeklyItem(t, 1, time.Monday, "09:00", "10:00", 1)),
	}}
	bookings := &fakeBookingRepo{bookings: []*domain.Booking{
		{ServiceProviderID: 1, StartDateTime: start, EndDateTime: end, Status: domain.StatusPending},
	}}
	registry := &fakeRegistry{providerIDs: []int64{1}}

	uc := newTestUseCase(schedules, &fakeOneOffRepo{}, bookings, registry)

	rangeStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), availabilityRequest(1, rangeStart, rangeStart.AddDate(0, 0, 7)))
	require.NoError(t, err)
	require.Len(t, resp.Occurrences, 1)
	assert.Equal(t, 0, resp.Occurrences[0].AvailabilityCount)
}

func TestExecute_ServiceScheduleDefault(t *testing.T) {
	// Расписание закреплено за самой услугой: исполнитель без собственных
	// правил работает по нему, исполнитель с правилами - только по своим
	schedules := &fakeScheduleRepo{schedules: []*domain.TimeslotsSchedule{
		{ID: 50, Owner: domain.ServiceOwner(1), Items: []domain.TimeslotItem{
			weeklyItem(t, 1, time.Monday, "09:00", "10:00", 2),
		}},
		providerSchedule(2, weeklyItem(t, 2, time.Monday, "14:00", "15:00", 1)),
	}}
	registry := &fakeRegistry{providerIDs: []int64{1, 2}}

	uc := newTestUseCase(schedules, &fakeOneOffRepo{}, &fakeBookingRepo{}, registry)

	rangeStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// Исполнитель 1 не имеет личных правил и наследует окно услуги
	req := availabilityRequest(1, rangeStart, rangeStart.AddDate(0, 0, 7))
	first := int64(1)
	req.ServiceProviderID = &first

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Occurrences, 1)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), resp.Occurrences[0].StartDateTime)
	assert.Equal(t, 2, resp.Occurrences[0].Capacity)

	// Личное расписание исполнителя 2 целиком перекрывает правила услуги
	second := int64(2)
	req.ServiceProviderID = &second

	resp, err = uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Occurrences, 1)
	assert.Equal(t, time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC), resp.Occurrences[0].StartDateTime)

	// Без фиксации исполнителя видны оба окна
	req.ServiceProviderID = nil
	resp, err = uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Occurrences, 2)
}

func TestExecute_LabelFilterModes(t *testing.T) {
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	oneoffs := &fakeOneOffRepo{slots: []*domain.OneOffTimeslot{
		{ID: 1, ServiceProviderID: 1, StartDateTime: day.Add(8 * time.Hour), EndDateTime: day.Add(9 * time.Hour), Capacity: 1, LabelIDs: []int64{1}},
		{ID: 2, ServiceProviderID: 1, StartDateTime: day.Add(5 * time.Hour), EndDateTime: day.Add(6 * time.Hour), Capacity: 1, LabelIDs: []int64{2}},
	}}
	registry := &fakeRegistry{providerIDs: []int64{1}}

	uc := newTestUseCase(&fakeScheduleRepo{}, oneoffs, &fakeBookingRepo{}, registry)

	req := availabilityRequest(1, day, day.AddDate(0, 0, 1))
	req.LabelIDs = []int64{1, 2}

	// intersection: ни один слот не несёт оба ярлыка
	req.LabelFilterMode = "intersection"
	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, resp.Occurrences)

	// union: проходят оба, отсортированы по началу
	req.LabelFilterMode = "union"
	resp, err = uc.Execute(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Occurrences, 2)
	assert.Equal(t, day.Add(5*time.Hour), resp.Occurrences[0].StartDateTime)
	assert.Equal(t, day.Add(8*time.Hour), resp.Occurrences[1].StartDateTime)

	// Без фильтра тоже оба
	req.LabelIDs = nil
	req.LabelFilterMode = ""
	resp, err = uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.Occurrences, 2)
}

func TestExecute_RollupHidesProvider(t *testing.T) {
	// Два исполнителя с одинаковым правилом пн 09:00-10:00: без фиксации
	// исполнителя вхождения сворачиваются, ёмкости суммируются
	schedules := &fakeScheduleRepo{schedules: []*domain.TimeslotsSchedule{
		providerSchedule(1, weeklyItem(t, 1, time.Monday, "09:00", "10:00", 2)),
		providerSchedule(2, weeklyItem(t, 2, time.Monday, "09:00", "10:00", 3)),
	}}
	registry := &fakeRegistry{providerIDs: []int64{1, 2}}

	uc := newTestUseCase(schedules, &fakeOneOffRepo{}, &fakeBookingRepo{}, registry)

	rangeStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), availabilityRequest(1, rangeStart, rangeStart.AddDate(0, 0, 7)))
	require.NoError(t, err)
	require.Len(t, resp.Occurrences, 1)

	occ := resp.Occurrences[0]
	assert.Equal(t, 5, occ.Capacity)
	assert.Equal(t, 5, occ.AvailabilityCount)
	assert.Nil(t, occ.ServiceProviderID)
}

func TestBuildProvidersLookup(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	schedules := &fakeScheduleRepo{schedules: []*domain.TimeslotsSchedule{
		providerSchedule(1, weeklyItem(t, 1, time.Monday, "09:00", "10:00", 1)),
		providerSchedule(2, weeklyItem(t, 2, time.Monday, "09:00", "10:00", 1)),
	}}
	// Первый исполнитель занят целиком
	bookings := &fakeBookingRepo{bookings: []*domain.Booking{
		{ServiceProviderID: 1, StartDateTime: start, EndDateTime: end, Status: domain.StatusAccepted},
	}}
	registry := &fakeRegistry{providerIDs: []int64{1, 2}}

	uc := newTestUseCase(schedules, &fakeOneOffRepo{}, bookings, registry)

	rangeStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	lookup, err := uc.BuildProvidersLookup(context.Background(), availabilityRequest(1, rangeStart, rangeStart.AddDate(0, 0, 7)))
	require.NoError(t, err)

	po, ok := lookup.FirstAvailableProvider(start, end)
	require.True(t, ok)
	assert.Equal(t, int64(2), po.ServiceProviderID)
}
