package oneoffs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	oneoffRepo "github.com/alysesue/bookings-api-sub004/internal/infra/storage/oneoff"
	"github.com/alysesue/bookings-api-sub004/internal/integrations/authservice"
	"github.com/alysesue/bookings-api-sub004/internal/service/oneoffs/models"
	"github.com/alysesue/bookings-api-sub004/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// serialTxManager воспроизводит изоляцию SERIALIZABLE: транзакции
// DoSerializable выполняются строго по очереди.
type serialTxManager struct {
	mu sync.Mutex
}

func (m *serialTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *serialTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

type fakeAuthClient struct {
	denied bool
}

func (f *fakeAuthClient) CheckPermission(ctx context.Context, check authservice.PermissionCheck) error {
	if f.denied {
		return authservice.ErrPermissionDenied
	}
	return nil
}

type fakeOneOffRepo struct {
	slots  map[int64]*domain.OneOffTimeslot
	events map[int64]*domain.Event
	nextID int64
}

func newFakeOneOffRepo() *fakeOneOffRepo {
	return &fakeOneOffRepo{
		slots:  make(map[int64]*domain.OneOffTimeslot),
		events: make(map[int64]*domain.Event),
	}
}

func (f *fakeOneOffRepo) Create(ctx context.Context, slot *domain.OneOffTimeslot) (*domain.OneOffTimeslot, error) {
	f.nextID++
	created := *slot
	created.ID = f.nextID
	f.slots[created.ID] = &created
	return &created, nil
}

func (f *fakeOneOffRepo) Update(ctx context.Context, slot *domain.OneOffTimeslot) (*domain.OneOffTimeslot, error) {
	if _, ok := f.slots[slot.ID]; !ok {
		return nil, oneoffRepo.ErrTimeslotNotFound
	}
	updated := *slot
	f.slots[slot.ID] = &updated
	return &updated, nil
}

func (f *fakeOneOffRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.slots[id]; !ok {
		return oneoffRepo.ErrTimeslotNotFound
	}
	delete(f.slots, id)
	return nil
}

func (f *fakeOneOffRepo) GetByID(ctx context.Context, id int64) (*domain.OneOffTimeslot, error) {
	slot, ok := f.slots[id]
	if !ok {
		return nil, oneoffRepo.ErrTimeslotNotFound
	}
	return slot, nil
}

func (f *fakeOneOffRepo) GetByProvider(ctx context.Context, providerID int64) ([]*domain.OneOffTimeslot, error) {
	var result []*domain.OneOffTimeslot
	for _, slot := range f.slots {
		if slot.ServiceProviderID == providerID {
			result = append(result, slot)
		}
	}
	return result, nil
}

func (f *fakeOneOffRepo) GetByEventID(ctx context.Context, eventID int64) ([]*domain.OneOffTimeslot, error) {
	var result []*domain.OneOffTimeslot
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

func (f *fakeOneOffRepo) UpdateEventEnvelope(ctx context.Context, eventID int64, first, last time.Time) error {
	event, ok := f.events[eventID]
	if !ok {
		return oneoffRepo.ErrEventNotFound
	}
	event.FirstStartDateTime = first
	event.LastEndDateTime = last
	return nil
}

func newTestService(repo *fakeOneOffRepo) *Service {
	return NewService(repo, &fakeAuthClient{}, fakeTxManager{}, nopLogger{})
}

var slotStart = time.Date(2026, time.April, 10, 9, 0, 0, 0, time.UTC)

func createRequest(providerID int64, start, end time.Time) *models.CreateOneOffTimeslotRequest {
	return &models.CreateOneOffTimeslotRequest{
		UserID:            1,
		ServiceProviderID: providerID,
		StartDateTime:     start,
		EndDateTime:       end,
		Capacity:          1,
	}
}

func TestCreate(t *testing.T) {
	repo := newFakeOneOffRepo()
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), createRequest(10, slotStart, slotStart.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, int64(10), created.ServiceProviderID)
	assert.NotZero(t, created.ID)

	// Пересечение со слотом того же исполнителя
	_, err = svc.Create(context.Background(), createRequest(10, slotStart.Add(30*time.Minute), slotStart.Add(90*time.Minute)))
	assert.ErrorIs(t, err, ErrOverlapConflict)

	// У другого исполнителя то же окно свободно
	_, err = svc.Create(context.Background(), createRequest(20, slotStart, slotStart.Add(time.Hour)))
	assert.NoError(t, err)

	// Смежный слот проходит
	_, err = svc.Create(context.Background(), createRequest(10, slotStart.Add(time.Hour), slotStart.Add(2*time.Hour)))
	assert.NoError(t, err)
}

func TestCreate_ConcurrentFirstSlots(t *testing.T) {
	repo := newFakeOneOffRepo()
	svc := NewService(repo, &fakeAuthClient{}, &serialTxManager{}, nopLogger{})

	// Два конкурентных создания первого слота исполнителя: одно проходит,
	// второе натыкается на уже записанного соперника.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), createRequest(10, slotStart, slotStart.Add(time.Hour)))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrOverlapConflict):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
	assert.Len(t, repo.slots, 1)
}

func TestCreate_ValidationBatch(t *testing.T) {
	svc := newTestService(newFakeOneOffRepo())

	_, err := svc.Create(context.Background(), &models.CreateOneOffTimeslotRequest{})
	require.Error(t, err)

	var violations domain.ValidationErrors
	require.ErrorAs(t, err, &violations)
	assert.GreaterOrEqual(t, len(violations), 4)
}

func TestCreate_AccessDenied(t *testing.T) {
	svc := NewService(newFakeOneOffRepo(), &fakeAuthClient{denied: true}, fakeTxManager{}, nopLogger{})

	_, err := svc.Create(context.Background(), createRequest(10, slotStart, slotStart.Add(time.Hour)))
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestCreate_RecomputesEventEnvelope(t *testing.T) {
	repo := newFakeOneOffRepo()
	repo.events[5] = &domain.Event{ID: 5, ServiceID: 1}
	svc := newTestService(repo)

	req := createRequest(10, slotStart, slotStart.Add(time.Hour))
	req.EventID = ptr.Ptr(int64(5))
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, slotStart, repo.events[5].FirstStartDateTime)
	assert.Equal(t, slotStart.Add(time.Hour), repo.events[5].LastEndDateTime)

	// Второй слот расширяет огибающую
	req = createRequest(10, slotStart.Add(2*time.Hour), slotStart.Add(3*time.Hour))
	req.EventID = ptr.Ptr(int64(5))
	_, err = svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, slotStart, repo.events[5].FirstStartDateTime)
	assert.Equal(t, slotStart.Add(3*time.Hour), repo.events[5].LastEndDateTime)
}

func TestCreate_UnknownEvent(t *testing.T) {
	svc := newTestService(newFakeOneOffRepo())

	req := createRequest(10, slotStart, slotStart.Add(time.Hour))
	req.EventID = ptr.Ptr(int64(404))
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestGetByID(t *testing.T) {
	repo := newFakeOneOffRepo()
	svc := newTestService(repo)

	_, err := svc.GetByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrTimeslotNotFound)

	created, err := svc.Create(context.Background(), createRequest(10, slotStart, slotStart.Add(time.Hour)))
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, slotStart, got.StartDateTime)
}

func TestUpdate(t *testing.T) {
	repo := newFakeOneOffRepo()
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), createRequest(10, slotStart, slotStart.Add(time.Hour)))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), createRequest(10, slotStart.Add(2*time.Hour), slotStart.Add(3*time.Hour)))
	require.NoError(t, err)

	// Слот не конфликтует со своей прежней версией
	updated, err := svc.Update(context.Background(), created.ID, &models.UpdateOneOffTimeslotRequest{
		UserID:        1,
		StartDateTime: slotStart.Add(30 * time.Minute),
		EndDateTime:   slotStart.Add(90 * time.Minute),
		Capacity:      3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Capacity)
	assert.Equal(t, int64(10), updated.ServiceProviderID)

	// Но конфликтует с соседним
	_, err = svc.Update(context.Background(), created.ID, &models.UpdateOneOffTimeslotRequest{
		UserID:        1,
		StartDateTime: slotStart.Add(150 * time.Minute),
		EndDateTime:   slotStart.Add(210 * time.Minute),
		Capacity:      1,
	})
	assert.ErrorIs(t, err, ErrOverlapConflict)

	_, err = svc.Update(context.Background(), 999, &models.UpdateOneOffTimeslotRequest{
		UserID:        1,
		StartDateTime: slotStart,
		EndDateTime:   slotStart.Add(time.Hour),
		Capacity:      1,
	})
	assert.ErrorIs(t, err, ErrTimeslotNotFound)
}

func TestDelete(t *testing.T) {
	repo := newFakeOneOffRepo()
	repo.events[5] = &domain.Event{ID: 5, ServiceID: 1}
	svc := newTestService(repo)

	first := createRequest(10, slotStart, slotStart.Add(time.Hour))
	first.EventID = ptr.Ptr(int64(5))
	createdFirst, err := svc.Create(context.Background(), first)
	require.NoError(t, err)

	second := createRequest(10, slotStart.Add(2*time.Hour), slotStart.Add(3*time.Hour))
	second.EventID = ptr.Ptr(int64(5))
	_, err = svc.Create(context.Background(), second)
	require.NoError(t, err)

	// Удаление первого слота сжимает огибающую события
	err = svc.Delete(context.Background(), createdFirst.ID, &models.DeleteOneOffTimeslotRequest{UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, slotStart.Add(2*time.Hour), repo.events[5].FirstStartDateTime)

	err = svc.Delete(context.Background(), createdFirst.ID, &models.DeleteOneOffTimeslotRequest{UserID: 1})
	assert.ErrorIs(t, err, ErrTimeslotNotFound)
}
