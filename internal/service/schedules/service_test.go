package schedules

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	scheduleRepo "github.com/alysesue/bookings-api-sub004/internal/infra/storage/schedule"
	"github.com/alysesue/bookings-api-sub004/internal/integrations/authservice"
	"github.com/alysesue/bookings-api-sub004/internal/service/schedules/models"
	"github.com/alysesue/bookings-api-sub004/pkg/types"
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

type fakeScheduleRepo struct {
	schedules map[domain.ScheduleOwner]*domain.TimeslotsSchedule
	nextID    int64
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[domain.ScheduleOwner]*domain.TimeslotsSchedule)}
}

func (f *fakeScheduleRepo) GetByOwner(ctx context.Context, owner domain.ScheduleOwner) (*domain.TimeslotsSchedule, error) {
	schedule, ok := f.schedules[owner]
	if !ok {
		return nil, scheduleRepo.ErrScheduleNotFound
	}
	return schedule, nil
}

func (f *fakeScheduleRepo) GetOrCreateByOwner(ctx context.Context, owner domain.ScheduleOwner) (*domain.TimeslotsSchedule, error) {
	if schedule, ok := f.schedules[owner]; ok {
		return schedule, nil
	}
	f.nextID++
	schedule := &domain.TimeslotsSchedule{ID: f.nextID, Owner: owner}
	f.schedules[owner] = schedule
	return schedule, nil
}

func (f *fakeScheduleRepo) CreateItem(ctx context.Context, scheduleID int64, item *domain.TimeslotItem) (*domain.TimeslotItem, error) {
	f.nextID++
	created := *item
	created.ID = f.nextID
	for owner, schedule := range f.schedules {
		if schedule.ID == scheduleID {
			schedule.Items = append(schedule.Items, created)
			f.schedules[owner] = schedule
		}
	}
	return &created, nil
}

func (f *fakeScheduleRepo) UpdateItem(ctx context.Context, item *domain.TimeslotItem) (*domain.TimeslotItem, error) {
	for _, schedule := range f.schedules {
		for i := range schedule.Items {
			if schedule.Items[i].ID == item.ID {
				schedule.Items[i] = *item
				return item, nil
			}
		}
	}
	return nil, scheduleRepo.ErrItemNotFound
}

func (f *fakeScheduleRepo) DeleteItem(ctx context.Context, id int64) error {
	for _, schedule := range f.schedules {
		for i := range schedule.Items {
			if schedule.Items[i].ID == id {
				schedule.Items = append(schedule.Items[:i], schedule.Items[i+1:]...)
				return nil
			}
		}
	}
	return scheduleRepo.ErrItemNotFound
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

func newTestService(repo *fakeScheduleRepo) *Service {
	return NewService(repo, &fakeAuthClient{}, fakeTxManager{}, nopLogger{})
}

func addRequest(weekday int, start, end string, capacity int) *models.AddTimeslotItemRequest {
	return &models.AddTimeslotItemRequest{
		UserID:    1,
		Weekday:   weekday,
		StartTime: start,
		EndTime:   end,
		Capacity:  capacity,
	}
}

func TestAddItem(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newTestService(repo)
	owner := domain.ProviderOwner(10)

	created, err := svc.AddItem(context.Background(), owner, addRequest(1, "09:00", "10:00", 2))
	require.NoError(t, err)
	assert.Equal(t, 1, created.Weekday)
	assert.Equal(t, "09:00", created.StartTime)
	assert.Equal(t, 2, created.Capacity)

	// Пересечение в тот же день недели отбивается
	_, err = svc.AddItem(context.Background(), owner, addRequest(1, "09:30", "10:30", 1))
	assert.ErrorIs(t, err, ErrOverlapConflict)

	// Смежный интервал проходит
	_, err = svc.AddItem(context.Background(), owner, addRequest(1, "10:00", "11:00", 1))
	assert.NoError(t, err)
}

func TestAddItem_ConcurrentFirstInserts(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := NewService(repo, &fakeAuthClient{}, &serialTxManager{}, nopLogger{})
	owner := domain.ProviderOwner(10)

	// Два конкурентных добавления в еще пустое расписание: пройти
	// должно ровно одно, второе видит соперника и падает на пересечении.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(context.Background(), owner, addRequest(1, "09:00", "10:00", 1))
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
	require.Len(t, repo.schedules[owner].Items, 1)
}

func TestAddItem_InvalidInput(t *testing.T) {
	svc := newTestService(newFakeScheduleRepo())
	owner := domain.ProviderOwner(10)

	_, err := svc.AddItem(context.Background(), owner, addRequest(7, "09:00", "10:00", 1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddItem(context.Background(), owner, addRequest(1, "9am", "10:00", 1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddItem(context.Background(), owner, addRequest(1, "10:00", "09:00", 1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddItem(context.Background(), owner, addRequest(1, "09:00", "10:00", 0))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAddItem_AccessDenied(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := NewService(repo, &fakeAuthClient{denied: true}, fakeTxManager{}, nopLogger{})

	_, err := svc.AddItem(context.Background(), domain.ProviderOwner(10), addRequest(1, "09:00", "10:00", 1))
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestUpdateItem(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newTestService(repo)
	owner := domain.ServiceOwner(5)

	created, err := svc.AddItem(context.Background(), owner, addRequest(1, "09:00", "10:00", 1))
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), owner, addRequest(1, "11:00", "12:00", 1))
	require.NoError(t, err)

	// Слот не конфликтует со своей прежней версией
	updated, err := svc.UpdateItem(context.Background(), owner, created.ID, &models.UpdateTimeslotItemRequest{
		UserID: 1, Weekday: 1, StartTime: "09:30", EndTime: "10:30", Capacity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Capacity)
	assert.Equal(t, "09:30", updated.StartTime)

	// Но конфликтует с соседним
	_, err = svc.UpdateItem(context.Background(), owner, created.ID, &models.UpdateTimeslotItemRequest{
		UserID: 1, Weekday: 1, StartTime: "11:30", EndTime: "12:30", Capacity: 1,
	})
	assert.ErrorIs(t, err, ErrOverlapConflict)

	_, err = svc.UpdateItem(context.Background(), owner, 999, &models.UpdateTimeslotItemRequest{
		UserID: 1, Weekday: 1, StartTime: "14:00", EndTime: "15:00", Capacity: 1,
	})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveItem(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newTestService(repo)
	owner := domain.ProviderOwner(10)

	created, err := svc.AddItem(context.Background(), owner, addRequest(1, "09:00", "10:00", 1))
	require.NoError(t, err)

	err = svc.RemoveItem(context.Background(), owner, created.ID, &models.RemoveTimeslotItemRequest{UserID: 1})
	require.NoError(t, err)

	err = svc.RemoveItem(context.Background(), owner, created.ID, &models.RemoveTimeslotItemRequest{UserID: 1})
	assert.ErrorIs(t, err, ErrItemNotFound)

	// Расписания другого владельца не существует
	err = svc.RemoveItem(context.Background(), domain.ProviderOwner(99), 1, &models.RemoveTimeslotItemRequest{UserID: 1})
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestGetSchedule(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := newTestService(repo)
	owner := domain.ProviderOwner(10)

	_, err := svc.GetSchedule(context.Background(), owner)
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	start, err := types.ParseTimeOfDay("09:00")
	require.NoError(t, err)
	end, err := types.ParseTimeOfDay("10:00")
	require.NoError(t, err)

	repo.schedules[owner] = &domain.TimeslotsSchedule{
		ID:    1,
		Owner: owner,
		Items: []domain.TimeslotItem{{
			ID: 2, Weekday: time.Monday, StartTime: start, EndTime: end, Capacity: 3,
		}},
	}

	resp, err := svc.GetSchedule(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, "service_provider", resp.OwnerKind)
	assert.Equal(t, int64(10), resp.OwnerID)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "09:00", resp.Items[0].StartTime)
}
