package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	bookingRepo "github.com/alysesue/bookings-api-sub004/internal/infra/storage/booking"
	"github.com/alysesue/bookings-api-sub004/internal/integrations/authservice"
	"github.com/alysesue/bookings-api-sub004/internal/service/bookings/models"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeBookingRepo struct {
	bookings map[int64]*domain.Booking
	statuses map[int64]domain.BookingStatus
	cancels  map[int64]string
}

func newFakeBookingRepo(bookings ...*domain.Booking) *fakeBookingRepo {
	repo := &fakeBookingRepo{
		bookings: make(map[int64]*domain.Booking),
		statuses: make(map[int64]domain.BookingStatus),
		cancels:  make(map[int64]string),
	}
	for _, b := range bookings {
		repo.bookings[b.ID] = b
	}
	return repo
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookingRepo) GetByCitizen(ctx context.Context, citizenID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	result := make([]*domain.Booking, 0)
	for _, b := range f.bookings {
		if b.CitizenID != citizenID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	if _, ok := f.bookings[id]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeBookingRepo) Cancel(ctx context.Context, id int64, reason string) error {
	if _, ok := f.bookings[id]; !ok {
		return bookingRepo.ErrBookingNotFound
	}
	f.cancels[id] = reason
	return nil
}

type fakeAuthClient struct {
	allowedUsers map[int64]bool
}

func (f *fakeAuthClient) CheckPermission(ctx context.Context, check authservice.PermissionCheck) error {
	if f.allowedUsers[check.UserID] {
		return nil
	}
	return authservice.ErrPermissionDenied
}

func testBooking(id, citizenID int64, status domain.BookingStatus) *domain.Booking {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return &domain.Booking{
		ID:                id,
		CitizenID:         citizenID,
		ServiceID:         1,
		ServiceProviderID: 10,
		StartDateTime:     start,
		EndDateTime:       start.Add(time.Hour),
		Status:            status,
	}
}

func newTestService(repo *fakeBookingRepo, adminIDs ...int64) *Service {
	allowed := make(map[int64]bool)
	for _, id := range adminIDs {
		allowed[id] = true
	}
	return NewService(repo, &fakeAuthClient{allowedUsers: allowed}, nopLogger{})
}

func TestGetByID_Access(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, 100, domain.StatusPending))
	svc := newTestService(repo, 500)

	// Владелец видит своё бронирование
	resp, err := svc.GetByID(context.Background(), 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)

	// Администратор исполнителя тоже
	_, err = svc.GetByID(context.Background(), 1, 500)
	assert.NoError(t, err)

	// Посторонний пользователь - нет
	_, err = svc.GetByID(context.Background(), 1, 999)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetByID(context.Background(), 404, 100)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetCitizenBookings_StatusFilter(t *testing.T) {
	repo := newFakeBookingRepo(
		testBooking(1, 100, domain.StatusPending),
		testBooking(2, 100, domain.StatusCancelled),
		testBooking(3, 200, domain.StatusPending),
	)
	svc := newTestService(repo)

	resp, err := svc.GetCitizenBookings(context.Background(), &models.GetCitizenBookingsRequest{CitizenID: 100})
	require.NoError(t, err)
	assert.Len(t, resp.Bookings, 2)

	pending := "pending"
	resp, err = svc.GetCitizenBookings(context.Background(), &models.GetCitizenBookingsRequest{CitizenID: 100, Status: &pending})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(1), resp.Bookings[0].ID)

	bad := "done"
	_, err = svc.GetCitizenBookings(context.Background(), &models.GetCitizenBookingsRequest{CitizenID: 100, Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancel(t *testing.T) {
	repo := newFakeBookingRepo(
		testBooking(1, 100, domain.StatusAccepted),
		testBooking(2, 100, domain.StatusRejected),
	)
	svc := newTestService(repo)

	err := svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 100, CancellationReason: "sick"})
	require.NoError(t, err)
	assert.Equal(t, "sick", repo.cancels[1])

	// Отклонённое бронирование финально
	err = svc.Cancel(context.Background(), 2, &models.CancelBookingRequest{UserID: 100})
	assert.ErrorIs(t, err, ErrCannotCancel)

	// Чужое бронирование отменить нельзя
	err = svc.Cancel(context.Background(), 1, &models.CancelBookingRequest{UserID: 999})
	assert.ErrorIs(t, err, ErrAccessDenied)

	err = svc.Cancel(context.Background(), 404, &models.CancelBookingRequest{UserID: 100})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		from    domain.BookingStatus
		to      string
		allowed bool
	}{
		{domain.StatusPending, "accepted", true},
		{domain.StatusPending, "rejected", true},
		{domain.StatusPending, "on_hold", true},
		{domain.StatusOnHold, "accepted", true},
		{domain.StatusOnHold, "rejected", true},
		{domain.StatusAccepted, "rejected", true},
		{domain.StatusAccepted, "pending", false},
		{domain.StatusAccepted, "on_hold", false},
		{domain.StatusRejected, "accepted", false},
		{domain.StatusCancelled, "accepted", false},
		// Отмена идёт только через Cancel
		{domain.StatusPending, "cancelled", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+tt.to, func(t *testing.T) {
			repo := newFakeBookingRepo(testBooking(1, 100, tt.from))
			svc := newTestService(repo, 500)

			err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{UserID: 500, Status: tt.to})
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, domain.BookingStatus(tt.to), repo.statuses[1])
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestUpdateStatus_Guards(t *testing.T) {
	repo := newFakeBookingRepo(testBooking(1, 100, domain.StatusPending))
	svc := newTestService(repo, 500)

	// Статус меняют только администраторы, даже не владелец
	err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{UserID: 100, Status: "accepted"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	err = svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{UserID: 500, Status: "done"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.UpdateStatus(context.Background(), 404, &models.UpdateStatusRequest{UserID: 500, Status: "accepted"})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
