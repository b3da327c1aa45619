package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	bookingRepo "github.com/alysesue/bookings-api-sub004/internal/infra/storage/booking"
	"github.com/alysesue/bookings-api-sub004/internal/integrations/authservice"
	"github.com/alysesue/bookings-api-sub004/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo BookingRepository
	authClient  AuthServiceClient
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	authClient AuthServiceClient,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		authClient:  authClient,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID.
// Гражданин видит только своё бронирование; администратору нужны права
// на управление бронированиями исполнителя.
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d", id, userID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(ctx, booking, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", userID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// GetCitizenBookings получает историю бронирований гражданина.
// Опционально фильтрует по статусу
func (s *Service) GetCitizenBookings(ctx context.Context, req *models.GetCitizenBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetCitizenBookings: fetching bookings for citizen=%d, status=%v", req.CitizenID, req.Status)

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetCitizenBookings: invalid status=%s for citizen=%d", *req.Status, req.CitizenID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByCitizen(ctx, req.CitizenID, domainStatus)
	if err != nil {
		s.logger.Error("GetCitizenBookings: repository error for citizen=%d: %v", req.CitizenID, err)
		return nil, fmt.Errorf("%w: GetCitizenBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetCitizenBookings: successfully fetched %d bookings for citizen=%d", len(bookings), req.CitizenID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование.
// Гражданин может отменить своё бронирование; администратор - любое
// бронирование исполнителя, на управление которым у него есть права.
// Отменённое бронирование перестаёт занимать ёмкость слота.
func (s *Service) Cancel(ctx context.Context, bookingID int64, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d", bookingID, req.UserID)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%d not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", bookingID, booking.Status)
		return ErrCannotCancel
	}

	if err := s.checkUserAccess(ctx, booking, req.UserID); err != nil {
		s.logger.Warn("Cancel: access denied for user=%d to cancel booking id=%d", req.UserID, bookingID)
		return err
	}

	if err := s.bookingRepo.Cancel(ctx, bookingID, req.CancellationReason); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%d not found during cancellation", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d", bookingID)
	return nil
}

// UpdateStatus обновляет статус бронирования (accept/reject/on_hold).
// Доступно только администраторам исполнителя
func (s *Service) UpdateStatus(ctx context.Context, bookingID int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by user=%d",
		bookingID, req.Status, req.UserID)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("UpdateStatus: booking id=%d not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	if err := s.checkManageAccess(ctx, booking.ServiceProviderID, req.UserID); err != nil {
		return err
	}

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	if !isAllowedTransition(booking.Status, newStatus) {
		s.logger.Warn("UpdateStatus: transition %s -> %s not allowed for booking id=%d",
			booking.Status, newStatus, bookingID)
		return ErrInvalidTransition
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, newStatus); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("UpdateStatus: booking id=%d not found during update", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, newStatus)
	return nil
}

// isAllowedTransition проверяет допустимость перехода статуса.
// Отклонённое и отменённое бронирования финальны; отмена идёт через Cancel.
func isAllowedTransition(from, to domain.BookingStatus) bool {
	switch from {
	case domain.StatusPending, domain.StatusOnHold:
		return to == domain.StatusAccepted || to == domain.StatusRejected || to == domain.StatusOnHold
	case domain.StatusAccepted:
		return to == domain.StatusRejected
	default:
		return false
	}
}

// Вспомогательные методы

// checkUserAccess проверяет, что пользователь имеет доступ к бронированию
func (s *Service) checkUserAccess(ctx context.Context, booking *domain.Booking, userID int64) error {
	// Владелец бронирования всегда имеет доступ
	if booking.CitizenID == userID {
		return nil
	}

	if err := s.checkManageAccess(ctx, booking.ServiceProviderID, userID); err != nil {
		return ErrAccessDenied
	}

	return nil
}

// checkManageAccess проверяет право пользователя управлять бронированиями исполнителя
func (s *Service) checkManageAccess(ctx context.Context, serviceProviderID, userID int64) error {
	err := s.authClient.CheckPermission(ctx, authservice.PermissionCheck{
		UserID:     userID,
		Action:     authservice.ActionManageBooking,
		ResourceID: serviceProviderID,
	})
	if err != nil {
		if errors.Is(err, authservice.ErrPermissionDenied) {
			s.logger.Warn("checkManageAccess: user=%d denied for provider=%d", userID, serviceProviderID)
			return ErrAccessDenied
		}
		s.logger.Error("checkManageAccess: auth check failed for user=%d: %v", userID, err)
		return fmt.Errorf("%w: checkManageAccess - auth check failed: %v", ErrInternal, err)
	}

	return nil
}
