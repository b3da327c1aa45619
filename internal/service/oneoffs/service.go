package oneoffs

import (
	"context"
	"errors"
	"fmt"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	oneoffRepo "github.com/alysesue/bookings-api-sub004/internal/infra/storage/oneoff"
	"github.com/alysesue/bookings-api-sub004/internal/integrations/authservice"
	"github.com/alysesue/bookings-api-sub004/internal/service/oneoffs/models"
)

// Service сервис для работы с разовыми слотами
type Service struct {
	oneoffRepo OneOffRepository
	authClient AuthServiceClient
	txManager  TransactionManager
	logger     Logger
}

// NewService создает новый экземпляр сервиса разовых слотов
func NewService(
	oneoffRepo OneOffRepository,
	authClient AuthServiceClient,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		oneoffRepo: oneoffRepo,
		authClient: authClient,
		txManager:  txManager,
		logger:     logger,
	}
}

// GetByID получает разовый слот по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.OneOffTimeslotResponse, error) {
	slot, err := s.oneoffRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, oneoffRepo.ErrTimeslotNotFound) {
			return nil, ErrTimeslotNotFound
		}
		s.logger.Error("GetByID: repository error for timeslot id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSlot(slot), nil
}

// Create создает разовый слот исполнителя.
// Все нарушения полей возвращаются батчем; проверка пересечений со
// слотами того же исполнителя выполняется в сериализуемой транзакции,
// чтобы гонка двух первых вставок не прошла проверку одновременно.
func (s *Service) Create(ctx context.Context, req *models.CreateOneOffTimeslotRequest) (*models.OneOffTimeslotResponse, error) {
	s.logger.Info("Create: creating one-off timeslot for provider=%d by user=%d", req.ServiceProviderID, req.UserID)

	if violations := req.Validate(); len(violations) > 0 {
		s.logger.Warn("Create: validation failed for provider=%d: %v", req.ServiceProviderID, violations)
		return nil, violations
	}

	if err := s.checkManageAccess(ctx, req.ServiceProviderID, req.UserID); err != nil {
		return nil, err
	}

	candidate := req.ToDomainSlot()

	var created *domain.OneOffTimeslot
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		existing, err := s.oneoffRepo.GetByProvider(ctx, candidate.ServiceProviderID)
		if err != nil {
			return fmt.Errorf("%w: Create - get provider timeslots: %v", ErrInternal, err)
		}

		if err := domain.FindOverlapConflict(candidate, existing, 0); err != nil {
			return fmt.Errorf("%w: %v", ErrOverlapConflict, err)
		}

		created, err = s.oneoffRepo.Create(ctx, candidate)
		if err != nil {
			return fmt.Errorf("%w: Create - create timeslot: %v", ErrInternal, err)
		}

		if created.EventID != nil {
			if err := s.recomputeEventEnvelope(ctx, *created.EventID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOverlapConflict) || errors.Is(err, ErrEventNotFound) {
			s.logger.Warn("Create: conflict for provider=%d: %v", req.ServiceProviderID, err)
			return nil, err
		}
		s.logger.Error("Create: failed for provider=%d: %v", req.ServiceProviderID, err)
		return nil, err
	}

	s.logger.Info("Create: successfully created timeslot id=%d for provider=%d", created.ID, created.ServiceProviderID)
	return models.FromDomainSlot(created), nil
}

// Update изменяет разовый слот. Слот исключается из проверки пересечений
// с самим собой; проверка и запись идут в сериализуемой транзакции.
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateOneOffTimeslotRequest) (*models.OneOffTimeslotResponse, error) {
	s.logger.Info("Update: updating one-off timeslot id=%d by user=%d", id, req.UserID)

	if violations := req.Validate(); len(violations) > 0 {
		s.logger.Warn("Update: validation failed for timeslot id=%d: %v", id, violations)
		return nil, violations
	}

	var updated *domain.OneOffTimeslot
	err := s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		current, err := s.oneoffRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, oneoffRepo.ErrTimeslotNotFound) {
				return ErrTimeslotNotFound
			}
			return fmt.Errorf("%w: Update - get timeslot: %v", ErrInternal, err)
		}

		if err := s.checkManageAccess(ctx, current.ServiceProviderID, req.UserID); err != nil {
			return err
		}

		candidate := req.ToDomainSlot(id, current.ServiceProviderID)

		existing, err := s.oneoffRepo.GetByProvider(ctx, current.ServiceProviderID)
		if err != nil {
			return fmt.Errorf("%w: Update - get provider timeslots: %v", ErrInternal, err)
		}

		if err := domain.FindOverlapConflict(candidate, existing, id); err != nil {
			return fmt.Errorf("%w: %v", ErrOverlapConflict, err)
		}

		updated, err = s.oneoffRepo.Update(ctx, candidate)
		if err != nil {
			if errors.Is(err, oneoffRepo.ErrTimeslotNotFound) {
				return ErrTimeslotNotFound
			}
			return fmt.Errorf("%w: Update - update timeslot: %v", ErrInternal, err)
		}

		// Огибающая пересчитывается и для старого, и для нового события
		if current.EventID != nil {
			if err := s.recomputeEventEnvelope(ctx, *current.EventID); err != nil {
				return err
			}
		}
		if updated.EventID != nil && (current.EventID == nil || *updated.EventID != *current.EventID) {
			if err := s.recomputeEventEnvelope(ctx, *updated.EventID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTimeslotNotFound) || errors.Is(err, ErrOverlapConflict) ||
			errors.Is(err, ErrEventNotFound) || errors.Is(err, ErrAccessDenied) {
			s.logger.Warn("Update: timeslot id=%d: %v", id, err)
			return nil, err
		}
		s.logger.Error("Update: failed for timeslot id=%d: %v", id, err)
		return nil, err
	}

	s.logger.Info("Update: successfully updated timeslot id=%d", id)
	return models.FromDomainSlot(updated), nil
}

// Delete удаляет разовый слот. Зависимые строки booked_slots каскадируются
// на уровне БД.
func (s *Service) Delete(ctx context.Context, id int64, req *models.DeleteOneOffTimeslotRequest) error {
	s.logger.Info("Delete: deleting one-off timeslot id=%d by user=%d", id, req.UserID)

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := s.oneoffRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, oneoffRepo.ErrTimeslotNotFound) {
				return ErrTimeslotNotFound
			}
			return fmt.Errorf("%w: Delete - get timeslot: %v", ErrInternal, err)
		}

		if err := s.checkManageAccess(ctx, current.ServiceProviderID, req.UserID); err != nil {
			return err
		}

		if err := s.oneoffRepo.Delete(ctx, id); err != nil {
			if errors.Is(err, oneoffRepo.ErrTimeslotNotFound) {
				return ErrTimeslotNotFound
			}
			return fmt.Errorf("%w: Delete - delete timeslot: %v", ErrInternal, err)
		}

		if current.EventID != nil {
			if err := s.recomputeEventEnvelope(ctx, *current.EventID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTimeslotNotFound) || errors.Is(err, ErrAccessDenied) {
			s.logger.Warn("Delete: timeslot id=%d: %v", id, err)
			return err
		}
		s.logger.Error("Delete: failed for timeslot id=%d: %v", id, err)
		return err
	}

	s.logger.Info("Delete: successfully deleted timeslot id=%d", id)
	return nil
}

// recomputeEventEnvelope пересчитывает огибающую события по оставшимся слотам
func (s *Service) recomputeEventEnvelope(ctx context.Context, eventID int64) error {
	event, err := s.oneoffRepo.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, oneoffRepo.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("%w: recomputeEventEnvelope - get event: %v", ErrInternal, err)
	}

	slots, err := s.oneoffRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("%w: recomputeEventEnvelope - get event timeslots: %v", ErrInternal, err)
	}

	// У события без слотов огибающая не трогается
	if !event.RecomputeEnvelope(slots) {
		return nil
	}

	if err := s.oneoffRepo.UpdateEventEnvelope(ctx, eventID, event.FirstStartDateTime, event.LastEndDateTime); err != nil {
		return fmt.Errorf("%w: recomputeEventEnvelope - update envelope: %v", ErrInternal, err)
	}

	return nil
}

// checkManageAccess проверяет право пользователя управлять слотами исполнителя
func (s *Service) checkManageAccess(ctx context.Context, serviceProviderID, userID int64) error {
	err := s.authClient.CheckPermission(ctx, authservice.PermissionCheck{
		UserID:     userID,
		Action:     authservice.ActionManageTimeslot,
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
