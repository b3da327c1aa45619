package schedules

import (
	"context"
	"errors"
	"fmt"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	scheduleRepo "github.com/alysesue/bookings-api-sub004/internal/infra/storage/schedule"
	"github.com/alysesue/bookings-api-sub004/internal/integrations/authservice"
	"github.com/alysesue/bookings-api-sub004/internal/service/schedules/models"
)

// Service сервис для работы с еженедельными расписаниями
type Service struct {
	scheduleRepo ScheduleRepository
	authClient   AuthServiceClient
	txManager    TransactionManager
	logger       Logger
}

// NewService создает новый экземпляр сервиса расписаний
func NewService(
	scheduleRepo ScheduleRepository,
	authClient AuthServiceClient,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo: scheduleRepo,
		authClient:   authClient,
		txManager:    txManager,
		logger:       logger,
	}
}

// GetSchedule получает расписание владельца со всеми слотами
func (s *Service) GetSchedule(ctx context.Context, owner domain.ScheduleOwner) (*models.ScheduleResponse, error) {
	s.logger.Info("GetSchedule: fetching schedule for owner=%s/%d", owner.Kind, owner.ID)

	schedule, err := s.scheduleRepo.GetByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("GetSchedule: schedule for owner=%s/%d not found", owner.Kind, owner.ID)
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("GetSchedule: repository error for owner=%s/%d: %v", owner.Kind, owner.ID, err)
		return nil, fmt.Errorf("%w: GetSchedule - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(schedule), nil
}

// AddItem добавляет слот в еженедельное расписание владельца.
// Проверка пересечений и вставка выполняются в сериализуемой транзакции:
// блокировка существующих строк не защищает от фантомной вставки в ещё
// пустое расписание, поэтому при гонке двух добавлений одно получает
// serialization_failure и повторяется уже с видимым соперником.
func (s *Service) AddItem(ctx context.Context, owner domain.ScheduleOwner, req *models.AddTimeslotItemRequest) (*models.TimeslotItemResponse, error) {
	s.logger.Info("AddItem: adding item to schedule owner=%s/%d by user=%d", owner.Kind, owner.ID, req.UserID)

	if err := s.checkManageAccess(ctx, owner, req.UserID); err != nil {
		return nil, err
	}

	item, err := req.ToDomainItem()
	if err != nil {
		s.logger.Warn("AddItem: invalid request for owner=%s/%d: %v", owner.Kind, owner.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := item.Validate(); err != nil {
		s.logger.Warn("AddItem: invalid item for owner=%s/%d: %v", owner.Kind, owner.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var created *domain.TimeslotItem
	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		schedule, err := s.scheduleRepo.GetOrCreateByOwner(ctx, owner)
		if err != nil {
			return fmt.Errorf("%w: AddItem - get schedule: %v", ErrInternal, err)
		}

		// Доменная проверка пересечений на снимке расписания
		if _, err := schedule.AddItem(*item); err != nil {
			return fmt.Errorf("%w: %v", ErrOverlapConflict, err)
		}

		created, err = s.scheduleRepo.CreateItem(ctx, schedule.ID, item)
		if err != nil {
			return fmt.Errorf("%w: AddItem - create item: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOverlapConflict) {
			s.logger.Warn("AddItem: overlap conflict for owner=%s/%d: %v", owner.Kind, owner.ID, err)
			return nil, err
		}
		s.logger.Error("AddItem: failed for owner=%s/%d: %v", owner.Kind, owner.ID, err)
		return nil, err
	}

	s.logger.Info("AddItem: successfully added item id=%d to schedule owner=%s/%d", created.ID, owner.Kind, owner.ID)
	return models.FromDomainItem(created), nil
}

// UpdateItem изменяет слот расписания. Слот исключается из проверки
// пересечений с самим собой; как и при добавлении, проверка и запись
// идут в сериализуемой транзакции.
func (s *Service) UpdateItem(ctx context.Context, owner domain.ScheduleOwner, itemID int64, req *models.UpdateTimeslotItemRequest) (*models.TimeslotItemResponse, error) {
	s.logger.Info("UpdateItem: updating item id=%d for owner=%s/%d by user=%d", itemID, owner.Kind, owner.ID, req.UserID)

	if err := s.checkManageAccess(ctx, owner, req.UserID); err != nil {
		return nil, err
	}

	item, err := req.ToDomainItem(itemID)
	if err != nil {
		s.logger.Warn("UpdateItem: invalid request for item id=%d: %v", itemID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := item.Validate(); err != nil {
		s.logger.Warn("UpdateItem: invalid item id=%d: %v", itemID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var updated *domain.TimeslotItem
	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		schedule, err := s.scheduleRepo.GetByOwner(ctx, owner)
		if err != nil {
			if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
				return ErrScheduleNotFound
			}
			return fmt.Errorf("%w: UpdateItem - get schedule: %v", ErrInternal, err)
		}

		if _, err := schedule.UpdateItem(itemID, *item); err != nil {
			if errors.Is(err, domain.ErrItemNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("%w: %v", ErrOverlapConflict, err)
		}

		updated, err = s.scheduleRepo.UpdateItem(ctx, item)
		if err != nil {
			if errors.Is(err, scheduleRepo.ErrItemNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("%w: UpdateItem - update item: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrScheduleNotFound) || errors.Is(err, ErrOverlapConflict) {
			s.logger.Warn("UpdateItem: item id=%d for owner=%s/%d: %v", itemID, owner.Kind, owner.ID, err)
			return nil, err
		}
		s.logger.Error("UpdateItem: failed for item id=%d: %v", itemID, err)
		return nil, err
	}

	s.logger.Info("UpdateItem: successfully updated item id=%d", itemID)
	return models.FromDomainItem(updated), nil
}

// RemoveItem удаляет слот из расписания владельца
func (s *Service) RemoveItem(ctx context.Context, owner domain.ScheduleOwner, itemID int64, req *models.RemoveTimeslotItemRequest) error {
	s.logger.Info("RemoveItem: removing item id=%d from owner=%s/%d by user=%d", itemID, owner.Kind, owner.ID, req.UserID)

	if err := s.checkManageAccess(ctx, owner, req.UserID); err != nil {
		return err
	}

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		schedule, err := s.scheduleRepo.GetByOwner(ctx, owner)
		if err != nil {
			if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
				return ErrScheduleNotFound
			}
			return fmt.Errorf("%w: RemoveItem - get schedule: %v", ErrInternal, err)
		}

		// Убеждаемся, что слот принадлежит именно этому расписанию
		if _, err := schedule.RemoveItem(itemID); err != nil {
			return ErrItemNotFound
		}

		if err := s.scheduleRepo.DeleteItem(ctx, itemID); err != nil {
			if errors.Is(err, scheduleRepo.ErrItemNotFound) {
				return ErrItemNotFound
			}
			return fmt.Errorf("%w: RemoveItem - delete item: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrScheduleNotFound) {
			s.logger.Warn("RemoveItem: item id=%d for owner=%s/%d: %v", itemID, owner.Kind, owner.ID, err)
			return err
		}
		s.logger.Error("RemoveItem: failed for item id=%d: %v", itemID, err)
		return err
	}

	s.logger.Info("RemoveItem: successfully removed item id=%d", itemID)
	return nil
}

// checkManageAccess проверяет право пользователя управлять расписанием владельца
func (s *Service) checkManageAccess(ctx context.Context, owner domain.ScheduleOwner, userID int64) error {
	err := s.authClient.CheckPermission(ctx, authservice.PermissionCheck{
		UserID:     userID,
		Action:     authservice.ActionManageSchedule,
		ResourceID: owner.ID,
	})
	if err != nil {
		if errors.Is(err, authservice.ErrPermissionDenied) {
			s.logger.Warn("checkManageAccess: user=%d denied for owner=%s/%d", userID, owner.Kind, owner.ID)
			return ErrAccessDenied
		}
		s.logger.Error("checkManageAccess: auth check failed for user=%d: %v", userID, err)
		return fmt.Errorf("%w: checkManageAccess - auth check failed: %v", ErrInternal, err)
	}

	return nil
}
