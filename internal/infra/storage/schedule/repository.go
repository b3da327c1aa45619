package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	"github.com/alysesue/bookings-api-sub004/pkg/dbmetrics"
	"github.com/alysesue/bookings-api-sub004/pkg/psqlbuilder"
)

// Repository репозиторий регулярных расписаний и их элементов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByOwner получает расписание владельца вместе с элементами.
// Если в контексте передана активная транзакция, элементы блокируются
// через FOR UPDATE - это закрывает гонку двух конкурентных мутаций,
// прошедших проверку пересечений по устаревшему снимку.
func (r *Repository) GetByOwner(ctx context.Context, owner domain.ScheduleOwner) (*domain.TimeslotsSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id").
		From("timeslots_schedules").
		Where(squirrel.Eq{"owner_kind": string(owner.Kind), "owner_id": owner.ID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByOwner - build select query: %v", ErrBuildQuery, err)
	}

	var scheduleID int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&scheduleID)
	if err == sql.ErrNoRows {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByOwner - scan schedule: %v", ErrScanRow, err)
	}

	items, err := r.getItems(ctx, executor, scheduleID)
	if err != nil {
		return nil, err
	}

	return &domain.TimeslotsSchedule{ID: scheduleID, Owner: owner, Items: items}, nil
}

// GetOrCreateByOwner получает расписание владельца, создавая его при отсутствии
func (r *Repository) GetOrCreateByOwner(ctx context.Context, owner domain.ScheduleOwner) (*domain.TimeslotsSchedule, error) {
	existing, err := r.GetByOwner(ctx, owner)
	if err == nil {
		return existing, nil
	}
	if err != ErrScheduleNotFound {
		return nil, err
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("timeslots_schedules").
		Columns("owner_kind", "owner_id").
		Values(string(owner.Kind), owner.ID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetOrCreateByOwner - build insert query: %v", ErrBuildQuery, err)
	}

	var scheduleID int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&scheduleID); err != nil {
		return nil, fmt.Errorf("%w: GetOrCreateByOwner - execute insert: %v", ErrExecQuery, err)
	}

	return &domain.TimeslotsSchedule{ID: scheduleID, Owner: owner, Items: []domain.TimeslotItem{}}, nil
}

// GetByProviderIDs получает расписания, принадлежащие указанным провайдерам
func (r *Repository) GetByProviderIDs(ctx context.Context, providerIDs []int64) ([]*domain.TimeslotsSchedule, error) {
	if len(providerIDs) == 0 {
		return []*domain.TimeslotsSchedule{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "owner_id").
		From("timeslots_schedules").
		Where(squirrel.Eq{"owner_kind": string(domain.OwnerServiceProvider), "owner_id": providerIDs}).
		OrderBy("owner_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	schedules := make([]*domain.TimeslotsSchedule, 0)
	for rows.Next() {
		var scheduleID, ownerID int64
		if err := rows.Scan(&scheduleID, &ownerID); err != nil {
			return nil, fmt.Errorf("%w: GetByProviderIDs - scan row: %v", ErrScanRow, err)
		}
		schedules = append(schedules, &domain.TimeslotsSchedule{
			ID:    scheduleID,
			Owner: domain.ProviderOwner(ownerID),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByProviderIDs - rows error: %v", ErrScanRow, err)
	}

	for _, s := range schedules {
		items, err := r.getItems(ctx, executor, s.ID)
		if err != nil {
			return nil, err
		}
		s.Items = items
	}

	return schedules, nil
}

// CreateItem добавляет элемент расписания
func (r *Repository) CreateItem(ctx context.Context, scheduleID int64, item *domain.TimeslotItem) (*domain.TimeslotItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("timeslot_items").
		Columns(
			"schedule_id",
			"weekday",
			"start_time",
			"end_time",
			"capacity",
			"valid_from",
			"valid_to",
		).
		Values(
			scheduleID,
			int(item.Weekday),
			item.StartTime,
			item.EndTime,
			item.Capacity,
			item.ValidFrom,
			item.ValidTo,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateItem - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&item.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateItem - execute insert: %v", ErrExecQuery, err)
	}

	item.CreatedAt = createdAt.Time
	item.UpdatedAt = updatedAt.Time

	return item, nil
}

// UpdateItem обновляет элемент расписания
func (r *Repository) UpdateItem(ctx context.Context, item *domain.TimeslotItem) (*domain.TimeslotItem, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("timeslot_items").
		Set("weekday", int(item.Weekday)).
		Set("start_time", item.StartTime).
		Set("end_time", item.EndTime).
		Set("capacity", item.Capacity).
		Set("valid_from", item.ValidFrom).
		Set("valid_to", item.ValidTo).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": item.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateItem - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: UpdateItem - execute update: %v", ErrExecQuery, err)
	}

	item.CreatedAt = createdAt.Time
	item.UpdatedAt = updatedAt.Time

	return item, nil
}

// DeleteItem удаляет элемент расписания
func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("timeslot_items").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: DeleteItem - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteItem - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteItem - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrItemNotFound
	}

	return nil
}

// getItems получает элементы расписания, отсортированные по дню недели и времени
func (r *Repository) getItems(ctx context.Context, executor DBExecutor, scheduleID int64) ([]domain.TimeslotItem, error) {
	selectBuilder := psqlbuilder.Select(
		"id",
		"weekday",
		"start_time",
		"end_time",
		"capacity",
		"valid_from",
		"valid_to",
		"created_at",
		"updated_at",
	).
		From("timeslot_items").
		Where(squirrel.Eq{"schedule_id": scheduleID}).
		OrderBy("weekday ASC, start_time ASC")

	// Блокируем элементы при работе в транзакции (мутации расписания)
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getItems - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getItems - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	items := make([]domain.TimeslotItem, 0)
	for rows.Next() {
		var item domain.TimeslotItem
		var weekday int
		var validFrom, validTo sql.NullTime
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&item.ID,
			&weekday,
			&item.StartTime,
			&item.EndTime,
			&item.Capacity,
			&validFrom,
			&validTo,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: getItems - scan row: %v", ErrScanRow, err)
		}

		item.Weekday = time.Weekday(weekday)
		if validFrom.Valid {
			item.ValidFrom = &validFrom.Time
		}
		if validTo.Valid {
			item.ValidTo = &validTo.Time
		}
		item.CreatedAt = createdAt.Time
		item.UpdatedAt = updatedAt.Time

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: getItems - rows error: %v", ErrScanRow, err)
	}

	return items, nil
}
