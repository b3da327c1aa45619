package oneoff

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

// Repository репозиторий разовых слотов и событий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория разовых слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает разовый слот вместе с привязкой ярлыков
func (r *Repository) Create(ctx context.Context, slot *domain.OneOffTimeslot) (*domain.OneOffTimeslot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("one_off_timeslots").
		Columns(
			"service_provider_id",
			"start_datetime",
			"end_datetime",
			"capacity",
			"title",
			"description",
			"event_id",
		).
		Values(
			slot.ServiceProviderID,
			slot.StartDateTime,
			slot.EndDateTime,
			slot.Capacity,
			slot.Title,
			slot.Description,
			slot.EventID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&slot.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	if err := r.replaceLabels(ctx, executor, slot.ID, slot.LabelIDs); err != nil {
		return nil, err
	}

	return slot, nil
}

// Update обновляет разовый слот и его ярлыки
func (r *Repository) Update(ctx context.Context, slot *domain.OneOffTimeslot) (*domain.OneOffTimeslot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("one_off_timeslots").
		Set("start_datetime", slot.StartDateTime).
		Set("end_datetime", slot.EndDateTime).
		Set("capacity", slot.Capacity).
		Set("title", slot.Title).
		Set("description", slot.Description).
		Set("event_id", slot.EventID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slot.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrTimeslotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	if err := r.replaceLabels(ctx, executor, slot.ID, slot.LabelIDs); err != nil {
		return nil, err
	}

	return slot, nil
}

// Delete удаляет разовый слот.
// Зависимые booked_slots удаляются каскадно (FK ON DELETE CASCADE).
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("one_off_timeslots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTimeslotNotFound
	}

	return nil
}

// GetByID получает разовый слот по ID вместе с ярлыками
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.OneOffTimeslot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.selectSlots().
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots, err := r.scanSlots(rows)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, ErrTimeslotNotFound
	}

	if err := r.loadLabels(ctx, executor, slots); err != nil {
		return nil, err
	}

	return slots[0], nil
}

// GetByProvider получает все разовые слоты провайдера.
// Используется проверкой пересечений при создании/обновлении;
// в транзакции строки блокируются через FOR UPDATE.
func (r *Repository) GetByProvider(ctx context.Context, providerID int64) ([]*domain.OneOffTimeslot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := r.selectSlots().
		Where(squirrel.Eq{"service_provider_id": providerID}).
		OrderBy("start_datetime ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProvider - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProvider - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots, err := r.scanSlots(rows)
	if err != nil {
		return nil, err
	}

	if err := r.loadLabels(ctx, executor, slots); err != nil {
		return nil, err
	}

	return slots, nil
}

// GetByProvidersInRange получает слоты провайдеров, пересекающие период
// [rangeStart, rangeEnd). Полуоткрытая семантика: слот, начинающийся ровно
// в rangeEnd, в выборку не попадает.
func (r *Repository) GetByProvidersInRange(ctx context.Context, providerIDs []int64, rangeStart, rangeEnd time.Time) ([]*domain.OneOffTimeslot, error) {
	if len(providerIDs) == 0 {
		return []*domain.OneOffTimeslot{}, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.selectSlots().
		Where(squirrel.Eq{"service_provider_id": providerIDs}).
		Where(squirrel.Lt{"start_datetime": rangeEnd}).
		Where(squirrel.Gt{"end_datetime": rangeStart}).
		OrderBy("start_datetime ASC, end_datetime ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProvidersInRange - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProvidersInRange - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots, err := r.scanSlots(rows)
	if err != nil {
		return nil, err
	}

	if err := r.loadLabels(ctx, executor, slots); err != nil {
		return nil, err
	}

	return slots, nil
}

// GetByEventID получает все слоты события
func (r *Repository) GetByEventID(ctx context.Context, eventID int64) ([]*domain.OneOffTimeslot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.selectSlots().
		Where(squirrel.Eq{"event_id": eventID}).
		OrderBy("start_datetime ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByEventID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByEventID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	slots, err := r.scanSlots(rows)
	if err != nil {
		return nil, err
	}

	if err := r.loadLabels(ctx, executor, slots); err != nil {
		return nil, err
	}

	return slots, nil
}

// GetEventByID получает событие по ID
func (r *Repository) GetEventByID(ctx context.Context, id int64) (*domain.Event, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"service_id",
		"title",
		"description",
		"first_start_datetime",
		"last_end_datetime",
		"created_at",
		"updated_at",
	).
		From("events").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetEventByID - build select query: %v", ErrBuildQuery, err)
	}

	var event domain.Event
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&event.ID,
		&event.ServiceID,
		&event.Title,
		&event.Description,
		&event.FirstStartDateTime,
		&event.LastEndDateTime,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetEventByID - scan event: %v", ErrScanRow, err)
	}

	event.CreatedAt = createdAt.Time
	event.UpdatedAt = updatedAt.Time

	return &event, nil
}

// UpdateEventEnvelope обновляет производный конверт события
func (r *Repository) UpdateEventEnvelope(ctx context.Context, eventID int64, first, last time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("events").
		Set("first_start_datetime", first).
		Set("last_end_datetime", last).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": eventID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateEventEnvelope - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateEventEnvelope - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateEventEnvelope - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	return nil
}

// selectSlots базовый SELECT по полям разового слота
func (r *Repository) selectSlots() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"service_provider_id",
		"start_datetime",
		"end_datetime",
		"capacity",
		"title",
		"description",
		"event_id",
		"created_at",
		"updated_at",
	).From("one_off_timeslots")
}

// scanSlots сканирует результаты запроса в слайс слотов
func (r *Repository) scanSlots(rows *sql.Rows) ([]*domain.OneOffTimeslot, error) {
	slots := make([]*domain.OneOffTimeslot, 0)

	for rows.Next() {
		var slot domain.OneOffTimeslot
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&slot.ID,
			&slot.ServiceProviderID,
			&slot.StartDateTime,
			&slot.EndDateTime,
			&slot.Capacity,
			&slot.Title,
			&slot.Description,
			&slot.EventID,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanSlots - scan row: %v", ErrScanRow, err)
		}

		slot.CreatedAt = createdAt.Time
		slot.UpdatedAt = updatedAt.Time
		slot.LabelIDs = []int64{}

		slots = append(slots, &slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanSlots - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}

// loadLabels подгружает ярлыки для набора слотов одним запросом
func (r *Repository) loadLabels(ctx context.Context, executor DBExecutor, slots []*domain.OneOffTimeslot) error {
	if len(slots) == 0 {
		return nil
	}

	ids := make([]int64, len(slots))
	byID := make(map[int64]*domain.OneOffTimeslot, len(slots))
	for i, slot := range slots {
		ids[i] = slot.ID
		byID[slot.ID] = slot
	}

	query, args, err := psqlbuilder.Select("one_off_timeslot_id", "label_id").
		From("one_off_timeslot_labels").
		Where(squirrel.Eq{"one_off_timeslot_id": ids}).
		OrderBy("label_id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: loadLabels - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadLabels - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var slotID, labelID int64
		if err := rows.Scan(&slotID, &labelID); err != nil {
			return fmt.Errorf("%w: loadLabels - scan row: %v", ErrScanRow, err)
		}
		if slot, ok := byID[slotID]; ok {
			slot.LabelIDs = append(slot.LabelIDs, labelID)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadLabels - rows error: %v", ErrScanRow, err)
	}

	return nil
}

// replaceLabels заменяет привязку ярлыков слота
func (r *Repository) replaceLabels(ctx context.Context, executor DBExecutor, slotID int64, labelIDs []int64) error {
	deleteQuery, deleteArgs, err := psqlbuilder.Delete("one_off_timeslot_labels").
		Where(squirrel.Eq{"one_off_timeslot_id": slotID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: replaceLabels - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: replaceLabels - execute delete: %v", ErrExecQuery, err)
	}

	if len(labelIDs) == 0 {
		return nil
	}

	insertBuilder := psqlbuilder.Insert("one_off_timeslot_labels").
		Columns("one_off_timeslot_id", "label_id")
	for _, labelID := range labelIDs {
		insertBuilder = insertBuilder.Values(slotID, labelID)
	}

	insertQuery, insertArgs, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: replaceLabels - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("%w: replaceLabels - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}
