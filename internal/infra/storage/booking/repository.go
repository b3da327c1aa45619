package booking

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	"github.com/alysesue/bookings-api-sub004/pkg/dbmetrics"
	"github.com/alysesue/bookings-api-sub004/pkg/psqlbuilder"
)

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция (через context.Value),
// использует её - так гарантия ёмкости и вставка линеаризуются вместе.
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"uuid",
			"citizen_id",
			"service_id",
			"service_provider_id",
			"start_datetime",
			"end_datetime",
			"status",
			"one_off_timeslot_id",
			"event_id",
			"notes",
		).
		Values(
			b.UUID,
			b.CitizenID,
			b.ServiceID,
			b.ServiceProviderID,
			b.StartDateTime,
			b.EndDateTime,
			b.Status,
			b.OneOffTimeslotID,
			b.EventID,
			b.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&b.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// CreateBookedSlots создает строки связи бронирования с разовыми слотами.
// Бронирование события занимает несколько слотов - по строке на каждый.
func (r *Repository) CreateBookedSlots(ctx context.Context, bookingID int64, timeslotIDs []int64) error {
	if len(timeslotIDs) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("booked_slots").
		Columns("booking_id", "one_off_timeslot_id")
	for _, timeslotID := range timeslotIDs {
		insertBuilder = insertBuilder.Values(bookingID, timeslotID)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateBookedSlots - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CreateBookedSlots - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := r.selectBookings().
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

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, ErrBookingNotFound
	}

	return bookings[0], nil
}

// GetWithFilter получает бронирования с гибкой фильтрацией по провайдерам,
// периоду и статусам.
//
// Используется агрегатором доступности (snapshot-чтение) и гвардом создания
// бронирования: внутри транзакции строки блокируются через FOR UPDATE, чтобы
// конкурентная проверка ёмкости по тому же вхождению сериализовалась.
func (r *Repository) GetWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := r.selectBookings().
		Where(squirrel.Eq{"service_provider_id": filter.ServiceProviderIDs})

	// Полуоткрытый период [RangeStart, RangeEnd)
	if filter.RangeStart != nil {
		selectBuilder = selectBuilder.Where(squirrel.Gt{"end_datetime": *filter.RangeStart})
	}
	if filter.RangeEnd != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_datetime": *filter.RangeEnd})
	}

	// Фильтрация по статусам
	if len(filter.Statuses) > 0 {
		statusStrings := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statusStrings})
	}

	selectBuilder = selectBuilder.OrderBy("start_datetime ASC, end_datetime ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByCitizen получает бронирования гражданина, опционально по статусу
func (r *Repository) GetByCitizen(ctx context.Context, citizenID int64, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := r.selectBookings().
		Where(squirrel.Eq{"citizen_id": citizenID}).
		OrderBy("start_datetime DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCitizen - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCitizen - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// CountByOneOffTimeslots считает бронирования с указанными статусами,
// занимающие каждый из разовых слотов (через booked_slots)
func (r *Repository) CountByOneOffTimeslots(ctx context.Context, timeslotIDs []int64, statuses []domain.BookingStatus) (map[int64]int, error) {
	counts := make(map[int64]int, len(timeslotIDs))
	if len(timeslotIDs) == 0 {
		return counts, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	query, args, err := psqlbuilder.Select("bs.one_off_timeslot_id", "COUNT(*)").
		From("booked_slots bs").
		Join("bookings b ON b.id = bs.booking_id").
		Where(squirrel.Eq{"bs.one_off_timeslot_id": timeslotIDs}).
		Where(squirrel.Eq{"b.status": statusStrings}).
		GroupBy("bs.one_off_timeslot_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CountByOneOffTimeslots - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountByOneOffTimeslots - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var timeslotID int64
		var count int
		if err := rows.Scan(&timeslotID, &count); err != nil {
			return nil, fmt.Errorf("%w: CountByOneOffTimeslots - scan row: %v", ErrScanRow, err)
		}
		counts[timeslotID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountByOneOffTimeslots - rows error: %v", ErrScanRow, err)
	}

	return counts, nil
}

// GetBookingIDsForOneOffTimeslot получает ID бронирований с указанными
// статусами, занимающих разовый слот. В транзакции строки блокируются
// через FOR UPDATE - на этом держится проверка ёмкости при создании.
func (r *Repository) GetBookingIDsForOneOffTimeslot(ctx context.Context, timeslotID int64, statuses []domain.BookingStatus) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	statusStrings := make([]string, len(statuses))
	for i, s := range statuses {
		statusStrings[i] = string(s)
	}

	selectBuilder := psqlbuilder.Select("b.id").
		From("bookings b").
		Join("booked_slots bs ON bs.booking_id = b.id").
		Where(squirrel.Eq{"bs.one_off_timeslot_id": timeslotID}).
		Where(squirrel.Eq{"b.status": statusStrings}).
		OrderBy("b.id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE OF b")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBookingIDsForOneOffTimeslot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetBookingIDsForOneOffTimeslot - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: GetBookingIDsForOneOffTimeslot - scan row: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetBookingIDsForOneOffTimeslot - rows error: %v", ErrScanRow, err)
	}

	return ids, nil
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// Cancel отменяет бронирование с указанием причины
func (r *Repository) Cancel(ctx context.Context, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// selectBookings базовый SELECT по полям бронирования
func (r *Repository) selectBookings() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"uuid",
		"citizen_id",
		"service_id",
		"service_provider_id",
		"start_datetime",
		"end_datetime",
		"status",
		"one_off_timeslot_id",
		"event_id",
		"notes",
		"cancellation_reason",
		"cancelled_at",
		"created_at",
		"updated_at",
	).From("bookings")
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var b domain.Booking
		var cancelledAt sql.NullTime
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&b.ID,
			&b.UUID,
			&b.CitizenID,
			&b.ServiceID,
			&b.ServiceProviderID,
			&b.StartDateTime,
			&b.EndDateTime,
			&b.Status,
			&b.OneOffTimeslotID,
			&b.EventID,
			&b.Notes,
			&b.CancellationReason,
			&cancelledAt,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		if cancelledAt.Valid {
			t := cancelledAt.Time
			b.CancelledAt = &t
		}
		b.CreatedAt = createdAt.Time
		b.UpdatedAt = updatedAt.Time

		bookings = append(bookings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
