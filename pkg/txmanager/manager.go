// Package txmanager управляет сериализуемыми транзакциями поверх dbmetrics.DB.
//
// SERIALIZABLE + retry - единственный надёжный способ не продать одно и то же
// место дважды: наивный read-then-write под READ COMMITTED пропускает гонку,
// когда два конкурентных бронирования одновременно видят свободное место.
package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/alysesue/bookings-api-sub004/pkg/dbmetrics"
	"github.com/alysesue/bookings-api-sub004/pkg/metrics"
)

const (
	maxRetries = 3
	retryDelay = 50 * time.Millisecond

	// Код ошибки Postgres serialization_failure
	pqSerializationFailure = "40001"
)

// ErrTxFailed возвращается, когда транзакция не прошла после всех повторов
var ErrTxFailed = errors.New("txmanager: transaction failed")

// TransactionManager выполняет функции в сериализуемых транзакциях с повторами
type TransactionManager struct {
	db      *dbmetrics.DB
	metrics *metrics.Metrics
}

// NewTransactionManagerWithMetrics создает transaction manager со счётчиком повторов
func NewTransactionManagerWithMetrics(db *dbmetrics.DB, m *metrics.Metrics) *TransactionManager {
	return &TransactionManager{db: db, metrics: m}
}

// DoSerializable выполняет fn внутри SERIALIZABLE транзакции.
// Транзакция кладется в context через dbmetrics.WithTx, поэтому все
// вызовы репозиториев внутри fn автоматически идут через неё.
// При serialization_failure (40001) транзакция повторяется до maxRetries раз.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			if m.metrics != nil {
				m.metrics.TxSerializationRetries.WithLabelValues().Inc()
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}

		err := m.runOnce(ctx, fn)
		if err == nil {
			return nil
		}

		if !isSerializationFailure(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%w: retries exhausted: %v", ErrTxFailed, lastErr)
}

// Do выполняет fn внутри обычной транзакции (READ COMMITTED, без повторов).
// Подходит для мутаций уже существующих строк (удаление, пересчет огибающей
// события). Проверки по диапазону перед вставкой идут через DoSerializable:
// блокировка строк не видит фантомов.
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrTxFailed, err)
	}

	txCtx := dbmetrics.WithTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return nil
}

func (m *TransactionManager) runOnce(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrTxFailed, err)
	}

	txCtx := dbmetrics.WithTx(ctx, tx)

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return nil
}

// isSerializationFailure проверяет, является ли ошибка конфликтом сериализации
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqSerializationFailure
	}
	return false
}
