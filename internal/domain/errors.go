package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOverlapConflict возвращается при пересечении временных интервалов
	// расписания или разовых слотов
	ErrOverlapConflict = errors.New("domain: overlap conflict")

	// ErrItemNotFound возвращается, когда элемент расписания не найден
	ErrItemNotFound = errors.New("domain: timeslot item not found")

	// ErrInvalidTimeRange возвращается, когда начало интервала не раньше конца
	ErrInvalidTimeRange = errors.New("domain: start time must be before end time")

	// ErrInvalidCapacity возвращается при вместимости меньше 1
	ErrInvalidCapacity = errors.New("domain: capacity must be at least 1")
)

// FieldViolation одно нарушение валидации поля
type FieldViolation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors пакет нарушений валидации.
// Возвращается целиком, чтобы отправитель мог исправить все ошибки за один раз.
type ValidationErrors []FieldViolation

// Error реализует интерфейс error
func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, violation := range v {
		msgs[i] = fmt.Sprintf("%s: %s", violation.Code, violation.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add добавляет нарушение в пакет
func (v ValidationErrors) Add(code, message string) ValidationErrors {
	return append(v, FieldViolation{Code: code, Message: message})
}
