package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidFormat возвращается при некорректном формате времени (ожидается HH:mm)
var ErrInvalidFormat = errors.New("types: invalid time of day format")

// TimeOfDay неизменяемое время суток без даты и таймзоны.
// Создаётся только из валидной строки "HH:mm" или валидной пары чисел.
type TimeOfDay struct {
	hours   int
	minutes int
}

// NewTimeOfDay создает TimeOfDay из пары чисел
func NewTimeOfDay(hours, minutes int) (TimeOfDay, error) {
	if hours < 0 || hours > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: hours must be in range 0-23, got %d", ErrInvalidFormat, hours)
	}
	if minutes < 0 || minutes > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: minutes must be in range 0-59, got %d", ErrInvalidFormat, minutes)
	}
	return TimeOfDay{hours: hours, minutes: minutes}, nil
}

// ParseTimeOfDay парсит строку вида "HH:mm"
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: expected HH:mm, got %q", ErrInvalidFormat, s)
	}
	if len(parts[0]) != 2 || len(parts[1]) != 2 {
		return TimeOfDay{}, fmt.Errorf("%w: expected HH:mm, got %q", ErrInvalidFormat, s)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: expected HH:mm, got %q", ErrInvalidFormat, s)
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: expected HH:mm, got %q", ErrInvalidFormat, s)
	}

	return NewTimeOfDay(hours, minutes)
}

// FromTime извлекает время суток из time.Time
func FromTime(t time.Time) TimeOfDay {
	return TimeOfDay{hours: t.Hour(), minutes: t.Minute()}
}

// Hours возвращает часы (0-23)
func (t TimeOfDay) Hours() int { return t.hours }

// Minutes возвращает минуты (0-59)
func (t TimeOfDay) Minutes() int { return t.minutes }

// TotalMinutes возвращает количество минут с начала суток
func (t TimeOfDay) TotalMinutes() int { return t.hours*60 + t.minutes }

// Compare возвращает -1, 0 или 1 (полный порядок)
func (t TimeOfDay) Compare(other TimeOfDay) int {
	switch {
	case t.TotalMinutes() < other.TotalMinutes():
		return -1
	case t.TotalMinutes() > other.TotalMinutes():
		return 1
	default:
		return 0
	}
}

// Before возвращает true, если t строго раньше other
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Compare(other) < 0
}

// After возвращает true, если t строго позже other
func (t TimeOfDay) After(other TimeOfDay) bool {
	return t.Compare(other) > 0
}

// AddMinutes возвращает новое время, сдвинутое на minutes минут вперед.
// Переход через полночь считается ошибкой: слоты не пересекают границу суток.
func (t TimeOfDay) AddMinutes(minutes int) (TimeOfDay, error) {
	total := t.TotalMinutes() + minutes
	if total < 0 || total > 24*60 {
		return TimeOfDay{}, fmt.Errorf("%w: result %d minutes is outside the day", ErrInvalidFormat, total)
	}
	if total == 24*60 {
		// 24:00 трактуем как конец дня, храним как 23:59+1 нельзя - возвращаем ошибку
		return TimeOfDay{}, fmt.Errorf("%w: result crosses midnight", ErrInvalidFormat)
	}
	return TimeOfDay{hours: total / 60, minutes: total % 60}, nil
}

// At комбинирует время суток с календарной датой
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.hours, t.minutes, 0, 0, date.Location())
}

// String возвращает строковое представление "HH:mm"
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.hours, t.minutes)
}

// MarshalJSON сериализует время как строку "HH:mm"
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON парсит время из строки "HH:mm"
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value реализует driver.Valuer для записи в БД (колонка TIME)
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan реализует sql.Scanner для чтения из БД
func (t *TimeOfDay) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		return t.scanString(v)
	case []byte:
		return t.scanString(string(v))
	case time.Time:
		*t = FromTime(v)
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T into TimeOfDay", ErrInvalidFormat, src)
	}
}

func (t *TimeOfDay) scanString(s string) error {
	// Postgres возвращает TIME как "HH:mm:ss"
	if len(s) > 5 {
		s = s[:5]
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
