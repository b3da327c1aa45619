package oneoffs

import "errors"

var (
	// ErrTimeslotNotFound возвращается, когда разовый слот не найден
	ErrTimeslotNotFound = errors.New("one-off timeslot not found")

	// ErrEventNotFound возвращается, когда событие не найдено
	ErrEventNotFound = errors.New("event not found")

	// ErrOverlapConflict возвращается, когда слот пересекается с существующим
	ErrOverlapConflict = errors.New("one-off timeslot overlaps with an existing timeslot")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
