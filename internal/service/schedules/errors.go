package schedules

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда расписание не найдено
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrItemNotFound возвращается, когда слот расписания не найден
	ErrItemNotFound = errors.New("timeslot item not found")

	// ErrOverlapConflict возвращается, когда слот пересекается с существующим
	ErrOverlapConflict = errors.New("timeslot item overlaps with an existing item")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
