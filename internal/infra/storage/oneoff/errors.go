package oneoff

import "errors"

var (
	// ErrTimeslotNotFound возвращается, когда разовый слот не найден
	ErrTimeslotNotFound = errors.New("oneoff.repository: one-off timeslot not found")

	// ErrEventNotFound возвращается, когда событие не найдено
	ErrEventNotFound = errors.New("oneoff.repository: event not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("oneoff.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("oneoff.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("oneoff.repository: failed to scan row")
)
