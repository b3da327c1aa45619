package get_availability

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена в реестре
	ErrServiceNotFound = errors.New("service not found")

	// ErrProviderNotFound возвращается, когда исполнитель не относится к услуге
	ErrProviderNotFound = errors.New("service provider not found")

	// ErrInvalidDateRange возвращается при некорректном периоде запроса
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidLabelFilter возвращается при неизвестном режиме фильтрации меток
	ErrInvalidLabelFilter = errors.New("invalid label filter mode")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
