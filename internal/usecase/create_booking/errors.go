package create_booking

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена в реестре
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrProviderNotFound возвращается, когда исполнитель не относится к услуге
	ErrProviderNotFound = errors.New("create_booking: service provider not found")

	// ErrTimeslotNotFound возвращается, когда разовый слот не найден
	ErrTimeslotNotFound = errors.New("create_booking: one-off timeslot not found")

	// ErrEventNotFound возвращается, когда событие не найдено
	ErrEventNotFound = errors.New("create_booking: event not found")

	// ErrOccurrenceNotFound возвращается, когда запрошенное окно не совпадает
	// ни с одним вхождением расписания исполнителя
	ErrOccurrenceNotFound = errors.New("create_booking: no occurrence matches the requested time range")

	// ErrCapacityExceeded возвращается, когда ёмкость вхождения исчерпана.
	// Безопасно для повтора: конкурент успел занять последнее место
	ErrCapacityExceeded = errors.New("create_booking: occurrence capacity exceeded")

	// ErrNoProviderAvailable возвращается, когда автоподбор не нашёл
	// исполнителя со свободной ёмкостью в запрошенном окне
	ErrNoProviderAvailable = errors.New("create_booking: no provider available for the requested time range")

	// ErrInvalidDateRange возвращается при некорректном временном окне
	ErrInvalidDateRange = errors.New("create_booking: invalid date range")

	// ErrBookingInPast возвращается при попытке забронировать прошедшее окно
	ErrBookingInPast = errors.New("create_booking: booking starts in the past")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
