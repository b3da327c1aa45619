package serviceregistry

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не зарегистрирована
	ErrServiceNotFound = errors.New("serviceregistry: service not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("serviceregistry client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("serviceregistry client: invalid response")
)
