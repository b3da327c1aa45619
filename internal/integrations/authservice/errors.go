package authservice

import "errors"

var (
	// ErrPermissionDenied возвращается, когда у пользователя нет прав на операцию
	ErrPermissionDenied = errors.New("authservice: permission denied")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("authservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("authservice client: invalid response")
)
