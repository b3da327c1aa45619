package authservice

// PermissionCheck запрос на проверку прав
type PermissionCheck struct {
	UserID     int64  `json:"user_id"`
	Action     string `json:"action"`
	ResourceID int64  `json:"resource_id"`
}

// PermissionResult результат проверки прав
type PermissionResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// ErrorResponse модель ошибки от AuthService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
