package serviceregistry

// Service модель услуги из реестра
type Service struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	OrgID        int64  `json:"org_id"`
	IsOnHold     bool   `json:"is_on_hold"`
	IsStandAlone bool   `json:"is_stand_alone"`
}

// ServiceProvider модель исполнителя услуги
type ServiceProvider struct {
	ID        int64  `json:"id"`
	ServiceID int64  `json:"service_id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
}

// ErrorResponse модель ошибки от реестра услуг
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
