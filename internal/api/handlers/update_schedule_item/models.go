package update_schedule_item

import (
	"github.com/alysesue/bookings-api-sub004/internal/service/schedules/models"
)

// UpdateTimeslotItemRequest HTTP request model
type UpdateTimeslotItemRequest struct {
	Weekday   int     `json:"weekday"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Capacity  int     `json:"capacity"`
	ValidFrom *string `json:"validFrom,omitempty"`
	ValidTo   *string `json:"validTo,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateTimeslotItemRequest) ToServiceRequest(userID int64) *models.UpdateTimeslotItemRequest {
	return &models.UpdateTimeslotItemRequest{
		UserID:    userID,
		Weekday:   r.Weekday,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Capacity:  r.Capacity,
		ValidFrom: r.ValidFrom,
		ValidTo:   r.ValidTo,
	}
}
