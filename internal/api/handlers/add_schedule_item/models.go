package add_schedule_item

import (
	"github.com/alysesue/bookings-api-sub004/internal/service/schedules/models"
)

// AddTimeslotItemRequest HTTP request model
type AddTimeslotItemRequest struct {
	Weekday   int     `json:"weekday"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Capacity  int     `json:"capacity"`
	ValidFrom *string `json:"validFrom,omitempty"`
	ValidTo   *string `json:"validTo,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *AddTimeslotItemRequest) ToServiceRequest(userID int64) *models.AddTimeslotItemRequest {
	return &models.AddTimeslotItemRequest{
		UserID:    userID,
		Weekday:   r.Weekday,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Capacity:  r.Capacity,
		ValidFrom: r.ValidFrom,
		ValidTo:   r.ValidTo,
	}
}
