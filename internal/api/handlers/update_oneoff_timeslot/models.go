package update_oneoff_timeslot

import (
	"time"

	"github.com/alysesue/bookings-api-sub004/internal/service/oneoffs/models"
)

// UpdateOneOffTimeslotRequest HTTP request model
type UpdateOneOffTimeslotRequest struct {
	StartDateTime time.Time `json:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime"`
	Capacity      int       `json:"capacity"`
	Title         *string   `json:"title,omitempty"`
	Description   *string   `json:"description,omitempty"`
	LabelIDs      []int64   `json:"labelIds,omitempty"`
	EventID       *int64    `json:"eventId,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateOneOffTimeslotRequest) ToServiceRequest(userID int64) *models.UpdateOneOffTimeslotRequest {
	return &models.UpdateOneOffTimeslotRequest{
		UserID:        userID,
		StartDateTime: r.StartDateTime,
		EndDateTime:   r.EndDateTime,
		Capacity:      r.Capacity,
		Title:         r.Title,
		Description:   r.Description,
		LabelIDs:      r.LabelIDs,
		EventID:       r.EventID,
	}
}
