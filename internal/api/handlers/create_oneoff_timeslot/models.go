package create_oneoff_timeslot

import (
	"time"

	"github.com/alysesue/bookings-api-sub004/internal/service/oneoffs/models"
)

// CreateOneOffTimeslotRequest HTTP request model
type CreateOneOffTimeslotRequest struct {
	StartDateTime time.Time `json:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime"`
	Capacity      int       `json:"capacity"`
	Title         *string   `json:"title,omitempty"`
	Description   *string   `json:"description,omitempty"`
	LabelIDs      []int64   `json:"labelIds,omitempty"`
	EventID       *int64    `json:"eventId,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateOneOffTimeslotRequest) ToServiceRequest(userID, serviceProviderID int64) *models.CreateOneOffTimeslotRequest {
	return &models.CreateOneOffTimeslotRequest{
		UserID:            userID,
		ServiceProviderID: serviceProviderID,
		StartDateTime:     r.StartDateTime,
		EndDateTime:       r.EndDateTime,
		Capacity:          r.Capacity,
		Title:             r.Title,
		Description:       r.Description,
		LabelIDs:          r.LabelIDs,
		EventID:           r.EventID,
	}
}
