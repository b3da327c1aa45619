package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
)

// Валидатор переиспользуется: дорогая инициализация кэша структур
var validate = validator.New(validator.WithRequiredStructEnabled())

// Request модели

// CreateOneOffTimeslotRequest запрос на создание разового слота
type CreateOneOffTimeslotRequest struct {
	UserID            int64     `json:"userId" validate:"required"`
	ServiceProviderID int64     `json:"serviceProviderId" validate:"required"`
	StartDateTime     time.Time `json:"startDateTime" validate:"required"`
	EndDateTime       time.Time `json:"endDateTime" validate:"required"`
	Capacity          int       `json:"capacity" validate:"min=0"`
	Title             *string   `json:"title,omitempty" validate:"omitempty,max=100"`
	Description       *string   `json:"description,omitempty" validate:"omitempty,max=4000"`
	LabelIDs          []int64   `json:"labelIds,omitempty"`
	EventID           *int64    `json:"eventId,omitempty"`
}

// UpdateOneOffTimeslotRequest запрос на изменение разового слота
type UpdateOneOffTimeslotRequest struct {
	UserID        int64     `json:"userId" validate:"required"`
	StartDateTime time.Time `json:"startDateTime" validate:"required"`
	EndDateTime   time.Time `json:"endDateTime" validate:"required"`
	Capacity      int       `json:"capacity" validate:"min=0"`
	Title         *string   `json:"title,omitempty" validate:"omitempty,max=100"`
	Description   *string   `json:"description,omitempty" validate:"omitempty,max=4000"`
	LabelIDs      []int64   `json:"labelIds,omitempty"`
	EventID       *int64    `json:"eventId,omitempty"`
}

// DeleteOneOffTimeslotRequest запрос на удаление разового слота
type DeleteOneOffTimeslotRequest struct {
	UserID int64 `json:"userId"`
}

// Validate собирает все нарушения разом, без обрыва на первом
func (r *CreateOneOffTimeslotRequest) Validate() domain.ValidationErrors {
	violations := collectFieldViolations(r)
	violations = appendTimeRangeViolations(violations, r.StartDateTime, r.EndDateTime)
	return violations
}

// Validate собирает все нарушения разом, без обрыва на первом
func (r *UpdateOneOffTimeslotRequest) Validate() domain.ValidationErrors {
	violations := collectFieldViolations(r)
	violations = appendTimeRangeViolations(violations, r.StartDateTime, r.EndDateTime)
	return violations
}

// collectFieldViolations переводит ошибки validator в батч нарушений
func collectFieldViolations(req interface{}) domain.ValidationErrors {
	var violations domain.ValidationErrors

	err := validate.Struct(req)
	if err == nil {
		return violations
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return violations.Add("invalid_request", err.Error())
	}

	for _, fieldErr := range validationErrs {
		field := strings.ToLower(fieldErr.Field()[:1]) + fieldErr.Field()[1:]
		switch fieldErr.Tag() {
		case "required":
			violations = violations.Add("required", field+" is required")
		case "max":
			violations = violations.Add("too_long", field+" must be at most "+fieldErr.Param()+" characters")
		case "min":
			violations = violations.Add("too_small", field+" must be at least "+fieldErr.Param())
		default:
			violations = violations.Add(fieldErr.Tag(), field+" is invalid")
		}
	}

	return violations
}

func appendTimeRangeViolations(violations domain.ValidationErrors, start, end time.Time) domain.ValidationErrors {
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		violations = violations.Add("invalid_time_range", "startDateTime must be before endDateTime")
	}
	return violations
}

// ToDomainSlot конвертирует request в domain модель слота
func (r *CreateOneOffTimeslotRequest) ToDomainSlot() *domain.OneOffTimeslot {
	return &domain.OneOffTimeslot{
		ServiceProviderID: r.ServiceProviderID,
		StartDateTime:     r.StartDateTime,
		EndDateTime:       r.EndDateTime,
		Capacity:          r.Capacity,
		Title:             r.Title,
		Description:       r.Description,
		LabelIDs:          r.LabelIDs,
		EventID:           r.EventID,
	}
}

// ToDomainSlot конвертирует request в domain модель слота с указанным ID и исполнителем
func (r *UpdateOneOffTimeslotRequest) ToDomainSlot(id, serviceProviderID int64) *domain.OneOffTimeslot {
	return &domain.OneOffTimeslot{
		ID:                id,
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

// Response модели

// OneOffTimeslotResponse ответ с данными разового слота
type OneOffTimeslotResponse struct {
	ID                int64     `json:"id"`
	ServiceProviderID int64     `json:"serviceProviderId"`
	StartDateTime     time.Time `json:"startDateTime"`
	EndDateTime       time.Time `json:"endDateTime"`
	Capacity          int       `json:"capacity"`
	Title             *string   `json:"title,omitempty"`
	Description       *string   `json:"description,omitempty"`
	LabelIDs          []int64   `json:"labelIds,omitempty"`
	EventID           *int64    `json:"eventId,omitempty"`
}

// FromDomainSlot конвертирует domain модель слота в DTO
func FromDomainSlot(slot *domain.OneOffTimeslot) *OneOffTimeslotResponse {
	if slot == nil {
		return nil
	}

	return &OneOffTimeslotResponse{
		ID:                slot.ID,
		ServiceProviderID: slot.ServiceProviderID,
		StartDateTime:     slot.StartDateTime,
		EndDateTime:       slot.EndDateTime,
		Capacity:          slot.Capacity,
		Title:             slot.Title,
		Description:       slot.Description,
		LabelIDs:          slot.LabelIDs,
		EventID:           slot.EventID,
	}
}
