package models

import (
	"errors"
	"time"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	"github.com/alysesue/bookings-api-sub004/pkg/types"
)

var (
	// ErrInvalidWeekday возвращается при некорректном дне недели
	ErrInvalidWeekday = errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")

	// ErrInvalidTime возвращается при некорректном формате времени
	ErrInvalidTime = errors.New("time must be in HH:mm format")

	// ErrInvalidDate возвращается при некорректном формате даты
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")
)

// Request модели

// AddTimeslotItemRequest запрос на добавление слота в еженедельное расписание
type AddTimeslotItemRequest struct {
	UserID    int64   `json:"userId"`
	Weekday   int     `json:"weekday"`  // 0=воскресенье .. 6=суббота
	StartTime string  `json:"startTime"` // "09:00"
	EndTime   string  `json:"endTime"`   // "10:00"
	Capacity  int     `json:"capacity"`
	ValidFrom *string `json:"validFrom,omitempty"` // "2026-01-01"
	ValidTo   *string `json:"validTo,omitempty"`
}

// UpdateTimeslotItemRequest запрос на изменение слота расписания
type UpdateTimeslotItemRequest struct {
	UserID    int64   `json:"userId"`
	Weekday   int     `json:"weekday"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Capacity  int     `json:"capacity"`
	ValidFrom *string `json:"validFrom,omitempty"`
	ValidTo   *string `json:"validTo,omitempty"`
}

// RemoveTimeslotItemRequest запрос на удаление слота расписания
type RemoveTimeslotItemRequest struct {
	UserID int64 `json:"userId"`
}

// ToDomainItem конвертирует request в domain модель слота
func (r *AddTimeslotItemRequest) ToDomainItem() (*domain.TimeslotItem, error) {
	return buildDomainItem(0, r.Weekday, r.StartTime, r.EndTime, r.Capacity, r.ValidFrom, r.ValidTo)
}

// ToDomainItem конвертирует request в domain модель слота с указанным ID
func (r *UpdateTimeslotItemRequest) ToDomainItem(itemID int64) (*domain.TimeslotItem, error) {
	return buildDomainItem(itemID, r.Weekday, r.StartTime, r.EndTime, r.Capacity, r.ValidFrom, r.ValidTo)
}

func buildDomainItem(id int64, weekday int, startTime, endTime string, capacity int, validFrom, validTo *string) (*domain.TimeslotItem, error) {
	if weekday < 0 || weekday > 6 {
		return nil, ErrInvalidWeekday
	}

	start, err := types.ParseTimeOfDay(startTime)
	if err != nil {
		return nil, ErrInvalidTime
	}
	end, err := types.ParseTimeOfDay(endTime)
	if err != nil {
		return nil, ErrInvalidTime
	}

	item := &domain.TimeslotItem{
		ID:        id,
		Weekday:   time.Weekday(weekday),
		StartTime: start,
		EndTime:   end,
		Capacity:  capacity,
	}

	if validFrom != nil {
		d, err := time.Parse(domain.DateFormat, *validFrom)
		if err != nil {
			return nil, ErrInvalidDate
		}
		item.ValidFrom = &d
	}
	if validTo != nil {
		d, err := time.Parse(domain.DateFormat, *validTo)
		if err != nil {
			return nil, ErrInvalidDate
		}
		item.ValidTo = &d
	}

	return item, nil
}

// Response модели

// TimeslotItemResponse ответ с данными слота расписания
type TimeslotItemResponse struct {
	ID        int64   `json:"id"`
	Weekday   int     `json:"weekday"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Capacity  int     `json:"capacity"`
	ValidFrom *string `json:"validFrom,omitempty"`
	ValidTo   *string `json:"validTo,omitempty"`
}

// ScheduleResponse ответ с расписанием владельца
type ScheduleResponse struct {
	ID        int64                  `json:"id"`
	OwnerKind string                 `json:"ownerKind"`
	OwnerID   int64                  `json:"ownerId"`
	Items     []TimeslotItemResponse `json:"items"`
}

// Методы конвертации

// FromDomainItem конвертирует domain модель слота в DTO
func FromDomainItem(item *domain.TimeslotItem) *TimeslotItemResponse {
	if item == nil {
		return nil
	}

	resp := &TimeslotItemResponse{
		ID:        item.ID,
		Weekday:   int(item.Weekday),
		StartTime: item.StartTime.String(),
		EndTime:   item.EndTime.String(),
		Capacity:  item.Capacity,
	}

	if item.ValidFrom != nil {
		s := item.ValidFrom.Format(domain.DateFormat)
		resp.ValidFrom = &s
	}
	if item.ValidTo != nil {
		s := item.ValidTo.Format(domain.DateFormat)
		resp.ValidTo = &s
	}

	return resp
}

// FromDomainSchedule конвертирует domain расписание в DTO
func FromDomainSchedule(schedule *domain.TimeslotsSchedule) *ScheduleResponse {
	if schedule == nil {
		return nil
	}

	resp := &ScheduleResponse{
		ID:        schedule.ID,
		OwnerKind: string(schedule.Owner.Kind),
		OwnerID:   schedule.Owner.ID,
		Items:     make([]TimeslotItemResponse, 0, len(schedule.Items)),
	}

	for i := range schedule.Items {
		if itemResp := FromDomainItem(&schedule.Items[i]); itemResp != nil {
			resp.Items = append(resp.Items, *itemResp)
		}
	}

	return resp
}
