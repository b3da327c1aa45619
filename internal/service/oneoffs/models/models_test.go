package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alysesue/bookings-api-sub004/pkg/ptr"
)

func validCreateRequest() *CreateOneOffTimeslotRequest {
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	return &CreateOneOffTimeslotRequest{
		UserID:            1,
		ServiceProviderID: 10,
		StartDateTime:     start,
		EndDateTime:       start.Add(time.Hour),
		Capacity:          2,
	}
}

func TestCreateRequest_Validate_OK(t *testing.T) {
	assert.Empty(t, validCreateRequest().Validate())
}

func TestCreateRequest_Validate_CollectsAllViolations(t *testing.T) {
	// Все нарушения возвращаются одним пакетом, без обрыва на первом
	req := &CreateOneOffTimeslotRequest{
		Title: ptr.Ptr(strings.Repeat("a", 101)),
	}

	violations := req.Validate()
	require.NotEmpty(t, violations)

	codes := make(map[string]int)
	for _, v := range violations {
		codes[v.Code]++
	}

	// userId, serviceProviderId, startDateTime, endDateTime
	assert.Equal(t, 4, codes["required"])
	assert.Equal(t, 1, codes["too_long"])
}

func TestCreateRequest_Validate_TimeRange(t *testing.T) {
	req := validCreateRequest()
	req.StartDateTime, req.EndDateTime = req.EndDateTime, req.StartDateTime

	violations := req.Validate()
	require.Len(t, violations, 1)
	assert.Equal(t, "invalid_time_range", violations[0].Code)

	// Пустой интервал тоже недопустим
	req = validCreateRequest()
	req.EndDateTime = req.StartDateTime
	violations = req.Validate()
	require.Len(t, violations, 1)
	assert.Equal(t, "invalid_time_range", violations[0].Code)
}

func TestCreateRequest_Validate_ZeroCapacityAllowed(t *testing.T) {
	req := validCreateRequest()
	req.Capacity = 0
	assert.Empty(t, req.Validate())
}

func TestCreateRequest_Validate_NegativeCapacityRejected(t *testing.T) {
	req := validCreateRequest()
	req.Capacity = -1

	violations := req.Validate()
	require.Len(t, violations, 1)
	assert.Equal(t, "too_small", violations[0].Code)
}

func TestUpdateRequest_Validate(t *testing.T) {
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)

	req := &UpdateOneOffTimeslotRequest{
		UserID:        1,
		StartDateTime: start,
		EndDateTime:   start.Add(time.Hour),
		Description:   ptr.Ptr(strings.Repeat("x", 4001)),
	}

	violations := req.Validate()
	require.Len(t, violations, 1)
	assert.Equal(t, "too_long", violations[0].Code)
	assert.Contains(t, violations[0].Message, "description")
}

func TestCreateRequest_ToDomainSlot(t *testing.T) {
	req := validCreateRequest()
	req.LabelIDs = []int64{1, 2}
	req.EventID = ptr.Ptr(int64(7))

	slot := req.ToDomainSlot()
	assert.Equal(t, int64(10), slot.ServiceProviderID)
	assert.Equal(t, req.StartDateTime, slot.StartDateTime)
	assert.Equal(t, req.EndDateTime, slot.EndDateTime)
	assert.Equal(t, 2, slot.Capacity)
	assert.Equal(t, []int64{1, 2}, slot.LabelIDs)
	require.NotNil(t, slot.EventID)
	assert.Equal(t, int64(7), *slot.EventID)
}

func TestUpdateRequest_ToDomainSlot(t *testing.T) {
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	req := &UpdateOneOffTimeslotRequest{
		UserID:        1,
		StartDateTime: start,
		EndDateTime:   start.Add(time.Hour),
		Capacity:      3,
	}

	slot := req.ToDomainSlot(42, 10)
	assert.Equal(t, int64(42), slot.ID)
	assert.Equal(t, int64(10), slot.ServiceProviderID)
	assert.Equal(t, 3, slot.Capacity)
}
