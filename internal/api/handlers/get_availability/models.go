package get_availability

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alysesue/bookings-api-sub004/internal/domain"
	getAvailability "github.com/alysesue/bookings-api-sub004/internal/usecase/get_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	ServiceID   int64                        `json:"serviceId"`
	StartDate   string                       `json:"startDate"`
	EndDate     string                       `json:"endDate"`
	Occurrences []getAvailability.Occurrence `json:"occurrences"`
}

// ParseQuery разбирает query-параметры запроса доступности.
// startDate/endDate обязательны (период полуоткрытый: [startDate, endDate)),
// serviceProviderId, labelIds (через запятую) и labelFilterMode опциональны
func ParseQuery(serviceID, userID int64, query url.Values) (*getAvailability.Request, error) {
	startDate, err := time.Parse(domain.DateFormat, query.Get("startDate"))
	if err != nil {
		return nil, err
	}

	endDate, err := time.Parse(domain.DateFormat, query.Get("endDate"))
	if err != nil {
		return nil, err
	}

	req := &getAvailability.Request{
		UserID:          userID,
		ServiceID:       serviceID,
		RangeStart:      startDate,
		RangeEnd:        endDate,
		LabelFilterMode: query.Get("labelFilterMode"),
	}

	if raw := query.Get("serviceProviderId"); raw != "" {
		providerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		req.ServiceProviderID = &providerID
	}

	if raw := query.Get("labelIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			labelID, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, err
			}
			req.LabelIDs = append(req.LabelIDs, labelID)
		}
	}

	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailability.Response) *AvailabilityResponse {
	return &AvailabilityResponse{
		ServiceID:   resp.ServiceID,
		StartDate:   resp.RangeStart.Format(domain.DateFormat),
		EndDate:     resp.RangeEnd.Format(domain.DateFormat),
		Occurrences: resp.Occurrences,
	}
}
