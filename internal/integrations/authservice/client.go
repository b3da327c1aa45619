package authservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Действия, проверяемые через AuthService
const (
	ActionManageSchedule = "schedule:manage"
	ActionManageTimeslot = "timeslot:manage"
	ActionManageBooking  = "booking:manage"
)

// Client клиент для работы с AuthService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента AuthService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// CheckPermission проверяет, разрешено ли пользователю действие над ресурсом.
// Возвращает ErrPermissionDenied, если сервис явно отказал.
func (c *Client) CheckPermission(ctx context.Context, check PermissionCheck) error {
	url := fmt.Sprintf("%s/internal/permissions/check", c.baseURL)

	payload, err := json.Marshal(check)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusForbidden:
		return ErrPermissionDenied
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	// Парсим ответ
	var result PermissionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	if !result.Allowed {
		c.log.Warn("Permission denied for user_id=%d action=%s resource_id=%d: %s",
			check.UserID, check.Action, check.ResourceID, result.Reason)
		return ErrPermissionDenied
	}

	return nil
}
