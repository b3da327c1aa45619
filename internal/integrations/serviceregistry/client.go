package serviceregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент для работы с реестром услуг
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента реестра услуг
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetService получает услугу по ID
func (c *Client) GetService(ctx context.Context, serviceID int64) (*Service, error) {
	url := fmt.Sprintf("%s/internal/services/%d", c.baseURL, serviceID)

	var service Service
	if err := c.getJSON(ctx, url, &service); err != nil {
		return nil, err
	}

	return &service, nil
}

// GetServiceProviders получает список исполнителей услуги.
// Именно этот список агрегатор доступности разворачивает в расписания.
func (c *Client) GetServiceProviders(ctx context.Context, serviceID int64) ([]ServiceProvider, error) {
	url := fmt.Sprintf("%s/internal/services/%d/providers", c.baseURL, serviceID)

	var providers []ServiceProvider
	if err := c.getJSON(ctx, url, &providers); err != nil {
		return nil, err
	}

	return providers, nil
}

// GetServiceProviderIDs получает ID активных исполнителей услуги
func (c *Client) GetServiceProviderIDs(ctx context.Context, serviceID int64) ([]int64, error) {
	providers, err := c.GetServiceProviders(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(providers))
	for _, p := range providers {
		if p.IsActive {
			ids = append(ids, p.ID)
		}
	}

	return ids, nil
}

func (c *Client) getJSON(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
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
	case http.StatusNotFound:
		return ErrServiceNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
