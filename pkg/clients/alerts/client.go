// Package alerts posts low stock notifications to an HTTP webhook.
package alerts

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stockledger/internal/config"
)

// Client exposes the alert operations used by the application.
type Client interface {
	SendLowStockAlert(ctx context.Context, alert LowStockAlert) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg config.AlertsConfig) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &APIClient{
		httpClient: restyClient,
		url:        cfg.WebhookURL,
	}
}

// LowStockAlert is the webhook payload.
type LowStockAlert struct {
	Event   string         `json:"event"`
	Date    string         `json:"date"`
	Summary string         `json:"summary"`
	Items   []LowStockItem `json:"items"`
}

// LowStockItem is one record below the alert threshold.
type LowStockItem struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	ReorderLevel string          `json:"reorderLevel"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SendLowStockAlert posts alert to the configured webhook.
func (c *APIClient) SendLowStockAlert(ctx context.Context, alert LowStockAlert) error {
	if alert.Event == "" {
		alert.Event = "low_stock"
	}

	apiErr := new(apiError)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send low stock alert: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return fmt.Errorf("alert webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
