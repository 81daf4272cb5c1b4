package paychangu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dinehub-mw/dinehub-backend/pkg/config"
	pkgerrors "github.com/dinehub-mw/dinehub-backend/pkg/errors"
	"github.com/dinehub-mw/dinehub-backend/pkg/logger"
	"github.com/dinehub-mw/dinehub-backend/pkg/metrics"
)

var (
	errAPIKeyRequired = errors.New("paychangu api key is required")
	errLoggerRequired = errors.New("paychangu logger is required")
)

// Client wraps the PayChangu REST API with auth, timeouts, and error mapping.
type Client struct {
	baseURL       string
	apiKey        string
	webhookSecret string
	httpClient    *http.Client
	logger        *logger.Logger
	metrics       *metrics.PaymentMetrics
}

// NewClient initializes the gateway wrapper and validates credentials.
func NewClient(cfg config.PayChanguConfig, logg *logger.Logger, pm *metrics.PaymentMetrics) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.APIURL, "/"),
		apiKey:        apiKey,
		webhookSecret: strings.TrimSpace(cfg.WebhookSecret),
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logg,
		metrics:       pm,
	}, nil
}

// WebhookSecret returns the configured webhook signing secret.
func (c *Client) WebhookSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

// CreatePayment creates a hosted checkout session. The idempotency key is
// forwarded so gateway-side retries collapse onto one payment.
func (c *Client) CreatePayment(ctx context.Context, idempotencyKey string, req CreatePaymentRequest) (*PaymentResponse, error) {
	if req.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	if req.Currency == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment currency is required")
	}

	start := time.Now()
	resp, err := c.do(ctx, http.MethodPost, "/payments", idempotencyKey, req)
	c.metrics.ObserveGatewayDuration("create_payment", time.Since(start))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetPayment fetches the current gateway state of a payment.
func (c *Client) GetPayment(ctx context.Context, providerPaymentID string) (*PaymentResponse, error) {
	id := strings.TrimSpace(providerPaymentID)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider payment id is required")
	}

	start := time.Now()
	resp, err := c.do(ctx, http.MethodGet, "/payments/"+id, "", nil)
	c.metrics.ObserveGatewayDuration("get_payment", time.Since(start))
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path, idempotencyKey string, payload any) (*PaymentResponse, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode gateway request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create gateway request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read gateway response")
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gateway payment not found")
	case resp.StatusCode >= 500:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("gateway error: status %d", resp.StatusCode))
	case resp.StatusCode >= 400:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("gateway rejected request: status %d body %s", resp.StatusCode, truncate(raw, 256)))
	}

	var parsed PaymentResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gateway response")
	}
	return &parsed, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
