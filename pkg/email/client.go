package email

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

	"github.com/willowmarket/willow-backend/pkg/config"
	"github.com/willowmarket/willow-backend/pkg/enums"
	"github.com/willowmarket/willow-backend/pkg/logger"
)

const (
	UpdateTypeOrderStatus   = "order_status"
	UpdateTypePaymentStatus = "payment_status"

	defaultTimeout = 5 * time.Second
)

var (
	errBaseURLRequired = errors.New("email base url is required")
	errLoggerRequired  = errors.New("email logger is required")
)

// Sender dispatches transactional order-update emails.
type Sender interface {
	SendOrderUpdate(ctx context.Context, req OrderUpdateRequest) error
}

// OrderUpdateRequest describes a single order-update email.
type OrderUpdateRequest struct {
	OrderID          string              `json:"orderId"`
	UpdateType       string              `json:"updateType"`
	NewStatus        enums.OrderStatus   `json:"newStatus,omitempty"`
	NewPaymentStatus enums.PaymentStatus `json:"newPaymentStatus,omitempty"`
}

// Client posts order updates to the external email collaborator over HTTP.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	timeout time.Duration
	logger  *logger.Logger
}

// NewClient validates the configuration and builds the collaborator client.
func NewClient(cfg config.EmailConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.Token),
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logg,
	}, nil
}

// SendOrderUpdate posts one order-update notification. The call is bounded by
// the configured timeout; callers treat failures as non-fatal.
func (c *Client) SendOrderUpdate(ctx context.Context, req OrderUpdateRequest) error {
	if req.OrderID == "" {
		return errors.New("order id is required")
	}
	switch req.UpdateType {
	case UpdateTypeOrderStatus, UpdateTypePaymentStatus:
	default:
		return fmt.Errorf("invalid update type %q", req.UpdateType)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding email payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/order-updates", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building email request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("posting email update: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("email collaborator returned status %d", resp.StatusCode)
	}
	return nil
}

// NopSender drops every email. Used when no collaborator is configured.
type NopSender struct{}

// SendOrderUpdate implements Sender.
func (NopSender) SendOrderUpdate(context.Context, OrderUpdateRequest) error {
	return nil
}
