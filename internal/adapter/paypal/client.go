package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	domainErrors "github.com/polkiloo/orderpay/internal/domain/errors"
	"github.com/polkiloo/orderpay/internal/domain/model"
	"github.com/polkiloo/orderpay/internal/pkg/breaker"
)

const (
	eventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	eventCaptureDenied    = "PAYMENT.CAPTURE.DENIED"
	eventCaptureRefunded  = "PAYMENT.CAPTURE.REFUNDED"

	// tokens are refreshed this long before PayPal says they expire
	tokenLeeway = time.Minute
)

// Options configures the PayPal REST client.
type Options struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
}

// Client implements the PayPal checkout calls over the REST API.
type Client struct {
	baseURL      *url.URL
	clientID     string
	clientSecret string
	httpClient   *http.Client
	cb           *gobreaker.CircuitBreaker
	logger       *slog.Logger
	now          func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates PayPal client. Missing credentials are allowed; calls then fail with ErrProviderUnavailable.
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	parsed, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse paypal url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("paypal url must be absolute")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      parsed,
		clientID:     opts.ClientID,
		clientSecret: opts.ClientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		cb:           breaker.New("paypal", logger, healthyResponse),
		logger:       logger,
		now:          time.Now,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	ReferenceID string `json:"reference_id"`
	CustomID    string `json:"custom_id,omitempty"`
	Amount      money  `json:"amount"`
}

type createOrderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

type createOrderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []link `json:"links"`
}

// CreateApprovalFlow registers a checkout order and returns the URL the buyer must visit.
func (c *Client) CreateApprovalFlow(ctx context.Context, amount decimal.Decimal, orderID string) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", domainErrors.ErrProviderUnavailable
	}

	res, err := breaker.Execute(c.cb, func() (*createOrderResponse, error) {
		return c.createOrder(ctx, amount, orderID)
	})
	if err != nil {
		if breaker.Rejected(err) {
			return "", fmt.Errorf("%w: %v", domainErrors.ErrProviderUnavailable, err)
		}
		return "", fmt.Errorf("%w: %v", domainErrors.ErrPaymentInitializationFailed, err)
	}

	for _, l := range res.Links {
		if l.Rel == "approve" && l.Href != "" {
			return l.Href, nil
		}
	}
	c.logger.Error("paypal order has no approval link", slog.String("paypal_order", res.ID), slog.String("order", orderID))
	return "", domainErrors.ErrApprovalURLUnavailable
}

func (c *Client) createOrder(ctx context.Context, amount decimal.Decimal, orderID string) (*createOrderResponse, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(createOrderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			ReferenceID: orderID,
			CustomID:    orderID,
			Amount:      money{CurrencyCode: "USD", Value: amount.StringFixed(2)},
		}},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/v2/checkout/orders"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("PayPal-Request-Id", orderID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var data createOrderResponse
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return nil, fmt.Errorf("decode paypal order: %w", err)
		}
		return &data, nil
	case http.StatusUnauthorized:
		c.resetToken()
		fallthrough
	default:
		payload, _ := io.ReadAll(resp.Body)
		c.logger.Error("paypal order request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(payload)))
		return nil, &statusError{op: "order", code: resp.StatusCode, status: resp.Status}
	}
}

// statusError is a non-success answer from the PayPal API.
type statusError struct {
	op     string
	code   int
	status string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("paypal %s error: %s", e.op, e.status)
}

// healthyResponse keeps 4xx answers other than throttling from counting against the breaker.
func healthyResponse(err error) bool {
	if err == nil {
		return true
	}
	var se *statusError
	if !errors.As(err, &se) {
		return false
	}
	return se.code >= http.StatusBadRequest && se.code < http.StatusInternalServerError && se.code != http.StatusTooManyRequests
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/v1/oauth2/token"), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &statusError{op: "token", code: resp.StatusCode, status: resp.Status}
	}

	var data tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode paypal token: %w", err)
	}
	if data.AccessToken == "" {
		return "", errors.New("paypal token response has no access token")
	}

	c.token = data.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(data.ExpiresIn)*time.Second - tokenLeeway)
	return c.token, nil
}

func (c *Client) resetToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *Client) endpoint(p string) string {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, p)
	return endpoint.String()
}

type webhookBody struct {
	ID        string           `json:"id"`
	EventType string           `json:"event_type"`
	Resource  *webhookResource `json:"resource"`
}

type webhookResource struct {
	ReferenceID   string `json:"reference_id"`
	CustomID      string `json:"custom_id"`
	PurchaseUnits []struct {
		ReferenceID string `json:"reference_id"`
	} `json:"purchase_units"`
}

func (r *webhookResource) orderReference() string {
	if len(r.PurchaseUnits) > 0 && r.PurchaseUnits[0].ReferenceID != "" {
		return r.PurchaseUnits[0].ReferenceID
	}
	if r.ReferenceID != "" {
		return r.ReferenceID
	}
	return r.CustomID
}

// ParseWebhook decodes a PayPal notification. Only malformed JSON is an error;
// a body without resource yields an ignored event.
func (c *Client) ParseWebhook(payload []byte) (*model.PaymentEvent, error) {
	var body webhookBody
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrMalformedWebhook, err)
	}

	event := &model.PaymentEvent{
		Provider: model.ProviderPaypal,
		ID:       body.ID,
		Type:     body.EventType,
	}
	if body.Resource == nil {
		return event, nil
	}

	switch body.EventType {
	case eventCaptureCompleted:
		event.Outcome = model.OutcomeSucceeded
	case eventCaptureDenied, eventCaptureRefunded:
		event.Outcome = model.OutcomeFailed
	default:
		return event, nil
	}
	event.OrderID = body.Resource.orderReference()
	return event, nil
}
