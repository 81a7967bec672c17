package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	stripeapi "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"

	domainErrors "github.com/polkiloo/orderpay/internal/domain/errors"
	"github.com/polkiloo/orderpay/internal/domain/model"
	"github.com/polkiloo/orderpay/internal/pkg/breaker"
)

const (
	eventPaymentSucceeded = "payment_intent.succeeded"
	eventPaymentFailed    = "payment_intent.payment_failed"

	metadataOrderID = "orderId"
)

// Options configures the Stripe client.
type Options struct {
	SecretKey     string
	WebhookSecret string
	// APIURL overrides the Stripe endpoint, empty means the public API.
	APIURL string
	// PaymentMethod is the server-held method used by confirmed charges.
	PaymentMethod string
	Timeout       time.Duration
}

// Client talks to the Stripe PaymentIntents API and verifies Stripe webhooks.
type Client struct {
	intents       *paymentintent.Client
	webhookSecret string
	paymentMethod string
	timeout       time.Duration
	cb            *gobreaker.CircuitBreaker
	logger        *slog.Logger
}

// NewClient builds a client. A missing secret key is not an error: calls fail with ErrProviderUnavailable.
func NewClient(opts Options, logger *slog.Logger) *Client {
	c := &Client{
		webhookSecret: opts.WebhookSecret,
		paymentMethod: opts.PaymentMethod,
		timeout:       opts.Timeout,
		cb:            breaker.New("stripe", logger, healthyResponse),
		logger:        logger,
	}
	if c.paymentMethod == "" {
		c.paymentMethod = "pm_card_visa"
	}
	if opts.SecretKey == "" {
		return c
	}

	cfg := &stripeapi.BackendConfig{
		HTTPClient:        &http.Client{Timeout: opts.Timeout},
		MaxNetworkRetries: stripeapi.Int64(0),
		LeveledLogger:     newLeveledLogger(logger),
	}
	if opts.APIURL != "" {
		cfg.URL = stripeapi.String(opts.APIURL)
	}
	c.intents = &paymentintent.Client{
		B:   stripeapi.GetBackendWithConfig(stripeapi.APIBackend, cfg),
		Key: opts.SecretKey,
	}
	return c
}

// CreatePaymentIntent creates an unconfirmed intent and returns its client secret.
func (c *Client) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, orderID string) (string, error) {
	if c.intents == nil {
		return "", domainErrors.ErrProviderUnavailable
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	params := &stripeapi.PaymentIntentParams{
		Amount:   stripeapi.Int64(toCents(amount)),
		Currency: stripeapi.String(string(stripeapi.CurrencyUSD)),
		AutomaticPaymentMethods: &stripeapi.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeapi.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata(metadataOrderID, orderID)

	intent, err := breaker.Execute(c.cb, func() (*stripeapi.PaymentIntent, error) {
		return c.intents.New(params)
	})
	if err != nil {
		return "", c.unavailableOr(err, domainErrors.ErrPaymentInitializationFailed)
	}
	if intent.ClientSecret == "" {
		return "", domainErrors.ErrPaymentInitializationFailed
	}
	return intent.ClientSecret, nil
}

// ConfirmServerPayment creates and confirms an intent with the server-held payment method.
func (c *Client) ConfirmServerPayment(ctx context.Context, amount decimal.Decimal, orderID string) (*model.Receipt, error) {
	if c.intents == nil {
		return nil, domainErrors.ErrProviderUnavailable
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	params := &stripeapi.PaymentIntentParams{
		Amount:             stripeapi.Int64(toCents(amount)),
		Currency:           stripeapi.String(string(stripeapi.CurrencyUSD)),
		PaymentMethod:      stripeapi.String(c.paymentMethod),
		PaymentMethodTypes: stripeapi.StringSlice([]string{"card"}),
		Confirm:            stripeapi.Bool(true),
	}
	params.Context = ctx
	params.AddMetadata(metadataOrderID, orderID)

	intent, err := breaker.Execute(c.cb, func() (*stripeapi.PaymentIntent, error) {
		return c.intents.New(params)
	})
	if err != nil {
		return nil, c.unavailableOr(err, domainErrors.ErrPaymentConfirmationFailed)
	}
	if intent.Status != stripeapi.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("%w: intent %s is %s", domainErrors.ErrPaymentConfirmationFailed, intent.ID, intent.Status)
	}
	return &model.Receipt{
		ProviderPaymentID: intent.ID,
		Amount:            fromCents(intent.Amount),
		Status:            string(intent.Status),
	}, nil
}

type intentObject struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// ParseWebhook verifies the signature header and extracts the order the event refers to.
func (c *Client) ParseWebhook(payload []byte, signature string) (*model.PaymentEvent, error) {
	if c.webhookSecret == "" {
		return nil, domainErrors.ErrProviderUnavailable
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrWebhookVerificationFailed, err)
	}

	parsed := &model.PaymentEvent{
		Provider: model.ProviderStripe,
		ID:       event.ID,
		Type:     string(event.Type),
	}
	switch parsed.Type {
	case eventPaymentSucceeded:
		parsed.Outcome = model.OutcomeSucceeded
	case eventPaymentFailed:
		parsed.Outcome = model.OutcomeFailed
	default:
		return parsed, nil
	}

	if event.Data != nil && len(event.Data.Raw) > 0 {
		var obj intentObject
		if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
			return nil, fmt.Errorf("%w: decode object: %v", domainErrors.ErrWebhookVerificationFailed, err)
		}
		parsed.OrderID = obj.Metadata[metadataOrderID]
	}
	return parsed, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) unavailableOr(err error, kind error) error {
	if breaker.Rejected(err) {
		c.logger.Warn("stripe call rejected by breaker", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", domainErrors.ErrProviderUnavailable, err)
	}
	var stripeErr *stripeapi.Error
	if errors.As(err, &stripeErr) {
		c.logger.Error("stripe request failed",
			slog.Int("status", stripeErr.HTTPStatusCode),
			slog.String("code", string(stripeErr.Code)),
			slog.String("message", stripeErr.Msg),
		)
	}
	return fmt.Errorf("%w: %v", kind, err)
}

// healthyResponse keeps request errors Stripe answered on purpose, such as declines and
// invalid amounts, from counting against the breaker. Throttling and 5xx still do.
func healthyResponse(err error) bool {
	if err == nil {
		return true
	}
	var stripeErr *stripeapi.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	code := stripeErr.HTTPStatusCode
	return code >= http.StatusBadRequest && code < http.StatusInternalServerError && code != http.StatusTooManyRequests
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
