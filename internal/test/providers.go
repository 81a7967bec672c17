package test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderpay/internal/domain/errors"
	"github.com/polkiloo/orderpay/internal/domain/model"
)

// NotifierRecorder records emitted order updates.
type NotifierRecorder struct {
	Err error

	mu      sync.Mutex
	updates []model.OrderUpdate
}

// Emit records the update unless Err is set.
func (n *NotifierRecorder) Emit(ctx context.Context, update model.OrderUpdate) error {
	if n.Err != nil {
		return n.Err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, update)
	return nil
}

// Updates returns a copy of recorded updates.
func (n *NotifierRecorder) Updates() []model.OrderUpdate {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.OrderUpdate(nil), n.updates...)
}

// Count returns the number of recorded updates.
func (n *NotifierRecorder) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.updates)
}

// StripeGatewayStub simulates the Stripe adapter.
type StripeGatewayStub struct {
	CreateFn  func(context.Context, decimal.Decimal, string) (string, error)
	ConfirmFn func(context.Context, decimal.Decimal, string) (*model.Receipt, error)
	ParseFn   func([]byte, string) (*model.PaymentEvent, error)

	confirms atomic.Int32
}

// CreatePaymentIntent returns a client secret derived from the order id.
func (s *StripeGatewayStub) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, orderID string) (string, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, amount, orderID)
	}
	return "pi_" + orderID + "_secret", nil
}

// ConfirmServerPayment returns a succeeded receipt.
func (s *StripeGatewayStub) ConfirmServerPayment(ctx context.Context, amount decimal.Decimal, orderID string) (*model.Receipt, error) {
	s.confirms.Add(1)
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, amount, orderID)
	}
	return &model.Receipt{ProviderPaymentID: "pi_" + orderID, Amount: amount, Status: "succeeded"}, nil
}

// ParseWebhook rejects unsigned payloads and ignores the rest.
func (s *StripeGatewayStub) ParseWebhook(payload []byte, signature string) (*model.PaymentEvent, error) {
	if s.ParseFn != nil {
		return s.ParseFn(payload, signature)
	}
	if signature == "" {
		return nil, domainErrors.ErrWebhookVerificationFailed
	}
	return &model.PaymentEvent{Provider: model.ProviderStripe, Outcome: model.OutcomeIgnored}, nil
}

// Confirms returns the number of server confirmations attempted.
func (s *StripeGatewayStub) Confirms() int {
	return int(s.confirms.Load())
}

// PaypalGatewayStub simulates the PayPal adapter.
type PaypalGatewayStub struct {
	ApprovalFn func(context.Context, decimal.Decimal, string) (string, error)
	ParseFn    func([]byte) (*model.PaymentEvent, error)
}

// CreateApprovalFlow returns an approval link derived from the order id.
func (s *PaypalGatewayStub) CreateApprovalFlow(ctx context.Context, amount decimal.Decimal, orderID string) (string, error) {
	if s.ApprovalFn != nil {
		return s.ApprovalFn(ctx, amount, orderID)
	}
	return "https://paypal.test/approve/" + orderID, nil
}

// ParseWebhook ignores the payload unless overridden.
func (s *PaypalGatewayStub) ParseWebhook(payload []byte) (*model.PaymentEvent, error) {
	if s.ParseFn != nil {
		return s.ParseFn(payload)
	}
	return &model.PaymentEvent{Provider: model.ProviderPaypal, Outcome: model.OutcomeIgnored}, nil
}
