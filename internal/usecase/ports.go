package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/orderpay/internal/domain/model"
)

// Notifier pushes order updates to connected clients. Delivery is best effort.
type Notifier interface {
	Emit(ctx context.Context, update model.OrderUpdate) error
}

// StripeGateway is the subset of Stripe used by payments and webhooks.
type StripeGateway interface {
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal, orderID string) (string, error)
	ConfirmServerPayment(ctx context.Context, amount decimal.Decimal, orderID string) (*model.Receipt, error)
	ParseWebhook(payload []byte, signature string) (*model.PaymentEvent, error)
}

// PaypalGateway is the subset of PayPal used by payments and webhooks.
type PaypalGateway interface {
	CreateApprovalFlow(ctx context.Context, amount decimal.Decimal, orderID string) (string, error)
	ParseWebhook(payload []byte) (*model.PaymentEvent, error)
}

func ordersCacheKey(userID string) string {
	return "orders:" + userID
}
