package handlers

import (
	"context"

	"github.com/polkiloo/orderpay/internal/domain/model"
	pkgAuth "github.com/polkiloo/orderpay/internal/pkg/auth"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, email, password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	ParseToken(token string) (pkgAuth.Principal, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	CreateOrder(ctx context.Context, userID string, in model.Checkout) (*model.Order, *model.PaymentDetails, error)
	Orders(ctx context.Context, userID string, skip, take int) (*model.Page, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error)
}

// WebhookFacade accepts provider notifications.
type WebhookFacade interface {
	HandleStripeWebhook(ctx context.Context, signature string, payload []byte) error
	HandlePaypalWebhook(ctx context.Context, payload []byte) error
}

// EventStream lets a user follow updates of their orders.
type EventStream interface {
	Subscribe(userID string) (<-chan model.OrderUpdate, func())
}

// HealthChecker reports whether backing services respond.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CommerceFacade aggregates the full set of operations used across handlers.
type CommerceFacade interface {
	AuthFacade
	OrderFacade
	WebhookFacade
	EventStream
	HealthChecker
}
