package test

import (
	"context"

	"github.com/polkiloo/orderpay/internal/domain/model"
	pkgAuth "github.com/polkiloo/orderpay/internal/pkg/auth"
)

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	ParseFn        func(string) (pkgAuth.Principal, error)
}

// Register returns token for successful registration scenarios.
func (s AuthFacadeStub) Register(ctx context.Context, email, password string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, email, password)
	}
	return "token", nil
}

// Authenticate returns token for successful authentication scenarios.
func (s AuthFacadeStub) Authenticate(ctx context.Context, email, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, email, password)
	}
	return "token", nil
}

// ParseToken returns a regular user unless overridden.
func (s AuthFacadeStub) ParseToken(token string) (pkgAuth.Principal, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return pkgAuth.Principal{UserID: "user-1", Role: model.RoleUser}, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	CreateFn       func(context.Context, string, model.Checkout) (*model.Order, *model.PaymentDetails, error)
	OrdersFn       func(context.Context, string, int, int) (*model.Page, error)
	UpdateStatusFn func(context.Context, string, model.OrderStatus) (*model.Order, error)
}

// CreateOrder delegates to provided function or returns a pending order.
func (s OrderFacadeStub) CreateOrder(ctx context.Context, userID string, in model.Checkout) (*model.Order, *model.PaymentDetails, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, userID, in)
	}
	order := &model.Order{
		ID:            "order-1",
		UserID:        userID,
		Items:         in.Items,
		TotalAmount:   model.CalculateTotal(in.Items),
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: model.PaymentStatusPending,
		OrderStatus:   model.OrderStatusPending,
	}
	return order, &model.PaymentDetails{ClientSecret: "secret"}, nil
}

// Orders returns a single-order page unless overridden.
func (s OrderFacadeStub) Orders(ctx context.Context, userID string, skip, take int) (*model.Page, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, userID, skip, take)
	}
	return &model.Page{Orders: []model.Order{{ID: "order-1", UserID: userID}}, Total: 1}, nil
}

// UpdateOrderStatus returns an order in the requested status unless overridden.
func (s OrderFacadeStub) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, orderID, status)
	}
	return &model.Order{ID: orderID, OrderStatus: status}, nil
}

// WebhookFacadeStub records webhook deliveries.
type WebhookFacadeStub struct {
	StripeFn func(context.Context, string, []byte) error
	PaypalFn func(context.Context, []byte) error
}

// HandleStripeWebhook delegates to StripeFn.
func (s WebhookFacadeStub) HandleStripeWebhook(ctx context.Context, signature string, payload []byte) error {
	if s.StripeFn != nil {
		return s.StripeFn(ctx, signature, payload)
	}
	return nil
}

// HandlePaypalWebhook delegates to PaypalFn.
func (s WebhookFacadeStub) HandlePaypalWebhook(ctx context.Context, payload []byte) error {
	if s.PaypalFn != nil {
		return s.PaypalFn(ctx, payload)
	}
	return nil
}

// EventStreamStub replays preset updates to a subscriber and then closes the stream.
type EventStreamStub struct {
	Updates     []model.OrderUpdate
	SubscribeFn func(string) (<-chan model.OrderUpdate, func())
}

// Subscribe returns a closed channel pre-filled with Updates.
func (s EventStreamStub) Subscribe(userID string) (<-chan model.OrderUpdate, func()) {
	if s.SubscribeFn != nil {
		return s.SubscribeFn(userID)
	}
	ch := make(chan model.OrderUpdate, len(s.Updates))
	for _, u := range s.Updates {
		ch <- u
	}
	close(ch)
	return ch, func() {}
}

// HealthCheckerStub reports the configured error.
type HealthCheckerStub struct {
	Err error
}

// HealthCheck returns Err.
func (s HealthCheckerStub) HealthCheck(ctx context.Context) error {
	return s.Err
}

// CommerceFacadeStub aggregates facade dependencies for HTTP layer tests.
type CommerceFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
	WebhookFacadeStub
	EventStreamStub
	HealthCheckerStub
}
