package app

import (
	"context"
	"fmt"

	"github.com/polkiloo/orderpay/internal/domain/model"
	pkgAuth "github.com/polkiloo/orderpay/internal/pkg/auth"
	"github.com/polkiloo/orderpay/internal/usecase"
)

// Subscriber hands out per-user order update streams.
type Subscriber interface {
	Subscribe(userID string) (<-chan model.OrderUpdate, func())
}

// DatabaseChecker reports whether the order store responds.
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) error
}

// CachePinger reports whether the cache responds.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// CommerceFacade is the single entry point the HTTP layer talks to.
type CommerceFacade struct {
	auth     *usecase.AuthUseCase
	orders   *usecase.OrderUseCase
	webhooks *usecase.WebhookUseCase
	events   Subscriber
	db       DatabaseChecker
	cache    CachePinger
}

func NewCommerceFacade(
	auth *usecase.AuthUseCase,
	orders *usecase.OrderUseCase,
	webhooks *usecase.WebhookUseCase,
	events Subscriber,
	db DatabaseChecker,
	cache CachePinger,
) *CommerceFacade {
	return &CommerceFacade{auth: auth, orders: orders, webhooks: webhooks, events: events, db: db, cache: cache}
}

func (f *CommerceFacade) Register(ctx context.Context, email, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, email, password)
	return token, err
}

func (f *CommerceFacade) Authenticate(ctx context.Context, email, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, email, password)
	return token, err
}

func (f *CommerceFacade) ParseToken(token string) (pkgAuth.Principal, error) {
	return f.auth.ParseToken(token)
}

func (f *CommerceFacade) CreateOrder(ctx context.Context, userID string, in model.Checkout) (*model.Order, *model.PaymentDetails, error) {
	return f.orders.Create(ctx, userID, in)
}

func (f *CommerceFacade) Orders(ctx context.Context, userID string, skip, take int) (*model.Page, error) {
	return f.orders.List(ctx, userID, skip, take)
}

func (f *CommerceFacade) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	return f.orders.UpdateOrderStatus(ctx, orderID, status)
}

func (f *CommerceFacade) HandleStripeWebhook(ctx context.Context, signature string, payload []byte) error {
	return f.webhooks.HandleStripe(ctx, signature, payload)
}

func (f *CommerceFacade) HandlePaypalWebhook(ctx context.Context, payload []byte) error {
	return f.webhooks.HandlePaypal(ctx, payload)
}

func (f *CommerceFacade) Subscribe(userID string) (<-chan model.OrderUpdate, func()) {
	return f.events.Subscribe(userID)
}

// HealthCheck fails when either the database or the cache is unreachable.
func (f *CommerceFacade) HealthCheck(ctx context.Context) error {
	if err := f.db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if err := f.cache.Ping(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}
