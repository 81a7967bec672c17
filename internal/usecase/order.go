package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/polkiloo/orderpay/internal/domain/errors"
	"github.com/polkiloo/orderpay/internal/domain/model"
	"github.com/polkiloo/orderpay/internal/domain/repository"
	"github.com/polkiloo/orderpay/internal/logger"
)

// OrderUseCase encapsulates order lifecycle logic.
type OrderUseCase struct {
	orders   repository.OrderRepository
	cache    repository.Cache
	payments *PaymentOrchestrator
	status   *StatusUpdater
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	orders repository.OrderRepository,
	cache repository.Cache,
	payments *PaymentOrchestrator,
	status *StatusUpdater,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *OrderUseCase {
	if cacheTTL <= 0 {
		cacheTTL = 600 * time.Second
	}
	return &OrderUseCase{
		orders:   orders,
		cache:    cache,
		payments: payments,
		status:   status,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func validateOrder(in model.Checkout) error {
	if len(in.Items) == 0 {
		return domainErrors.ErrInvalidOrder
	}
	for _, item := range in.Items {
		if !item.Valid() {
			return domainErrors.ErrInvalidOrder
		}
	}
	if !in.PaymentMethod.Valid() || !in.PaymentFlow.Valid() {
		return domainErrors.ErrUnsupportedPaymentMethod
	}
	return nil
}

// Create persists a pending order and starts its payment.
func (u *OrderUseCase) Create(ctx context.Context, userID string, in model.Checkout) (*model.Order, *model.PaymentDetails, error) {
	ctx, span := tracer.Start(ctx, "OrderUseCase.Create", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()
	log := logger.WithTrace(ctx, u.logger)

	if err := validateOrder(in); err != nil {
		return nil, nil, err
	}

	order := &model.Order{
		UserID:        userID,
		Items:         in.Items,
		TotalAmount:   model.CalculateTotal(in.Items),
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: model.PaymentStatusPending,
		OrderStatus:   model.OrderStatusPending,
	}
	if err := u.orders.Create(ctx, order); err != nil {
		return nil, nil, err
	}
	span.SetAttributes(attribute.String("order.id", order.ID))
	log.Info("order created",
		slog.String("order", order.ID),
		slog.String("user", userID),
		slog.String("total", order.TotalAmount.StringFixed(2)),
	)

	u.invalidate(ctx, log, userID)

	details, err := u.payments.Initiate(ctx, order, in.PaymentFlow)
	if err != nil {
		return nil, nil, err
	}

	if in.PaymentFlow == model.PaymentFlowBackend {
		fresh, err := u.orders.GetByID(ctx, order.ID)
		if err != nil {
			return nil, nil, err
		}
		order = fresh
	}
	return order, details, nil
}

// List returns a window of the user's orders, newest first, and the total count.
// The cached listing is keyed by user only, so a hit returns whichever window
// was stored first until it expires or a write invalidates it.
func (u *OrderUseCase) List(ctx context.Context, userID string, skip, take int) (*model.Page, error) {
	ctx, span := tracer.Start(ctx, "OrderUseCase.List", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()
	log := logger.WithTrace(ctx, u.logger)

	key := ordersCacheKey(userID)
	raw, ok, err := u.cache.Get(ctx, key)
	if err != nil {
		log.Warn("order cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if ok {
		var page model.Page
		if err := json.Unmarshal(raw, &page); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return &page, nil
		}
		log.Warn("order cache entry is corrupt", slog.String("key", key))
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	orders, err := u.orders.ListByUser(ctx, userID, skip, take)
	if err != nil {
		return nil, err
	}
	total, err := u.orders.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	page := &model.Page{Orders: orders, Total: total}

	if data, err := json.Marshal(page); err != nil {
		log.Warn("order listing encode failed", slog.String("error", err.Error()))
	} else if err := u.cache.Set(ctx, key, data, u.cacheTTL); err != nil {
		log.Warn("order cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return page, nil
}

// UpdateOrderStatus moves the fulfillment status of an order on behalf of an operator.
func (u *OrderUseCase) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, domainErrors.ErrInvalidStatus
	}
	order, err := u.status.Apply(ctx, orderID, model.Fulfil(status))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domainErrors.ErrOrderNotFound
	}
	return order, nil
}

func (u *OrderUseCase) invalidate(ctx context.Context, log *slog.Logger, userID string) {
	if err := u.cache.Delete(ctx, ordersCacheKey(userID)); err != nil {
		log.Warn("order cache invalidation failed", slog.String("user", userID), slog.String("error", err.Error()))
	}
}
