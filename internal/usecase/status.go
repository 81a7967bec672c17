package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/polkiloo/orderpay/internal/domain/errors"
	"github.com/polkiloo/orderpay/internal/domain/model"
	"github.com/polkiloo/orderpay/internal/domain/repository"
	"github.com/polkiloo/orderpay/internal/logger"
)

const maxStatusAttempts = 5

var tracer = otel.Tracer("github.com/polkiloo/orderpay/internal/usecase")

// StatusUpdater is the only path through which order statuses change.
type StatusUpdater struct {
	orders   repository.OrderRepository
	cache    repository.Cache
	notifier Notifier
	logger   *slog.Logger
}

// NewStatusUpdater constructs StatusUpdater.
func NewStatusUpdater(orders repository.OrderRepository, cache repository.Cache, notifier Notifier, logger *slog.Logger) *StatusUpdater {
	return &StatusUpdater{orders: orders, cache: cache, notifier: notifier, logger: logger}
}

// Apply moves the order towards the patch. It returns nil order and nil error
// when the order cannot be resolved. A patch that changes nothing returns the
// current order without side effects. Illegal moves fail with ErrIllegalTransition.
func (u *StatusUpdater) Apply(ctx context.Context, orderID string, patch model.StatusPatch) (*model.Order, error) {
	ctx, span := tracer.Start(ctx, "StatusUpdater.Apply", trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()
	log := logger.WithTrace(ctx, u.logger)

	if orderID == "" {
		return nil, nil
	}

	for attempt := 1; ; attempt++ {
		current, err := u.orders.GetByID(ctx, orderID)
		if errors.Is(err, domainErrors.ErrNotFound) {
			log.Debug("status update for unknown order", slog.String("order", orderID))
			return nil, nil
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "load order")
			return nil, err
		}

		if !patch.Differs(current) {
			return current, nil
		}
		if !patch.Allows(current) {
			target := patch.Apply(*current)
			return current, fmt.Errorf("%w: %s/%s -> %s/%s", domainErrors.ErrIllegalTransition,
				current.PaymentStatus, current.OrderStatus, target.PaymentStatus, target.OrderStatus)
		}

		updated, err := u.orders.UpdateStatus(ctx, orderID, current.Version, patch)
		switch {
		case err == nil:
			span.SetAttributes(attribute.Int("status.attempts", attempt))
			u.afterWrite(ctx, log, updated)
			return updated, nil
		case errors.Is(err, domainErrors.ErrVersionConflict) && attempt < maxStatusAttempts:
			log.Debug("status update lost a race, retrying",
				slog.String("order", orderID),
				slog.Int("attempt", attempt),
			)
		case errors.Is(err, domainErrors.ErrNotFound):
			return nil, nil
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "write status")
			return nil, err
		}
	}
}

func (u *StatusUpdater) afterWrite(ctx context.Context, log *slog.Logger, order *model.Order) {
	log.Info("order status changed",
		slog.String("order", order.ID),
		slog.String("payment_status", string(order.PaymentStatus)),
		slog.String("order_status", string(order.OrderStatus)),
	)

	if err := u.cache.Delete(ctx, ordersCacheKey(order.UserID)); err != nil {
		log.Warn("order cache invalidation failed", slog.String("user", order.UserID), slog.String("error", err.Error()))
	}

	update := model.OrderUpdate{UserID: order.UserID, OrderID: order.ID, Status: order.OrderStatus}
	if err := u.notifier.Emit(ctx, update); err != nil {
		log.Warn("order notification failed", slog.String("order", order.ID), slog.String("error", err.Error()))
	}
}
