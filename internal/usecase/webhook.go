package usecase

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/polkiloo/orderpay/internal/domain/errors"
	"github.com/polkiloo/orderpay/internal/domain/model"
	"github.com/polkiloo/orderpay/internal/domain/repository"
	"github.com/polkiloo/orderpay/internal/logger"
)

// WebhookUseCase reconciles orders with provider notifications.
type WebhookUseCase struct {
	stripe StripeGateway
	paypal PaypalGateway
	events repository.WebhookEventRepository
	status *StatusUpdater
	logger *slog.Logger
}

// NewWebhookUseCase constructs WebhookUseCase.
func NewWebhookUseCase(stripe StripeGateway, paypal PaypalGateway, events repository.WebhookEventRepository, status *StatusUpdater, logger *slog.Logger) *WebhookUseCase {
	return &WebhookUseCase{stripe: stripe, paypal: paypal, events: events, status: status, logger: logger}
}

// HandleStripe verifies and applies a Stripe event. Nothing changes when verification fails.
func (u *WebhookUseCase) HandleStripe(ctx context.Context, signature string, payload []byte) error {
	event, err := u.stripe.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	return u.reconcile(ctx, event)
}

// HandlePaypal applies a PayPal event. Bodies without a resource are accepted and ignored.
func (u *WebhookUseCase) HandlePaypal(ctx context.Context, payload []byte) error {
	event, err := u.paypal.ParseWebhook(payload)
	if err != nil {
		return err
	}
	return u.reconcile(ctx, event)
}

func (u *WebhookUseCase) reconcile(ctx context.Context, event *model.PaymentEvent) error {
	ctx, span := tracer.Start(ctx, "WebhookUseCase.reconcile", trace.WithAttributes(
		attribute.String("webhook.provider", string(event.Provider)),
		attribute.String("webhook.type", event.Type),
		attribute.String("order.id", event.OrderID),
	))
	defer span.End()
	log := logger.WithTrace(ctx, u.logger).With(
		slog.String("provider", string(event.Provider)),
		slog.String("event", event.ID),
		slog.String("type", event.Type),
	)

	patch, ok := event.Patch()
	if !ok {
		log.Info("unhandled webhook event")
		return nil
	}
	if event.OrderID == "" {
		log.Warn("webhook event carries no order reference")
		return nil
	}

	if event.ID != "" {
		seen, err := u.events.Processed(ctx, event.Provider, event.ID)
		if err != nil {
			return err
		}
		if seen {
			log.Info("duplicate webhook event skipped")
			return nil
		}
	}

	order, err := u.status.Apply(ctx, event.OrderID, patch)
	switch {
	case errors.Is(err, domainErrors.ErrIllegalTransition):
		log.Warn("webhook requested an illegal transition", slog.String("error", err.Error()))
	case err != nil:
		return err
	case order == nil:
		log.Info("webhook event for unknown order", slog.String("order", event.OrderID))
	}

	if event.ID != "" {
		if _, err := u.events.MarkProcessed(ctx, event.Provider, event.ID, event.Type); err != nil {
			log.Warn("failed to record webhook event", slog.String("error", err.Error()))
		}
	}
	return nil
}
