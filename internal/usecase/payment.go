package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	domainErrors "github.com/polkiloo/orderpay/internal/domain/errors"
	"github.com/polkiloo/orderpay/internal/domain/model"
	"github.com/polkiloo/orderpay/internal/logger"
)

// paymentStrategy starts a payment for a persisted order.
type paymentStrategy interface {
	initiate(ctx context.Context, order *model.Order) (*model.PaymentDetails, error)
}

// stripeClientPayment hands a client secret to the buyer; the webhook settles the order.
type stripeClientPayment struct {
	stripe StripeGateway
}

func (s stripeClientPayment) initiate(ctx context.Context, order *model.Order) (*model.PaymentDetails, error) {
	secret, err := s.stripe.CreatePaymentIntent(ctx, order.TotalAmount, order.ID)
	if err != nil {
		return nil, err
	}
	return &model.PaymentDetails{ClientSecret: secret}, nil
}

// stripeServerPayment charges the server-held method and settles the order right away.
type stripeServerPayment struct {
	stripe StripeGateway
	status *StatusUpdater
	logger *slog.Logger
}

func (s stripeServerPayment) initiate(ctx context.Context, order *model.Order) (*model.PaymentDetails, error) {
	log := logger.WithTrace(ctx, s.logger)

	receipt, err := s.stripe.ConfirmServerPayment(ctx, order.TotalAmount, order.ID)
	if err != nil {
		if _, uerr := s.status.Apply(ctx, order.ID, model.Settle(model.PaymentStatusFailed, model.OrderStatusCancelled)); uerr != nil {
			log.Error("failed to cancel order after declined payment",
				slog.String("order", order.ID),
				slog.String("error", uerr.Error()),
			)
		}
		if errors.Is(err, domainErrors.ErrPaymentConfirmationFailed) || errors.Is(err, domainErrors.ErrProviderUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrPaymentConfirmationFailed, err)
	}

	if _, err := s.status.Apply(ctx, order.ID, model.Settle(model.PaymentStatusPaid, model.OrderStatusProcessing)); err != nil {
		return nil, fmt.Errorf("record payment %s: %w", receipt.ProviderPaymentID, err)
	}
	return &model.PaymentDetails{PaymentReceipt: receipt}, nil
}

type paypalApproval struct {
	paypal PaypalGateway
}

func (p paypalApproval) initiate(ctx context.Context, order *model.Order) (*model.PaymentDetails, error) {
	url, err := p.paypal.CreateApprovalFlow(ctx, order.TotalAmount, order.ID)
	if err != nil {
		return nil, err
	}
	return &model.PaymentDetails{ApprovalURL: url}, nil
}

// PayPal needs buyer approval in both flows.
type (
	paypalClientPayment struct{ paypalApproval }
	paypalServerPayment struct{ paypalApproval }
)

// PaymentOrchestrator picks the payment strategy for a method and flow.
type PaymentOrchestrator struct {
	stripeClient paymentStrategy
	stripeServer paymentStrategy
	paypalClient paymentStrategy
	paypalServer paymentStrategy
}

// NewPaymentOrchestrator constructs PaymentOrchestrator.
func NewPaymentOrchestrator(stripe StripeGateway, paypal PaypalGateway, status *StatusUpdater, logger *slog.Logger) *PaymentOrchestrator {
	approval := paypalApproval{paypal: paypal}
	return &PaymentOrchestrator{
		stripeClient: stripeClientPayment{stripe: stripe},
		stripeServer: stripeServerPayment{stripe: stripe, status: status, logger: logger},
		paypalClient: paypalClientPayment{approval},
		paypalServer: paypalServerPayment{approval},
	}
}

func (o *PaymentOrchestrator) strategy(method model.PaymentMethod, flow model.PaymentFlow) (paymentStrategy, error) {
	switch method {
	case model.PaymentMethodStripe:
		switch flow {
		case model.PaymentFlowFrontend:
			return o.stripeClient, nil
		case model.PaymentFlowBackend:
			return o.stripeServer, nil
		}
	case model.PaymentMethodPaypal:
		switch flow {
		case model.PaymentFlowFrontend:
			return o.paypalClient, nil
		case model.PaymentFlowBackend:
			return o.paypalServer, nil
		}
	}
	return nil, domainErrors.ErrUnsupportedPaymentMethod
}

// Initiate starts the payment for order using the requested flow.
func (o *PaymentOrchestrator) Initiate(ctx context.Context, order *model.Order, flow model.PaymentFlow) (*model.PaymentDetails, error) {
	ctx, span := tracer.Start(ctx, "PaymentOrchestrator.Initiate", trace.WithAttributes(
		attribute.String("order.id", order.ID),
		attribute.String("payment.method", string(order.PaymentMethod)),
		attribute.String("payment.flow", string(flow)),
	))
	defer span.End()

	s, err := o.strategy(order.PaymentMethod, flow)
	if err != nil {
		return nil, err
	}
	details, err := s.initiate(ctx, order)
	if err != nil {
		span.RecordError(err)
	}
	return details, err
}
