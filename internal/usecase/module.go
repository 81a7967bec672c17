package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orderpay/internal/config"
	"github.com/polkiloo/orderpay/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewStatusUpdater,
	NewPaymentOrchestrator,
	NewWebhookUseCase,
	newOrderUseCase,
)

type orderParams struct {
	fx.In

	Orders   repository.OrderRepository
	Cache    repository.Cache
	Payments *PaymentOrchestrator
	Status   *StatusUpdater
	Config   *config.Config
	Logger   *slog.Logger
}

func newOrderUseCase(p orderParams) *OrderUseCase {
	return NewOrderUseCase(p.Orders, p.Cache, p.Payments, p.Status, p.Config.OrdersCacheTTL, p.Logger)
}
