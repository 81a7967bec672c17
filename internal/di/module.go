package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/orderpay/internal/adapter/paypal"
	"github.com/polkiloo/orderpay/internal/adapter/stripe"
	"github.com/polkiloo/orderpay/internal/app"
	"github.com/polkiloo/orderpay/internal/config"
	"github.com/polkiloo/orderpay/internal/logger"
	"github.com/polkiloo/orderpay/internal/pkg/auth"
	"github.com/polkiloo/orderpay/internal/server/http/router"
	"github.com/polkiloo/orderpay/internal/storage/cache"
	"github.com/polkiloo/orderpay/internal/storage/postgres"
	"github.com/polkiloo/orderpay/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		cache.Module,
		stripe.Module,
		paypal.Module,
		usecase.Module,
		fx.Provide(func(client *stripe.Client) usecase.StripeGateway { return client }),
		fx.Provide(func(client *paypal.Client) usecase.PaypalGateway { return client }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
