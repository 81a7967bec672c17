package stripe

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orderpay/internal/config"
)

// Module exposes the Stripe client to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) *Client {
	if p.Config.StripeSecretKey == "" {
		p.Logger.Warn("stripe secret key is not set, stripe payments are unavailable")
	}
	return NewClient(Options{
		SecretKey:     p.Config.StripeSecretKey,
		WebhookSecret: p.Config.StripeWebhookSecret,
		APIURL:        p.Config.StripeAPIURL,
		PaymentMethod: p.Config.StripePaymentMethod,
		Timeout:       p.Config.ProviderTimeout,
	}, p.Logger)
}
