package paypal

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/orderpay/internal/config"
)

// Module exposes PayPal client implementation to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*Client, error) {
	if p.Config.PaypalClientID == "" || p.Config.PaypalClientSecret == "" {
		p.Logger.Warn("paypal credentials are not set, paypal payments are unavailable")
	}
	return NewClient(Options{
		ClientID:     p.Config.PaypalClientID,
		ClientSecret: p.Config.PaypalClientSecret,
		BaseURL:      p.Config.PaypalAPIURL,
		Timeout:      p.Config.ProviderTimeout,
	}, p.Logger)
}
