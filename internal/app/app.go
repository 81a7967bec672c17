package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/orderpay/internal/config"
	"github.com/polkiloo/orderpay/internal/notify"
	"github.com/polkiloo/orderpay/internal/server/http/handlers"
	"github.com/polkiloo/orderpay/internal/storage/cache"
	"github.com/polkiloo/orderpay/internal/storage/postgres"
	"github.com/polkiloo/orderpay/internal/usecase"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newCommerceFacade,
		func(f *CommerceFacade) handlers.CommerceFacade { return f },
		newHTTPServer,
		newHub,
		func(h *notify.Hub) usecase.Notifier { return h },
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Auth     *usecase.AuthUseCase
	Orders   *usecase.OrderUseCase
	Webhooks *usecase.WebhookUseCase
	Hub      *notify.Hub
	Storage  *postgres.Storage
	Cache    *cache.Redis
}

func newCommerceFacade(p facadeParams) *CommerceFacade {
	return NewCommerceFacade(p.Auth, p.Orders, p.Webhooks, p.Hub, p.Storage, p.Cache)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type hubParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newHub(p hubParams) *notify.Hub {
	return notify.NewHub(p.Config.NotifyWorkers, p.Config.NotifyBuffer, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Hub        *notify.Hub
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	// Open event streams only end when their request context does, so requests
	// derive from a context that is cancelled before the server drains.
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	p.Server.BaseContext = func(net.Listener) context.Context { return baseCtx }

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting orderpay", slog.String("addr", p.Server.Addr))
			// The start context expires once startup completes; dispatchers must outlive it.
			p.Hub.Start(context.WithoutCancel(ctx))
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancelRequests()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			p.Hub.Stop()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("orderpay stopped")
			return nil
		},
	})
}
