package cache

import (
	"context"

	"go.uber.org/fx"

	"github.com/polkiloo/orderpay/internal/config"
	"github.com/polkiloo/orderpay/internal/domain/repository"
)

// Module wires the redis cache.
var Module = fx.Options(
	fx.Provide(newRedis),
	fx.Provide(func(r *Redis) repository.Cache { return r }),
	fx.Invoke(registerLifecycle),
)

func newRedis(cfg *config.Config) *Redis {
	return New(Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
}

func registerLifecycle(lc fx.Lifecycle, r *Redis) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return r.Close()
		},
	})
}
