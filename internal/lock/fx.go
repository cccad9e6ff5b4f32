package lock

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/payroll/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("lock",
	fx.Provide(NewPeriodLockerFromConfig),
)

func NewPeriodLockerFromConfig(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) PeriodLocker {
	if !cfg.Redis.Enabled() {
		log.Info("redis not configured, period locks disabled")
		return NewNoopPeriodLocker()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return NewRedisPeriodLocker(NewLocker(client), time.Duration(cfg.Redis.LockTTLSecond)*time.Second)
}
