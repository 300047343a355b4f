package store

import (
	"context"
	"fmt"
	"strings"

	"tumundo_admin/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func New(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (Store, error) {
	logger = logger.Named("store")

	switch strings.ToLower(strings.TrimSpace(cfg.StoreDriver)) {
	case "", "file":
		logger.Debug("using file store", zap.String("dir", cfg.StoreDir))
		return NewFileStore(cfg.StoreDir)
	case "redis":
		rs, err := NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := rs.Ping(ctx); err != nil {
					return fmt.Errorf("connect redis store: %w", err)
				}
				logger.Debug("redis store connected")
				return nil
			},
			OnStop: func(_ context.Context) error {
				return rs.Close()
			},
		})
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func Module() fx.Option {
	return fx.Module(
		"store",
		fx.Provide(New),
	)
}
