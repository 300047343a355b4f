package logging

import (
	"context"
	"os"

	"tumundo_admin/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Module opens the log file sink and decorates the root logger with it.
// The decorator lives outside fx.Module so every package sees the tee.
func Module() fx.Option {
	return fx.Options(
		fx.Module(
			"logging",
			fx.Provide(func(cfg config.Config) (*os.File, error) {
				return OpenLogFile(cfg.LogFile)
			}),
			fx.Invoke(func(lc fx.Lifecycle, logger *zap.Logger, file *os.File) {
				lc.Append(fx.Hook{
					OnStop: func(_ context.Context) error {
						_ = logger.Sync()
						if file == nil {
							return nil
						}
						return file.Close()
					},
				})
			}),
		),
		fx.Decorate(func(base *zap.Logger, cfg config.Config, file *os.File) *zap.Logger {
			if file == nil {
				return base
			}
			return TeeToFile(base, zapcore.AddSync(file), cfg.Debug)
		}),
	)
}
