package logistica

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"logistica",
		fx.Provide(NewService),
	)
}
