package usuarios

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"usuarios",
		fx.Provide(NewClient),
	)
}
