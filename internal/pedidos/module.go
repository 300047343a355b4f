package pedidos

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"pedidos",
		fx.Provide(NewClient),
	)
}
