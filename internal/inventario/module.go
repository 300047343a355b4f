package inventario

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"inventario",
		fx.Provide(NewClient),
	)
}
