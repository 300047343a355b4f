package facturacion

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"facturacion",
		fx.Provide(NewLedger, NewService),
	)
}
