package cuentas

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"cuentas",
		fx.Provide(NewClient, NewProveedores),
	)
}
