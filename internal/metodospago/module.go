package metodospago

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"metodospago",
		fx.Provide(NewClient),
	)
}
