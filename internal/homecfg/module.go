package homecfg

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module(
		"homecfg",
		fx.Provide(NewService),
	)
}
