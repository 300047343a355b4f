package internal

import (
	"context"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/cli"
	"tumundo_admin/internal/config"
	"tumundo_admin/internal/cuentas"
	"tumundo_admin/internal/facturacion"
	"tumundo_admin/internal/homecfg"
	"tumundo_admin/internal/inventario"
	"tumundo_admin/internal/logging"
	"tumundo_admin/internal/logistica"
	"tumundo_admin/internal/metodospago"
	"tumundo_admin/internal/pedidos"
	"tumundo_admin/internal/store"
	"tumundo_admin/internal/usuarios"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Run() error {
	var runner *cli.Runner

	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		logging.Module(),
		store.Module(),
		api.Module(),
		pedidos.Module(),
		inventario.Module(),
		facturacion.Module(),
		metodospago.Module(),
		cuentas.Module(),
		logistica.Module(),
		usuarios.Module(),
		homecfg.Module(),
		cli.Module(),
		fx.Populate(&runner),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	return runner.Execute()
}
