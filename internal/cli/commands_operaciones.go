package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"tumundo_admin/internal/facturacion"
	"tumundo_admin/internal/inventario"
	"tumundo_admin/internal/logistica"
	"tumundo_admin/internal/pedidos"
)

func (r *Runner) cmdFacturacion(ctx context.Context, args []string) error {
	action, rest, err := subcommand(args, "tablero", "facturar", "cargar", "reconciliar", "facturas")
	if err != nil {
		return err
	}
	switch action {
	case "tablero":
		tablero, err := r.deps.Facturacion.Tablero(ctx)
		if err != nil {
			return err
		}
		r.warn(tablero.Advertencias...)
		return r.emit(tablero, func() { r.printTablero(tablero) })
	case "facturar", "cargar":
		fs := r.flags("facturacion " + action)
		id := fs.String("pedido", "", "ID del pedido")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := required("pedido", *id); err != nil {
			return err
		}
		orden, err := r.deps.Facturacion.Evaluar(ctx, *id)
		if err != nil {
			return err
		}
		if action == "facturar" {
			factura, err := r.deps.Facturacion.Facturar(ctx, orden)
			if err != nil {
				return err
			}
			return r.emit(factura, func() {
				r.println("Factura %s registrada para %s por %s.", factura.NumeroFactura, factura.ClienteNombre, money(factura.MontoTotal))
			})
		}
		res, err := r.deps.Facturacion.CargarExistencias(ctx, orden)
		if err != nil {
			return err
		}
		r.warn(res.Advertencia)
		return r.emit(res, func() {
			r.println("Pedido %s cargado al inventario: %d actualizados, %d creados.", orden.PedidoID, res.Respuesta.ItemsActualizados, res.Respuesta.ItemsCreados)
			for _, e := range res.Respuesta.ItemsConError {
				r.println("  error en %s (%s): %s", e.Nombre, e.Codigo, e.Error)
			}
		})
	case "reconciliar":
		rec, err := r.deps.Facturacion.Ledger().Reconciliar(ctx)
		if err != nil {
			return err
		}
		return r.emit(rec, func() {
			r.println("Cargados: %d  Solo locales: %d  Reenviados: %d", len(rec.Cargados), len(rec.SoloLocal), len(rec.Reenviados))
			ids := make([]string, 0, len(rec.Fallidos))
			for id := range rec.Fallidos {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				r.println("  no se pudo reenviar %s: %s", id, rec.Fallidos[id])
			}
		})
	default:
		facturas, err := r.deps.Facturacion.Ledger().Facturas(ctx)
		if err != nil {
			return err
		}
		return r.emit(facturas, func() {
			rows := make([][]string, 0, len(facturas))
			for _, f := range facturas {
				rows = append(rows, []string{f.NumeroFactura, f.PedidoID, f.ClienteNombre, money(f.MontoTotal), fecha(f.FechaFacturacion)})
			}
			r.table([]string{"NUMERO", "PEDIDO", "CLIENTE", "MONTO", "FECHA"}, rows)
		})
	}
}

func (r *Runner) printTablero(t facturacion.Tablero) {
	r.println("Pendientes por facturar (%s):", t.Fuente)
	rows := make([][]string, 0, len(t.Pendientes))
	for _, o := range t.Pendientes {
		listo := "no"
		if o.PuedeFacturar {
			listo = "si"
		}
		reglas := make([]string, 0, len(o.Reglas))
		for _, regla := range o.Reglas {
			reglas = append(reglas, string(regla))
		}
		rows = append(rows, []string{
			o.PedidoID,
			o.ClienteNombre,
			strconv.FormatFloat(o.Progreso, 'f', 1, 64) + "%",
			money(o.MontoTotal),
			money(o.SaldoPendiente),
			listo,
			strings.Join(reglas, ","),
		})
	}
	r.table([]string{"PEDIDO", "CLIENTE", "PROGRESO", "TOTAL", "SALDO", "FACTURABLE", "REGLAS"}, rows)

	r.println("\nCargados al inventario:")
	rows = rows[:0]
	for _, c := range t.Cargados {
		estado := "cargado"
		if c.Facturado {
			estado = "facturado"
		}
		rows = append(rows, []string{c.PedidoID, c.ClienteNombre, money(c.MontoTotal), fecha(c.FechaCargaInventario), estado})
	}
	r.table([]string{"PEDIDO", "CLIENTE", "TOTAL", "CARGADO", "ESTADO"}, rows)

	if len(t.Omitidos) > 0 {
		r.println("\nOmitidos:")
		for _, o := range t.Omitidos {
			r.println("  %s: %s", o.PedidoID, o.Motivo)
		}
	}
}

func (r *Runner) cmdInventario(ctx context.Context, args []string) error {
	action, rest, err := subcommand(args, "list", "importar", "exportar", "ajustar", "transferir", "reanudar", "pendientes")
	if err != nil {
		return err
	}
	switch action {
	case "list":
		fs := r.flags("inventario list")
		q := fs.String("q", "", "Buscar por codigo o nombre")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		items, err := r.deps.Inventario.List(ctx)
		if err != nil {
			return err
		}
		items = inventario.Buscar(items, *q)
		return r.emit(items, func() {
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				rows = append(rows, []string{it.Codigo, it.Nombre, money(it.Costo), money(it.Precio), strconv.Itoa(it.Cantidad), strconv.Itoa(it.Existencia2)})
			}
			r.table([]string{"CODIGO", "NOMBRE", "COSTO", "PRECIO", "SUCURSAL 1", "SUCURSAL 2"}, rows)
		})
	case "importar":
		return r.inventarioImportar(ctx, rest)
	case "exportar":
		fs := r.flags("inventario exportar")
		out := fs.String("out", "inventario.xlsx", "Archivo de salida")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		items, err := r.deps.Inventario.List(ctx)
		if err != nil {
			return err
		}
		path, err := r.writeFile(*out, func(f *os.File) error { return inventario.ExportExcel(f, items) })
		if err != nil {
			return err
		}
		return r.emit(map[string]any{"archivo": path, "items": len(items)}, func() {
			r.println("%d items exportados en %s", len(items), path)
		})
	case "ajustar":
		fs := r.flags("inventario ajustar")
		codigo := fs.String("codigo", "", "Codigo del item")
		sucursalRaw := fs.String("sucursal", "1", "Sucursal: 1 o 2")
		delta := fs.Int("cantidad", 0, "Cantidad a sumar (positiva) o restar (negativa)")
		concepto := fs.String("concepto", "", "Concepto")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		sucursal, err := inventario.ParseSucursal(*sucursalRaw)
		if err != nil {
			return err
		}
		item, err := r.itemPorCodigo(ctx, *codigo)
		if err != nil {
			return err
		}
		updated, err := r.deps.Inventario.Ajustar(ctx, item, sucursal, *delta, *concepto)
		if err != nil {
			return err
		}
		return r.emit(updated, func() {
			r.println("%s: %s ahora tiene %d", updated.Codigo, sucursal, updated.Existencia(sucursal))
		})
	case "transferir":
		fs := r.flags("inventario transferir")
		codigo := fs.String("codigo", "", "Codigo del item")
		origenRaw := fs.String("origen", "1", "Sucursal de origen")
		destinoRaw := fs.String("destino", "2", "Sucursal de destino")
		cantidad := fs.Int("cantidad", 0, "Cantidad a mover")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		origen, err := inventario.ParseSucursal(*origenRaw)
		if err != nil {
			return err
		}
		destino, err := inventario.ParseSucursal(*destinoRaw)
		if err != nil {
			return err
		}
		item, err := r.itemPorCodigo(ctx, *codigo)
		if err != nil {
			return err
		}
		intent, err := r.deps.Inventario.Transferir(ctx, item, origen, destino, *cantidad)
		if err != nil {
			return err
		}
		return r.emit(intent, func() {
			r.println("Transferencia %s de %d %s: %s -> %s (%s)", intent.ID, intent.Cantidad, intent.Codigo, intent.Origen, intent.Destino, intent.Estado)
		})
	case "reanudar":
		intents, err := r.deps.Inventario.Reanudar(ctx)
		if err != nil {
			return err
		}
		return r.emit(intents, func() { r.printIntents(intents) })
	default:
		intents, err := r.deps.Inventario.TransferenciasPendientes(ctx)
		if err != nil {
			return err
		}
		return r.emit(intents, func() { r.printIntents(intents) })
	}
}

func (r *Runner) printIntents(intents []inventario.TransferIntent) {
	rows := make([][]string, 0, len(intents))
	for _, t := range intents {
		rows = append(rows, []string{t.ID, t.Codigo, strconv.Itoa(t.Cantidad), t.Origen.String(), t.Destino.String(), string(t.Estado), t.Error})
	}
	r.table([]string{"ID", "CODIGO", "CANTIDAD", "ORIGEN", "DESTINO", "ESTADO", "ERROR"}, rows)
}

func (r *Runner) itemPorCodigo(ctx context.Context, codigo string) (inventario.Item, error) {
	if err := required("codigo", codigo); err != nil {
		return inventario.Item{}, err
	}
	items, err := r.deps.Inventario.List(ctx)
	if err != nil {
		return inventario.Item{}, err
	}
	item, ok := inventario.BuscarPorCodigo(items, codigo)
	if !ok {
		return inventario.Item{}, fmt.Errorf("item con codigo %q no encontrado en inventario", codigo)
	}
	return item, nil
}

func (r *Runner) inventarioImportar(ctx context.Context, args []string) error {
	fs := r.flags("inventario importar")
	file := fs.String("file", "", "Archivo Excel")
	actualizar := fs.Bool("actualizar", false, "Actualizar items existentes en lugar de crear nuevos")
	dryRun := fs.Bool("dry-run", false, "Solo validar el archivo")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("file", *file); err != nil {
		return err
	}
	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	imp, err := inventario.ParseExcel(f)
	if err != nil {
		return err
	}
	for _, fe := range imp.Errores {
		r.warn(fmt.Sprintf("fila %d %s: %s", fe.Fila, fe.Codigo, fe.Motivo))
	}
	if *dryRun {
		return r.emit(imp, func() { r.println("%d filas validas en la hoja %s.", len(imp.Filas), imp.Hoja) })
	}

	var res inventario.BulkResultado
	if *actualizar {
		res, err = r.deps.Inventario.ActualizarExistentes(ctx, imp.Items())
	} else {
		res, err = r.deps.Inventario.GuardarNuevos(ctx, imp.Items())
	}
	if err != nil {
		return err
	}
	r.warn(res.Errores...)
	return r.emit(res, func() {
		r.println("Importacion terminada: %d insertados, %d actualizados.", res.Insertados, res.Actualizados)
	})
}

func (r *Runner) cmdPedidos(ctx context.Context, args []string) error {
	action, rest, err := subcommand(args, "list", "get", "terminar")
	if err != nil {
		return err
	}
	switch action {
	case "list":
		fs := r.flags("pedidos list")
		estado := fs.String("estado", "", "Filtrar por estado general")
		limit := fs.Int("limit", r.deps.Config.OrdersFallbackLimit, "Maximo de pedidos")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		var list []pedidos.Pedido
		if *estado != "" {
			list, err = r.deps.Pedidos.ListByEstado(ctx, *estado)
		} else {
			list, err = r.deps.Pedidos.ListAll(ctx, *limit)
		}
		if err != nil {
			return err
		}
		return r.emit(list, func() {
			rows := make([][]string, 0, len(list))
			for _, p := range list {
				rows = append(rows, []string{p.ID, p.ClienteNombre, p.EstadoGeneral, strconv.Itoa(len(p.Items)), money(p.Total()), fecha(p.FechaCreacion)})
			}
			r.table([]string{"ID", "CLIENTE", "ESTADO", "ITEMS", "TOTAL", "CREADO"}, rows)
		})
	case "get":
		fs := r.flags("pedidos get")
		id := fs.String("id", "", "ID del pedido")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := required("id", *id); err != nil {
			return err
		}
		orden, err := r.deps.Facturacion.Evaluar(ctx, *id)
		if err != nil {
			return err
		}
		return r.emit(orden, func() {
			r.println("Pedido %s de %s (%s)", orden.PedidoID, orden.ClienteNombre, orden.EstadoGeneral)
			r.println("Progreso %.1f%%  Total %s  Abonado %s  Saldo %s", orden.Progreso, money(orden.MontoTotal), money(orden.MontoAbonado), money(orden.SaldoPendiente))
			rows := make([][]string, 0, len(orden.Items))
			for _, it := range orden.Items {
				estado := "-"
				if it.EstadoItem != nil {
					estado = strconv.Itoa(*it.EstadoItem)
				}
				rows = append(rows, []string{it.Codigo, it.Nombre, strconv.Itoa(it.Cantidad), money(it.Precio), estado})
			}
			r.table([]string{"CODIGO", "NOMBRE", "CANTIDAD", "PRECIO", "ESTADO"}, rows)
		})
	default:
		fs := r.flags("pedidos terminar")
		pedidoID := fs.String("pedido", "", "ID del pedido")
		itemID := fs.String("item", "", "ID del item")
		empleadoID := fs.String("empleado", "", "ID del empleado")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		for _, f := range [][2]string{{"pedido", *pedidoID}, {"item", *itemID}, {"empleado", *empleadoID}} {
			if err := required(f[0], f[1]); err != nil {
				return err
			}
		}
		err := r.deps.Pedidos.TerminarAsignacion(ctx, pedidos.TerminarAsignacionRequest{PedidoID: *pedidoID, ItemID: *itemID, EmpleadoID: *empleadoID})
		if err != nil {
			return err
		}
		r.println("Asignacion terminada.")
		return nil
	}
}

func (r *Runner) cmdLogistica(ctx context.Context, args []string) error {
	fs := r.flags("logistica")
	desde := fs.String("desde", "", "Desde (AAAA-MM-DD)")
	hasta := fs.String("hasta", "", "Hasta (AAAA-MM-DD)")
	reportes := fs.String("reportes", "", "Reportes separados por coma, todos por defecto")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var rango logistica.Rango
	var err error
	if rango.Desde, err = parseFecha(*desde); err != nil {
		return err
	}
	if rango.Hasta, err = parseFecha(*hasta); err != nil {
		return err
	}
	var nombres []string
	for _, n := range strings.Split(*reportes, ",") {
		if n = strings.TrimSpace(n); n != "" {
			nombres = append(nombres, n)
		}
	}

	panel := r.deps.Logistica.Cargar(ctx, rango, nombres...)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return r.emit(panel, func() {
		names := make([]string, 0, len(panel.Reportes))
		for name := range panel.Reportes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			r.println("== %s", name)
			r.println("%s", string(panel.Reportes[name]))
		}
		failed := make([]string, 0, len(panel.Fallidos))
		for name := range panel.Fallidos {
			failed = append(failed, name)
		}
		sort.Strings(failed)
		for _, name := range failed {
			r.warn(fmt.Sprintf("reporte %s no disponible: %s", name, panel.Fallidos[name]))
		}
	})
}
