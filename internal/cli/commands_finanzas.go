package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"tumundo_admin/internal/cuentas"
	"tumundo_admin/internal/inventario"
	"tumundo_admin/internal/metodospago"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (r *Runner) cmdMetodos(ctx context.Context, args []string) error {
	action, rest, err := subcommand(args, "list", "crear", "editar", "eliminar", "depositar", "transferir", "historial")
	if err != nil {
		return err
	}
	switch action {
	case "list":
		list, err := r.deps.Metodos.List(ctx)
		if err != nil {
			return err
		}
		return r.emit(list, func() {
			rows := make([][]string, 0, len(list))
			for _, m := range list {
				rows = append(rows, []string{m.ID, m.Nombre, m.Banco, string(m.Moneda), m.Moneda.Simbolo() + " " + money(m.Saldo)})
			}
			r.table([]string{"ID", "NOMBRE", "BANCO", "MONEDA", "SALDO"}, rows)
		})
	case "crear", "editar":
		return r.metodoGuardar(ctx, action, rest)
	case "eliminar":
		fs := r.flags("metodos eliminar")
		id := fs.String("id", "", "ID del metodo de pago")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := required("id", *id); err != nil {
			return err
		}
		if err := r.deps.Metodos.Delete(ctx, *id); err != nil {
			return err
		}
		r.println("Metodo de pago eliminado.")
		return nil
	case "depositar", "transferir":
		return r.metodoOperar(ctx, action, rest)
	default:
		return r.metodoHistorial(ctx, rest)
	}
}

func (r *Runner) metodoGuardar(ctx context.Context, action string, args []string) error {
	fs := r.flags("metodos " + action)
	id := fs.String("id", "", "ID del metodo de pago (solo editar)")
	nombre := fs.String("nombre", "", "Nombre")
	banco := fs.String("banco", "", "Banco")
	titular := fs.String("titular", "", "Titular")
	numero := fs.String("numero", "", "Numero de cuenta")
	moneda := fs.String("moneda", "", "Moneda: dolar o bs")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var m metodospago.MetodoPago
	if action == "editar" {
		if err := required("id", *id); err != nil {
			return err
		}
		current, err := r.deps.Metodos.Get(ctx, *id)
		if err != nil {
			return err
		}
		m = current
	} else {
		m.Moneda = metodospago.MonedaDolar
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&m.Nombre, *nombre)
	set(&m.Banco, *banco)
	set(&m.Titular, *titular)
	set(&m.NumeroCuenta, *numero)
	if *moneda != "" {
		m.Moneda = metodospago.Moneda(strings.ToLower(*moneda))
	}

	var saved metodospago.MetodoPago
	var err error
	if action == "editar" {
		saved, err = r.deps.Metodos.Update(ctx, m)
	} else {
		saved, err = r.deps.Metodos.Create(ctx, m)
	}
	if err != nil {
		return err
	}
	return r.emit(saved, func() { r.println("Metodo de pago %s guardado (%s).", saved.Nombre, saved.ID) })
}

func (r *Runner) metodoOperar(ctx context.Context, action string, args []string) error {
	fs := r.flags("metodos " + action)
	id := fs.String("id", "", "ID del metodo de pago")
	montoRaw := fs.String("monto", "", "Monto")
	concepto := fs.String("concepto", "", "Concepto")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}
	monto, err := parseMonto(*montoRaw)
	if err != nil {
		return err
	}
	m, err := r.deps.Metodos.Get(ctx, *id)
	if err != nil {
		return err
	}

	var updated metodospago.MetodoPago
	if action == "depositar" {
		updated, err = r.deps.Metodos.Depositar(ctx, m, monto, *concepto)
	} else {
		updated, err = r.deps.Metodos.Transferir(ctx, m, monto, *concepto)
	}
	if err != nil {
		return err
	}
	return r.emit(updated, func() {
		r.println("Nuevo saldo de %s: %s %s", updated.Nombre, updated.Moneda.Simbolo(), money(updated.Saldo))
	})
}

func (r *Runner) metodoHistorial(ctx context.Context, args []string) error {
	fs := r.flags("metodos historial")
	id := fs.String("id", "", "ID del metodo de pago")
	desde := fs.String("desde", "", "Desde (AAAA-MM-DD)")
	hasta := fs.String("hasta", "", "Hasta, inclusive (AAAA-MM-DD)")
	tipo := fs.String("tipo", "", "carga, deposito o transferencia")
	texto := fs.String("q", "", "Texto a buscar en el concepto")
	pdfName := fs.String("pdf", "", "Exportar a PDF")
	xlsxName := fs.String("xlsx", "", "Exportar a Excel")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required("id", *id); err != nil {
		return err
	}

	filtro := metodospago.Filtro{Tipo: metodospago.TipoTransaccion(strings.ToLower(*tipo)), Texto: *texto}
	var err error
	if filtro.Desde, err = parseFecha(*desde); err != nil {
		return err
	}
	if filtro.Hasta, err = parseFecha(*hasta); err != nil {
		return err
	}

	m, err := r.deps.Metodos.Get(ctx, *id)
	if err != nil {
		return err
	}
	h, err := r.deps.Metodos.Historial(ctx, *id, filtro)
	if err != nil {
		return err
	}

	if *pdfName != "" {
		path, err := r.writeFile(*pdfName, func(f *os.File) error { return metodospago.ExportPDF(f, m, h) })
		if err != nil {
			return err
		}
		r.println("PDF exportado en %s", path)
	}
	if *xlsxName != "" {
		path, err := r.writeFile(*xlsxName, func(f *os.File) error { return metodospago.ExportXLSX(f, m, h) })
		if err != nil {
			return err
		}
		r.println("Excel exportado en %s", path)
	}

	return r.emit(h, func() {
		sym := m.Moneda.Simbolo()
		rows := make([][]string, 0, len(h.Movimientos))
		for _, mov := range h.Movimientos {
			signo := "-"
			if mov.Tipo.Ingreso() {
				signo = "+"
			}
			rows = append(rows, []string{fecha(mov.Fecha), string(mov.Tipo), mov.Concepto, signo + money(mov.Monto), money(mov.SaldoAcumulado)})
		}
		r.table([]string{"FECHA", "TIPO", "CONCEPTO", "MONTO", "SALDO"}, rows)
		r.println("\nIngresos: %s %s  Egresos: %s %s  Neto: %s %s", sym, money(h.Ingresos), sym, money(h.Egresos), sym, money(h.Neto))
	})
}

func (r *Runner) cmdCuentas(ctx context.Context, args []string) error {
	action, rest, err := subcommand(args, "list", "crear", "abonar", "pdf")
	if err != nil {
		return err
	}
	switch action {
	case "list":
		fs := r.flags("cuentas list")
		estado := fs.String("estado", "", "pendiente o pagada")
		texto := fs.String("q", "", "Buscar por proveedor, RIF o descripcion")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		listado, err := r.deps.Cuentas.List(ctx, cuentas.Filtro{Estado: cuentas.Estado(strings.ToLower(*estado)), Texto: *texto})
		if err != nil {
			return err
		}
		return r.emit(listado, func() {
			rows := make([][]string, 0, len(listado.Cuentas))
			for _, c := range listado.Cuentas {
				rows = append(rows, []string{c.ID, c.Proveedor.Nombre, c.Proveedor.RIF, money(c.Total), money(c.SaldoPendiente), string(c.Estado), fecha(c.FechaCreacion)})
			}
			r.table([]string{"ID", "PROVEEDOR", "RIF", "TOTAL", "PENDIENTE", "ESTADO", "FECHA"}, rows)
			r.println("\nTotal pendiente: %s", money(listado.TotalPendiente))
		})
	case "crear":
		return r.cuentaCrear(ctx, rest)
	case "abonar":
		fs := r.flags("cuentas abonar")
		id := fs.String("id", "", "ID de la cuenta")
		montoRaw := fs.String("monto", "", "Monto del abono")
		metodoID := fs.String("metodo", "", "ID del metodo de pago")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := required("id", *id); err != nil {
			return err
		}
		if err := required("metodo", *metodoID); err != nil {
			return err
		}
		monto, err := parseMonto(*montoRaw)
		if err != nil {
			return err
		}
		cuenta, err := r.cuenta(ctx, *id)
		if err != nil {
			return err
		}
		metodo, err := r.deps.Metodos.Get(ctx, *metodoID)
		if err != nil {
			return err
		}
		updated, err := r.deps.Cuentas.Abonar(ctx, cuenta, monto, metodo)
		if err != nil {
			return err
		}
		return r.emit(updated, func() {
			r.println("Abono registrado. Pendiente: %s (%s)", money(updated.SaldoPendiente), updated.Estado)
		})
	default:
		fs := r.flags("cuentas pdf")
		id := fs.String("id", "", "ID de la cuenta")
		out := fs.String("out", "", "Archivo de salida")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := required("id", *id); err != nil {
			return err
		}
		cuenta, err := r.cuenta(ctx, *id)
		if err != nil {
			return err
		}
		name := *out
		if name == "" {
			name = "cuenta-" + cuenta.ID + ".pdf"
		}
		path, err := r.writeFile(name, func(f *os.File) error { return cuentas.ExportPDF(f, cuenta) })
		if err != nil {
			return err
		}
		return r.emit(map[string]string{"archivo": path}, func() { r.println("PDF exportado en %s", path) })
	}
}

func (r *Runner) cuenta(ctx context.Context, id string) (cuentas.CuentaPorPagar, error) {
	listado, err := r.deps.Cuentas.List(ctx, cuentas.Filtro{})
	if err != nil {
		return cuentas.CuentaPorPagar{}, err
	}
	for _, c := range listado.Cuentas {
		if c.ID == id {
			return c, nil
		}
	}
	return cuentas.CuentaPorPagar{}, fmt.Errorf("cuenta %s no encontrada", id)
}

func (r *Runner) cuentaCrear(ctx context.Context, args []string) error {
	var items listFlag
	fs := r.flags("cuentas crear")
	nombre := fs.String("proveedor", "", "Nombre del proveedor")
	rif := fs.String("rif", "", "RIF del proveedor")
	telefono := fs.String("telefono", "", "Telefono del proveedor")
	descripcion := fs.String("descripcion", "", "Detalle de la cuenta")
	montoRaw := fs.String("monto", "", "Monto, para cuentas sin items")
	fs.Var(&items, "item", "Item de inventario codigo:cantidad (repetible)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	prov := cuentas.Proveedor{Nombre: *nombre, RIF: *rif, Telefono: *telefono}
	if prov.Nombre == "" && prov.RIF != "" {
		if known, err := r.deps.Proveedores.Buscar(ctx, prov.RIF); err == nil {
			prov = known
		}
	}

	nueva := cuentas.NuevaCuenta{Proveedor: prov, Descripcion: *descripcion, Monto: decimal.Zero}
	if len(items) > 0 {
		lineas, err := r.itemsCuenta(ctx, items)
		if err != nil {
			return err
		}
		nueva.Items = lineas
	} else if *montoRaw != "" {
		monto, err := parseMonto(*montoRaw)
		if err != nil {
			return err
		}
		nueva.Monto = monto
	}

	creacion, err := r.deps.Cuentas.Create(ctx, nueva)
	if err != nil {
		return err
	}
	if err := r.deps.Proveedores.Recordar(ctx, creacion.Cuenta.Proveedor); err != nil {
		r.logger.Warn("could not remember supplier", zap.Error(err))
	}
	r.warn(creacion.Advertencias...)
	return r.emit(creacion, func() {
		r.println("Cuenta %s creada por %s.", creacion.Cuenta.ID, money(creacion.Cuenta.Total))
	})
}

func (r *Runner) itemsCuenta(ctx context.Context, specs []string) ([]cuentas.ItemCuenta, error) {
	inv, err := r.deps.Inventario.List(ctx)
	if err != nil {
		return nil, err
	}
	lineas := make([]cuentas.ItemCuenta, 0, len(specs))
	for _, spec := range specs {
		codigo, cantRaw, ok := strings.Cut(spec, ":")
		if !ok {
			cantRaw = "1"
		}
		cantidad, err := strconv.Atoi(strings.TrimSpace(cantRaw))
		if err != nil {
			return nil, fmt.Errorf("%w: cantidad invalida en %q", errUsage, spec)
		}
		item, found := inventario.BuscarPorCodigo(inv, strings.TrimSpace(codigo))
		if !found {
			return nil, fmt.Errorf("item con codigo %q no encontrado en inventario", codigo)
		}
		linea, err := cuentas.ItemDesdeInventario(item, cantidad)
		if err != nil {
			return nil, err
		}
		lineas = append(lineas, linea)
	}
	return lineas, nil
}

func (r *Runner) cmdProveedores(ctx context.Context, args []string) error {
	action, rest, err := subcommand(args, "list", "agregar", "eliminar")
	if err != nil {
		return err
	}
	switch action {
	case "list":
		list, err := r.deps.Proveedores.List(ctx)
		if err != nil {
			return err
		}
		return r.emit(list, func() {
			rows := make([][]string, 0, len(list))
			for _, p := range list {
				rows = append(rows, []string{p.Nombre, p.RIF, p.Telefono})
			}
			r.table([]string{"NOMBRE", "RIF", "TELEFONO"}, rows)
		})
	case "agregar":
		fs := r.flags("proveedores agregar")
		nombre := fs.String("nombre", "", "Nombre")
		rif := fs.String("rif", "", "RIF")
		telefono := fs.String("telefono", "", "Telefono")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		prov, err := r.deps.Proveedores.Agregar(ctx, cuentas.Proveedor{Nombre: *nombre, RIF: *rif, Telefono: *telefono})
		if err != nil {
			return err
		}
		return r.emit(prov, func() { r.println("Proveedor %s (%s) agregado.", prov.Nombre, prov.RIF) })
	default:
		fs := r.flags("proveedores eliminar")
		rif := fs.String("rif", "", "RIF")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := required("rif", *rif); err != nil {
			return err
		}
		if err := r.deps.Proveedores.Eliminar(ctx, *rif); err != nil {
			return err
		}
		r.println("Proveedor eliminado.")
		return nil
	}
}
