package cuentas

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/inventario"
	"tumundo_admin/internal/metodospago"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrProveedorRequerido = errors.New("nombre y RIF del proveedor son requeridos")
	ErrDetalleRequerido   = errors.New("agregue items o una descripcion con monto")
	ErrMontoInvalido      = errors.New("el monto debe ser mayor que cero")
	ErrAbonoExcede        = errors.New("el abono excede el saldo pendiente")
	ErrMetodoRequerido    = errors.New("seleccione un metodo de pago")
	ErrCuentaSinID        = errors.New("la cuenta no tiene id")
	ErrItemInvalido       = errors.New("item invalido")
)

type Client struct {
	api        *api.Client
	inventario *inventario.Client
	logger     *zap.Logger
}

func NewClient(apiClient *api.Client, inventarioClient *inventario.Client, logger *zap.Logger) *Client {
	return &Client{api: apiClient, inventario: inventarioClient, logger: logger.Named("cuentas")}
}

type Filtro struct {
	Estado Estado
	Texto  string
}

func (f Filtro) incluye(c CuentaPorPagar) bool {
	if f.Estado != "" && c.Estado != f.Estado {
		return false
	}
	q := inventario.Normalizar(f.Texto)
	if q == "" {
		return true
	}
	campos := []string{c.Proveedor.Nombre, c.Proveedor.RIF, c.Descripcion}
	for _, item := range c.Items {
		campos = append(campos, item.Nombre, item.Codigo)
	}
	for _, campo := range campos {
		if strings.Contains(inventario.Normalizar(campo), q) {
			return true
		}
	}
	return false
}

// List returns the payables matching filtro, newest first, with the sum of
// their pending balances.
func (c *Client) List(ctx context.Context, filtro Filtro) (Listado, error) {
	var resp api.List[CuentaPorPagar]
	if err := c.api.Get(ctx, "/cuentas-por-pagar", nil, &resp); err != nil {
		return Listado{}, err
	}
	out := Listado{TotalPendiente: decimal.Zero}
	for _, cuenta := range resp {
		cuenta = c.normalizar(cuenta)
		if !filtro.incluye(cuenta) {
			continue
		}
		out.Cuentas = append(out.Cuentas, cuenta)
		if cuenta.SaldoPendiente.IsPositive() {
			out.TotalPendiente = out.TotalPendiente.Add(cuenta.SaldoPendiente)
		}
	}
	sort.SliceStable(out.Cuentas, func(i, j int) bool {
		return out.Cuentas[i].FechaCreacion.After(out.Cuentas[j].FechaCreacion.Time)
	})
	return out, nil
}

func (c *Client) normalizar(cuenta CuentaPorPagar) CuentaPorPagar {
	fixed, ok := Normalizar(cuenta)
	if !ok {
		c.logger.Warn("cuenta con saldo inconsistente",
			zap.String("id", cuenta.ID),
			zap.String("total", cuenta.Total.StringFixed(2)),
			zap.String("abonado", cuenta.MontoAbonado.StringFixed(2)),
			zap.String("saldo", cuenta.SaldoPendiente.StringFixed(2)),
			zap.String("estado", string(cuenta.Estado)),
		)
	}
	return fixed
}

// ItemDesdeInventario builds a payable line from an inventory item at its
// unit cost.
func ItemDesdeInventario(item inventario.Item, cantidad int) (ItemCuenta, error) {
	if item.ID == "" || cantidad <= 0 {
		return ItemCuenta{}, fmt.Errorf("%w: %s", ErrItemInvalido, item.Nombre)
	}
	return ItemCuenta{
		ItemID:   item.ID,
		Codigo:   item.Codigo,
		Nombre:   item.Nombre,
		Costo:    item.Costo,
		Cantidad: cantidad,
		Subtotal: item.Costo.Mul(decimal.NewFromInt(int64(cantidad))),
	}, nil
}

func construir(nueva NuevaCuenta) (CuentaPorPagar, error) {
	prov := Proveedor{
		Nombre:   strings.TrimSpace(nueva.Proveedor.Nombre),
		RIF:      NormalizarRIF(nueva.Proveedor.RIF),
		Telefono: strings.TrimSpace(nueva.Proveedor.Telefono),
	}
	if prov.Nombre == "" || prov.RIF == "" {
		return CuentaPorPagar{}, ErrProveedorRequerido
	}

	cuenta := CuentaPorPagar{Proveedor: prov, MontoAbonado: decimal.Zero}
	if len(nueva.Items) > 0 {
		total := decimal.Zero
		for _, item := range nueva.Items {
			if item.Cantidad <= 0 || item.Costo.IsNegative() {
				return CuentaPorPagar{}, fmt.Errorf("%w: %s", ErrItemInvalido, item.Nombre)
			}
			item.Subtotal = item.Costo.Mul(decimal.NewFromInt(int64(item.Cantidad)))
			total = total.Add(item.Subtotal)
			cuenta.Items = append(cuenta.Items, item)
		}
		cuenta.Total = total
		cuenta.Descripcion = strings.TrimSpace(nueva.Descripcion)
	} else {
		desc := strings.TrimSpace(nueva.Descripcion)
		if desc == "" {
			return CuentaPorPagar{}, ErrDetalleRequerido
		}
		if !nueva.Monto.IsPositive() {
			return CuentaPorPagar{}, ErrMontoInvalido
		}
		monto := nueva.Monto
		cuenta.Descripcion = desc
		cuenta.Monto = &monto
		cuenta.Total = monto
	}
	if !cuenta.Total.IsPositive() {
		return CuentaPorPagar{}, ErrMontoInvalido
	}
	cuenta, _ = Normalizar(cuenta)
	return cuenta, nil
}

// Create registers the payable and then adds each inventory-linked line to
// branch one stock. Stock failures do not undo the payable; they come back
// as warnings.
func (c *Client) Create(ctx context.Context, nueva NuevaCuenta) (Creacion, error) {
	cuenta, err := construir(nueva)
	if err != nil {
		return Creacion{}, err
	}

	var resp CuentaPorPagar
	if err := c.api.Post(ctx, "/cuentas-por-pagar", cuenta, &resp); err != nil {
		return Creacion{}, err
	}
	if resp.ID == "" {
		resp = cuenta
	}
	out := Creacion{Cuenta: c.normalizar(resp)}
	c.logger.Info("cuenta por pagar creada",
		zap.String("id", out.Cuenta.ID),
		zap.String("proveedor", cuenta.Proveedor.RIF),
		zap.String("total", cuenta.Total.StringFixed(2)),
	)

	concepto := "Cuenta por pagar " + cuenta.Proveedor.Nombre
	for _, item := range cuenta.Items {
		if item.ItemID == "" {
			continue
		}
		if _, err := c.inventario.Cargar(ctx, item.ItemID, inventario.Sucursal1, item.Cantidad, concepto); err != nil {
			c.logger.Warn("stock increment failed",
				zap.String("item_id", item.ItemID),
				zap.Int("cantidad", item.Cantidad),
				zap.Error(err),
			)
			out.Advertencias = append(out.Advertencias, fmt.Sprintf("no se pudo sumar %d a %s: %s", item.Cantidad, item.Nombre, api.Message(err)))
		}
	}
	return out, nil
}

// Abonar registers a payment of monto against cuenta from metodo.
func (c *Client) Abonar(ctx context.Context, cuenta CuentaPorPagar, monto decimal.Decimal, metodo metodospago.MetodoPago) (CuentaPorPagar, error) {
	if cuenta.ID == "" {
		return CuentaPorPagar{}, ErrCuentaSinID
	}
	if !monto.IsPositive() {
		return CuentaPorPagar{}, ErrMontoInvalido
	}
	cuenta, _ = Normalizar(cuenta)
	if monto.GreaterThan(cuenta.SaldoPendiente) {
		return CuentaPorPagar{}, fmt.Errorf("%w: pendiente %s", ErrAbonoExcede, cuenta.SaldoPendiente.StringFixed(2))
	}
	if metodo.ID == "" {
		return CuentaPorPagar{}, ErrMetodoRequerido
	}

	body := abonoRequest{Monto: monto, MetodoPago: metodo.ID, MetodoPagoNombre: metodo.Nombre}
	var resp CuentaPorPagar
	if err := c.api.Post(ctx, "/cuentas-por-pagar/"+url.PathEscape(cuenta.ID)+"/abonar", body, &resp); err != nil {
		return CuentaPorPagar{}, err
	}
	if resp.ID == "" {
		resp = cuenta
		resp.MontoAbonado = resp.MontoAbonado.Add(monto)
		resp.HistorialAbonos = append(resp.HistorialAbonos, Abono{Fecha: api.NewFecha(time.Now()), Monto: monto, MetodoPago: metodo.ID, MetodoPagoNombre: metodo.Nombre})
	}
	resp = c.normalizar(resp)
	c.logger.Info("abono registrado",
		zap.String("id", cuenta.ID),
		zap.String("monto", monto.StringFixed(2)),
		zap.String("saldo", resp.SaldoPendiente.StringFixed(2)),
		zap.String("estado", string(resp.Estado)),
	)
	return resp, nil
}
