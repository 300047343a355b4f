package cuentas

import (
	"tumundo_admin/internal/api"

	"github.com/shopspring/decimal"
)

type Estado string

const (
	EstadoPendiente Estado = "pendiente"
	EstadoPagada    Estado = "pagada"
)

type Proveedor struct {
	Nombre   string `json:"nombre"`
	RIF      string `json:"rif"`
	Telefono string `json:"telefono,omitempty"`
}

type ItemCuenta struct {
	ItemID   string          `json:"itemId,omitempty"`
	Codigo   string          `json:"codigo,omitempty"`
	Nombre   string          `json:"nombre"`
	Costo    decimal.Decimal `json:"costo"`
	Cantidad int             `json:"cantidad"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Abono struct {
	Fecha            api.Fecha       `json:"fecha"`
	Monto            decimal.Decimal `json:"monto"`
	MetodoPago       string          `json:"metodoPago"`
	MetodoPagoNombre string          `json:"metodoPagoNombre,omitempty"`
}

type CuentaPorPagar struct {
	ID              string           `json:"_id,omitempty"`
	Proveedor       Proveedor        `json:"proveedor"`
	Items           []ItemCuenta     `json:"items,omitempty"`
	Descripcion     string           `json:"descripcion,omitempty"`
	Monto           *decimal.Decimal `json:"monto,omitempty"`
	Total           decimal.Decimal  `json:"total"`
	MontoAbonado    decimal.Decimal  `json:"montoAbonado"`
	SaldoPendiente  decimal.Decimal  `json:"saldoPendiente"`
	Estado          Estado           `json:"estado"`
	FechaCreacion   api.Fecha        `json:"fechaCreacion"`
	HistorialAbonos []Abono          `json:"historialAbonos,omitempty"`
}

// Normalizar recomputes saldoPendiente and estado from total and
// montoAbonado. ok is false when the record disagreed with the invariant.
func Normalizar(c CuentaPorPagar) (CuentaPorPagar, bool) {
	saldo := c.Total.Sub(c.MontoAbonado)
	estado := EstadoPendiente
	if !saldo.IsPositive() {
		estado = EstadoPagada
	}
	ok := c.SaldoPendiente.Equal(saldo) && c.Estado == estado
	c.SaldoPendiente = saldo
	c.Estado = estado
	return c, ok
}

type NuevaCuenta struct {
	Proveedor   Proveedor
	Items       []ItemCuenta
	Descripcion string
	Monto       decimal.Decimal
}

type Creacion struct {
	Cuenta       CuentaPorPagar `json:"cuenta"`
	Advertencias []string       `json:"advertencias,omitempty"`
}

type Listado struct {
	Cuentas        []CuentaPorPagar `json:"cuentas"`
	TotalPendiente decimal.Decimal  `json:"totalPendiente"`
}

type abonoRequest struct {
	Monto            decimal.Decimal `json:"monto"`
	MetodoPago       string          `json:"metodoPago"`
	MetodoPagoNombre string          `json:"metodoPagoNombre"`
}
