package metodospago

import (
	"tumundo_admin/internal/api"

	"github.com/shopspring/decimal"
)

type Moneda string

const (
	MonedaDolar Moneda = "dolar"
	MonedaBs    Moneda = "bs"
)

func (m Moneda) Valid() bool {
	return m == MonedaDolar || m == MonedaBs
}

func (m Moneda) Simbolo() string {
	if m == MonedaBs {
		return "Bs"
	}
	return "$"
}

type MetodoPago struct {
	ID           string          `json:"id"`
	Nombre       string          `json:"nombre"`
	Banco        string          `json:"banco,omitempty"`
	Titular      string          `json:"titular,omitempty"`
	NumeroCuenta string          `json:"numero_cuenta,omitempty"`
	Moneda       Moneda          `json:"moneda"`
	Saldo        decimal.Decimal `json:"saldo"`
}

type TipoTransaccion string

const (
	TipoCarga         TipoTransaccion = "carga"
	TipoDeposito      TipoTransaccion = "deposito"
	TipoTransferencia TipoTransaccion = "transferencia"
)

// Ingreso reports whether the transaction adds to the balance.
func (t TipoTransaccion) Ingreso() bool {
	return t == TipoCarga || t == TipoDeposito
}

type Transaccion struct {
	ID           string          `json:"id"`
	MetodoPagoID string          `json:"metodo_pago_id"`
	Tipo         TipoTransaccion `json:"tipo"`
	Monto        decimal.Decimal `json:"monto"`
	Concepto     string          `json:"concepto"`
	Fecha        api.Fecha       `json:"fecha"`
}

// Movimiento is a history line with the balance accumulated up to it.
type Movimiento struct {
	Transaccion
	SaldoAcumulado decimal.Decimal `json:"saldo_acumulado"`
}

type Historial struct {
	Movimientos []Movimiento    `json:"movimientos"`
	Ingresos    decimal.Decimal `json:"ingresos"`
	Egresos     decimal.Decimal `json:"egresos"`
	Neto        decimal.Decimal `json:"neto"`
}

type operacionRequest struct {
	Monto    decimal.Decimal `json:"monto"`
	Concepto string          `json:"concepto,omitempty"`
}

// operacionRespuesta accepts either the updated account or a summary
// carrying the new balance.
type operacionRespuesta struct {
	Metodo     *MetodoPago      `json:"metodo"`
	Saldo      *decimal.Decimal `json:"saldo"`
	NuevoSaldo *decimal.Decimal `json:"nuevo_saldo"`
}
