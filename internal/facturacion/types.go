package facturacion

import (
	"tumundo_admin/internal/api"
	"tumundo_admin/internal/inventario"
	"tumundo_admin/internal/pedidos"

	"github.com/shopspring/decimal"
)

// OrdenLista is an order that passed the readiness policy.
type OrdenLista struct {
	PedidoID       string          `json:"pedidoId"`
	ClienteID      string          `json:"clienteId"`
	ClienteNombre  string          `json:"clienteNombre"`
	EstadoGeneral  string          `json:"estadoGeneral"`
	Items          []pedidos.Item  `json:"items"`
	FechaCreacion  api.Fecha       `json:"fechaCreacion"`
	Fecha100       api.Fecha       `json:"fecha100"`
	Progreso       float64         `json:"progreso"`
	Progreso100    bool            `json:"progreso100"`
	MontoTotal     decimal.Decimal `json:"montoTotal"`
	MontoAbonado   decimal.Decimal `json:"montoAbonado"`
	SaldoPendiente decimal.Decimal `json:"saldoPendiente"`
	PuedeFacturar  bool            `json:"puedeFacturar"`
	Verificado     bool            `json:"verificado"`
	Reglas         []Regla         `json:"reglas"`
}

func (o OrdenLista) orden() api.Fecha {
	if !o.Fecha100.IsZero() {
		return o.Fecha100
	}
	return o.FechaCreacion
}

// FacturaConfirmada exists only in the local ledger; the backend keeps no
// invoice record for it.
type FacturaConfirmada struct {
	ID               string          `json:"id"`
	NumeroFactura    string          `json:"numeroFactura"`
	PedidoID         string          `json:"pedidoId"`
	ClienteNombre    string          `json:"clienteNombre"`
	ClienteID        string          `json:"clienteId"`
	MontoTotal       decimal.Decimal `json:"montoTotal"`
	FechaCreacion    api.Fecha       `json:"fechaCreacion"`
	FechaFacturacion api.Fecha       `json:"fechaFacturacion"`
	Items            []pedidos.Item  `json:"items"`
}

type PedidoCargadoInventario struct {
	ID                   string          `json:"id"`
	PedidoID             string          `json:"pedidoId"`
	ClienteNombre        string          `json:"clienteNombre"`
	ClienteID            string          `json:"clienteId"`
	MontoTotal           decimal.Decimal `json:"montoTotal"`
	FechaCreacion        api.Fecha       `json:"fechaCreacion"`
	FechaCargaInventario api.Fecha       `json:"fechaCargaInventario"`
	Items                []pedidos.Item  `json:"items"`
}

// Cargado reports whether the record marks a completed load. Records
// whose load date equals their creation date are placeholders written by
// older clients and mean "not loaded yet".
func (p PedidoCargadoInventario) Cargado() bool {
	return !p.FechaCargaInventario.IsZero() && !p.FechaCargaInventario.Equal(p.FechaCreacion.Time)
}

type CargadoVista struct {
	PedidoCargadoInventario
	Facturado bool `json:"facturado"`
}

type Omitido struct {
	PedidoID string `json:"pedidoId"`
	Motivo   string `json:"motivo"`
}

type Tablero struct {
	Pendientes   []OrdenLista   `json:"pendientes"`
	Cargados     []CargadoVista `json:"cargados"`
	Omitidos     []Omitido      `json:"omitidos,omitempty"`
	Fuente       string         `json:"fuente"`
	Advertencias []string       `json:"advertencias,omitempty"`
}

type CargaResultado struct {
	Respuesta   inventario.CargaPedidoRespuesta `json:"respuesta"`
	Registro    PedidoCargadoInventario         `json:"registro"`
	Advertencia string                          `json:"advertencia,omitempty"`
}
