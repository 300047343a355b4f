package pedidos

import (
	"encoding/json"
	"fmt"

	"tumundo_admin/internal/api"

	"github.com/shopspring/decimal"
)

const (
	EstadoOrden4        = "orden4"
	EstadoItemTerminado = 4
)

type Item struct {
	ItemID     string          `json:"itemId,omitempty"`
	Codigo     string          `json:"codigo"`
	Nombre     string          `json:"nombre"`
	Precio     decimal.Decimal `json:"precio"`
	Cantidad   int             `json:"cantidad"`
	EstadoItem *int            `json:"estado_item,omitempty"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Precio.Mul(decimal.NewFromInt(int64(i.Cantidad)))
}

type Seguimiento struct {
	Orden       int       `json:"orden,omitempty"`
	Estado      string    `json:"estado,omitempty"`
	FechaInicio api.Fecha `json:"fecha_inicio"`
	FechaFin    api.Fecha `json:"fecha_fin"`
}

type Pedido struct {
	ID            string        `json:"_id"`
	ClienteID     string        `json:"cliente_id"`
	ClienteNombre string        `json:"cliente_nombre"`
	Items         []Item        `json:"items"`
	EstadoGeneral string        `json:"estado_general"`
	FechaCreacion api.Fecha     `json:"fecha_creacion"`
	Seguimiento   []Seguimiento `json:"seguimiento,omitempty"`
}

// Total is the sum of price times quantity over the order lines.
func (p Pedido) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// UltimoFin is the latest tracking end date, zero when none is known.
func (p Pedido) UltimoFin() api.Fecha {
	var last api.Fecha
	for _, s := range p.Seguimiento {
		if s.FechaFin.After(last.Time) {
			last = s.FechaFin
		}
	}
	return last
}

// Progreso is the production progress of one order.
type Progreso struct {
	Porcentaje      float64   `json:"porcentaje"`
	FechaCompletado api.Fecha `json:"fecha_completado"`
}

func (p *Progreso) UnmarshalJSON(data []byte) error {
	var raw struct {
		Porcentaje      *float64  `json:"porcentaje"`
		Progreso        *float64  `json:"progreso"`
		Progress        *float64  `json:"progress"`
		FechaCompletado api.Fecha `json:"fecha_completado"`
		Fecha100        api.Fecha `json:"fecha_100"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode progreso: %w", err)
	}
	switch {
	case raw.Porcentaje != nil:
		p.Porcentaje = *raw.Porcentaje
	case raw.Progreso != nil:
		p.Porcentaje = *raw.Progreso
	case raw.Progress != nil:
		p.Porcentaje = *raw.Progress
	}
	p.FechaCompletado = raw.FechaCompletado
	if p.FechaCompletado.IsZero() {
		p.FechaCompletado = raw.Fecha100
	}
	return nil
}

// Pagos summarizes the payments registered against an order.
type Pagos struct {
	TotalPedido    decimal.Decimal `json:"total_pedido"`
	TotalAbonado   decimal.Decimal `json:"total_abonado"`
	SaldoPendiente decimal.Decimal `json:"saldo_pendiente"`
}

type TerminarAsignacionRequest struct {
	PedidoID   string `json:"pedido_id"`
	ItemID     string `json:"item_id"`
	EmpleadoID string `json:"empleado_id"`
}
