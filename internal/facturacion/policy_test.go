package facturacion

import (
	"testing"
	"time"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/config"
	"tumundo_admin/internal/pedidos"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func estado(v int) *int { return &v }

func items(estados ...*int) []pedidos.Item {
	out := make([]pedidos.Item, len(estados))
	for i, e := range estados {
		out[i] = pedidos.Item{Codigo: "C", Nombre: "item", Cantidad: 1, EstadoItem: e}
	}
	return out
}

func TestPolicyReglas(t *testing.T) {
	cfg := config.Defaults()
	cfg.LegacyReadyOrderIDs = "LEG-1"
	policy, err := NewPolicy(cfg)
	require.NoError(t, err)

	antes := api.NewFecha(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	despues := api.NewFecha(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name     string
		pedido   pedidos.Pedido
		progreso float64
		want     []Regla
	}{
		{
			name:     "progreso casi completo",
			pedido:   pedidos.Pedido{ID: "a", Items: items(estado(1))},
			progreso: 99.5,
			want:     []Regla{ReglaProgreso100},
		},
		{
			name:     "progreso por debajo del umbral",
			pedido:   pedidos.Pedido{ID: "b", Items: items(estado(1))},
			progreso: 99.4,
		},
		{
			name:   "orden4",
			pedido: pedidos.Pedido{ID: "c", EstadoGeneral: "orden4", Items: items(estado(0))},
			want:   []Regla{ReglaOrden4},
		},
		{
			name:   "todos los items terminados",
			pedido: pedidos.Pedido{ID: "d", Items: items(estado(4), estado(5))},
			want:   []Regla{ReglaItemsTerminados},
		},
		{
			name:   "item sin estado no cuenta como terminado",
			pedido: pedidos.Pedido{ID: "e", Items: items(estado(4), nil)},
		},
		{
			name:   "sin items",
			pedido: pedidos.Pedido{ID: "f"},
		},
		{
			name:   "cliente especial por rif con items en 3",
			pedido: pedidos.Pedido{ID: "g", ClienteID: "J507172554", Items: items(estado(3), estado(3)), FechaCreacion: antes},
			want:   []Regla{ReglaClienteEspecial},
		},
		{
			name:   "cliente especial por nombre antes del corte",
			pedido: pedidos.Pedido{ID: "h", ClienteNombre: "tu mundo puerta c.a.", Items: items(estado(2)), FechaCreacion: antes},
		},
		{
			name:   "cliente especial despues del corte con estados definidos",
			pedido: pedidos.Pedido{ID: "i", ClienteNombre: "TU MUNDO PUERTA", Items: items(estado(0), estado(1)), FechaCreacion: despues},
			want:   []Regla{ReglaClienteEspecial},
		},
		{
			name:   "cliente especial despues del corte con estado ausente",
			pedido: pedidos.Pedido{ID: "j", ClienteID: "J-507172554", Items: items(estado(0), nil), FechaCreacion: despues},
		},
		{
			name:   "otro cliente despues del corte",
			pedido: pedidos.Pedido{ID: "k", ClienteID: "V-1", Items: items(estado(3)), FechaCreacion: despues},
		},
		{
			name:   "pedido heredado",
			pedido: pedidos.Pedido{ID: "LEG-1", Items: items(estado(0))},
			want:   []Regla{ReglaPedidoHeredado},
		},
		{
			name:     "varias reglas",
			pedido:   pedidos.Pedido{ID: "m", EstadoGeneral: "orden4", Items: items(estado(4))},
			progreso: 100,
			want:     []Regla{ReglaProgreso100, ReglaOrden4, ReglaItemsTerminados},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Reglas(tt.pedido, tt.progreso))
		})
	}
}

func TestPolicyWithoutCutoff(t *testing.T) {
	cfg := config.Defaults()
	cfg.SpecialClientCutoff = ""
	policy, err := NewPolicy(cfg)
	require.NoError(t, err)

	ped := pedidos.Pedido{
		ID:            "x",
		ClienteID:     "J-507172554",
		Items:         items(estado(0)),
		FechaCreacion: api.NewFecha(time.Now()),
	}
	assert.Empty(t, policy.Reglas(ped, 0))
}

func TestPolicyRejectsBadCutoff(t *testing.T) {
	cfg := config.Defaults()
	cfg.SpecialClientCutoff = "junio"
	_, err := NewPolicy(cfg)
	assert.Error(t, err)
}
