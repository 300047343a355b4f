package facturacion

import (
	"fmt"
	"strings"
	"time"

	"tumundo_admin/internal/config"
	"tumundo_admin/internal/pedidos"
)

// Regla names one reason an order counts as ready to invoice.
type Regla string

const (
	ReglaProgreso100     Regla = "progreso_100"
	ReglaOrden4          Regla = "estado_orden4"
	ReglaItemsTerminados Regla = "items_terminados"
	ReglaClienteEspecial Regla = "cliente_especial"
	ReglaPedidoHeredado  Regla = "pedido_heredado"
)

const (
	umbralProgreso100  = 99.5
	estadoItemEspecial = 3
)

// Policy decides readiness. An order is ready when any rule matches.
type Policy struct {
	ClienteEspecialRIF    string
	ClienteEspecialNombre string
	// Corte enables the unconditional special client rule for orders
	// created after it. Zero disables that branch.
	Corte            time.Time
	PedidosHeredados map[string]struct{}
}

func NewPolicy(cfg config.Config) (Policy, error) {
	p := Policy{
		ClienteEspecialRIF:    normalizarRIF(cfg.SpecialClientRIF),
		ClienteEspecialNombre: strings.ToUpper(strings.TrimSpace(cfg.SpecialClientName)),
		PedidosHeredados:      map[string]struct{}{},
	}
	if corte := strings.TrimSpace(cfg.SpecialClientCutoff); corte != "" {
		t, err := time.Parse("2006-01-02", corte)
		if err != nil {
			return Policy{}, fmt.Errorf("special_client_cutoff: %w", err)
		}
		p.Corte = t
	}
	for _, id := range cfg.LegacyOrderIDs() {
		p.PedidosHeredados[id] = struct{}{}
	}
	return p, nil
}

func EsProgreso100(porcentaje float64) bool {
	return porcentaje >= umbralProgreso100
}

// ItemsTerminados reports whether every line reached the finished stage.
func ItemsTerminados(items []pedidos.Item) bool {
	return todosLosItems(items, func(estado *int) bool {
		return estado != nil && *estado >= pedidos.EstadoItemTerminado
	})
}

func todosLosItems(items []pedidos.Item, ok func(*int) bool) bool {
	if len(items) == 0 {
		return false
	}
	for _, item := range items {
		if !ok(item.EstadoItem) {
			return false
		}
	}
	return true
}

func (p Policy) EsClienteEspecial(ped pedidos.Pedido) bool {
	if p.ClienteEspecialRIF != "" && normalizarRIF(ped.ClienteID) == p.ClienteEspecialRIF {
		return true
	}
	nombre := strings.ToUpper(strings.TrimSpace(ped.ClienteNombre))
	return p.ClienteEspecialNombre != "" && nombre != "" && strings.HasPrefix(nombre, p.ClienteEspecialNombre)
}

func (p Policy) reglaClienteEspecial(ped pedidos.Pedido) bool {
	if !p.EsClienteEspecial(ped) {
		return false
	}
	casiTerminado := todosLosItems(ped.Items, func(estado *int) bool {
		return estado != nil && *estado >= estadoItemEspecial
	})
	if casiTerminado {
		return true
	}
	if p.Corte.IsZero() || !ped.FechaCreacion.After(p.Corte) {
		return false
	}
	return todosLosItems(ped.Items, func(estado *int) bool { return estado != nil })
}

// Reglas lists every rule ped satisfies given its progress percentage.
func (p Policy) Reglas(ped pedidos.Pedido, progreso float64) []Regla {
	var reglas []Regla
	if EsProgreso100(progreso) {
		reglas = append(reglas, ReglaProgreso100)
	}
	if ped.EstadoGeneral == pedidos.EstadoOrden4 {
		reglas = append(reglas, ReglaOrden4)
	}
	if ItemsTerminados(ped.Items) {
		reglas = append(reglas, ReglaItemsTerminados)
	}
	if p.reglaClienteEspecial(ped) {
		reglas = append(reglas, ReglaClienteEspecial)
	}
	if _, ok := p.PedidosHeredados[ped.ID]; ok {
		reglas = append(reglas, ReglaPedidoHeredado)
	}
	return reglas
}

func normalizarRIF(rif string) string {
	return strings.ToUpper(strings.NewReplacer("-", "", " ", "", ".", "").Replace(strings.TrimSpace(rif)))
}
