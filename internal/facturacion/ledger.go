package facturacion

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/store"

	"go.uber.org/zap"
)

const pathCargados = "/pedidos/cargados-inventario"

var (
	ErrYaFacturado = errors.New("el pedido ya fue facturado")
	ErrYaCargado   = errors.New("el pedido ya fue cargado al inventario")
)

// Ledger keeps the invoiced and loaded-to-inventory records. Invoices live
// only in the local store. Loaded orders are pushed to the backend and
// mirrored locally.
type Ledger struct {
	api    *api.Client
	store  store.Store
	logger *zap.Logger
}

func NewLedger(apiClient *api.Client, st store.Store, logger *zap.Logger) *Ledger {
	return &Ledger{api: apiClient, store: st, logger: logger.Named("facturacion.ledger")}
}

func (l *Ledger) Facturas(ctx context.Context) ([]FacturaConfirmada, error) {
	facturas, _, err := store.Load[[]FacturaConfirmada](ctx, l.store, store.KeyFacturasConfirmadas)
	return facturas, err
}

func (l *Ledger) agregarFactura(ctx context.Context, factura FacturaConfirmada) error {
	_, err := store.Update(ctx, l.store, store.KeyFacturasConfirmadas, func(current []FacturaConfirmada) ([]FacturaConfirmada, error) {
		for _, f := range current {
			if f.PedidoID == factura.PedidoID {
				return nil, ErrYaFacturado
			}
		}
		return append(current, factura), nil
	})
	return err
}

func (l *Ledger) locales(ctx context.Context) ([]PedidoCargadoInventario, error) {
	cargados, _, err := store.Load[[]PedidoCargadoInventario](ctx, l.store, store.KeyPedidosCargados)
	return cargados, err
}

func (l *Ledger) remotos(ctx context.Context) ([]PedidoCargadoInventario, error) {
	var resp api.List[PedidoCargadoInventario]
	if err := l.api.Get(ctx, pathCargados, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Cargados is the merged view of loaded orders. When the backend cannot be
// read the local mirror is returned together with the backend error.
func (l *Ledger) Cargados(ctx context.Context) ([]PedidoCargadoInventario, error) {
	local, err := l.locales(ctx)
	if err != nil {
		return nil, err
	}
	remote, remoteErr := l.remotos(ctx)
	if remoteErr != nil {
		l.logger.Warn("cargados backend unavailable, using local mirror", zap.Error(remoteErr))
		return dedupe(local), remoteErr
	}
	merged, _ := merge(remote, local)
	return merged, nil
}

// yaCargado reports whether pedidoID has a completed load record on the
// backend or in the local mirror. An unreadable backend narrows the check
// to the mirror.
func (l *Ledger) yaCargado(ctx context.Context, pedidoID string) (bool, error) {
	list, err := l.locales(ctx)
	if err != nil {
		return false, err
	}
	remote, remoteErr := l.remotos(ctx)
	if remoteErr != nil {
		l.logger.Warn("cargados backend unavailable, checking local mirror only",
			zap.String("pedido_id", pedidoID),
			zap.Error(remoteErr),
		)
	}
	for _, c := range append(remote, list...) {
		if c.PedidoID == pedidoID && c.Cargado() {
			return true, nil
		}
	}
	return false, nil
}

func (l *Ledger) yaFacturado(ctx context.Context, pedidoID string) (bool, error) {
	facturas, err := l.Facturas(ctx)
	if err != nil {
		return false, err
	}
	for _, f := range facturas {
		if f.PedidoID == pedidoID {
			return true, nil
		}
	}
	return false, nil
}

// RegistrarCargado persists rec on the backend and in the local mirror.
// A backend failure is not fatal: the record stays local and the returned
// warning says so.
func (l *Ledger) RegistrarCargado(ctx context.Context, rec PedidoCargadoInventario) (string, error) {
	var advertencia string
	if err := l.api.Post(ctx, pathCargados, rec, nil); err != nil {
		l.logger.Warn("cargado not persisted on backend",
			zap.String("pedido_id", rec.PedidoID),
			zap.Error(err),
		)
		advertencia = fmt.Sprintf("el registro del pedido %s solo se guardo localmente: %s", rec.PedidoID, api.Message(err))
	}
	_, err := store.Update(ctx, l.store, store.KeyPedidosCargados, func(current []PedidoCargadoInventario) ([]PedidoCargadoInventario, error) {
		return dedupe(append(current, rec)), nil
	})
	if err != nil {
		return advertencia, fmt.Errorf("guardar cargado local: %w", err)
	}
	return advertencia, nil
}

type Reconciliacion struct {
	Cargados   []PedidoCargadoInventario `json:"cargados"`
	SoloLocal  []string                  `json:"soloLocal,omitempty"`
	Reenviados []string                  `json:"reenviados,omitempty"`
	Fallidos   map[string]string         `json:"fallidos,omitempty"`
}

// Reconciliar merges backend and local loaded records, preferring the
// backend copy, keeps local-only records and re-pushes them. The merged set
// is written back to the local mirror.
func (l *Ledger) Reconciliar(ctx context.Context) (Reconciliacion, error) {
	remote, err := l.remotos(ctx)
	if err != nil {
		return Reconciliacion{}, fmt.Errorf("leer cargados del backend: %w", err)
	}

	var rec Reconciliacion
	_, err = store.Update(ctx, l.store, store.KeyPedidosCargados, func(local []PedidoCargadoInventario) ([]PedidoCargadoInventario, error) {
		merged, soloLocal := merge(remote, local)
		rec.Cargados = merged
		for _, p := range soloLocal {
			rec.SoloLocal = append(rec.SoloLocal, p.PedidoID)
		}
		return merged, nil
	})
	if err != nil {
		return Reconciliacion{}, err
	}

	byID := index(rec.Cargados)
	for _, id := range rec.SoloLocal {
		if err := l.api.Post(ctx, pathCargados, byID[id], nil); err != nil {
			if rec.Fallidos == nil {
				rec.Fallidos = map[string]string{}
			}
			rec.Fallidos[id] = api.Message(err)
			l.logger.Warn("re-push of local cargado failed", zap.String("pedido_id", id), zap.Error(err))
			continue
		}
		rec.Reenviados = append(rec.Reenviados, id)
	}

	l.logger.Info("cargados reconciliados",
		zap.Int("backend", len(remote)),
		zap.Int("solo_local", len(rec.SoloLocal)),
		zap.Int("reenviados", len(rec.Reenviados)),
		zap.Int("fallidos", len(rec.Fallidos)),
	)
	return rec, nil
}

// merge returns remote plus the local records whose pedidoId the backend
// does not know, most recent load first.
func merge(remote, local []PedidoCargadoInventario) ([]PedidoCargadoInventario, []PedidoCargadoInventario) {
	out := dedupe(remote)
	known := index(out)
	var soloLocal []PedidoCargadoInventario
	for _, p := range dedupe(local) {
		if _, ok := known[p.PedidoID]; ok {
			continue
		}
		soloLocal = append(soloLocal, p)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FechaCargaInventario.After(out[j].FechaCargaInventario.Time)
	})
	return out, soloLocal
}

// dedupe keeps the last record per pedidoId, in first-seen order.
func dedupe(in []PedidoCargadoInventario) []PedidoCargadoInventario {
	pos := make(map[string]int, len(in))
	out := make([]PedidoCargadoInventario, 0, len(in))
	for _, p := range in {
		if i, ok := pos[p.PedidoID]; ok {
			out[i] = p
			continue
		}
		pos[p.PedidoID] = len(out)
		out = append(out, p)
	}
	return out
}

func index(in []PedidoCargadoInventario) map[string]PedidoCargadoInventario {
	out := make(map[string]PedidoCargadoInventario, len(in))
	for _, p := range in {
		out[p.PedidoID] = p
	}
	return out
}
