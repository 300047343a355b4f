package facturacion

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/config"
	"tumundo_admin/internal/inventario"
	"tumundo_admin/internal/pedidos"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	FuenteOrden4 = "orden4"
	FuenteTodos  = "todos"
)

var (
	ErrNoFacturable = errors.New("el pedido no esta listo para facturar")
	ErrNoListo      = errors.New("el pedido no cumple ninguna regla de facturacion")
)

// ItemsSinCodigoError lists the order lines that cannot be loaded into
// inventory because they carry no codigo.
type ItemsSinCodigoError struct {
	Nombres []string
}

func (e *ItemsSinCodigoError) Error() string {
	return "items sin codigo: " + strings.Join(e.Nombres, ", ")
}

type Service struct {
	pedidos    *pedidos.Client
	inventario *inventario.Client
	ledger     *Ledger
	policy     Policy

	lookupTimeout time.Duration
	concurrency   int
	fallbackLimit int

	now    func() time.Time
	logger *zap.Logger
}

func NewService(
	cfg config.Config,
	pedidosClient *pedidos.Client,
	inventarioClient *inventario.Client,
	ledger *Ledger,
	logger *zap.Logger,
) (*Service, error) {
	policy, err := NewPolicy(cfg)
	if err != nil {
		return nil, err
	}
	concurrency := cfg.LookupConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		pedidos:       pedidosClient,
		inventario:    inventarioClient,
		ledger:        ledger,
		policy:        policy,
		lookupTimeout: cfg.LookupTimeout,
		concurrency:   concurrency,
		fallbackLimit: cfg.OrdersFallbackLimit,
		now:           time.Now,
		logger:        logger.Named("facturacion"),
	}, nil
}

func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// Tablero builds the pending-to-invoice board and the list of orders
// already loaded into inventory.
func (s *Service) Tablero(ctx context.Context) (Tablero, error) {
	var tablero Tablero

	candidatos, fuente, err := s.candidatos(ctx)
	if err != nil {
		return Tablero{}, err
	}
	tablero.Fuente = fuente
	if fuente == FuenteTodos {
		tablero.Advertencias = append(tablero.Advertencias, "sin pedidos en orden4, evaluando la lista completa")
	}

	facturas, err := s.ledger.Facturas(ctx)
	if err != nil {
		return Tablero{}, err
	}
	cargados, err := s.ledger.Cargados(ctx)
	if err != nil {
		if cargados == nil {
			return Tablero{}, err
		}
		tablero.Advertencias = append(tablero.Advertencias, "registro de cargados solo local: "+api.Message(err))
	}

	facturados := make(map[string]struct{}, len(facturas))
	for _, f := range facturas {
		facturados[f.PedidoID] = struct{}{}
	}
	excluidos := make(map[string]struct{}, len(facturas)+len(cargados))
	for id := range facturados {
		excluidos[id] = struct{}{}
	}
	for _, c := range cargados {
		if !c.Cargado() {
			continue
		}
		excluidos[c.PedidoID] = struct{}{}
		_, facturado := facturados[c.PedidoID]
		tablero.Cargados = append(tablero.Cargados, CargadoVista{PedidoCargadoInventario: c, Facturado: facturado})
	}

	var pendientes []pedidos.Pedido
	for _, p := range candidatos {
		if _, ok := excluidos[p.ID]; !ok {
			pendientes = append(pendientes, p)
		}
	}

	ordenes, omitidos := s.evaluarTodos(ctx, pendientes)
	tablero.Pendientes = ordenes
	tablero.Omitidos = omitidos
	return tablero, nil
}

func (s *Service) candidatos(ctx context.Context) ([]pedidos.Pedido, string, error) {
	list, err := s.pedidos.ListByEstado(ctx, pedidos.EstadoOrden4)
	if err == nil && len(list) > 0 {
		return list, FuenteOrden4, nil
	}
	if err != nil {
		s.logger.Warn("orden4 endpoint failed, falling back to full list", zap.Error(err))
	}
	list, err = s.pedidos.ListAll(ctx, s.fallbackLimit)
	if err != nil {
		return nil, "", fmt.Errorf("listar pedidos: %w", err)
	}
	return list, FuenteTodos, nil
}

func (s *Service) evaluarTodos(ctx context.Context, list []pedidos.Pedido) ([]OrdenLista, []Omitido) {
	type resultado struct {
		orden  OrdenLista
		listo  bool
		motivo string
	}
	resultados := make([]resultado, len(list))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, ped := range list {
		g.Go(func() error {
			orden, err := s.evaluar(gctx, ped)
			switch {
			case err == nil:
				resultados[i] = resultado{orden: orden, listo: true}
			case errors.Is(err, ErrNoListo):
			default:
				resultados[i] = resultado{motivo: err.Error()}
			}
			return nil
		})
	}
	_ = g.Wait()

	var ordenes []OrdenLista
	var omitidos []Omitido
	for i, r := range resultados {
		switch {
		case r.listo:
			ordenes = append(ordenes, r.orden)
		case r.motivo != "":
			omitidos = append(omitidos, Omitido{PedidoID: list[i].ID, Motivo: r.motivo})
		}
	}
	sort.SliceStable(ordenes, func(i, j int) bool {
		return ordenes[i].orden().After(ordenes[j].orden().Time)
	})
	return ordenes, omitidos
}

// Evaluar fetches one order and applies the readiness policy to it.
func (s *Service) Evaluar(ctx context.Context, pedidoID string) (OrdenLista, error) {
	ped, err := s.pedidos.Get(ctx, pedidoID)
	if err != nil {
		return OrdenLista{}, err
	}
	return s.evaluar(ctx, ped)
}

// evaluar looks up progress and payments under the lookup timeout. A failed
// lookup drops the order unless it is already in orden4, in which case the
// missing figures are zero.
func (s *Service) evaluar(ctx context.Context, ped pedidos.Pedido) (OrdenLista, error) {
	progreso, pagos, lookupErr := s.lookups(ctx, ped.ID)
	if lookupErr != nil {
		s.logger.Warn("order lookup failed",
			zap.String("pedido_id", ped.ID),
			zap.String("estado_general", ped.EstadoGeneral),
			zap.Error(lookupErr),
		)
		if ped.EstadoGeneral != pedidos.EstadoOrden4 {
			return OrdenLista{}, lookupErr
		}
	}

	reglas := s.policy.Reglas(ped, progreso.Porcentaje)
	if len(reglas) == 0 {
		return OrdenLista{}, ErrNoListo
	}

	total := pagos.TotalPedido
	if !total.IsPositive() {
		total = ped.Total()
	}
	abonado := pagos.TotalAbonado
	saldo := total.Sub(abonado)
	if saldo.IsNegative() {
		saldo = decimal.Zero
	}
	progreso100 := EsProgreso100(progreso.Porcentaje)

	fecha100 := progreso.FechaCompletado
	if progreso100 && fecha100.IsZero() {
		fecha100 = ped.UltimoFin()
	}

	return OrdenLista{
		PedidoID:       ped.ID,
		ClienteID:      ped.ClienteID,
		ClienteNombre:  ped.ClienteNombre,
		EstadoGeneral:  ped.EstadoGeneral,
		Items:          ped.Items,
		FechaCreacion:  ped.FechaCreacion,
		Fecha100:       fecha100,
		Progreso:       progreso.Porcentaje,
		Progreso100:    progreso100,
		MontoTotal:     total,
		MontoAbonado:   abonado,
		SaldoPendiente: saldo,
		PuedeFacturar:  progreso100 || (total.IsPositive() && abonado.GreaterThanOrEqual(total)),
		Verificado:     lookupErr == nil,
		Reglas:         reglas,
	}, nil
}

func (s *Service) lookups(ctx context.Context, pedidoID string) (pedidos.Progreso, pedidos.Pagos, error) {
	if s.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lookupTimeout)
		defer cancel()
	}

	var (
		wg       sync.WaitGroup
		progreso pedidos.Progreso
		pagos    pedidos.Pagos
		errProg  error
		errPagos error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		progreso, errProg = s.pedidos.Progreso(ctx, pedidoID)
	}()
	go func() {
		defer wg.Done()
		pagos, errPagos = s.pedidos.Pagos(ctx, pedidoID)
	}()
	wg.Wait()

	if errProg != nil {
		progreso = pedidos.Progreso{}
	}
	if errPagos != nil {
		pagos = pedidos.Pagos{}
	}
	return progreso, pagos, errors.Join(errProg, errPagos)
}

// Facturar records the order as invoiced in the local ledger. The backend
// is only read, to refuse orders already loaded into inventory.
func (s *Service) Facturar(ctx context.Context, orden OrdenLista) (FacturaConfirmada, error) {
	if !orden.PuedeFacturar {
		return FacturaConfirmada{}, ErrNoFacturable
	}
	cargado, err := s.ledger.yaCargado(ctx, orden.PedidoID)
	if err != nil {
		return FacturaConfirmada{}, err
	}
	if cargado {
		return FacturaConfirmada{}, ErrYaCargado
	}
	now := s.now()
	factura := FacturaConfirmada{
		ID:               uuid.NewString(),
		NumeroFactura:    NumeroFactura(now),
		PedidoID:         orden.PedidoID,
		ClienteNombre:    orden.ClienteNombre,
		ClienteID:        orden.ClienteID,
		MontoTotal:       orden.MontoTotal,
		FechaCreacion:    orden.FechaCreacion,
		FechaFacturacion: api.NewFecha(now),
		Items:            orden.Items,
	}
	if err := s.ledger.agregarFactura(ctx, factura); err != nil {
		return FacturaConfirmada{}, err
	}
	s.logger.Info("pedido facturado",
		zap.String("pedido_id", factura.PedidoID),
		zap.String("numero", factura.NumeroFactura),
		zap.String("monto", factura.MontoTotal.StringFixed(2)),
	)
	return factura, nil
}

// NumeroFactura formats F-YYYYMMDD-NNNNNN where the suffix is the last six
// digits of the unix millisecond clock.
func NumeroFactura(t time.Time) string {
	return fmt.Sprintf("F-%s-%06d", t.Format("20060102"), t.UnixMilli()%1_000_000)
}

// CargarExistencias pushes every order line into inventory and records the
// order as loaded. Orders with lines lacking a codigo, already invoiced or
// already loaded are refused before any write.
func (s *Service) CargarExistencias(ctx context.Context, orden OrdenLista) (CargaResultado, error) {
	var sinCodigo []string
	for _, item := range orden.Items {
		if strings.TrimSpace(item.Codigo) == "" {
			nombre := item.Nombre
			if nombre == "" {
				nombre = "(sin nombre)"
			}
			sinCodigo = append(sinCodigo, nombre)
		}
	}
	if len(sinCodigo) > 0 {
		return CargaResultado{}, &ItemsSinCodigoError{Nombres: sinCodigo}
	}

	facturado, err := s.ledger.yaFacturado(ctx, orden.PedidoID)
	if err != nil {
		return CargaResultado{}, err
	}
	if facturado {
		return CargaResultado{}, ErrYaFacturado
	}
	cargado, err := s.ledger.yaCargado(ctx, orden.PedidoID)
	if err != nil {
		return CargaResultado{}, err
	}
	if cargado {
		return CargaResultado{}, ErrYaCargado
	}

	resp, err := s.inventario.CargarDesdePedido(ctx, orden.PedidoID)
	if err != nil {
		return CargaResultado{}, fmt.Errorf("cargar existencias del pedido %s: %w", orden.PedidoID, err)
	}

	rec := PedidoCargadoInventario{
		ID:                   uuid.NewString(),
		PedidoID:             orden.PedidoID,
		ClienteNombre:        orden.ClienteNombre,
		ClienteID:            orden.ClienteID,
		MontoTotal:           orden.MontoTotal,
		FechaCreacion:        orden.FechaCreacion,
		FechaCargaInventario: api.NewFecha(s.now()),
		Items:                orden.Items,
	}
	advertencia, err := s.ledger.RegistrarCargado(ctx, rec)
	if err != nil {
		return CargaResultado{Respuesta: resp, Registro: rec, Advertencia: advertencia}, err
	}

	s.logger.Info("existencias cargadas",
		zap.String("pedido_id", orden.PedidoID),
		zap.Int("actualizados", resp.ItemsActualizados),
		zap.Int("creados", resp.ItemsCreados),
		zap.Int("con_error", len(resp.ItemsConError)),
	)
	return CargaResultado{Respuesta: resp, Registro: rec, Advertencia: advertencia}, nil
}
