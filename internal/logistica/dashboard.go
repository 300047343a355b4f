// Package logistica loads the logistics control panel. Every report is
// fetched on its own; the panel carries whichever reports answered.
package logistica

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/config"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const basePath = "/pedidos/panel-control-logistico/"

// Reportes are the panel endpoints, relative to basePath.
var Reportes = []string{
	"resumen",
	"pedidos-por-estado",
	"produccion-por-etapa",
	"produccion-por-empleado",
	"tiempos-produccion",
	"items-pendientes",
	"pedidos-retrasados",
	"entregas-programadas",
	"carga-trabajo",
	"eficiencia-empleados",
	"consumo-materiales",
	"ventas-por-periodo",
	"alertas",
}

type Rango struct {
	Desde time.Time
	Hasta time.Time
}

func (r Rango) query() map[string]string {
	q := map[string]string{}
	if !r.Desde.IsZero() {
		q["fecha_inicio"] = r.Desde.Format("2006-01-02")
	}
	if !r.Hasta.IsZero() {
		q["fecha_fin"] = r.Hasta.Format("2006-01-02")
	}
	return q
}

// Panel holds the raw report payloads by name. A report that failed is
// absent from Reportes and present in Fallidos with its error text.
type Panel struct {
	Reportes map[string]json.RawMessage `json:"reportes"`
	Fallidos map[string]string          `json:"fallidos,omitempty"`
}

func (p Panel) Completo() bool {
	return len(p.Fallidos) == 0
}

type Service struct {
	api         *api.Client
	concurrency int
	logger      *zap.Logger
}

func NewService(cfg config.Config, apiClient *api.Client, logger *zap.Logger) *Service {
	concurrency := cfg.PanelConcurrency
	if concurrency <= 0 {
		concurrency = len(Reportes)
	}
	return &Service{api: apiClient, concurrency: concurrency, logger: logger.Named("logistica")}
}

// Cargar fetches the named reports, all of them when none are given.
func (s *Service) Cargar(ctx context.Context, rango Rango, nombres ...string) Panel {
	if len(nombres) == 0 {
		nombres = Reportes
	}
	panel := Panel{Reportes: make(map[string]json.RawMessage, len(nombres))}
	query := rango.query()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, nombre := range nombres {
		g.Go(func() error {
			var raw json.RawMessage
			err := s.api.Get(gctx, basePath+nombre, query, &raw)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("report failed", zap.String("reporte", nombre), zap.Error(err))
				if panel.Fallidos == nil {
					panel.Fallidos = map[string]string{}
				}
				panel.Fallidos[nombre] = api.Message(err)
				return nil
			}
			panel.Reportes[nombre] = raw
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("panel logistico",
		zap.Int("reportes", len(panel.Reportes)),
		zap.Int("fallidos", len(panel.Fallidos)),
	)
	return panel
}
