package pedidos

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"tumundo_admin/internal/api"

	"go.uber.org/zap"
)

var ErrMissingID = errors.New("pedido id is required")

type Client struct {
	api    *api.Client
	logger *zap.Logger
}

func NewClient(apiClient *api.Client, logger *zap.Logger) *Client {
	return &Client{api: apiClient, logger: logger.Named("pedidos")}
}

// ListAll returns the full order list, most recent first, capped at limit
// when limit is positive.
func (c *Client) ListAll(ctx context.Context, limit int) ([]Pedido, error) {
	var resp api.List[Pedido]
	if err := c.api.Get(ctx, "/pedidos/all/", nil, &resp); err != nil {
		return nil, err
	}
	out := []Pedido(resp)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FechaCreacion.After(out[j].FechaCreacion.Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *Client) ListByEstado(ctx context.Context, estado string) ([]Pedido, error) {
	var resp api.List[Pedido]
	query := map[string]string{"estado_general": estado}
	if err := c.api.Get(ctx, "/pedidos/estado/", query, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Get(ctx context.Context, id string) (Pedido, error) {
	if strings.TrimSpace(id) == "" {
		return Pedido{}, ErrMissingID
	}
	var resp Pedido
	if err := c.api.Get(ctx, fmt.Sprintf("/pedidos/id/%s/", url.PathEscape(id)), nil, &resp); err != nil {
		return Pedido{}, err
	}
	return resp, nil
}

func (c *Client) Progreso(ctx context.Context, id string) (Progreso, error) {
	var resp Progreso
	if err := c.api.Get(ctx, "/pedidos/progreso-pedido/"+url.PathEscape(id), nil, &resp); err != nil {
		return Progreso{}, err
	}
	return resp, nil
}

func (c *Client) Pagos(ctx context.Context, id string) (Pagos, error) {
	var resp Pagos
	if err := c.api.Get(ctx, fmt.Sprintf("/pedidos/%s/pagos", url.PathEscape(id)), nil, &resp); err != nil {
		return Pagos{}, err
	}
	return resp, nil
}

// TerminarAsignacion marks an employee assignment on an order line as done.
func (c *Client) TerminarAsignacion(ctx context.Context, req TerminarAsignacionRequest) error {
	if strings.TrimSpace(req.PedidoID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(req.ItemID) == "" || strings.TrimSpace(req.EmpleadoID) == "" {
		return errors.New("item id and empleado id are required")
	}
	if err := c.api.Put(ctx, "/pedidos/asignacion/terminar", req, nil); err != nil {
		return err
	}
	c.logger.Info("asignacion terminada",
		zap.String("pedido_id", req.PedidoID),
		zap.String("item_id", req.ItemID),
		zap.String("empleado_id", req.EmpleadoID),
	)
	return nil
}
