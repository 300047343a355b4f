package inventario

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/store"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrSucursalInvalida       = errors.New("sucursal invalida")
	ErrCantidadInvalida       = errors.New("la cantidad debe ser mayor que cero")
	ErrExistenciaInsuficiente = errors.New("existencia insuficiente")
	ErrItemSinID              = errors.New("el item no tiene id")
	ErrSinFilas               = errors.New("no hay filas para enviar")
)

type Client struct {
	api    *api.Client
	store  store.Store
	logger *zap.Logger
}

func NewClient(apiClient *api.Client, st store.Store, logger *zap.Logger) *Client {
	return &Client{api: apiClient, store: st, logger: logger.Named("inventario")}
}

func (c *Client) List(ctx context.Context) ([]Item, error) {
	var resp api.List[Item]
	if err := c.api.Get(ctx, "/inventario/all", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GuardarNuevos and ActualizarExistentes hit the same bulk upsert endpoint.
func (c *Client) GuardarNuevos(ctx context.Context, items []BulkItem) (BulkResultado, error) {
	return c.bulk(ctx, "guardar_nuevos", items)
}

func (c *Client) ActualizarExistentes(ctx context.Context, items []BulkItem) (BulkResultado, error) {
	return c.bulk(ctx, "actualizar_existentes", items)
}

func (c *Client) bulk(ctx context.Context, label string, items []BulkItem) (BulkResultado, error) {
	if len(items) == 0 {
		return BulkResultado{}, ErrSinFilas
	}
	var resp BulkResultado
	if err := c.api.Post(ctx, "/inventario/bulk", map[string]any{"items": items}, &resp); err != nil {
		return BulkResultado{}, err
	}
	c.logger.Info("bulk inventario",
		zap.String("operacion", label),
		zap.Int("filas", len(items)),
		zap.Int("insertados", resp.Insertados),
		zap.Int("actualizados", resp.Actualizados),
		zap.Int("errores", len(resp.Errores)),
	)
	return resp, nil
}

// Cargar adds cantidad units to the item's stock at sucursal.
func (c *Client) Cargar(ctx context.Context, itemID string, sucursal Sucursal, cantidad int, concepto string) (Item, error) {
	if err := validarMovimiento(itemID, sucursal, cantidad); err != nil {
		return Item{}, err
	}
	return c.movimiento(ctx, itemID, "", movimientoRequest{Cantidad: cantidad, Tipo: tipoCargar, Sucursal: sucursal, Concepto: concepto})
}

// Descargar removes cantidad units; it refuses to go below zero.
func (c *Client) Descargar(ctx context.Context, item Item, sucursal Sucursal, cantidad int, concepto string) (Item, error) {
	if err := validarMovimiento(item.ID, sucursal, cantidad); err != nil {
		return Item{}, err
	}
	if cantidad > item.Existencia(sucursal) {
		return Item{}, fmt.Errorf("%w: %s tiene %d en %s", ErrExistenciaInsuficiente, item.Codigo, item.Existencia(sucursal), sucursal)
	}
	return c.movimiento(ctx, item.ID, "", movimientoRequest{Cantidad: cantidad, Tipo: tipoDescargar, Sucursal: sucursal, Concepto: concepto})
}

// Ajustar loads a positive delta or unloads a negative one.
func (c *Client) Ajustar(ctx context.Context, item Item, sucursal Sucursal, delta int, concepto string) (Item, error) {
	switch {
	case delta > 0:
		return c.Cargar(ctx, item.ID, sucursal, delta, concepto)
	case delta < 0:
		return c.Descargar(ctx, item, sucursal, -delta, concepto)
	default:
		return Item{}, ErrCantidadInvalida
	}
}

func (c *Client) movimiento(ctx context.Context, itemID, idempotencyKey string, req movimientoRequest) (Item, error) {
	path := fmt.Sprintf("/inventario/%s/existencia", url.PathEscape(itemID))
	var resp Item
	var err error
	if idempotencyKey != "" {
		err = c.api.PostIdempotent(ctx, path, idempotencyKey, req, &resp)
	} else {
		err = c.api.Post(ctx, path, req, &resp)
	}
	if err != nil {
		return Item{}, err
	}
	c.logger.Info("movimiento de existencia",
		zap.String("item_id", itemID),
		zap.String("tipo", req.Tipo),
		zap.Int("sucursal", int(req.Sucursal)),
		zap.Int("cantidad", req.Cantidad),
	)
	return resp, nil
}

// CargarDesdePedido asks the backend to add every order line quantity to stock.
func (c *Client) CargarDesdePedido(ctx context.Context, pedidoID string) (CargaPedidoRespuesta, error) {
	var resp CargaPedidoRespuesta
	body := map[string]string{"pedido_id": pedidoID}
	if err := c.api.Post(ctx, "/inventario/cargar-existencias-desde-pedido", body, &resp); err != nil {
		return CargaPedidoRespuesta{}, err
	}
	return resp, nil
}

func validarMovimiento(itemID string, sucursal Sucursal, cantidad int) error {
	if strings.TrimSpace(itemID) == "" {
		return ErrItemSinID
	}
	if !sucursal.Valid() {
		return ErrSucursalInvalida
	}
	if cantidad <= 0 {
		return ErrCantidadInvalida
	}
	return nil
}

// Buscar filters items whose codigo, nombre, modelo or categoria contain
// query, ignoring case and accents.
func Buscar(items []Item, query string) []Item {
	needle := Normalizar(query)
	if needle == "" {
		return items
	}
	var out []Item
	for _, item := range items {
		for _, field := range []string{item.Codigo, item.Nombre, item.Modelo, item.Categoria} {
			if strings.Contains(Normalizar(field), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

func BuscarPorCodigo(items []Item, codigo string) (Item, bool) {
	codigo = strings.TrimSpace(codigo)
	for _, item := range items {
		if strings.EqualFold(strings.TrimSpace(item.Codigo), codigo) {
			return item, true
		}
	}
	return Item{}, false
}

// Normalizar lowercases s, strips accents and collapses whitespace.
func Normalizar(s string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(strings.ToLower(stripped)), " ")
}
