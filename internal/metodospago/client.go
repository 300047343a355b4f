package metodospago

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"tumundo_admin/internal/api"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrMontoInvalido     = errors.New("el monto debe ser mayor que cero")
	ErrSaldoInsuficiente = errors.New("saldo insuficiente")
	ErrNombreRequerido   = errors.New("el nombre es requerido")
	ErrMonedaInvalida    = errors.New("moneda invalida, use dolar o bs")
	ErrSinID             = errors.New("el metodo de pago no tiene id")
)

type Client struct {
	api    *api.Client
	logger *zap.Logger
}

func NewClient(apiClient *api.Client, logger *zap.Logger) *Client {
	return &Client{api: apiClient, logger: logger.Named("metodospago")}
}

func path(id string, parts ...string) string {
	p := "/metodos-pago/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func (c *Client) List(ctx context.Context) ([]MetodoPago, error) {
	var resp api.List[MetodoPago]
	if err := c.api.Get(ctx, "/metodos-pago", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) Get(ctx context.Context, id string) (MetodoPago, error) {
	if id == "" {
		return MetodoPago{}, ErrSinID
	}
	var resp MetodoPago
	if err := c.api.Get(ctx, path(id), nil, &resp); err != nil {
		return MetodoPago{}, err
	}
	return resp, nil
}

func validar(m MetodoPago) error {
	if strings.TrimSpace(m.Nombre) == "" {
		return ErrNombreRequerido
	}
	if !m.Moneda.Valid() {
		return ErrMonedaInvalida
	}
	return nil
}

func (c *Client) Create(ctx context.Context, m MetodoPago) (MetodoPago, error) {
	if err := validar(m); err != nil {
		return MetodoPago{}, err
	}
	m.ID = ""
	var resp MetodoPago
	if err := c.api.Post(ctx, "/metodos-pago", m, &resp); err != nil {
		return MetodoPago{}, err
	}
	c.logger.Info("metodo de pago creado", zap.String("id", resp.ID), zap.String("nombre", resp.Nombre))
	return resp, nil
}

func (c *Client) Update(ctx context.Context, m MetodoPago) (MetodoPago, error) {
	if m.ID == "" {
		return MetodoPago{}, ErrSinID
	}
	if err := validar(m); err != nil {
		return MetodoPago{}, err
	}
	var resp MetodoPago
	if err := c.api.Put(ctx, path(m.ID), m, &resp); err != nil {
		return MetodoPago{}, err
	}
	if resp.ID == "" {
		resp = m
	}
	return resp, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrSinID
	}
	if err := c.api.Delete(ctx, path(id), nil); err != nil {
		return err
	}
	c.logger.Info("metodo de pago eliminado", zap.String("id", id))
	return nil
}

// Depositar adds monto to the account. The balance in the result is the one
// the backend returns.
func (c *Client) Depositar(ctx context.Context, m MetodoPago, monto decimal.Decimal, concepto string) (MetodoPago, error) {
	if !monto.IsPositive() {
		return MetodoPago{}, ErrMontoInvalido
	}
	return c.operar(ctx, m, "deposito", monto, concepto, m.Saldo.Add(monto))
}

// Transferir debits monto from the account. Amounts above the current
// balance are refused before any request.
func (c *Client) Transferir(ctx context.Context, m MetodoPago, monto decimal.Decimal, concepto string) (MetodoPago, error) {
	if !monto.IsPositive() {
		return MetodoPago{}, ErrMontoInvalido
	}
	if monto.GreaterThan(m.Saldo) {
		return MetodoPago{}, fmt.Errorf("%w: disponible %s, solicitado %s", ErrSaldoInsuficiente, m.Saldo.StringFixed(2), monto.StringFixed(2))
	}
	return c.operar(ctx, m, "transferir", monto, concepto, m.Saldo.Sub(monto))
}

func (c *Client) operar(ctx context.Context, m MetodoPago, op string, monto decimal.Decimal, concepto string, esperado decimal.Decimal) (MetodoPago, error) {
	if m.ID == "" {
		return MetodoPago{}, ErrSinID
	}
	var resp operacionRespuesta
	if err := c.api.Post(ctx, path(m.ID, op), operacionRequest{Monto: monto, Concepto: concepto}, &resp); err != nil {
		return MetodoPago{}, err
	}

	out := m
	switch {
	case resp.Metodo != nil && resp.Metodo.ID != "":
		out = *resp.Metodo
	case resp.NuevoSaldo != nil:
		out.Saldo = *resp.NuevoSaldo
	case resp.Saldo != nil:
		out.Saldo = *resp.Saldo
	default:
		c.logger.Debug("respuesta sin saldo, usando saldo calculado", zap.String("id", m.ID), zap.String("operacion", op))
		out.Saldo = esperado
	}
	if !out.Saldo.Equal(esperado) {
		c.logger.Warn("saldo devuelto difiere del calculado",
			zap.String("id", m.ID),
			zap.String("operacion", op),
			zap.String("esperado", esperado.StringFixed(2)),
			zap.String("devuelto", out.Saldo.StringFixed(2)),
		)
	}
	c.logger.Info("operacion registrada",
		zap.String("id", m.ID),
		zap.String("operacion", op),
		zap.String("monto", monto.StringFixed(2)),
		zap.String("saldo", out.Saldo.StringFixed(2)),
	)
	return out, nil
}

// Filtro narrows a history. Zero fields match everything; Hasta includes
// the whole day it names.
type Filtro struct {
	Desde time.Time
	Hasta time.Time
	Tipo  TipoTransaccion
	Texto string
}

func (f Filtro) incluye(t Transaccion) bool {
	if !f.Desde.IsZero() && t.Fecha.Before(f.Desde) {
		return false
	}
	if !f.Hasta.IsZero() && !t.Fecha.Before(finDelDia(f.Hasta)) {
		return false
	}
	if f.Tipo != "" && t.Tipo != f.Tipo {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Texto)); q != "" {
		return strings.Contains(strings.ToLower(t.Concepto), q) || strings.Contains(strings.ToLower(string(t.Tipo)), q)
	}
	return true
}

func finDelDia(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

func (c *Client) Historial(ctx context.Context, id string, filtro Filtro) (Historial, error) {
	if id == "" {
		return Historial{}, ErrSinID
	}
	var resp api.List[Transaccion]
	if err := c.api.Get(ctx, path(id, "historial"), nil, &resp); err != nil {
		return Historial{}, err
	}
	return Resumir(resp, filtro), nil
}

// Resumir filters txs, sorts them oldest first and accumulates the running
// balance and totals over the filtered lines.
func Resumir(txs []Transaccion, filtro Filtro) Historial {
	var selected []Transaccion
	for _, t := range txs {
		if filtro.incluye(t) {
			selected = append(selected, t)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Fecha.Before(selected[j].Fecha.Time)
	})

	h := Historial{Ingresos: decimal.Zero, Egresos: decimal.Zero, Neto: decimal.Zero}
	saldo := decimal.Zero
	for _, t := range selected {
		if t.Tipo.Ingreso() {
			saldo = saldo.Add(t.Monto)
			h.Ingresos = h.Ingresos.Add(t.Monto)
		} else {
			saldo = saldo.Sub(t.Monto)
			h.Egresos = h.Egresos.Add(t.Monto)
		}
		h.Movimientos = append(h.Movimientos, Movimiento{Transaccion: t, SaldoAcumulado: saldo})
	}
	h.Neto = h.Ingresos.Sub(h.Egresos)
	return h
}
