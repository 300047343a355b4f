package metodospago

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/config"
	"tumundo_admin/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type fakeBackend struct {
	mu        sync.Mutex
	metodos   map[string]*MetodoPago
	historial []Transaccion
	calls     int
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (fb *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /metodos-pago", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.calls++
		var out []MetodoPago
		for _, m := range fb.metodos {
			out = append(out, *m)
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": out})
	})
	mux.HandleFunc("POST /metodos-pago/{id}/{op}", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.calls++
		m, ok := fb.metodos[r.PathValue("id")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Metodo no encontrado"})
			return
		}
		var req struct {
			Monto decimal.Decimal `json:"monto"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch r.PathValue("op") {
		case "deposito":
			m.Saldo = m.Saldo.Add(req.Monto)
			writeJSON(w, http.StatusOK, map[string]any{"message": "ok", "saldo": m.Saldo})
		case "transferir":
			m.Saldo = m.Saldo.Sub(req.Monto)
			writeJSON(w, http.StatusOK, map[string]any{"metodo": m})
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("GET /metodos-pago/{id}/historial", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.calls++
		writeJSON(w, http.StatusOK, fb.historial)
	})
	return mux
}

func newTestClient(t *testing.T, fb *fakeBackend) *Client {
	t.Helper()
	srv := httptest.NewServer(fb.handler())
	t.Cleanup(srv.Close)

	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	cfg := config.Defaults()
	cfg.APIBaseURL = srv.URL
	cfg.Timeout = 2 * time.Second
	apiClient, err := api.NewClient(cfg, st, zap.NewNop())
	require.NoError(t, err)
	return NewClient(apiClient, zap.NewNop())
}

func cuentaDolar(saldo int64) *MetodoPago {
	return &MetodoPago{ID: "m1", Nombre: "Zelle", Moneda: MonedaDolar, Saldo: decimal.NewFromInt(saldo)}
}

func TestDepositarIncrementaSaldo(t *testing.T) {
	fb := &fakeBackend{metodos: map[string]*MetodoPago{"m1": cuentaDolar(100)}}
	c := newTestClient(t, fb)

	out, err := c.Depositar(context.Background(), *cuentaDolar(100), decimal.RequireFromString("25.50"), "abono cliente")
	require.NoError(t, err)
	assert.Equal(t, "125.50", out.Saldo.StringFixed(2))
	assert.Equal(t, "m1", out.ID)
}

func TestDepositarRechazaMontoNoPositivo(t *testing.T) {
	fb := &fakeBackend{metodos: map[string]*MetodoPago{"m1": cuentaDolar(100)}}
	c := newTestClient(t, fb)

	for _, m := range []string{"0", "-5"} {
		_, err := c.Depositar(context.Background(), *cuentaDolar(100), decimal.RequireFromString(m), "")
		assert.ErrorIs(t, err, ErrMontoInvalido)
	}
	assert.Zero(t, fb.calls)
}

func TestTransferir(t *testing.T) {
	fb := &fakeBackend{metodos: map[string]*MetodoPago{"m1": cuentaDolar(100)}}
	c := newTestClient(t, fb)
	ctx := context.Background()

	_, err := c.Transferir(ctx, *cuentaDolar(100), decimal.NewFromInt(101), "")
	assert.ErrorIs(t, err, ErrSaldoInsuficiente)
	assert.Zero(t, fb.calls)

	out, err := c.Transferir(ctx, *cuentaDolar(100), decimal.NewFromInt(100), "pago proveedor")
	require.NoError(t, err)
	assert.True(t, out.Saldo.IsZero())
}

func TestBackendErrorMessage(t *testing.T) {
	fb := &fakeBackend{metodos: map[string]*MetodoPago{}}
	c := newTestClient(t, fb)

	_, err := c.Depositar(context.Background(), *cuentaDolar(0), decimal.NewFromInt(1), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.Equal(t, "Metodo no encontrado", api.Message(err))
}

func TestCreateValida(t *testing.T) {
	c := newTestClient(t, &fakeBackend{})
	_, err := c.Create(context.Background(), MetodoPago{Nombre: " ", Moneda: MonedaBs})
	assert.ErrorIs(t, err, ErrNombreRequerido)
	_, err = c.Create(context.Background(), MetodoPago{Nombre: "Banesco", Moneda: "euro"})
	assert.ErrorIs(t, err, ErrMonedaInvalida)
}

func fecha(s string) api.Fecha {
	f, err := api.ParseFecha(s)
	if err != nil {
		panic(err)
	}
	return f
}

func historialDePrueba() []Transaccion {
	return []Transaccion{
		{ID: "t3", Tipo: TipoTransferencia, Monto: decimal.NewFromInt(40), Concepto: "Pago proveedor vidrios", Fecha: fecha("2025-03-10T09:00:00Z")},
		{ID: "t1", Tipo: TipoCarga, Monto: decimal.NewFromInt(100), Concepto: "Saldo inicial", Fecha: fecha("2025-03-01T08:00:00Z")},
		{ID: "t2", Tipo: TipoDeposito, Monto: decimal.NewFromInt(50), Concepto: "Abono pedido 17", Fecha: fecha("2025-03-05T12:00:00Z")},
		{ID: "t4", Tipo: TipoDeposito, Monto: decimal.NewFromInt(10), Concepto: "Abono pedido 18", Fecha: fecha("2025-04-01T12:00:00Z")},
	}
}

func TestHistorialResumen(t *testing.T) {
	fb := &fakeBackend{historial: historialDePrueba()}
	c := newTestClient(t, fb)

	h, err := c.Historial(context.Background(), "m1", Filtro{
		Desde: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Hasta: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, h.Movimientos, 3)
	assert.Equal(t, "t1", h.Movimientos[0].ID)
	assert.Equal(t, "100", h.Movimientos[0].SaldoAcumulado.String())
	assert.Equal(t, "150", h.Movimientos[1].SaldoAcumulado.String())
	assert.Equal(t, "110", h.Movimientos[2].SaldoAcumulado.String())
	assert.Equal(t, "150", h.Ingresos.String())
	assert.Equal(t, "40", h.Egresos.String())
	assert.Equal(t, "110", h.Neto.String())
}

func TestResumirFiltraTipoYTexto(t *testing.T) {
	h := Resumir(historialDePrueba(), Filtro{Tipo: TipoDeposito, Texto: "PEDIDO 18"})
	require.Len(t, h.Movimientos, 1)
	assert.Equal(t, "t4", h.Movimientos[0].ID)

	h = Resumir(historialDePrueba(), Filtro{Texto: "transferencia"})
	require.Len(t, h.Movimientos, 1)
	assert.Equal(t, "t3", h.Movimientos[0].ID)
}

func TestExportXLSX(t *testing.T) {
	h := Resumir(historialDePrueba(), Filtro{})
	var buf bytes.Buffer
	require.NoError(t, ExportXLSX(&buf, *cuentaDolar(120), h))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Historial")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fecha", "Tipo", "Concepto", "Monto", "Saldo acumulado"}, rows[0])
	assert.Equal(t, "Saldo inicial", rows[1][2])
	assert.Equal(t, "-40", rows[3][3])
}

func TestExportPDF(t *testing.T) {
	h := Resumir(historialDePrueba(), Filtro{})
	var buf bytes.Buffer
	require.NoError(t, ExportPDF(&buf, MetodoPago{Nombre: "Cuenta Bolívares", Moneda: MonedaBs}, h))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
}
