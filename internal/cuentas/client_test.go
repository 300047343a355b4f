package cuentas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/config"
	"tumundo_admin/internal/inventario"
	"tumundo_admin/internal/metodospago"
	"tumundo_admin/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBackend keeps payables server side and applies abonos the way the
// real backend does.
type fakeBackend struct {
	mu        sync.Mutex
	cuentas   map[string]*CuentaPorPagar
	stock     map[string]int
	failStock map[string]bool
	calls     int
	nextID    int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{cuentas: map[string]*CuentaPorPagar{}, stock: map[string]int{}, failStock: map[string]bool{}}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (fb *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /cuentas-por-pagar", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.calls++
		out := []CuentaPorPagar{}
		for _, c := range fb.cuentas {
			out = append(out, *c)
		}
		writeJSON(w, http.StatusOK, out)
	})
	mux.HandleFunc("POST /cuentas-por-pagar", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.calls++
		var c CuentaPorPagar
		_ = json.NewDecoder(r.Body).Decode(&c)
		fb.nextID++
		c.ID = fmt.Sprintf("c%d", fb.nextID)
		fb.cuentas[c.ID] = &c
		writeJSON(w, http.StatusCreated, c)
	})
	mux.HandleFunc("POST /cuentas-por-pagar/{id}/abonar", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.calls++
		c, ok := fb.cuentas[r.PathValue("id")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Cuenta no encontrada"})
			return
		}
		var req abonoRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		c.MontoAbonado = c.MontoAbonado.Add(req.Monto)
		c.SaldoPendiente = c.Total.Sub(c.MontoAbonado)
		c.Estado = EstadoPendiente
		if !c.SaldoPendiente.IsPositive() {
			c.Estado = EstadoPagada
		}
		c.HistorialAbonos = append(c.HistorialAbonos, Abono{Monto: req.Monto, MetodoPago: req.MetodoPago, MetodoPagoNombre: req.MetodoPagoNombre})
		writeJSON(w, http.StatusOK, c)
	})
	mux.HandleFunc("POST /inventario/{id}/existencia", func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		defer fb.mu.Unlock()
		fb.calls++
		id := r.PathValue("id")
		if fb.failStock[id] {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "error de inventario"})
			return
		}
		var req struct {
			Cantidad int    `json:"cantidad"`
			Tipo     string `json:"tipo"`
			Sucursal int    `json:"sucursal"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Tipo == "cargar" && req.Sucursal == 1 {
			fb.stock[id] += req.Cantidad
		}
		writeJSON(w, http.StatusOK, map[string]any{"_id": id, "cantidad": fb.stock[id]})
	})
	return mux
}

func newTestClient(t *testing.T, fb *fakeBackend) (*Client, store.Store) {
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
	return NewClient(apiClient, inventario.NewClient(apiClient, st, zap.NewNop()), zap.NewNop()), st
}

var vidrios = Proveedor{Nombre: "Vidrios del Centro", RIF: "j-12345678-9", Telefono: "0414-0000000"}

func TestCreateItemizadaSumaInventario(t *testing.T) {
	fb := newFakeBackend()
	fb.stock["it-1"] = 2
	c, _ := newTestClient(t, fb)

	linea, err := ItemDesdeInventario(inventario.Item{ID: "it-1", Codigo: "P-1", Nombre: "Puerta", Costo: decimal.RequireFromString("12.50")}, 4)
	require.NoError(t, err)
	assert.Equal(t, "50.00", linea.Subtotal.StringFixed(2))

	res, err := c.Create(context.Background(), NuevaCuenta{
		Proveedor: vidrios,
		Items:     []ItemCuenta{linea, {Nombre: "Flete", Costo: decimal.NewFromInt(10), Cantidad: 1}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Advertencias)
	assert.Equal(t, "c1", res.Cuenta.ID)
	assert.Equal(t, "J123456789", res.Cuenta.Proveedor.RIF)
	assert.Equal(t, "60.00", res.Cuenta.Total.StringFixed(2))
	assert.Equal(t, "60.00", res.Cuenta.SaldoPendiente.StringFixed(2))
	assert.Equal(t, EstadoPendiente, res.Cuenta.Estado)
	assert.Equal(t, 6, fb.stock["it-1"])
}

func TestCreateFallaInventarioComoAdvertencia(t *testing.T) {
	fb := newFakeBackend()
	fb.failStock["it-1"] = true
	c, _ := newTestClient(t, fb)

	res, err := c.Create(context.Background(), NuevaCuenta{
		Proveedor: vidrios,
		Items:     []ItemCuenta{{ItemID: "it-1", Nombre: "Puerta", Costo: decimal.NewFromInt(5), Cantidad: 2}},
	})
	require.NoError(t, err)
	require.Len(t, res.Advertencias, 1)
	assert.Contains(t, res.Advertencias[0], "error de inventario")
	assert.Len(t, fb.cuentas, 1)
}

func TestCreateValidaAntesDeEnviar(t *testing.T) {
	fb := newFakeBackend()
	c, _ := newTestClient(t, fb)
	ctx := context.Background()

	_, err := c.Create(ctx, NuevaCuenta{Proveedor: Proveedor{Nombre: "Sin RIF"}, Descripcion: "x", Monto: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrProveedorRequerido)
	_, err = c.Create(ctx, NuevaCuenta{Proveedor: vidrios})
	assert.ErrorIs(t, err, ErrDetalleRequerido)
	_, err = c.Create(ctx, NuevaCuenta{Proveedor: vidrios, Descripcion: "Servicio", Monto: decimal.Zero})
	assert.ErrorIs(t, err, ErrMontoInvalido)
	assert.Zero(t, fb.calls)
}

func TestAbonosMantienenInvariante(t *testing.T) {
	fb := newFakeBackend()
	c, _ := newTestClient(t, fb)
	ctx := context.Background()
	metodo := metodospago.MetodoPago{ID: "m1", Nombre: "Zelle"}

	res, err := c.Create(ctx, NuevaCuenta{Proveedor: vidrios, Descripcion: "Servicio de corte", Monto: decimal.NewFromInt(100)})
	require.NoError(t, err)
	cuenta := res.Cuenta

	_, err = c.Abonar(ctx, cuenta, decimal.NewFromInt(101), metodo)
	assert.ErrorIs(t, err, ErrAbonoExcede)
	_, err = c.Abonar(ctx, cuenta, decimal.Zero, metodo)
	assert.ErrorIs(t, err, ErrMontoInvalido)

	for _, m := range []string{"30", "45.5", "24.5"} {
		cuenta, err = c.Abonar(ctx, cuenta, decimal.RequireFromString(m), metodo)
		require.NoError(t, err)
		assert.True(t, cuenta.SaldoPendiente.Equal(cuenta.Total.Sub(cuenta.MontoAbonado)))
		assert.Equal(t, !cuenta.SaldoPendiente.IsPositive(), cuenta.Estado == EstadoPagada)
	}
	assert.Equal(t, EstadoPagada, cuenta.Estado)
	assert.True(t, cuenta.SaldoPendiente.IsZero())
	assert.Len(t, cuenta.HistorialAbonos, 3)

	_, err = c.Abonar(ctx, cuenta, decimal.NewFromInt(1), metodo)
	assert.ErrorIs(t, err, ErrAbonoExcede)
}

func TestListFiltraYNormaliza(t *testing.T) {
	fb := newFakeBackend()
	fb.cuentas["a"] = &CuentaPorPagar{
		ID: "a", Proveedor: Proveedor{Nombre: "Maderas Andinas", RIF: "J1"},
		Total: decimal.NewFromInt(80), MontoAbonado: decimal.NewFromInt(80),
		SaldoPendiente: decimal.NewFromInt(10), Estado: EstadoPendiente,
	}
	fb.cuentas["b"] = &CuentaPorPagar{
		ID: "b", Proveedor: Proveedor{Nombre: "Cerrajería Núñez", RIF: "J2"},
		Total: decimal.NewFromInt(50), SaldoPendiente: decimal.NewFromInt(50), Estado: EstadoPendiente,
	}
	c, _ := newTestClient(t, fb)
	ctx := context.Background()

	all, err := c.List(ctx, Filtro{})
	require.NoError(t, err)
	require.Len(t, all.Cuentas, 2)
	assert.Equal(t, "50", all.TotalPendiente.String())

	pagadas, err := c.List(ctx, Filtro{Estado: EstadoPagada})
	require.NoError(t, err)
	require.Len(t, pagadas.Cuentas, 1)
	assert.Equal(t, "a", pagadas.Cuentas[0].ID)
	assert.True(t, pagadas.Cuentas[0].SaldoPendiente.IsZero())

	porTexto, err := c.List(ctx, Filtro{Texto: "cerrajeria nunez"})
	require.NoError(t, err)
	require.Len(t, porTexto.Cuentas, 1)
	assert.Equal(t, "b", porTexto.Cuentas[0].ID)
}

func TestNormalizar(t *testing.T) {
	fixed, ok := Normalizar(CuentaPorPagar{Total: decimal.NewFromInt(10), MontoAbonado: decimal.NewFromInt(4), SaldoPendiente: decimal.NewFromInt(6), Estado: EstadoPendiente})
	assert.True(t, ok)
	assert.Equal(t, EstadoPendiente, fixed.Estado)

	fixed, ok = Normalizar(CuentaPorPagar{Total: decimal.NewFromInt(10), MontoAbonado: decimal.NewFromInt(12), Estado: EstadoPendiente})
	assert.False(t, ok)
	assert.Equal(t, EstadoPagada, fixed.Estado)
	assert.Equal(t, "-2", fixed.SaldoPendiente.String())
}

func TestProveedores(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	p := NewProveedores(st, zap.NewNop())
	ctx := context.Background()

	_, err = p.Agregar(ctx, vidrios)
	require.NoError(t, err)
	_, err = p.Agregar(ctx, Proveedor{Nombre: "Otro nombre", RIF: "J-123456789"})
	assert.ErrorIs(t, err, ErrProveedorDuplicado)
	require.NoError(t, p.Recordar(ctx, vidrios))
	_, err = p.Agregar(ctx, Proveedor{Nombre: "Aluminios Lara", RIF: "J-999"})
	require.NoError(t, err)

	list, err := p.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Aluminios Lara", list[0].Nombre)

	found, err := p.Buscar(ctx, "j 12345678 9")
	require.NoError(t, err)
	assert.Equal(t, "Vidrios del Centro", found.Nombre)

	require.NoError(t, p.Eliminar(ctx, "J123456789"))
	assert.ErrorIs(t, p.Eliminar(ctx, "J123456789"), ErrProveedorNoExiste)
	_, err = p.Buscar(ctx, "J123456789")
	assert.ErrorIs(t, err, ErrProveedorNoExiste)
}

func TestExportPDF(t *testing.T) {
	var buf bytes.Buffer
	cuenta, _ := Normalizar(CuentaPorPagar{
		Proveedor:       vidrios,
		Items:           []ItemCuenta{{Codigo: "P-1", Nombre: "Puerta", Costo: decimal.NewFromInt(10), Cantidad: 2, Subtotal: decimal.NewFromInt(20)}},
		Total:           decimal.NewFromInt(20),
		MontoAbonado:    decimal.NewFromInt(5),
		HistorialAbonos: []Abono{{Monto: decimal.NewFromInt(5), MetodoPagoNombre: "Zelle"}},
	})
	require.NoError(t, ExportPDF(&buf, cuenta))
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
}
