package pedidos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tumundo_admin/internal/api"
	"tumundo_admin/internal/config"
	"tumundo_admin/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
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

func writeRaw(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestListAllSortsAndCaps(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pedidos/all/", r.URL.Path)
		writeRaw(w, `{"pedidos":[
			{"_id":"a","fecha_creacion":"2025-01-01T00:00:00Z"},
			{"_id":"c","fecha_creacion":"2025-03-01 08:00:00"},
			{"_id":"b","fecha_creacion":"2025-02-01"}
		]}`)
	}))

	list, err := c.ListAll(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
}

func TestListByEstadoQuery(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pedidos/estado/", r.URL.Path)
		assert.Equal(t, "orden4", r.URL.Query().Get("estado_general"))
		writeRaw(w, `[{"_id":"x","estado_general":"orden4","items":[{"codigo":"A1","cantidad":3,"precio":10}]}]`)
	}))

	list, err := c.ListByEstado(context.Background(), EstadoOrden4)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "30", list[0].Total().String())
	assert.Nil(t, list[0].Items[0].EstadoItem)
}

func TestProgresoAliases(t *testing.T) {
	for _, body := range []string{
		`{"porcentaje": 99.6, "fecha_completado": "2025-05-01T10:00:00Z"}`,
		`{"progreso": 99.6, "fecha_100": "2025-05-01T10:00:00Z"}`,
		`{"progress": 99.6, "fecha_completado": "2025-05-01T10:00:00Z"}`,
	} {
		var p Progreso
		require.NoError(t, json.Unmarshal([]byte(body), &p))
		assert.InDelta(t, 99.6, p.Porcentaje, 0.0001)
		assert.Equal(t, 2025, p.FechaCompletado.Year())
	}
}

func TestPagosAndUltimoFin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /pedidos/{id}/pagos", func(w http.ResponseWriter, r *http.Request) {
		writeRaw(w, `{"total_pedido": 120.5, "total_abonado": 20, "saldo_pendiente": 100.5}`)
	})
	c := newTestClient(t, mux)

	pagos, err := c.Pagos(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "120.5", pagos.TotalPedido.String())
	assert.Equal(t, "100.5", pagos.SaldoPendiente.String())

	var ped Pedido
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"p1","seguimiento":[
		{"orden":1,"fecha_fin":"2025-04-01T00:00:00Z"},
		{"orden":2,"fecha_fin":"2025-04-09T00:00:00Z"},
		{"orden":3,"fecha_fin":null}
	]}`), &ped))
	assert.Equal(t, 9, ped.UltimoFin().Day())
}

func TestTerminarAsignacion(t *testing.T) {
	var got TerminarAsignacionRequest
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /pedidos/asignacion/terminar", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeRaw(w, `{"message":"ok"}`)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	req := TerminarAsignacionRequest{PedidoID: "p1", ItemID: "i1", EmpleadoID: "e1"}
	require.NoError(t, c.TerminarAsignacion(ctx, req))
	assert.Equal(t, req, got)

	assert.ErrorIs(t, c.TerminarAsignacion(ctx, TerminarAsignacionRequest{}), ErrMissingID)
	_, err := c.Get(ctx, " ")
	assert.ErrorIs(t, err, ErrMissingID)
}
