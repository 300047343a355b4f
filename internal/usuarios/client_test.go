package usuarios

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

func TestValidarPermisos(t *testing.T) {
	got, err := ValidarPermisos([]string{" Inventario", "facturacion", "inventario", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"facturacion", "inventario"}, got)

	_, err = ValidarPermisos([]string{"inventario", "root"})
	assert.ErrorIs(t, err, ErrPermisoDesconocido)
	assert.Contains(t, err.Error(), "root")

	got, err = ValidarPermisos(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSetPermisos(t *testing.T) {
	var body map[string][]string
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /usuarios/{id}", func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Usuario{ID: r.PathValue("id"), Nombre: "Ana", Permisos: body["permisos"]})
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	u, err := c.SetPermisos(ctx, "u1", []string{"home", "usuarios"})
	require.NoError(t, err)
	assert.Equal(t, []string{"usuarios", "home"}, body["permisos"])
	assert.True(t, u.Tiene("home"))
	assert.False(t, u.Tiene("inventario"))

	_, err = c.SetPermisos(ctx, "u1", []string{"admin"})
	assert.ErrorIs(t, err, ErrPermisoDesconocido)
	assert.Equal(t, 1, calls)
}

func TestCambiarPassword(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /usuarios/{id}", func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "secreto", body["password"])
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	assert.ErrorIs(t, c.CambiarPassword(ctx, "u1", "12345"), ErrPasswordCorta)
	assert.Equal(t, 0, calls)
	require.NoError(t, c.CambiarPassword(ctx, "u1", "secreto"))
	assert.Equal(t, 1, calls)
}
