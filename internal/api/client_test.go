package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tumundo_admin/internal/config"
	"tumundo_admin/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, store.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	cfg := config.Defaults()
	cfg.APIBaseURL = srv.URL
	cfg.Timeout = 2 * time.Second
	c, err := NewClient(cfg, st, zap.NewNop())
	require.NoError(t, err)
	return c, st
}

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		hosts []string
		want  string
	}{
		{name: "plain", raw: "http://localhost:8000/", want: "http://localhost:8000"},
		{name: "provider forced", raw: "http://tumundo-api.onrender.com", hosts: []string{"onrender.com"}, want: "https://tumundo-api.onrender.com"},
		{name: "suffix must be a label", raw: "http://evilonrender.com", hosts: []string{"onrender.com"}, want: "http://evilonrender.com"},
		{name: "already https", raw: "https://api.onrender.com/v1", hosts: []string{".onrender.com"}, want: "https://api.onrender.com/v1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveBaseURL(tt.raw, tt.hosts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ResolveBaseURL("  ", nil)
	assert.ErrorIs(t, err, ErrBadBaseURL)
}

func TestBearerTokenFromStore(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	ctx := context.Background()

	require.NoError(t, c.Get(ctx, "/usuarios/all", nil, nil))
	assert.Empty(t, gotAuth)

	require.NoError(t, c.SetToken(ctx, "abc123"))
	require.NoError(t, c.Get(ctx, "/usuarios/all", nil, nil))
	assert.Equal(t, "Bearer abc123", gotAuth)

	require.NoError(t, c.ClearToken(ctx))
	require.NoError(t, c.Get(ctx, "/usuarios/all", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestErrorMessageUnwrapped(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/detail":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"Saldo insuficiente"}`))
		case "/list":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail":[{"msg":"campo requerido"},{"msg":"monto invalido"}]}`))
		case "/auth":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Token expirado"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	ctx := context.Background()

	err := c.Post(ctx, "/detail", map[string]any{}, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Saldo insuficiente", Message(err))

	err = c.Post(ctx, "/list", map[string]any{}, nil)
	assert.Equal(t, "campo requerido; monto invalido", Message(err))

	err = c.Get(ctx, "/auth", nil, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Token expirado", Message(err))

	err = c.Get(ctx, "/missing", nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDecodesWrappedAndBare(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/bare" {
			_, _ = w.Write([]byte(`[{"id":"1"},{"id":"2"}]`))
			return
		}
		_, _ = w.Write([]byte(`{"total":1,"pedidos":[{"id":"3"}]}`))
	}))
	ctx := context.Background()

	type row struct {
		ID string `json:"id"`
	}
	var bare List[row]
	require.NoError(t, c.Get(ctx, "/bare", nil, &bare))
	assert.Len(t, bare, 2)

	var wrapped List[row]
	require.NoError(t, c.Get(ctx, "/wrapped", nil, &wrapped))
	require.Len(t, wrapped, 1)
	assert.Equal(t, "3", wrapped[0].ID)
}

func TestIdempotencyKeyHeader(t *testing.T) {
	var key string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = r.Header.Get("Idempotency-Key")
		w.WriteHeader(http.StatusNoContent)
	}))
	require.NoError(t, c.PostIdempotent(context.Background(), "/inventario/1/existencia", "k-1", map[string]any{"cantidad": 1}, nil))
	assert.Equal(t, "k-1", key)
}

func TestDecodeRegardlessOfContentType(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/texto" {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		} else {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
		}
		_, _ = w.Write([]byte(`{"fecha":"2025-08-14"}`))
	}))
	ctx := context.Background()

	type row struct {
		Fecha Fecha `json:"fecha"`
	}
	for _, path := range []string{"/json", "/texto"} {
		var out row
		require.NoError(t, c.Get(ctx, path, nil, &out), path)
		assert.Equal(t, time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC), out.Fecha.Time, path)
	}
}
