package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerEntry struct {
	PedidoID string `json:"pedidoId"`
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestLoadMissingKey(t *testing.T) {
	s := newTestStore(t)
	entries, found, err := Load[[]ledgerEntry](context.Background(), s, KeyFacturasConfirmadas)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, entries)
}

func TestSaveLoadAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, Save(ctx, s, KeyHomeConfig, map[string]string{"logo": "a.png"}))
	got, found, err := Load[map[string]string](ctx, s, KeyHomeConfig)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a.png", got["logo"])

	require.NoError(t, s.Delete(ctx, KeyHomeConfig))
	require.NoError(t, s.Delete(ctx, KeyHomeConfig))
	_, found, err = s.Get(ctx, KeyHomeConfig)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLastWriteWins(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tabA, err := NewFileStore(dir)
	require.NoError(t, err)
	tabB, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, Save(ctx, tabA, KeyPedidosCargados, []ledgerEntry{{PedidoID: "A"}}))
	require.NoError(t, Save(ctx, tabB, KeyPedidosCargados, []ledgerEntry{{PedidoID: "B"}}))

	got, _, err := Load[[]ledgerEntry](ctx, tabA, KeyPedidosCargados)
	require.NoError(t, err)
	assert.Equal(t, []ledgerEntry{{PedidoID: "B"}}, got)
}

func TestUpdateSerializesWithinProcess(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Update(ctx, s, "contador", func(n int) (int, error) { return n + 1, nil })
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, _, err := Load[int](ctx, s, "contador")
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}

func TestUpdateErrorKeepsValue(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, Save(ctx, s, "k", 3))

	_, err := Update(ctx, s, "k", func(n int) (int, error) { return 0, errors.New("boom") })
	require.Error(t, err)

	n, _, err := Load[int](ctx, s, "k")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestEmptyKeyRejected(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestNewRedisStoreBadURL(t *testing.T) {
	_, err := NewRedisStore("not-a-url")
	assert.Error(t, err)
}
