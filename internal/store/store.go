// Package store is the client-side key/value repository that stands in for
// browser local storage. Writes are last-write-wins: there is no versioning
// and no coordination between processes sharing the same backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	KeyAccessToken          = "access_token"
	KeyProveedores          = "proveedores_cuentas_por_pagar"
	KeyFacturasConfirmadas  = "facturas_confirmadas"
	KeyPedidosCargados      = "pedidos_cargados_inventario"
	KeyHomeConfig           = "home-config"
	KeyTransferenciasIntent = "transferencias_pendientes"
)

var ErrInvalidKey = errors.New("store key is empty")

type Store interface {
	// Get returns the raw value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Load decodes the JSON value stored under key into a T. A missing key
// yields the zero value and found=false.
func Load[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var out T
	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, true, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, true, nil
}

func Save[T any](ctx context.Context, s Store, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}

// Update loads the value under key, applies fn and writes the result back.
// Only calls within this process are serialized; another writer may still
// overwrite the result.
func Update[T any](ctx context.Context, s Store, key string, fn func(T) (T, error)) (T, error) {
	if locker, ok := s.(interface{ lockKey(string) func() }); ok {
		defer locker.lockKey(key)()
	}
	current, _, err := Load[T](ctx, s, key)
	if err != nil {
		return current, err
	}
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	if err := Save(ctx, s, key, next); err != nil {
		return current, err
	}
	return next, nil
}
