package cuentas

import (
	"context"
	"errors"
	"sort"
	"strings"

	"tumundo_admin/internal/store"

	"go.uber.org/zap"
)

var (
	ErrProveedorDuplicado = errors.New("ya existe un proveedor con ese RIF")
	ErrProveedorNoExiste  = errors.New("proveedor no encontrado")
)

// NormalizarRIF uppercases the RIF and drops separators, so J-50717255-4
// and j507172554 are the same supplier.
func NormalizarRIF(rif string) string {
	return strings.ToUpper(strings.NewReplacer("-", "", " ", "", ".", "").Replace(strings.TrimSpace(rif)))
}

// Proveedores is the local address book of suppliers. It is never sent to
// the backend.
type Proveedores struct {
	store  store.Store
	logger *zap.Logger
}

func NewProveedores(st store.Store, logger *zap.Logger) *Proveedores {
	return &Proveedores{store: st, logger: logger.Named("proveedores")}
}

func (p *Proveedores) List(ctx context.Context) ([]Proveedor, error) {
	list, _, err := store.Load[[]Proveedor](ctx, p.store, store.KeyProveedores)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return strings.ToLower(list[i].Nombre) < strings.ToLower(list[j].Nombre)
	})
	return list, nil
}

func (p *Proveedores) Buscar(ctx context.Context, rif string) (Proveedor, error) {
	list, err := p.List(ctx)
	if err != nil {
		return Proveedor{}, err
	}
	key := NormalizarRIF(rif)
	for _, prov := range list {
		if NormalizarRIF(prov.RIF) == key {
			return prov, nil
		}
	}
	return Proveedor{}, ErrProveedorNoExiste
}

// Agregar stores a new supplier. A RIF already present is refused.
func (p *Proveedores) Agregar(ctx context.Context, prov Proveedor) (Proveedor, error) {
	prov = Proveedor{
		Nombre:   strings.TrimSpace(prov.Nombre),
		RIF:      NormalizarRIF(prov.RIF),
		Telefono: strings.TrimSpace(prov.Telefono),
	}
	if prov.Nombre == "" || prov.RIF == "" {
		return Proveedor{}, ErrProveedorRequerido
	}
	_, err := store.Update(ctx, p.store, store.KeyProveedores, func(list []Proveedor) ([]Proveedor, error) {
		for _, existing := range list {
			if NormalizarRIF(existing.RIF) == prov.RIF {
				return nil, ErrProveedorDuplicado
			}
		}
		return append(list, prov), nil
	})
	if err != nil {
		return Proveedor{}, err
	}
	p.logger.Info("proveedor agregado", zap.String("rif", prov.RIF))
	return prov, nil
}

// Recordar saves the supplier of a payable, keeping an existing entry as is.
func (p *Proveedores) Recordar(ctx context.Context, prov Proveedor) error {
	_, err := p.Agregar(ctx, prov)
	if errors.Is(err, ErrProveedorDuplicado) {
		return nil
	}
	return err
}

func (p *Proveedores) Eliminar(ctx context.Context, rif string) error {
	key := NormalizarRIF(rif)
	_, err := store.Update(ctx, p.store, store.KeyProveedores, func(list []Proveedor) ([]Proveedor, error) {
		out := list[:0]
		found := false
		for _, prov := range list {
			if NormalizarRIF(prov.RIF) == key {
				found = true
				continue
			}
			out = append(out, prov)
		}
		if !found {
			return nil, ErrProveedorNoExiste
		}
		return out, nil
	})
	return err
}
