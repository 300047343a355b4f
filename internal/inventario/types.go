package inventario

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Sucursal identifies one of the two fixed stock locations.
type Sucursal int

const (
	Sucursal1 Sucursal = 1
	Sucursal2 Sucursal = 2
)

func ParseSucursal(value string) (Sucursal, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), " ", "")) {
	case "1", "sucursal1", "s1":
		return Sucursal1, nil
	case "2", "sucursal2", "s2":
		return Sucursal2, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrSucursalInvalida, value)
	}
}

func (s Sucursal) Valid() bool {
	return s == Sucursal1 || s == Sucursal2
}

func (s Sucursal) String() string {
	return fmt.Sprintf("Sucursal %d", int(s))
}

type Item struct {
	ID              string          `json:"_id,omitempty"`
	Codigo          string          `json:"codigo"`
	Nombre          string          `json:"nombre"`
	Descripcion     string          `json:"descripcion,omitempty"`
	Categoria       string          `json:"categoria,omitempty"`
	Modelo          string          `json:"modelo,omitempty"`
	Costo           decimal.Decimal `json:"costo"`
	CostoProduccion decimal.Decimal `json:"costoProduccion"`
	Cantidad        int             `json:"cantidad"`
	Existencia2     int             `json:"existencia2"`
	Precio          decimal.Decimal `json:"precio"`
	Activo          bool            `json:"activo"`
	Imagenes        []string        `json:"imagenes,omitempty"`
}

// Existencia returns the stock held at s.
func (i Item) Existencia(s Sucursal) int {
	if s == Sucursal2 {
		return i.Existencia2
	}
	return i.Cantidad
}

// BulkItem is the row shape sent to the bulk upsert endpoint. Branch two
// stock is never part of an import.
type BulkItem struct {
	Codigo          string          `json:"codigo"`
	Nombre          string          `json:"nombre"`
	Descripcion     string          `json:"descripcion,omitempty"`
	Categoria       string          `json:"categoria,omitempty"`
	Modelo          string          `json:"modelo,omitempty"`
	Costo           decimal.Decimal `json:"costo"`
	CostoProduccion decimal.Decimal `json:"costoProduccion"`
	Cantidad        int             `json:"cantidad"`
	Precio          decimal.Decimal `json:"precio"`
	Activo          bool            `json:"activo"`
}

type BulkResultado struct {
	Insertados   int      `json:"insertados"`
	Actualizados int      `json:"actualizados"`
	Errores      []string `json:"errores,omitempty"`
}

type movimientoRequest struct {
	Cantidad int      `json:"cantidad"`
	Tipo     string   `json:"tipo"`
	Sucursal Sucursal `json:"sucursal"`
	Concepto string   `json:"concepto,omitempty"`
}

const (
	tipoCargar    = "cargar"
	tipoDescargar = "descargar"
)

type ItemConError struct {
	Codigo string `json:"codigo"`
	Nombre string `json:"nombre"`
	Error  string `json:"error"`
}

// CargaPedidoRespuesta reports what the backend did when loading an order's
// quantities into stock.
type CargaPedidoRespuesta struct {
	Mensaje           string         `json:"message,omitempty"`
	ItemsActualizados int            `json:"items_actualizados"`
	ItemsCreados      int            `json:"items_creados"`
	ItemsConError     []ItemConError `json:"items_con_error,omitempty"`
}
