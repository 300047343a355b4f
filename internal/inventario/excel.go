package inventario

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Inventario"

var ErrHojaVacia = errors.New("el archivo no contiene filas")

// FilaImportada is one parsed spreadsheet row. Sucursal2 is informative
// only and never sent to the backend.
type FilaImportada struct {
	Fila      int      `json:"fila"`
	Item      BulkItem `json:"item"`
	Sucursal2 int      `json:"sucursal2"`
}

type FilaError struct {
	Fila   int    `json:"fila"`
	Codigo string `json:"codigo,omitempty"`
	Motivo string `json:"motivo"`
}

type Importacion struct {
	Hoja    string          `json:"hoja"`
	Filas   []FilaImportada `json:"filas"`
	Errores []FilaError     `json:"errores,omitempty"`
}

func (imp Importacion) Items() []BulkItem {
	out := make([]BulkItem, 0, len(imp.Filas))
	for _, fila := range imp.Filas {
		out = append(out, fila.Item)
	}
	return out
}

const (
	colCodigo          = "codigo"
	colNombre          = "nombre"
	colDescripcion     = "descripcion"
	colCategoria       = "categoria"
	colModelo          = "modelo"
	colCosto           = "costo"
	colCostoProduccion = "costo_produccion"
	colPrecio          = "precio"
	colExistencia      = "existencia"
	colSucursal1       = "sucursal_1"
	colCantidad        = "cantidad"
	colSucursal2       = "sucursal_2"
	colActivo          = "activo"
)

var headerAliases = map[string]string{
	"codigo":              colCodigo,
	"cod":                 colCodigo,
	"nombre":              colNombre,
	"descripcion":         colDescripcion,
	"categoria":           colCategoria,
	"modelo":              colModelo,
	"costo":               colCosto,
	"costo produccion":    colCostoProduccion,
	"costo de produccion": colCostoProduccion,
	"costoproduccion":     colCostoProduccion,
	"precio":              colPrecio,
	"precio venta":        colPrecio,
	"existencia":          colExistencia,
	"sucursal 1":          colSucursal1,
	"sucursal1":           colSucursal1,
	"cantidad":            colCantidad,
	"sucursal 2":          colSucursal2,
	"sucursal2":           colSucursal2,
	"existencia2":         colSucursal2,
	"activo":              colActivo,
}

// ParseExcel reads the first sheet of an xlsx workbook. The first
// non-empty row is the header. Branch one stock comes from "existencia",
// else "Sucursal 1", else "cantidad".
func ParseExcel(r io.Reader) (Importacion, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Importacion{}, fmt.Errorf("abrir xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return Importacion{}, ErrHojaVacia
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Importacion{}, fmt.Errorf("leer hoja %s: %w", sheet, err)
	}

	headerIdx := -1
	for i, row := range rows {
		if !rowEmpty(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return Importacion{}, ErrHojaVacia
	}

	columns := map[string]int{}
	for j, cell := range rows[headerIdx] {
		if key, ok := headerAliases[Normalizar(cell)]; ok {
			if _, dup := columns[key]; !dup {
				columns[key] = j
			}
		}
	}
	if _, ok := columns[colCodigo]; !ok {
		return Importacion{}, fmt.Errorf("falta la columna codigo en la fila %d", headerIdx+1)
	}

	imp := Importacion{Hoja: sheet}
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if rowEmpty(row) {
			continue
		}
		fila, ferr := parseRow(i+1, row, columns)
		if ferr != nil {
			imp.Errores = append(imp.Errores, *ferr)
			continue
		}
		imp.Filas = append(imp.Filas, fila)
	}
	return imp, nil
}

func parseRow(num int, row []string, columns map[string]int) (FilaImportada, *FilaError) {
	cell := func(key string) string {
		j, ok := columns[key]
		if !ok || j >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[j])
	}
	fail := func(codigo, motivo string) (FilaImportada, *FilaError) {
		return FilaImportada{}, &FilaError{Fila: num, Codigo: codigo, Motivo: motivo}
	}

	codigo := cell(colCodigo)
	if codigo == "" {
		return fail("", "codigo requerido")
	}
	item := BulkItem{
		Codigo:      codigo,
		Nombre:      cell(colNombre),
		Descripcion: cell(colDescripcion),
		Categoria:   cell(colCategoria),
		Modelo:      cell(colModelo),
		Activo:      parseActivo(cell(colActivo)),
	}

	var err error
	if item.Costo, err = parseMonto(cell(colCosto)); err != nil {
		return fail(codigo, "costo invalido: "+err.Error())
	}
	if item.CostoProduccion, err = parseMonto(cell(colCostoProduccion)); err != nil {
		return fail(codigo, "costo de produccion invalido: "+err.Error())
	}
	if item.Precio, err = parseMonto(cell(colPrecio)); err != nil {
		return fail(codigo, "precio invalido: "+err.Error())
	}

	cantidadRaw := cell(colExistencia)
	if cantidadRaw == "" {
		cantidadRaw = cell(colSucursal1)
	}
	if cantidadRaw == "" {
		cantidadRaw = cell(colCantidad)
	}
	if item.Cantidad, err = parseCantidad(cantidadRaw); err != nil {
		return fail(codigo, "existencia invalida: "+err.Error())
	}

	// Sucursal 2 is shown to the operator only, so a bad value is not fatal.
	sucursal2, _ := parseCantidad(cell(colSucursal2))

	return FilaImportada{Fila: num, Item: item, Sucursal2: sucursal2}, nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseMonto accepts "1234.5", "1.234,50", "1,234.50" and "$ 12".
func parseMonto(raw string) (decimal.Decimal, error) {
	raw = strings.NewReplacer("$", "", " ", "", "Bs", "", "bs", "").Replace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	hasComma := strings.Contains(raw, ",")
	hasDot := strings.Contains(raw, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(raw, ",") > strings.LastIndex(raw, ".") {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.ReplaceAll(raw, ",", ".")
		} else {
			raw = strings.ReplaceAll(raw, ",", "")
		}
	case hasComma:
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if value.IsNegative() {
		return decimal.Zero, errors.New("negativo")
	}
	return value, nil
}

func parseCantidad(raw string) (int, error) {
	value, err := parseMonto(raw)
	if err != nil {
		return 0, err
	}
	if !value.IsInteger() {
		return 0, errors.New("no es un numero entero")
	}
	return int(value.IntPart()), nil
}

func parseActivo(raw string) bool {
	switch Normalizar(raw) {
	case "no", "false", "0", "inactivo":
		return false
	default:
		return true
	}
}

var exportHeaders = []any{
	"Código", "Nombre", "Descripción", "Categoría", "Modelo",
	"Costo", "Costo Producción", "Precio", "Sucursal 1", "Sucursal 2", "Activo",
}

// ExportExcel writes items as an xlsx workbook that ParseExcel accepts.
func ExportExcel(w io.Writer, items []Item) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("preparar hoja: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return fmt.Errorf("escribir encabezado: %w", err)
	}
	for i, item := range items {
		activo := "Si"
		if !item.Activo {
			activo = "No"
		}
		row := []any{
			item.Codigo, item.Nombre, item.Descripcion, item.Categoria, item.Modelo,
			item.Costo.InexactFloat64(), item.CostoProduccion.InexactFloat64(), item.Precio.InexactFloat64(),
			item.Cantidad, item.Existencia2, activo,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("escribir fila %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("escribir xlsx: %w", err)
	}
	return nil
}
