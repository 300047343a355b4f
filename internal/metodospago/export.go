package metodospago

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

const fechaExport = "02/01/2006 15:04"

func montoConSigno(m Moneda, t Transaccion) string {
	signo := "-"
	if t.Tipo.Ingreso() {
		signo = "+"
	}
	return signo + m.Simbolo() + t.Monto.StringFixed(2)
}

// ExportPDF writes the history of m as an A4 table.
func ExportPDF(w io.Writer, m MetodoPago, h Historial) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr("Historial de "+m.Nombre), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if m.Banco != "" || m.NumeroCuenta != "" {
		pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("%s %s", m.Banco, m.NumeroCuenta)), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 5, tr("Saldo actual: "+m.Moneda.Simbolo()+m.Saldo.StringFixed(2)), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	cols := []float64{contentW * 0.2, contentW * 0.15, contentW * 0.35, contentW * 0.15, contentW * 0.15}
	headers := []string{"Fecha", "Tipo", "Concepto", "Monto", "Saldo"}
	pdf.SetFont("Helvetica", "B", 9)
	for i, head := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(cols[i], 6, head, "B", ln, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "", 8)
	for _, mov := range h.Movimientos {
		concepto := mov.Concepto
		if len(concepto) > 48 {
			concepto = concepto[:47] + "..."
		}
		pdf.CellFormat(cols[0], 5, mov.Fecha.Format(fechaExport), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1], 5, string(mov.Tipo), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[2], 5, tr(concepto), "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[3], 5, montoConSigno(m.Moneda, mov.Transaccion), "", 0, "R", false, 0, "")
		pdf.CellFormat(cols[4], 5, mov.SaldoAcumulado.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5, "Ingresos: "+h.Ingresos.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW, 5, "Egresos: "+h.Egresos.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW, 5, "Neto: "+h.Neto.StringFixed(2), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write historial: %w", err)
	}
	return nil
}

// ExportXLSX writes the history of m as a single-sheet workbook with a
// totals row.
func ExportXLSX(w io.Writer, m MetodoPago, h Historial) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Historial"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := []any{"Fecha", "Tipo", "Concepto", "Monto", "Saldo acumulado"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	row := 2
	for _, mov := range h.Movimientos {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		importe := mov.Monto
		if !mov.Tipo.Ingreso() {
			importe = importe.Neg()
		}
		values := []any{
			mov.Fecha.Format(fechaExport),
			string(mov.Tipo),
			mov.Concepto,
			importe.InexactFloat64(),
			mov.SaldoAcumulado.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
	}

	row++
	totales := [][]any{
		{"Ingresos", h.Ingresos.InexactFloat64()},
		{"Egresos", h.Egresos.InexactFloat64()},
		{"Neto", h.Neto.InexactFloat64()},
	}
	for _, values := range totales {
		cell, err := excelize.CoordinatesToCellName(3, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write historial: %w", err)
	}
	return nil
}
