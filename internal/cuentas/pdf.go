package cuentas

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

// ExportPDF writes the payable with its lines and payments.
func ExportPDF(w io.Writer, c CuentaPorPagar) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Cuenta por pagar", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if !c.FechaCreacion.IsZero() {
		pdf.CellFormat(contentW, 5, "Fecha: "+c.FechaCreacion.Format("02/01/2006"), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 5, tr("Proveedor: "+c.Proveedor.Nombre), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "RIF: "+c.Proveedor.RIF, "", 1, "L", false, 0, "")
	if c.Proveedor.Telefono != "" {
		pdf.CellFormat(contentW, 5, tr("Teléfono: "+c.Proveedor.Telefono), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if len(c.Items) > 0 {
		col1 := contentW * 0.18
		col2 := contentW * 0.40
		col3 := contentW * 0.12
		col4 := contentW * 0.15
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(col1, 6, tr("Código"), "B", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, tr("Descripción"), "B", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 6, "Cant", "B", 0, "C", false, 0, "")
		pdf.CellFormat(col4, 6, "Costo", "B", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "Subtotal", "B", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, item := range c.Items {
			pdf.CellFormat(col1, 5, tr(item.Codigo), "", 0, "L", false, 0, "")
			pdf.CellFormat(col2, 5, tr(item.Nombre), "", 0, "L", false, 0, "")
			pdf.CellFormat(col3, 5, fmt.Sprintf("%d", item.Cantidad), "", 0, "C", false, 0, "")
			pdf.CellFormat(col4, 5, item.Costo.StringFixed(2), "", 0, "R", false, 0, "")
			pdf.CellFormat(col4, 5, item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
		}
	} else {
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(contentW, 5, tr(c.Descripcion), "", "L", false)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Total: "+c.Total.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Abonado: "+c.MontoAbonado.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW, 5, "Pendiente: "+c.SaldoPendiente.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW, 5, "Estado: "+string(c.Estado), "", 1, "R", false, 0, "")

	if len(c.HistorialAbonos) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, "Abonos", "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, abono := range c.HistorialAbonos {
			metodo := abono.MetodoPagoNombre
			if metodo == "" {
				metodo = abono.MetodoPago
			}
			pdf.CellFormat(contentW*0.3, 5, abono.Fecha.Format("02/01/2006"), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.45, 5, tr(metodo), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.25, 5, abono.Monto.StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write cuenta: %w", err)
	}
	return nil
}
