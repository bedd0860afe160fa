package infra

// pdf.go: receipts rendered with go-pdf/fpdf on thermal-paper sized pages:
//   - ticket_<numero>.pdf     for a confirmed sale
//   - recibo_<pago_id>.pdf    for a payment against a credit sale

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReciboPago is the data printed on a payment receipt.
type ReciboPago struct {
	PagoID      string
	Negocio     string
	Cliente     string
	NumeroVenta int64
	Monto       decimal.Decimal
	Saldo       decimal.Decimal
	MetodoPago  string
	Fecha       time.Time
}

type recibo struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	pageW    float64
	contentW float64
}

// ~74mm wide thermal paper
func nuevoRecibo(alto float64) *recibo {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: alto},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	// Core fonts are cp1252; accents and "N°" need translating.
	return &recibo{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), pageW: pageW, contentW: pageW - 8}
}

func (r *recibo) encabezado(negocio, titulo string) {
	r.pdf.SetFont("Helvetica", "B", 13)
	r.pdf.CellFormat(r.contentW, 7, r.tr(negocio), "", 1, "C", false, 0, "")
	r.pdf.SetFont("Helvetica", "", 8)
	r.pdf.CellFormat(r.contentW, 5, r.tr(titulo), "", 1, "C", false, 0, "")
	r.pdf.Ln(2)
}

func (r *recibo) separador() {
	r.pdf.Ln(2)
	r.pdf.Line(4, r.pdf.GetY(), r.pageW-4, r.pdf.GetY())
	r.pdf.Ln(2)
}

func (r *recibo) fila(etiqueta, valor string, bold bool) {
	estilo := ""
	alto := 5.0
	if bold {
		estilo = "B"
		alto = 6
	}
	r.pdf.SetFont("Helvetica", estilo, 8)
	r.pdf.CellFormat(r.contentW*0.6, alto, r.tr(etiqueta), "", 0, "L", false, 0, "")
	r.pdf.CellFormat(r.contentW*0.4, alto, r.tr(valor), "", 1, "R", false, 0, "")
}

func (r *recibo) guardar(dir, nombre string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	path := filepath.Join(dir, nombre)
	if err := r.pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return path, nil
}

func pesos(d decimal.Decimal) string { return "$" + d.StringFixed(2) }

// GenerateTicketPDF renders the receipt of a confirmed sale. venta.Detalles
// should be loaded with their Producto for names to show.
func GenerateTicketPDF(venta *model.Venta, negocio, storagePath string) (string, error) {
	r := nuevoRecibo(105 + float64(len(venta.Detalles))*5)
	r.encabezado(negocio, "Comprobante de Compra")

	r.pdf.SetFont("Helvetica", "B", 8)
	r.pdf.CellFormat(r.contentW, 5, r.tr(fmt.Sprintf("Venta N° %d", venta.Numero)), "", 1, "L", false, 0, "")
	r.pdf.SetFont("Helvetica", "", 7)
	r.pdf.CellFormat(r.contentW, 4, venta.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	r.separador()

	col1, col2, col3 := r.contentW*0.52, r.contentW*0.16, r.contentW*0.32
	r.pdf.SetFont("Helvetica", "B", 7)
	r.pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	r.pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	r.pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	r.pdf.SetFont("Helvetica", "", 7)
	for _, d := range venta.Detalles {
		nombre := d.ProductoID.String()[:8]
		if d.Producto != nil {
			nombre = d.Producto.Nombre
		}
		if len(nombre) > 22 {
			nombre = nombre[:21] + "..."
		}
		r.pdf.CellFormat(col1, 5, r.tr(nombre), "", 0, "L", false, 0, "")
		r.pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", d.Cantidad), "", 0, "C", false, 0, "")
		r.pdf.CellFormat(col3, 5, pesos(d.Subtotal), "", 1, "R", false, 0, "")
	}
	r.separador()
	r.fila("TOTAL:", pesos(venta.Total), true)

	r.pdf.Ln(3)
	r.pdf.SetFont("Helvetica", "I", 7)
	r.pdf.CellFormat(r.contentW, 4, r.tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	return r.guardar(storagePath, fmt.Sprintf("ticket_%d.pdf", venta.Numero))
}

// GenerateReciboPagoPDF renders the receipt handed to a customer after a
// payment against a credit sale.
func GenerateReciboPagoPDF(rp ReciboPago, storagePath string) (string, error) {
	r := nuevoRecibo(90)
	r.encabezado(rp.Negocio, "Recibo de Pago")

	r.fila("Cliente:", rp.Cliente, false)
	r.fila("Venta N°:", fmt.Sprintf("%d", rp.NumeroVenta), false)
	r.fila("Fecha:", rp.Fecha.Format("02/01/2006  15:04"), false)
	if rp.MetodoPago != "" {
		r.fila("Método:", rp.MetodoPago, false)
	}
	r.separador()
	r.fila("PAGADO:", pesos(rp.Monto), true)
	if rp.Saldo.IsPositive() {
		r.fila("Saldo pendiente:", pesos(rp.Saldo), false)
	} else {
		r.fila("Deuda saldada", "", false)
	}

	return r.guardar(storagePath, "recibo_"+rp.PagoID+".pdf")
}
