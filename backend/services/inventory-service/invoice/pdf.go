package invoice

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// ContentType of rendered invoices.
const ContentType = "application/pdf"

// Renderer draws a Layout into a document.
type Renderer interface {
	Render(l Layout) ([]byte, error)
}

var columnWidths = []float64{50, 40, 50, 50}

// PDFRenderer renders A4 portrait invoices with fpdf.
type PDFRenderer struct{}

func (PDFRenderer) Render(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := draw(l).Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", l.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

// draw lays out every page of l; the footer repeats at the bottom of each.
func draw(l Layout) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(l.GeneratedAt)
	pdf.SetModificationDate(l.GeneratedAt)
	pdf.SetTitle(l.InvoiceNumber, false)
	pdf.SetAuthor(l.Organization, false)
	pdf.SetAutoPageBreak(true, 30)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-25)
		pdf.SetDrawColor(180, 180, 180)
		pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		for _, line := range l.Footer {
			pdf.CellFormat(0, 8, line, "", 1, "C", false, 0, "")
		}
	})
	pdf.AddPage()

	pdf.SetFillColor(44, 62, 80)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(190, 14, l.Organization, "", 1, "C", true, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(95, 7, "Invoice #: "+l.InvoiceNumber, "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, "Date: "+l.Date, "", 1, "R", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(190, 8, "Invoice Details", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(190, 6, "Order ID: "+l.OrderRef, "", 1, "L", false, 0, "")
	pdf.CellFormat(190, 6, "Warehouse ID: "+l.WarehouseID, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFillColor(41, 128, 185)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	for i, h := range l.Headers {
		pdf.CellFormat(columnWidths[i], 9, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range l.Rows {
		if r.Shaded {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		for i, v := range []string{r.ProductID, r.Quantity, r.UnitPrice, r.LineTotal} {
			pdf.CellFormat(columnWidths[i], 8, v, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(236, 240, 241)
	pdf.CellFormat(140, 9, "Grand Total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(50, 9, l.GrandTotal, "1", 1, "C", true, 0, "")
	return pdf
}

// Document is a rendered invoice ready for upload.
type Document struct {
	Name   string
	Body   []byte
	Layout Layout
}

// Generator stamps a snapshot with the current time and renders it.
type Generator struct {
	renderer Renderer
	opts     Options
	now      func() time.Time
}

func NewGenerator(opts Options) *Generator {
	return &Generator{renderer: PDFRenderer{}, opts: opts, now: time.Now}
}

// NewGeneratorWith lets tests pin the clock or swap the renderer.
func NewGeneratorWith(r Renderer, opts Options, now func() time.Time) *Generator {
	return &Generator{renderer: r, opts: opts, now: now}
}

func (g *Generator) Generate(s Snapshot) (*Document, error) {
	layout := BuildLayout(s, g.now().UTC().Truncate(time.Second), g.opts)
	body, err := g.renderer.Render(layout)
	if err != nil {
		return nil, err
	}
	return &Document{Name: BlobName(s.OrderID), Body: body, Layout: layout}, nil
}
