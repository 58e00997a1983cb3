package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// landscapeColumns is the column count from which tables switch to landscape.
const landscapeColumns = 6

// PDFExporter renders datasets into a basic tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType implements Renderer.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension implements Renderer.
func (e *PDFExporter) Extension() string { return "pdf" }

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	orientation, width := "P", 190.0
	if len(data.Headers) >= landscapeColumns {
		orientation, width = "L", 277.0
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 9)
	colWidth := width / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, tr(row[header]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
