package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"Structura/internal/calc/analysis"
	"Structura/internal/calc/field"
	"Structura/internal/calc/safety"

	"github.com/phpdave11/gofpdf"
)

const defaultTitle = "Structural & Energy Analysis Report"

type Meta struct {
	Title  string
	Author string
	Date   time.Time
}

// Render writes a PDF with one section per evaluator.
func Render(out io.Writer, meta Meta, req analysis.Request, res analysis.Response) error {
	if meta.Title == "" {
		meta.Title = defaultTitle
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(meta.Title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	if meta.Author != "" {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Author: %s", meta.Author)))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", meta.Date.Format("2006-01-02")))
	pdf.Ln(10)

	section(pdf, "Structural Safety")
	p := safety.Normalize(req.Safety)
	line(pdf, tr, fmt.Sprintf("Span: %s m, depth: %s m, material: %s, floors: %.0f",
		field.Format(p.SpanM), field.Format(p.DepthM), p.Material, p.Floors))
	line(pdf, tr, "Status: "+res.Safety.Status)
	if res.Safety.Message != "" {
		line(pdf, tr, res.Safety.Message)
	}
	for _, e := range res.Safety.Errors {
		line(pdf, tr, "- "+e)
	}

	section(pdf, "Components")
	if len(res.Components) == 0 {
		line(pdf, tr, "No components supplied.")
	}
	names := make([]string, 0, len(res.Components))
	for name := range res.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		line(pdf, tr, fmt.Sprintf("%s: %s", name, res.Components[name]))
	}

	section(pdf, "Energy")
	e := res.Energy
	line(pdf, tr, fmt.Sprintf("Annual energy: %s kWh", field.Format(e.AnnualEnergyKWh)))
	line(pdf, tr, fmt.Sprintf("SAP rating: %s (%s)", field.Format(e.SAPRating), e.Category))
	line(pdf, tr, e.Advice)

	return pdf.Output(out)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
}

func line(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.MultiCell(0, 6, tr(text), "", "L", false)
}
