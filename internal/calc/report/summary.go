// Package report writes the local summary PDF of one computation.
package report

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/jquevedomolina/Pumping-Station/internal/calc/pumping"
	"github.com/jquevedomolina/Pumping-Station/internal/present"
)

const DefaultTitle = "Reporte de Estación de Bombeo"

// Summary is everything printed on the page. ChartPNG may be empty.
type Summary struct {
	Title    string
	Request  pumping.Request
	Items    []present.Item
	ChartPNG []byte
	Date     time.Time
}

// Write renders s as a one-page A4 PDF.
func Write(w io.Writer, s Summary) error {
	if s.Title == "" {
		s.Title = DefaultTitle
	}
	if s.Date.IsZero() {
		s.Date = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(s.Title))
	pdf.Ln(12)

	req := s.Request
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		fmt.Sprintf("Proyecto: %s", req.ProjectName),
		fmt.Sprintf("Ubicación: %s", req.ProjectLocation),
		fmt.Sprintf("Fecha: %s", s.Date.Format("2006-01-02")),
	} {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	section(pdf, tr, "Datos de entrada")
	rows := [][2]string{
		{"Altura geométrica", decimal(req.GeometricHeight) + " " + req.GeometricHeightUnit},
		{"Caudal", decimal(req.FlowRate) + " " + req.FlowRateUnit},
		{"Longitud de tubería", decimal(req.PipeLength) + " " + req.PipeLengthUnit},
		{"Diámetro de tubería", decimal(req.PipeDiameter) + " " + req.PipeDiameterUnit},
		{"Material", req.PipeMaterial},
		{"Eficiencia de la bomba", decimal(req.PumpEfficiency*100) + " %"},
		{"Accesorios", fmt.Sprintf("compuerta %d, mariposa %d, check %d, globo %d, codo 90° %d, codo 45° %d",
			req.ValveGate, req.ValveButterfly, req.ValveCheck, req.ValveGlobe, req.Elbow90, req.Elbow45)},
	}
	table(pdf, tr, rows)

	if len(s.Items) > 0 {
		section(pdf, tr, "Resultados")
		rows = rows[:0]
		for _, it := range s.Items {
			rows = append(rows, [2]string{it.Label, it.Text})
		}
		table(pdf, tr, rows)
	}

	if len(s.ChartPNG) > 0 {
		section(pdf, tr, "Curvas")
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		pdf.RegisterImageOptionsReader("chart", opts, bytes.NewReader(s.ChartPNG))
		pdf.ImageOptions("chart", 10, pdf.GetY()+2, 190, 0, false, opts, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("building summary: %w", err)
	}
	return pdf.Output(w)
}

// decimal prints v with at most six decimals and no trailing zeros, so
// 0.7*100 reads 70 rather than 70.00000000000001.
func decimal(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, tr(title))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
}

func table(pdf *gofpdf.Fpdf, tr func(string) string, rows [][2]string) {
	for _, r := range rows {
		pdf.CellFormat(60, 6, tr(r[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(130, 6, tr(r[1]), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}
