// Package plot draws the pump and system curves and owns the live chart.
package plot

import (
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jquevedomolina/Pumping-Station/internal/calc/pumping"
)

// Series names. Anything carrying ReferencePrefix is drawn but left out of
// the legend.
const (
	PumpSeries      = "Curva de la Bomba"
	SystemSeries    = "Curva del Sistema"
	OperatingSeries = "Punto de Operación"
	ReferencePrefix = "Línea de Referencia"
	HorizontalRef   = ReferencePrefix + " Horizontal"
	VerticalRef     = ReferencePrefix + " Vertical"

	FlowAxis = "Caudal (l/s)"
	HeadAxis = "Altura (m)"
)

var (
	pumpColor      = drawing.ColorFromHex("3b82f6")
	pumpFill       = drawing.ColorFromHex("3b82f6").WithAlpha(48)
	systemColor    = drawing.ColorFromHex("ef4444")
	operatingColor = drawing.ColorFromHex("10b981")
	referenceColor = drawing.ColorFromHex("6b7280")

	dashed = []float64{5, 5}
)

// pointStyle renders points only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    7,
		DotColor:    col,
	}
}

func dashedStyle(col drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeColor:     col,
		StrokeWidth:     width,
		StrokeDashArray: dashed,
	}
}

// Build assembles the five-series chart for one set of curves. Width and
// height are in pixels.
func Build(c pumping.Curves, width, height int) chart.Chart {
	px, py := split(c.Pump)
	sx, sy := split(c.System)
	hx, hy := split(c.Horizontal[:])
	vx, vy := split(c.Vertical[:])

	ch := chart.Chart{
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: FlowAxis},
		YAxis:      chart.YAxis{Name: HeadAxis},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    PumpSeries,
				XValues: px,
				YValues: py,
				Style: chart.Style{
					StrokeColor: pumpColor,
					StrokeWidth: 2,
					FillColor:   pumpFill,
				},
			},
			chart.ContinuousSeries{
				Name:    SystemSeries,
				XValues: sx,
				YValues: sy,
				Style:   dashedStyle(systemColor, 2),
			},
			chart.ContinuousSeries{
				Name:    OperatingSeries,
				XValues: []float64{c.Operating.Flow},
				YValues: []float64{c.Operating.Head},
				Style:   pointStyle(operatingColor),
			},
			chart.ContinuousSeries{
				Name:    HorizontalRef,
				XValues: hx,
				YValues: hy,
				Style:   dashedStyle(referenceColor, 1),
			},
			chart.ContinuousSeries{
				Name:    VerticalRef,
				XValues: vx,
				YValues: vy,
				Style:   dashedStyle(referenceColor, 1),
			},
		},
	}
	attachLegend(&ch)
	return ch
}

// attachLegend adds a legend built from a copy of the chart holding only the
// series that should be listed.
func attachLegend(ch *chart.Chart) {
	listed := *ch
	listed.Series = LegendSeries(ch.Series)
	ch.Elements = []chart.Renderable{chart.Legend(&listed)}
}

// LegendSeries filters out the reference lines.
func LegendSeries(all []chart.Series) []chart.Series {
	out := make([]chart.Series, 0, len(all))
	for _, s := range all {
		if strings.Contains(s.GetName(), ReferencePrefix) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func split(pts []pumping.Point) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.Flow
		ys[i] = p.Head
	}
	return xs, ys
}
