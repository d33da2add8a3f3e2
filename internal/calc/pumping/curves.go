package pumping

import (
	"errors"
	"math"
)

// SystemCurveSteps is the number of intervals the system curve is sampled on;
// the curve has SystemCurveSteps+1 points.
const SystemCurveSteps = 20

var (
	// ErrDegenerateFlow is returned when the operating flow cannot anchor a
	// system curve (zero, negative or non-finite).
	ErrDegenerateFlow = errors.New("operating flow must be a positive finite number")
	// ErrShortPumpCurve is returned when the service sent fewer than two samples.
	ErrShortPumpCurve = errors.New("pump curve needs at least two samples")
)

// Curves is everything the chart needs for one render pass.
type Curves struct {
	Pump       []Point
	System     []Point
	Operating  Point
	Horizontal [2]Point
	Vertical   [2]Point
	// K is the lumped resistance in H = geometric_height + K·Q².
	K float64
}

// Synthesize derives the system curve and the operating-point cross-hairs from
// a compute response.
//
// The system curve is a single-point quadratic fit: all losses are assumed to
// scale with Q², so the curve is exact at the operating flow only.
func Synthesize(resp Response) (Curves, error) {
	if len(resp.PumpCurve) < 2 {
		return Curves{}, ErrShortPumpCurve
	}
	q := resp.FlowRate
	if !finite(q) || q <= 0 {
		return Curves{}, ErrDegenerateFlow
	}
	if !finite(resp.TotalHead) || !finite(resp.GeometricHeight) ||
		!finite(resp.FrictionHeadLoss) || !finite(resp.MinorHeadLoss) {
		return Curves{}, ErrDegenerateFlow
	}

	pump := make([]Point, len(resp.PumpCurve))
	maxFlow := math.Inf(-1)
	for i, s := range resp.PumpCurve {
		pump[i] = Point{Flow: s.FlowLS, Head: s.Head}
		if s.FlowLS > maxFlow {
			maxFlow = s.FlowLS
		}
	}

	k := (resp.FrictionHeadLoss + resp.MinorHeadLoss) / (q * q)

	system := make([]Point, 0, SystemCurveSteps+1)
	for i := 0; i <= SystemCurveSteps; i++ {
		flow := float64(i) / SystemCurveSteps * maxFlow
		system = append(system, Point{Flow: flow, Head: resp.GeometricHeight + k*flow*flow})
	}

	op := Point{Flow: q, Head: resp.TotalHead}
	return Curves{
		Pump:       pump,
		System:     system,
		Operating:  op,
		Horizontal: [2]Point{{Flow: 0, Head: op.Head}, {Flow: op.Flow, Head: op.Head}},
		Vertical:   [2]Point{{Flow: op.Flow, Head: 0}, {Flow: op.Flow, Head: op.Head}},
		K:          k,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
