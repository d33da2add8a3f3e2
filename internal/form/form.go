// Package form turns a snapshot of the calculator form into a typed request.
package form

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/jquevedomolina/Pumping-Station/internal/calc/pumping"
)

// Field identifiers shared by every host.
const (
	ProjectName         = "project_name"
	ProjectLocation     = "project_location"
	GeometricHeight     = "geometric_height"
	GeometricHeightUnit = "geometric_height_unit"
	FlowRate            = "flow_rate"
	FlowRateUnit        = "flow_rate_unit"
	PipeLength          = "pipe_length"
	PipeLengthUnit      = "pipe_length_unit"
	PipeDiameter        = "pipe_diameter"
	PipeDiameterUnit    = "pipe_diameter_unit"
	PipeMaterial        = "pipe_material"
	PumpEfficiency      = "pump_efficiency" // percent in the form
	ValveGate           = "valve_gate"
	ValveButterfly      = "valve_butterfly"
	ValveCheck          = "valve_check"
	ValveGlobe          = "valve_globe"
	Elbow90             = "elbow_90"
	Elbow45             = "elbow_45"
)

// Fields lists every identifier in form order.
var Fields = []string{
	ProjectName, ProjectLocation,
	GeometricHeight, GeometricHeightUnit,
	FlowRate, FlowRateUnit,
	PipeLength, PipeLengthUnit,
	PipeDiameter, PipeDiameterUnit,
	PipeMaterial, PumpEfficiency,
	ValveGate, ValveButterfly, ValveCheck, ValveGlobe, Elbow90, Elbow45,
}

// Snapshot is the current form state handed over by a host.
type Snapshot interface {
	Value(id string) (string, bool)
}

// Map is a Snapshot over a plain map.
type Map map[string]string

func (m Map) Value(id string) (string, bool) {
	v, ok := m[id]
	return v, ok
}

// Values adapts url.Values (a parsed form post) to a Snapshot.
type Values url.Values

func (v Values) Value(id string) (string, bool) {
	vals, ok := v[id]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Collect reads the snapshot into a request. Float fields that fail to parse
// become NaN and are left for Request.Validate to reject; fitting counts
// fall back to 0.
func Collect(s Snapshot) pumping.Request {
	return pumping.Request{
		ProjectName:         text(s, ProjectName),
		ProjectLocation:     text(s, ProjectLocation),
		GeometricHeight:     number(s, GeometricHeight),
		GeometricHeightUnit: text(s, GeometricHeightUnit),
		FlowRate:            number(s, FlowRate),
		FlowRateUnit:        text(s, FlowRateUnit),
		PipeLength:          number(s, PipeLength),
		PipeLengthUnit:      text(s, PipeLengthUnit),
		PipeDiameter:        number(s, PipeDiameter),
		PipeDiameterUnit:    text(s, PipeDiameterUnit),
		PipeMaterial:        text(s, PipeMaterial),
		PumpEfficiency:      number(s, PumpEfficiency) / 100,

		ValveGate:      count(s, ValveGate),
		ValveButterfly: count(s, ValveButterfly),
		ValveCheck:     count(s, ValveCheck),
		ValveGlobe:     count(s, ValveGlobe),
		Elbow90:        count(s, Elbow90),
		Elbow45:        count(s, Elbow45),
	}
}

func text(s Snapshot, id string) string {
	v, _ := s.Value(id)
	return v
}

func number(s Snapshot, id string) float64 {
	raw, ok := s.Value(id)
	if !ok {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// count parses a fitting count from its leading integer: "3.7" and "3 uds"
// give 3, "1e3" gives 1. Anything without leading digits gives 0.
func count(s Snapshot, id string) int {
	raw, ok := s.Value(id)
	if !ok {
		return 0
	}
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		// Out of int range.
		return 0
	}
	return n
}
