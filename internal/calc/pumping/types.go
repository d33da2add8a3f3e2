package pumping

import (
	"fmt"
	"math"
)

// Request is the payload sent to both service endpoints. Unit tags travel as
// separate *_unit strings and are passed through untouched.
type Request struct {
	ProjectName         string  `json:"project_name"`
	ProjectLocation     string  `json:"project_location"`
	GeometricHeight     float64 `json:"geometric_height"`
	GeometricHeightUnit string  `json:"geometric_height_unit"`
	FlowRate            float64 `json:"flow_rate"`
	FlowRateUnit        string  `json:"flow_rate_unit"`
	PipeLength          float64 `json:"pipe_length"`
	PipeLengthUnit      string  `json:"pipe_length_unit"`
	PipeDiameter        float64 `json:"pipe_diameter"`
	PipeDiameterUnit    string  `json:"pipe_diameter_unit"`
	PipeMaterial        string  `json:"pipe_material"`
	PumpEfficiency      float64 `json:"pump_efficiency"` // fraction in [0,1]

	ValveGate      int `json:"valve_gate"`
	ValveButterfly int `json:"valve_butterfly"`
	ValveCheck     int `json:"valve_check"`
	ValveGlobe     int `json:"valve_globe"`
	Elbow90        int `json:"elbow_90"`
	Elbow45        int `json:"elbow_45"`
}

// ParseError reports a numeric request field that is missing or non-numeric.
type ParseError struct {
	Field string
	Value float64
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("field %s is not a finite number (%v)", e.Field, e.Value)
}

// Validate checks that every float field is finite. Ranges are left to the
// service.
func (r Request) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"geometric_height", r.GeometricHeight},
		{"flow_rate", r.FlowRate},
		{"pipe_length", r.PipeLength},
		{"pipe_diameter", r.PipeDiameter},
		{"pump_efficiency", r.PumpEfficiency},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ParseError{Field: f.name, Value: f.value}
		}
	}
	return nil
}

// Sample is one point of the pump curve as returned by the service.
type Sample struct {
	FlowLS  float64 `json:"flow_ls"`
	Head    float64 `json:"head"`
	FlowM3S float64 `json:"flow,omitempty"`
}

// Response is the result of one compute call. FlowRate is already in l/s.
type Response struct {
	TotalHead        float64  `json:"total_head"`
	GeometricHeight  float64  `json:"geometric_height"`
	FrictionHeadLoss float64  `json:"friction_head_loss"`
	MinorHeadLoss    float64  `json:"minor_head_loss"`
	PowerKW          float64  `json:"power_kw"`
	PowerHP          float64  `json:"power_hp"`
	Velocity         float64  `json:"velocity"`
	Reynolds         float64  `json:"reynolds"`
	FrictionFactor   float64  `json:"friction_factor"`
	FlowRate         float64  `json:"flow_rate"`
	FlowRateM3S      float64  `json:"flow_rate_m3s,omitempty"`
	BEPFlowLS        float64  `json:"bep_flow_ls,omitempty"`
	PumpCurve        []Sample `json:"pump_curve"`
	CurveEquation    string   `json:"curve_equation"`

	// Error is set by the service, with a 200 status, when its own computation fails.
	Error string `json:"error,omitempty"`
}

// Point is a (flow, head) pair on the chart, flow in l/s and head in m.
type Point struct {
	Flow float64
	Head float64
}
