package form

import (
	"context"
	"errors"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jquevedomolina/Pumping-Station/internal/calc/pumping"
)

func fullForm() Map {
	return Map{
		ProjectName:         "Estación Norte",
		ProjectLocation:     "Valparaíso",
		GeometricHeight:     "20",
		GeometricHeightUnit: "m",
		FlowRate:            "50",
		FlowRateUnit:        "l/s",
		PipeLength:          "100",
		PipeLengthUnit:      "m",
		PipeDiameter:        "200",
		PipeDiameterUnit:    "mm",
		PipeMaterial:        "pvc",
		PumpEfficiency:      "75",
		ValveGate:           "2",
		ValveButterfly:      "0",
		ValveCheck:          "1",
		ValveGlobe:          "0",
		Elbow90:             "4",
		Elbow45:             "2",
	}
}

func TestCollectFullForm(t *testing.T) {
	got := Collect(fullForm())
	want := pumping.Request{
		ProjectName:         "Estación Norte",
		ProjectLocation:     "Valparaíso",
		GeometricHeight:     20,
		GeometricHeightUnit: "m",
		FlowRate:            50,
		FlowRateUnit:        "l/s",
		PipeLength:          100,
		PipeLengthUnit:      "m",
		PipeDiameter:        200,
		PipeDiameterUnit:    "mm",
		PipeMaterial:        "pvc",
		PumpEfficiency:      0.75,
		ValveGate:           2,
		ValveCheck:          1,
		Elbow90:             4,
		Elbow45:             2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collect mismatch (-want +got):\n%s", diff)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestCollectCountsFallBackToZero(t *testing.T) {
	m := fullForm()
	delete(m, ValveGate)
	m[ValveCheck] = "dos"
	m[Elbow90] = "3.7"
	m[Elbow45] = " 5 "

	got := Collect(m)
	if got.ValveGate != 0 {
		t.Errorf("missing valve_gate = %d, want 0", got.ValveGate)
	}
	if got.ValveCheck != 0 {
		t.Errorf("non-numeric valve_check = %d, want 0", got.ValveCheck)
	}
	if got.Elbow90 != 3 {
		t.Errorf("decimal elbow_90 = %d, want 3", got.Elbow90)
	}
	if got.Elbow45 != 5 {
		t.Errorf("padded elbow_45 = %d, want 5", got.Elbow45)
	}
}

func TestCollectCountsUseLeadingInteger(t *testing.T) {
	cases := map[string]int{
		"1e3":   1,
		"2abc":  2,
		"+4":    4,
		"-":     0,
		".5":    0,
		"12 ud": 12,
	}
	for raw, want := range cases {
		m := fullForm()
		m[ValveGate] = raw
		if got := Collect(m).ValveGate; got != want {
			t.Errorf("valve_gate %q = %d, want %d", raw, got, want)
		}
	}

	m := fullForm()
	m[ValveGate] = "99999999999999999999999"
	if got := Collect(m).ValveGate; got != 0 {
		t.Errorf("overflowing valve_gate = %d, want 0", got)
	}
}

func TestCollectFloatsPropagateNonFinite(t *testing.T) {
	m := fullForm()
	delete(m, FlowRate)
	m[PipeLength] = "abc"

	got := Collect(m)
	if !math.IsNaN(got.FlowRate) {
		t.Errorf("missing flow_rate = %v, want NaN", got.FlowRate)
	}
	if !math.IsNaN(got.PipeLength) {
		t.Errorf("non-numeric pipe_length = %v, want NaN", got.PipeLength)
	}

	var perr *pumping.ParseError
	if err := got.Validate(); !errors.As(err, &perr) || perr.Field != "flow_rate" {
		t.Errorf("Validate = %v, want ParseError on flow_rate", err)
	}
}

func TestValuesSnapshot(t *testing.T) {
	v := url.Values{}
	v.Add(FlowRate, "12.5")
	v.Add(FlowRate, "99")
	v.Set(PumpEfficiency, "80")

	s := Values(v)
	if got, ok := s.Value(FlowRate); !ok || got != "12.5" {
		t.Errorf("Value(flow_rate) = %q, %v; want first value", got, ok)
	}
	if _, ok := s.Value(PipeLength); ok {
		t.Error("Value(pipe_length) reported present")
	}

	req := Collect(s)
	if req.FlowRate != 12.5 || req.PumpEfficiency != 0.8 {
		t.Errorf("Collect(Values) = %+v", req)
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
project_name: Estación Norte
flow_rate: 50
flow_rate_unit: l/s
pump_efficiency: 75.0
valve_gate:
elbow_90: 4
`)
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := Map{
		ProjectName:    "Estación Norte",
		FlowRate:       "50",
		FlowRateUnit:   "l/s",
		PumpEfficiency: "75.0",
		Elbow90:        "4",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAMLRejectsNested(t *testing.T) {
	if _, err := Parse([]byte("flow_rate:\n  value: 50\n")); err == nil {
		t.Fatal("expected error for nested value")
	}
	if _, err := Parse([]byte("- a\n- b\n")); err == nil {
		t.Fatal("expected error for top-level sequence")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.yaml")
	if err := os.WriteFile(path, []byte("flow_rate: 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if m[FlowRate] != "42" {
		t.Errorf("flow_rate = %q, want 42", m[FlowRate])
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

// stubDriver answers prompts from a script keyed by message.
type stubDriver struct {
	answers map[string]string
	asked   []string
	failOn  string
}

func (s *stubDriver) answer(msg, def string) (string, error) {
	s.asked = append(s.asked, msg)
	if msg == s.failOn {
		return "", ErrAborted
	}
	if v, ok := s.answers[msg]; ok {
		return v, nil
	}
	return def, nil
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	v, err := s.answer(cfg.Message, cfg.Default)
	if err == nil && cfg.Validator != nil {
		if verr := cfg.Validator(v); verr != nil {
			return "", verr
		}
	}
	return v, err
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (string, error) {
	return s.answer(cfg.Message, cfg.Default)
}

func TestPromptCollectsEveryField(t *testing.T) {
	d := &stubDriver{answers: map[string]string{
		"Nombre del proyecto": "Planta Sur",
		"Caudal":              "35",
		"Unidad de caudal":    "m3/h",
		"Codos de 90°":        "6",
	}}
	m, err := Prompt(context.Background(), d)
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if len(d.asked) != len(Fields) {
		t.Errorf("asked %d prompts, want %d", len(d.asked), len(Fields))
	}
	for _, id := range Fields {
		if _, ok := m[id]; !ok {
			t.Errorf("field %s missing from prompt result", id)
		}
	}

	req := Collect(m)
	if req.ProjectName != "Planta Sur" || req.FlowRate != 35 || req.FlowRateUnit != "m3/h" || req.Elbow90 != 6 {
		t.Errorf("unexpected request %+v", req)
	}
	if req.PumpEfficiency != 0.75 {
		t.Errorf("default efficiency = %v, want 0.75", req.PumpEfficiency)
	}
}

func TestPromptAbort(t *testing.T) {
	d := &stubDriver{failOn: "Material de tubería"}
	_, err := Prompt(context.Background(), d)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("err = %v, want ErrAborted", err)
	}
}

func TestPromptValidatesNumbers(t *testing.T) {
	d := &stubDriver{answers: map[string]string{"Caudal": "mucho"}}
	if _, err := Prompt(context.Background(), d); err == nil {
		t.Fatal("expected validation error for non-numeric flow")
	}
	if err := validateCount("-1"); err == nil {
		t.Error("validateCount(-1) accepted")
	}
	if err := validateCount(""); err != nil {
		t.Errorf("validateCount(\"\") = %v", err)
	}
}
