package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/jquevedomolina/Pumping-Station/internal/calc/pumping"
	"github.com/jquevedomolina/Pumping-Station/internal/plot"
	"github.com/jquevedomolina/Pumping-Station/internal/present"
)

func TestWriteSummary(t *testing.T) {
	resp := pumping.Response{
		TotalHead:        24,
		GeometricHeight:  20,
		FrictionHeadLoss: 3,
		MinorHeadLoss:    1,
		FlowRate:         50,
		Reynolds:         318310,
		CurveEquation:    "H = 30 - 0.0015·Q²",
		PumpCurve:        []pumping.Sample{{FlowLS: 0, Head: 30}, {FlowLS: 100, Head: 15}},
	}
	curves, err := pumping.Synthesize(resp)
	if err != nil {
		t.Fatal(err)
	}
	r := plot.NewRenderer(nil, 600, 320)
	inst, err := r.Render(curves)
	if err != nil {
		t.Fatal(err)
	}
	png, err := inst.PNG()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	err = Write(&buf, Summary{
		Request:  pumping.Request{ProjectName: "Estación Norte", FlowRate: 50, FlowRateUnit: "l/s", PumpEfficiency: 0.75},
		Items:    present.New("es").Items(resp),
		ChartPNG: png,
		Date:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", buf.Bytes()[:min(16, buf.Len())])
	}
}

func TestWriteSummaryWithoutChart(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Summary{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty output")
	}
}

func TestDecimal(t *testing.T) {
	eff, a, b := 0.7, 0.1, 0.2
	cases := []struct {
		in   float64
		want string
	}{
		{eff * 100, "70"},
		{a + b, "0.3"},
		{200, "200"},
		{1.25, "1.25"},
	}
	if eff*100 == 70 {
		t.Fatal("expected float noise in 0.7*100")
	}
	for _, c := range cases {
		if got := decimal(c.in); got != c.want {
			t.Errorf("decimal(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
