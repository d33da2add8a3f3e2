package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jquevedomolina/Pumping-Station/internal/calc/pumping"
)

func sampleRequest() pumping.Request {
	return pumping.Request{
		ProjectName:         "Estación Norte",
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
		Elbow90:             2,
	}
}

func TestCalculate(t *testing.T) {
	want := pumping.Response{
		TotalHead:        24,
		GeometricHeight:  20,
		FrictionHeadLoss: 3,
		MinorHeadLoss:    1,
		FlowRate:         50,
		Reynolds:         318310,
		CurveEquation:    "H = 30 - 0.0015·Q²",
		PumpCurve:        []pumping.Sample{{FlowLS: 0, Head: 30}, {FlowLS: 100, Head: 15}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != CalculatePath {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var got map[string]any
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if got["flow_rate_unit"] != "l/s" || got["elbow_90"] != float64(2) || got["pump_efficiency"] != 0.75 {
			t.Errorf("unexpected body %v", got)
		}
		json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	got, err := c.Calculate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestCalculateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Calculate(context.Background(), sampleRequest())
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *ServiceError", err)
	}
	if se.StatusCode != http.StatusInternalServerError || se.Endpoint != CalculatePath {
		t.Errorf("ServiceError = %+v", se)
	}
}

func TestCalculateErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": "division by zero"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Calculate(context.Background(), sampleRequest())
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *ServiceError", err)
	}
	if se.StatusCode != http.StatusOK || se.Message != "division by zero" {
		t.Errorf("ServiceError = %+v", se)
	}
}

func TestCalculateDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway</html>"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Calculate(context.Background(), sampleRequest())
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *DecodeError", err)
	}
}

func TestCalculateRejectsNonFiniteBody(t *testing.T) {
	req := sampleRequest()
	req.FlowRate = math.NaN()
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, time.Second).Calculate(context.Background(), req); err == nil {
		t.Fatal("expected encoding error")
	}
	if called {
		t.Error("request dispatched with a non-finite field")
	}
}

func TestCalculateCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewClient(srv.URL, time.Second).Calculate(ctx, sampleRequest()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestGenerateReport(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ReportPath {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, time.Second).GenerateReport(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("GenerateReport: %v", err)
	}
	if string(got) != string(pdf) {
		t.Errorf("blob = %q", got)
	}
}

func TestGenerateReportFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
		message string
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			status: http.StatusBadGateway,
		},
		{
			name: "json envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.Write([]byte(`{"error": "Error generando PDF: sin fuentes"}`))
			},
			status:  http.StatusOK,
			message: "Error generando PDF: sin fuentes",
		},
		{
			name: "detail",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(`{"detail": "flow_rate invalid"}`))
			},
			status:  http.StatusUnprocessableEntity,
			message: "flow_rate invalid",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).GenerateReport(context.Background(), sampleRequest())
			var se *ServiceError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *ServiceError", err)
			}
			if se.StatusCode != tt.status || se.Message != tt.message || se.Endpoint != ReportPath {
				t.Errorf("ServiceError = %+v", se)
			}
		})
	}
}
