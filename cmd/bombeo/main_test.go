package main

import (
	"bytes"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const calcBody = `{"total_head":24,"geometric_height":20,"friction_head_loss":3,"minor_head_loss":1,
"power_kw":15.7,"power_hp":21.05,"velocity":1.59,"reynolds":318310,"friction_factor":0.0163,
"flow_rate":50,"curve_equation":"H = 30 - 0.0015·Q²",
"pump_curve":[{"flow_ls":0,"head":30},{"flow_ls":50,"head":25},{"flow_ls":100,"head":15}]}`

const formYAML = `project_name: Estación Norte
geometric_height: 20
geometric_height_unit: m
flow_rate: 50
flow_rate_unit: l/s
pipe_length: 100
pipe_length_unit: m
pipe_diameter: 200
pipe_diameter_unit: mm
pipe_material: pvc
pump_efficiency: 75
elbow_90: 2
`

func serviceStub(t *testing.T, calcStatus int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/calculate":
			if calcStatus != http.StatusOK {
				w.WriteHeader(calcStatus)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, calcBody)
		case "/generate-report":
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, "%PDF-1.4 report")
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeForm(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "form.yaml")
	if err := os.WriteFile(path, []byte(formYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCalcCommand(t *testing.T) {
	srv := serviceStub(t, http.StatusOK)
	dir := t.TempDir()
	chart := filepath.Join(dir, "curvas.png")
	summary := filepath.Join(dir, "resumen.pdf")

	out, _, err := run(t, "calc", writeForm(t), "--service", srv.URL, "--locale", "es",
		"--chart", chart, "--summary", summary)
	if err != nil {
		t.Fatalf("calc: %v", err)
	}
	for _, want := range []string{"24 m", "15.7 kW (21.05 HP)", "318.310"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	f, err := os.Open(chart)
	if err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("chart is not a PNG: %v", err)
	}
	pdf, err := os.ReadFile(summary)
	if err != nil || !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Errorf("summary not written: %v", err)
	}
}

func TestCalcCommandServiceError(t *testing.T) {
	srv := serviceStub(t, http.StatusInternalServerError)
	out, stderr, err := run(t, "calc", writeForm(t), "--service", srv.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(out, " m\n") {
		t.Errorf("results printed on failure:\n%s", out)
	}
	if !strings.Contains(stderr, "Error al realizar el cálculo") {
		t.Errorf("notice missing from stderr:\n%s", stderr)
	}
}

func TestReportCommand(t *testing.T) {
	srv := serviceStub(t, http.StatusOK)
	dir := t.TempDir()
	if _, _, err := run(t, "report", writeForm(t), "--service", srv.URL, "--dir", dir); err != nil {
		t.Fatalf("report: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "reporte_bombeo.pdf"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "%PDF-1.4 report" {
		t.Errorf("report = %q", got)
	}
}

func TestBatchCommand(t *testing.T) {
	srv := serviceStub(t, http.StatusOK)
	dir := t.TempDir()
	in := filepath.Join(dir, "in.xlsx")
	out := filepath.Join(dir, "out.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []interface{}{"project_name", "geometric_height", "flow_rate", "pipe_length", "pipe_diameter", "pump_efficiency"}
	row1 := []interface{}{"Norte", 20, 50, 100, 200, 75}
	row2 := []interface{}{"Sur", 20, "", 100, 200, 75}
	f.SetSheetRow(sheet, "A1", &header)
	f.SetSheetRow(sheet, "A2", &row1)
	f.SetSheetRow(sheet, "A3", &row2)
	if err := f.SaveAs(in); err != nil {
		t.Fatal(err)
	}
	f.Close()

	stdout, _, err := run(t, "batch", in, "--out", out, "--service", srv.URL)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if !strings.Contains(stdout, "2 formularios, 1 con error") {
		t.Errorf("stdout = %q", stdout)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("results not written: %v", err)
	}
}
