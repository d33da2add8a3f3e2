// Package web serves the calculator page and drives the station from form
// posts.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/jquevedomolina/Pumping-Station/internal/calc/pumping"
	"github.com/jquevedomolina/Pumping-Station/internal/calc/report"
	"github.com/jquevedomolina/Pumping-Station/internal/download"
	"github.com/jquevedomolina/Pumping-Station/internal/form"
	"github.com/jquevedomolina/Pumping-Station/internal/logx"
	"github.com/jquevedomolina/Pumping-Station/internal/orchestrator"
)

//go:embed templates/index.html
var templates embed.FS

var selectOptions = map[string][]string{
	form.GeometricHeightUnit: form.HeightUnits,
	form.FlowRateUnit:        form.FlowUnits,
	form.PipeLengthUnit:      form.LengthUnits,
	form.PipeDiameterUnit:    form.DiameterUnits,
	form.PipeMaterial:        form.PipeMaterials,
}

var indexTmpl = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"options": func(id string) []string { return selectOptions[id] },
	"ms":      func(d time.Duration) int64 { return d.Milliseconds() },
	"args":    func(v View, id, label string) fieldArgs { return fieldArgs{Page: v, ID: id, Label: label} },
}).ParseFS(templates, "templates/index.html"))

type fieldArgs struct {
	Page      View
	ID, Label string
}

type Handler struct {
	Station *orchestrator.Station
	Page    *Page
}

// NewRouter wires the page routes. limiter may be nil.
func NewRouter(h *Handler, limiter *IPRateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Health).Methods("GET")
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/chart.png", h.Chart).Methods("GET")
	r.HandleFunc("/summary.pdf", h.Summary).Methods("GET")
	r.HandleFunc("/api/state", h.State).Methods("GET")
	r.HandleFunc("/notices/{id:[0-9]+}/dismiss", h.Dismiss).Methods("POST")

	submit := r.NewRoute().Subrouter()
	if limiter != nil {
		submit.Use(limiter.LimitMiddleware)
	}
	submit.HandleFunc("/calculate", h.Calculate).Methods("POST")
	submit.HandleFunc("/generate-report", h.Report).Methods("POST")
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, h.Page.View()); err != nil {
		logx.Errorf("rendering page: %v", err)
		http.Error(w, "Page rendering error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Page.View())
}

// Calculate runs a compute submission from a form post. Browsers are sent
// back to the page; JSON clients get the resulting page state.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.readForm(w, r)
	if !ok {
		return
	}
	req := form.Collect(snap)
	_, err := h.Station.SubmitCompute(r.Context(), req)
	if !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, statusFor(err), h.Page.View())
}

// Report streams the service's report as reporte_bombeo.pdf. On failure the
// alert is shown on the page.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.readForm(w, r)
	if !ok {
		return
	}
	err := h.Station.SubmitReport(r.Context(), form.Collect(snap), download.AttachmentSink{W: w})
	if err == nil {
		return
	}
	if !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	inst := h.Page.Chart()
	if inst == nil {
		http.NotFound(w, r)
		return
	}
	png, err := inst.PNG()
	if err != nil {
		// Replaced between lookup and read.
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

// Summary renders the local summary PDF of the results on screen.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	shown, ok := h.Station.Shown()
	if !ok {
		http.Error(w, "No hay resultados para resumir", http.StatusNotFound)
		return
	}
	s := report.Summary{Request: shown.Request, Items: shown.Items, ChartPNG: shown.ChartPNG}
	var buf bytes.Buffer
	if err := report.Write(&buf, s); err != nil {
		logx.Errorf("summary: %v", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="resumen_bombeo.pdf"`)
	buf.WriteTo(w)
}

func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid notice id", http.StatusBadRequest)
		return
	}
	h.Page.Dismiss(id)
	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// readForm parses the post into a snapshot and remembers it for the page.
func (h *Handler) readForm(w http.ResponseWriter, r *http.Request) (form.Map, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return nil, false
	}
	snap := form.Map{}
	vals := form.Values(r.PostForm)
	for _, id := range form.Fields {
		if v, ok := vals.Value(id); ok {
			snap[id] = v
		}
	}
	h.Page.Remember(snap)
	return snap, true
}

func statusFor(err error) int {
	var perr *pumping.ParseError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, orchestrator.ErrSuperseded):
		return http.StatusConflict
	case errors.As(err, &perr), errors.Is(err, pumping.ErrDegenerateFlow), errors.Is(err, pumping.ErrShortPumpCurve):
		return http.StatusUnprocessableEntity
	default:
		// Service, decode and transport failures.
		return http.StatusBadGateway
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
