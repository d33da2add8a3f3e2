// Package orchestrator runs the compute and report submissions: loading
// state, dispatch, error surfacing and cleanup.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jquevedomolina/Pumping-Station/internal/calc/pumping"
	"github.com/jquevedomolina/Pumping-Station/internal/download"
	"github.com/jquevedomolina/Pumping-Station/internal/logx"
	"github.com/jquevedomolina/Pumping-Station/internal/plot"
	"github.com/jquevedomolina/Pumping-Station/internal/present"
)

// ErrSuperseded is returned to a compute submission whose result arrived
// after a newer submission had started. Such a result is dropped.
var ErrSuperseded = errors.New("orchestrator: superseded by a newer submission")

const (
	IdleLabel   = "Calcular Sistema de Bombeo"
	BusyLabel   = "Calculando..."
	Placeholder = "Calculando..."

	computeFailed = "Error al realizar el cálculo. Por favor, verifica los datos e intenta nuevamente."
	reportFailed  = "Error generando PDF: "
)

// SubmitState is the look of the compute control.
type SubmitState struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// Surface is everything a host shows. Implementations must be safe for
// concurrent use.
type Surface interface {
	// Show replaces the result slots. A nil slice blanks them.
	Show(items []present.Item)
	SetSubmit(state SubmitState)
	// SetPending dims the slots and fills them with placeholder.
	SetPending(ids []string, placeholder string)
	// ClearPending restores the slots' normal weight.
	ClearPending(ids []string)
	// Notify posts a transient notice.
	Notify(n Notice)
	// Alert is the blocking channel used by the report path.
	Alert(msg string)
}

// Service is the remote calculation service.
type Service interface {
	Calculate(ctx context.Context, req pumping.Request) (pumping.Response, error)
	GenerateReport(ctx context.Context, req pumping.Request) ([]byte, error)
}

// Plotter owns the live chart.
type Plotter interface {
	Render(c pumping.Curves) (*plot.Instance, error)
}

// Station coordinates submissions for one surface.
type Station struct {
	svc       Service
	surface   Surface
	presenter *present.Presenter
	plotter   Plotter

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	shown  []present.Item
	req    *pumping.Request
	chart  *plot.Instance
}

// Shown is the last published computation: the inputs, the result slots and
// the chart drawn from them.
type Shown struct {
	Request  pumping.Request
	Items    []present.Item
	ChartPNG []byte
}

func NewStation(svc Service, surface Surface, presenter *present.Presenter, plotter Plotter) *Station {
	return &Station{svc: svc, surface: surface, presenter: presenter, plotter: plotter}
}

// SubmitCompute runs one compute submission end to end. The loading state is
// applied before any network activity and is lifted on every exit path,
// unless a newer submission has taken it over. A result that is no longer
// the newest is dropped with ErrSuperseded.
func (s *Station) SubmitCompute(ctx context.Context, req pumping.Request) (pumping.Response, error) {
	ctx, seq := s.begin(ctx)
	defer s.finish(seq)

	start := time.Now()
	resp, curves, err := s.compute(ctx, req)
	if err == nil {
		err = s.publish(seq, req, resp, curves)
	}
	if err != nil {
		err = s.fail(seq, err)
		logx.Warnf("compute #%d failed after %s: %v", seq, time.Since(start), err)
		return pumping.Response{}, err
	}
	logx.Infof("compute #%d ok in %s (H=%v m, Q=%v l/s)", seq, time.Since(start), resp.TotalHead, resp.FlowRate)
	return resp, nil
}

// begin claims the next sequence number, cancels the previous in-flight
// compute and enters the loading state.
func (s *Station) begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	s.cancel = cancel

	s.surface.SetSubmit(SubmitState{Label: BusyLabel, Disabled: true})
	s.surface.SetPending(present.Slots, Placeholder)
	return ctx, s.seq
}

// finish is the cleanup block. It runs once per submission.
func (s *Station) finish(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		// A newer submission owns the loading state.
		return
	}
	s.cancel()
	s.cancel = nil
	s.surface.SetSubmit(SubmitState{Label: IdleLabel})
	s.surface.ClearPending(present.Slots)
}

func (s *Station) compute(ctx context.Context, req pumping.Request) (pumping.Response, pumping.Curves, error) {
	if err := req.Validate(); err != nil {
		return pumping.Response{}, pumping.Curves{}, err
	}
	resp, err := s.svc.Calculate(ctx, req)
	if err != nil {
		return pumping.Response{}, pumping.Curves{}, err
	}
	curves, err := pumping.Synthesize(resp)
	if err != nil {
		return pumping.Response{}, pumping.Curves{}, fmt.Errorf("synthesizing curves: %w", err)
	}
	return resp, curves, nil
}

// publish shows the results and replaces the chart, if seq is still the
// newest submission.
func (s *Station) publish(seq uint64, req pumping.Request, resp pumping.Response, curves pumping.Curves) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return ErrSuperseded
	}
	s.shown = s.presenter.Present(s.surface, resp)
	s.req = &req
	s.chart = nil
	if s.plotter != nil {
		inst, err := s.plotter.Render(curves)
		s.chart = inst
		if err != nil {
			// The numbers are already up; only the chart is stale.
			logx.Errorf("compute #%d: %v", seq, err)
			s.surface.Notify(Notice{Message: "No se pudo dibujar el gráfico.", TTL: NoticeTTL})
		}
	}
	return nil
}

// fail surfaces err for the newest submission and restores the results that
// were on screen before it. Older submissions fail silently as superseded.
func (s *Station) fail(seq uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return ErrSuperseded
	}
	s.surface.Show(s.shown)
	s.surface.Notify(Notice{Message: computeMessage(err), TTL: NoticeTTL})
	return err
}

// Shown returns the last published computation. ok is false before the
// first success.
func (s *Station) Shown() (sh Shown, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.req == nil {
		return Shown{}, false
	}
	sh = Shown{Request: *s.req, Items: append([]present.Item(nil), s.shown...)}
	if s.chart != nil {
		// Replacement happens under s.mu, so the instance is still live.
		sh.ChartPNG, _ = s.chart.PNG()
	}
	return sh, true
}

func computeMessage(err error) string {
	var perr *pumping.ParseError
	if errors.As(err, &perr) {
		return fmt.Sprintf("El campo %s no es un número válido.", perr.Field)
	}
	return computeFailed
}

// SubmitReport requests the report and hands it to sink. It has no loading
// state and never touches results or the chart; failures go to Alert.
func (s *Station) SubmitReport(ctx context.Context, req pumping.Request, sink download.Sink) error {
	start := time.Now()
	err := s.report(ctx, req, sink)
	if err != nil {
		logx.Warnf("report failed after %s: %v", time.Since(start), err)
		s.surface.Alert(reportFailed + err.Error())
		return err
	}
	logx.Infof("report ok in %s", time.Since(start))
	return nil
}

func (s *Station) report(ctx context.Context, req pumping.Request, sink download.Sink) error {
	if err := req.Validate(); err != nil {
		return err
	}
	blob, err := s.svc.GenerateReport(ctx, req)
	if err != nil {
		return err
	}
	return download.Download(sink, blob, download.ReportFilename)
}
