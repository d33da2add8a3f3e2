package plot

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/jquevedomolina/Pumping-Station/internal/calc/pumping"
	"github.com/jquevedomolina/Pumping-Station/internal/logx"
)

// ErrDisposed is returned when reading a chart that has been replaced.
var ErrDisposed = errors.New("plot: chart instance disposed")

// Instance is one rendered chart bound to a canvas.
type Instance struct {
	ID uint64

	mu       sync.Mutex
	png      []byte
	disposed bool
}

// PNG returns a copy of the rendered image.
func (i *Instance) PNG() ([]byte, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.disposed {
		return nil, ErrDisposed
	}
	return bytes.Clone(i.png), nil
}

// Dispose releases the image. It is safe to call more than once.
func (i *Instance) Dispose() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.disposed = true
	i.png = nil
}

func (i *Instance) Disposed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.disposed
}

// Canvas is where the live instance is shown. Release is always called for
// the previous instance before Bind is called for the next one.
type Canvas interface {
	Bind(inst *Instance) error
	Release(inst *Instance)
}

// Renderer owns the single live chart. Render disposes the previous instance
// before constructing the next.
type Renderer struct {
	Width, Height int

	canvas Canvas
	mu     sync.Mutex
	live   *Instance
	nextID atomic.Uint64
}

func NewRenderer(canvas Canvas, width, height int) *Renderer {
	return &Renderer{Width: width, Height: height, canvas: canvas}
}

// Render draws the curves and makes the result the live instance.
// The image is rasterized before the live instance is touched, so a failed
// render leaves the previous chart up. The Instance itself is only
// constructed after the previous one is disposed.
func (r *Renderer) Render(c pumping.Curves) (*Instance, error) {
	ch := Build(c, r.Width, r.Height)
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.disposeLocked()

	inst := &Instance{ID: r.nextID.Add(1), png: buf.Bytes()}
	if r.canvas != nil {
		if err := r.canvas.Bind(inst); err != nil {
			inst.Dispose()
			return nil, fmt.Errorf("binding chart: %w", err)
		}
	}
	r.live = inst
	logx.Debugf("chart %d bound (%d bytes)", inst.ID, buf.Len())
	return inst, nil
}

// Live returns the current instance, or nil before the first render.
func (r *Renderer) Live() *Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live
}

// Close disposes the live instance.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposeLocked()
}

func (r *Renderer) disposeLocked() {
	if r.live == nil {
		return
	}
	if r.canvas != nil {
		r.canvas.Release(r.live)
	}
	r.live.Dispose()
	logx.Debugf("chart %d disposed", r.live.ID)
	r.live = nil
}

// FileCanvas writes each bound chart to Path.
type FileCanvas struct {
	Path string
}

func (f FileCanvas) Bind(inst *Instance) error {
	png, err := inst.PNG()
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".chart-*.png")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(png); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}

func (FileCanvas) Release(*Instance) {}
