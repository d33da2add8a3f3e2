package web

import (
	"sync"
	"time"

	"github.com/jquevedomolina/Pumping-Station/internal/form"
	"github.com/jquevedomolina/Pumping-Station/internal/orchestrator"
	"github.com/jquevedomolina/Pumping-Station/internal/plot"
	"github.com/jquevedomolina/Pumping-Station/internal/present"
)

// Page is the server-side state of the calculator page. It is the surface
// the station drives and the canvas the chart is bound to.
type Page struct {
	mu          sync.Mutex
	notices     *orchestrator.Notices
	items       []present.Item
	pending     bool
	placeholder string
	submit      orchestrator.SubmitState
	alert       string
	chart       *plot.Instance

	form form.Map
}

func NewPage(notices *orchestrator.Notices) *Page {
	if notices == nil {
		notices = orchestrator.NewNotices(nil)
	}
	return &Page{
		notices: notices,
		submit:  orchestrator.SubmitState{Label: orchestrator.IdleLabel},
		form:    DefaultForm(),
	}
}

// DefaultForm is what a fresh page shows.
func DefaultForm() form.Map {
	return form.Map{
		form.GeometricHeight:     "20",
		form.GeometricHeightUnit: "m",
		form.FlowRate:            "50",
		form.FlowRateUnit:        "l/s",
		form.PipeLength:          "100",
		form.PipeLengthUnit:      "m",
		form.PipeDiameter:        "200",
		form.PipeDiameterUnit:    "mm",
		form.PipeMaterial:        "pvc",
		form.PumpEfficiency:      "75",
		form.ValveGate:           "0",
		form.ValveButterfly:      "0",
		form.ValveCheck:          "0",
		form.ValveGlobe:          "0",
		form.Elbow90:             "0",
		form.Elbow45:             "0",
	}
}

func (p *Page) Show(items []present.Item) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append([]present.Item(nil), items...)
}

func (p *Page) SetSubmit(s orchestrator.SubmitState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submit = s
}

func (p *Page) SetPending(_ []string, placeholder string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = true
	p.placeholder = placeholder
}

func (p *Page) ClearPending(_ []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = false
}

func (p *Page) Notify(n orchestrator.Notice) {
	p.notices.Add(n)
}

func (p *Page) Alert(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alert = msg
}

func (p *Page) Bind(inst *plot.Instance) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chart = inst
	return nil
}

func (p *Page) Release(inst *plot.Instance) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.chart == inst {
		p.chart = nil
	}
}

// Chart returns the bound chart, or nil.
func (p *Page) Chart() *plot.Instance {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chart
}

// Remember keeps the submitted form so the page re-renders with it.
func (p *Page) Remember(m form.Map) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = m
}


func (p *Page) Dismiss(id uint64) bool {
	return p.notices.Dismiss(id)
}

// Slot is one result slot as rendered.
type Slot struct {
	present.Item
	Pending bool `json:"pending"`
}

// View is a consistent copy of the page state.
type View struct {
	Form    form.Map                 `json:"form"`
	Slots   []Slot                   `json:"slots"`
	Submit  orchestrator.SubmitState `json:"submit"`
	Notices []orchestrator.Notice    `json:"notices"`
	Alert   string                   `json:"alert,omitempty"`
	ChartID uint64                   `json:"chart_id,omitempty"`
}

// View snapshots the state. A pending alert is handed out once.
func (p *Page) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	v := View{
		Form:    p.form,
		Submit:  p.submit,
		Notices: p.notices.Active(),
		Alert:   p.alert,
	}
	p.alert = ""
	if p.chart != nil {
		v.ChartID = p.chart.ID
	}

	byID := make(map[string]present.Item, len(p.items))
	for _, it := range p.items {
		byID[it.ID] = it
	}
	v.Slots = make([]Slot, len(present.Slots))
	for i, id := range present.Slots {
		it, ok := byID[id]
		if !ok {
			it = present.Item{ID: id, Label: present.Label(id), Text: "—", Delay: time.Duration(i) * present.Stagger}
		}
		if p.pending {
			it.Text = p.placeholder
		}
		v.Slots[i] = Slot{Item: it, Pending: p.pending}
	}
	return v
}
