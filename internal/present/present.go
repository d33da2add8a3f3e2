// Package present formats a compute response for display.
package present

import (
	"math"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jquevedomolina/Pumping-Station/internal/calc/pumping"
)

// Result slot identifiers, in display order.
const (
	TotalHead        = "total_head"
	FrictionHeadLoss = "friction_head_loss"
	MinorHeadLoss    = "minor_head_loss"
	Power            = "power"
	Velocity         = "velocity"
	Reynolds         = "reynolds"
	FrictionFactor   = "friction_factor"
	CurveEquation    = "curve_equation"
)

// Slots lists every result slot in display order.
var Slots = []string{
	TotalHead, FrictionHeadLoss, MinorHeadLoss, Power,
	Velocity, Reynolds, FrictionFactor, CurveEquation,
}

var labels = map[string]string{
	TotalHead:        "Altura Dinámica Total",
	FrictionHeadLoss: "Pérdidas por Fricción",
	MinorHeadLoss:    "Pérdidas Menores",
	Power:            "Potencia Requerida",
	Velocity:         "Velocidad",
	Reynolds:         "Número de Reynolds",
	FrictionFactor:   "Factor de Fricción",
	CurveEquation:    "Ecuación de la Curva",
}

// Label is the caption shown next to a slot.
func Label(id string) string { return labels[id] }

// Stagger is the entrance delay added per item.
const Stagger = 50 * time.Millisecond

// Item is one filled result slot.
type Item struct {
	ID    string        `json:"id"`
	Label string        `json:"label"`
	Text  string        `json:"text"`
	Delay time.Duration `json:"delay"`
}

// Display receives the whole result set in a single call.
type Display interface {
	Show(items []Item)
}

// Presenter formats responses for one locale.
type Presenter struct {
	printer *message.Printer
}

// New returns a presenter for a BCP 47 locale tag. Unparseable tags fall back
// to Spanish.
func New(locale string) *Presenter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Spanish
	}
	return &Presenter{printer: message.NewPrinter(tag)}
}

// Items formats the response into the eight display slots.
func (p *Presenter) Items(resp pumping.Response) []Item {
	texts := map[string]string{
		TotalHead:        num(resp.TotalHead) + " m",
		FrictionHeadLoss: num(resp.FrictionHeadLoss) + " m",
		MinorHeadLoss:    num(resp.MinorHeadLoss) + " m",
		Power:            num(resp.PowerKW) + " kW (" + num(resp.PowerHP) + " HP)",
		Velocity:         num(resp.Velocity) + " m/s",
		Reynolds:         p.printer.Sprintf("%d", int64(math.Round(resp.Reynolds))),
		FrictionFactor:   num(resp.FrictionFactor),
		CurveEquation:    resp.CurveEquation,
	}
	items := make([]Item, len(Slots))
	for i, id := range Slots {
		items[i] = Item{
			ID:    id,
			Label: labels[id],
			Text:  texts[id],
			Delay: time.Duration(i) * Stagger,
		}
	}
	return items
}

// Present hands every item to the display at once.
func (p *Presenter) Present(d Display, resp pumping.Response) []Item {
	items := p.Items(resp)
	d.Show(items)
	return items
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
