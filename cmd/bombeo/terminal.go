package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/jquevedomolina/Pumping-Station/internal/orchestrator"
	"github.com/jquevedomolina/Pumping-Station/internal/present"
)

// terminal is the surface of the CLI. Results go to out, everything else
// to errOut.
type terminal struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
}

func newTerminal(out, errOut io.Writer) *terminal {
	return &terminal{out: out, errOut: errOut}
}

func (t *terminal) Show(items []present.Item) {
	if len(items) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	width := 0
	for _, it := range items {
		if n := len([]rune(it.Label)); n > width {
			width = n
		}
	}
	for _, it := range items {
		fmt.Fprintf(t.out, "%-*s  %s\n", width, it.Label, it.Text)
	}
}

func (t *terminal) SetSubmit(s orchestrator.SubmitState) {
	if !s.Disabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.errOut, s.Label)
}

func (t *terminal) SetPending([]string, string) {}

func (t *terminal) ClearPending([]string) {}

func (t *terminal) Notify(n orchestrator.Notice) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.errOut, "! %s\n", n.Message)
}

func (t *terminal) Alert(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.errOut, "ERROR: %s\n", msg)
}
