// Package batch runs many forms from a spreadsheet against the service.
package batch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/time/rate"

	"github.com/jquevedomolina/Pumping-Station/internal/calc/pumping"
	"github.com/jquevedomolina/Pumping-Station/internal/form"
	"github.com/jquevedomolina/Pumping-Station/internal/logx"
	"github.com/jquevedomolina/Pumping-Station/internal/present"
)

const ResultsSheet = "Resultados"

// Calculator is the compute half of the service.
type Calculator interface {
	Calculate(ctx context.Context, req pumping.Request) (pumping.Response, error)
}

// Row is the outcome of one form.
type Row struct {
	Line     int // spreadsheet line, 1-based, header is line 1
	Request  pumping.Request
	Response pumping.Response
	Err      error
}

// ReadForms reads the first sheet. The header row names the form fields;
// unknown columns are ignored and blank rows skipped.
func ReadForms(r io.Reader) ([]form.Map, []int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("sheet %s has no data rows", sheet)
	}

	known := make(map[string]bool, len(form.Fields))
	for _, id := range form.Fields {
		known[id] = true
	}
	header := rows[0]
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	var (
		forms []form.Map
		lines []int
	)
	for i := 1; i < len(rows); i++ {
		m := form.Map{}
		for col, cell := range rows[i] {
			if col >= len(header) || !known[header[col]] || strings.TrimSpace(cell) == "" {
				continue
			}
			m[header[col]] = cell
		}
		if len(m) == 0 {
			continue
		}
		forms = append(forms, m)
		lines = append(lines, i+1)
	}
	return forms, lines, nil
}

// Run computes each form in order, waiting on limiter between calls. A
// failed form is recorded in its Row and does not stop the run; a cancelled
// context does.
func Run(ctx context.Context, calc Calculator, forms []form.Map, lines []int, limiter *rate.Limiter) ([]Row, error) {
	out := make([]Row, 0, len(forms))
	for i, m := range forms {
		row := Row{Line: i + 2, Request: form.Collect(m)}
		if i < len(lines) {
			row.Line = lines[i]
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return out, err
			}
		}
		row.Response, row.Err = compute(ctx, calc, row.Request)
		if row.Err != nil {
			logx.Warnf("batch line %d: %v", row.Line, row.Err)
		}
		out = append(out, row)
	}
	return out, nil
}

func compute(ctx context.Context, calc Calculator, req pumping.Request) (pumping.Response, error) {
	if err := req.Validate(); err != nil {
		return pumping.Response{}, err
	}
	resp, err := calc.Calculate(ctx, req)
	if err != nil {
		return pumping.Response{}, err
	}
	if _, err := pumping.Synthesize(resp); err != nil {
		return pumping.Response{}, err
	}
	return resp, nil
}

// WriteResults writes one line per row: the project, the formatted results
// and the error, if any.
func WriteResults(w io.Writer, rows []Row, p *present.Presenter) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ResultsSheet); err != nil {
		return err
	}
	header := []interface{}{"line", form.ProjectName}
	for _, id := range present.Slots {
		header = append(header, id)
	}
	header = append(header, "error")
	if err := f.SetSheetRow(ResultsSheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range rows {
		vals := []interface{}{r.Line, r.Request.ProjectName}
		if r.Err == nil {
			for _, it := range p.Items(r.Response) {
				vals = append(vals, it.Text)
			}
			vals = append(vals, "")
		} else {
			for range present.Slots {
				vals = append(vals, "")
			}
			vals = append(vals, r.Err.Error())
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ResultsSheet, cell, &vals); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}
