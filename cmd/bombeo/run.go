package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jquevedomolina/Pumping-Station/internal/calc/batch"
	"github.com/jquevedomolina/Pumping-Station/internal/calc/pumping"
	"github.com/jquevedomolina/Pumping-Station/internal/calc/report"
	"github.com/jquevedomolina/Pumping-Station/internal/download"
	"github.com/jquevedomolina/Pumping-Station/internal/form"
	"github.com/jquevedomolina/Pumping-Station/internal/orchestrator"
	"github.com/jquevedomolina/Pumping-Station/internal/plot"
	"github.com/jquevedomolina/Pumping-Station/internal/present"
	"github.com/jquevedomolina/Pumping-Station/internal/service"
)

type calcFlags struct {
	chart   string
	summary string
}

func calcCmd(opts *options) *cobra.Command {
	var flags calcFlags
	cmd := &cobra.Command{
		Use:   "calc FORM.yaml",
		Short: "Compute one form and print the results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := form.LoadFile(args[0])
			if err != nil {
				return err
			}
			return runCalc(cmd.Context(), opts, m, flags, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&flags.chart, "chart", "", "write the curves chart to this PNG file")
	cmd.Flags().StringVar(&flags.summary, "summary", "", "write a summary PDF to this file")
	return cmd
}

func promptCmd(opts *options) *cobra.Command {
	var flags calcFlags
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Fill the form interactively, then compute it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := form.Prompt(cmd.Context(), form.SurveyDriver{})
			if err != nil {
				return err
			}
			return runCalc(cmd.Context(), opts, m, flags, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&flags.chart, "chart", "", "write the curves chart to this PNG file")
	cmd.Flags().StringVar(&flags.summary, "summary", "", "write a summary PDF to this file")
	return cmd
}

func reportCmd(opts *options) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "report FORM.yaml",
		Short: "Download the service report as " + download.ReportFilename,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := form.LoadFile(args[0])
			if err != nil {
				return err
			}
			if dir == "" {
				dir = opts.cfg.ReportDir
			}
			surface := newTerminal(cmd.OutOrStdout(), cmd.ErrOrStderr())
			st := orchestrator.NewStation(client(opts), surface, present.New(opts.cfg.Locale), nil)
			return st.SubmitReport(cmd.Context(), form.Collect(m), download.DirSink{Dir: dir})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to save the report in (default REPORT_DIR)")
	return cmd
}

func batchCmd(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "batch IN.xlsx",
		Short: "Compute every form in a spreadsheet and write the results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			forms, lines, err := batch.ReadForms(f)
			if err != nil {
				return err
			}

			limiter := rate.NewLimiter(opts.cfg.RateLimit, opts.cfg.RateBurst)
			rows, err := batch.Run(cmd.Context(), client(opts), forms, lines, limiter)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := batch.WriteResults(&buf, rows, present.New(opts.cfg.Locale)); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			failed := 0
			for _, r := range rows {
				if r.Err != nil {
					failed++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d formularios, %d con error -> %s\n", len(rows), failed, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "resultados.xlsx", "results workbook")
	return cmd
}

func client(opts *options) *service.Client {
	return service.NewClient(opts.cfg.ServiceURL, opts.cfg.RequestTimeout)
}

func runCalc(ctx context.Context, opts *options, m form.Map, flags calcFlags, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var canvas plot.Canvas
	if flags.chart != "" {
		canvas = plot.FileCanvas{Path: flags.chart}
	}
	renderer := plot.NewRenderer(canvas, opts.cfg.ChartWidth, opts.cfg.ChartHeight)
	defer renderer.Close()

	presenter := present.New(opts.cfg.Locale)
	surface := newTerminal(stdout, stderr)
	st := orchestrator.NewStation(client(opts), surface, presenter, renderer)

	req := form.Collect(m)
	resp, err := st.SubmitCompute(ctx, req)
	if err != nil {
		return err
	}
	if flags.summary != "" {
		return writeSummary(flags.summary, req, presenter.Items(resp), renderer.Live())
	}
	return nil
}

func writeSummary(path string, req pumping.Request, items []present.Item, inst *plot.Instance) error {
	s := report.Summary{Request: req, Items: items}
	if inst != nil {
		s.ChartPNG, _ = inst.PNG()
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, s); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
