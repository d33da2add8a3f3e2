// Command bombeo drives the pumping-station calculator from the terminal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jquevedomolina/Pumping-Station/internal/config"
	"github.com/jquevedomolina/Pumping-Station/internal/logx"
)

type options struct {
	envFile    string
	serviceURL string
	logLevel   string
	locale     string
	cfg        config.Config
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:          "bombeo",
		Short:        "Pumping station sizing client",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var files []string
			if opts.envFile != "" {
				files = append(files, opts.envFile)
			}
			cfg, err := config.Load(files...)
			if err != nil {
				return err
			}
			if opts.serviceURL != "" {
				cfg.ServiceURL = opts.serviceURL
			}
			if opts.logLevel != "" {
				if cfg.LogLevel, err = logx.ParseLevel(opts.logLevel); err != nil {
					return err
				}
			}
			if opts.locale != "" {
				cfg.Locale = opts.locale
			}
			logx.SetLevel(cfg.LogLevel)
			logx.SetOutput(cmd.ErrOrStderr())
			opts.cfg = cfg
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.envFile, "env", "", "dotenv file to load (default .env if present)")
	pf.StringVar(&opts.serviceURL, "service", "", "calculation service base URL")
	pf.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&opts.locale, "locale", "", "locale for number grouping")

	rootCmd.AddCommand(calcCmd(opts))
	rootCmd.AddCommand(reportCmd(opts))
	rootCmd.AddCommand(promptCmd(opts))
	rootCmd.AddCommand(batchCmd(opts))
	return rootCmd
}
