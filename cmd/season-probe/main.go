package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pitwall/internal/probe"
	"github.com/okian/pitwall/pkg/logger"
)

// Default configuration constants.
const (
	defaultURL         = "http://localhost:9080"
	defaultConcurrency = 2
	defaultDelay       = time.Second
	defaultTimeout     = 60 * time.Second
	defaultRunTimeout  = 30 * time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	year := time.Now().Year()
	cfg := &probe.Config{}
	var logFormat string

	cmd := &cobra.Command{
		Use:   "season-probe",
		Short: "checks a pitwall server for consistent season data",
		Long: `season-probe fetches races and standings for every season in
[from, to] and verifies unique rounds, unique classified positions, sorted
standings and, for fully classified seasons, that standings match the sum
of race results.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logFormat)); err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
			defer cancel()

			_, err := probe.Run(ctx, cfg)
			return err
		},
	}

	cmd.Flags().StringVar(&cfg.BaseURL, "url", defaultURL, "base URL of the pitwall server")
	cmd.Flags().IntVar(&cfg.From, "from", year, "first season to probe")
	cmd.Flags().IntVar(&cfg.To, "to", year, "last season to probe")
	cmd.Flags().IntVar(&cfg.Concurrency, "concurrency", defaultConcurrency, "seasons probed together")
	cmd.Flags().DurationVar(&cfg.Delay, "delay", defaultDelay, "pause between groups of seasons")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "log every season")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "text or json")

	return cmd
}
