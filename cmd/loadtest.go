package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/okian/ranker/internal/loadtest"
)

func newLoadtestCmd(opts *rootOptions) *cobra.Command {
	cfg := loadtest.DefaultConfig()
	cfg.Workers = runtime.NumCPU() * 2

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Drive a running server with random decisions and verify its rankings",
		Long: `Build random topics concurrently through the HTTP API, replay every POST
with the same Idempotency-Key, and compare each served ranking with a local
computation. Exits non-zero on any mismatch.

Examples:
  ranker loadtest
  ranker loadtest --url http://localhost:8080 --topics 1000 --workers 16`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			appCfg, err := loadConfig(ctx, opts)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := initLogging(ctx, appCfg, cmd.ErrOrStderr()); err != nil {
				return err
			}
			if !cmd.Flags().Changed("winner-min-subjects") {
				cfg.WinnerMinSubjects = appCfg.WinnerMinSubjects
			}

			stats, err := loadtest.Run(ctx, cfg)
			if stats != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "topics=%d subjects=%d duplicates=%d verified=%d mismatches=%d failed=%d duration=%s\n",
					stats.TopicsCreated, stats.SubjectsSubmitted, stats.Duplicates,
					stats.Verified, stats.Mismatches, stats.Failed, stats.Duration)
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "Base URL of the service")
	f.IntVar(&cfg.Topics, "topics", cfg.Topics, "Number of topics to build")
	f.IntVar(&cfg.AttributesPerTopic, "attributes", cfg.AttributesPerTopic, "Attributes per topic")
	f.IntVar(&cfg.SubjectsPerTopic, "subjects", cfg.SubjectsPerTopic, "Subjects per topic")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent workers")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.IntVar(&cfg.WinnerMinSubjects, "winner-min-subjects", cfg.WinnerMinSubjects,
		"Winner threshold the server runs with (default: from config)")
	f.BoolVar(&cfg.Replay, "replay", cfg.Replay, "Resend every POST with the same Idempotency-Key")
	f.BoolVar(&cfg.Cleanup, "cleanup", cfg.Cleanup, "Delete topics after verification")
	f.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log every verified topic")
	return cmd
}
