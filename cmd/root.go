package main

import (
	"github.com/spf13/cobra"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ranker",
		Short: "Rank decision candidates by weighted attribute scores",
		Long: `ranker structures a multi-criteria decision: a topic with weighted
attributes (importance 1-5) and subjects scored 1-10 on each attribute.
Subjects are ranked by the sum of score x importance.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a YAML config file (default: $RANKER_CONFIG)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "",
		"Log format: text or json (overrides config)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newRankCmd(opts))
	cmd.AddCommand(newLoadtestCmd(opts))
	return cmd
}
