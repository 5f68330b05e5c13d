// Package cmd provides the command-line interface of schedsim.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cpusched/config"
)

type rootOptions struct {
	logLevel  string
	logFormat string
	envFile   string

	cfg    config.Config
	logger *slog.Logger
}

// NewRootCmd creates the schedsim command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "schedsim",
		Short: "schedsim simulates CPU scheduling policies on several units.",
		Long: `schedsim simulates FCFS, SJF, SRTF, Priority and Round Robin ` +
			`scheduling on one or more processing units. Simulations can run ` +
			`to completion in the terminal or be driven from a web monitor.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "",
		"Log format (text, json)")
	flags.StringVar(&opts.envFile, "env-file", "",
		"File with SCHEDSIM_* settings (default .env if present)")

	root.AddCommand(
		newRunCmd(opts),
		newServeCmd(opts),
		newInspectCmd(opts),
	)

	return root
}

func (o *rootOptions) init(cmd *cobra.Command) error {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}

	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}

	logger, err := cfg.Logger()
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = logger
	slog.SetDefault(logger)

	return nil
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}
