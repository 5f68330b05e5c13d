package cmd

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sarchlab/cpusched/engine"
	"github.com/sarchlab/cpusched/report"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		flags    simFlags
		maxTicks int
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario to completion and print the schedule",
		Example: `  schedsim run -f workload.yaml
  schedsim run -f processes.csv --algorithm rr --quantum 3 --units 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.file == "" {
				return errors.New("a scenario file is required (-f)")
			}

			if cmd.Flags().Changed("max-ticks") {
				root.cfg.MaxTicks = maxTicks
			}

			if err := flags.settle(cmd, &root.cfg); err != nil {
				return err
			}

			sim, err := flags.build(cmd, root)
			if err != nil {
				return err
			}

			finish, err := startRecording(root, sim, "run")
			if err != nil {
				return err
			}
			defer finish()

			ticks, err := sim.RunToCompletion(root.cfg.MaxTicks)
			if err != nil && !errors.Is(err, engine.ErrTickLimit) {
				return err
			}

			out := cmd.OutOrStdout()
			st := sim.Snapshot()

			if !quiet {
				report.Gantt(out, st, sim.Timeline())
				fmt.Fprintln(out)
			}

			report.ProcessTable(out, st)
			fmt.Fprintln(out)
			report.MetricsTable(out, st.Metrics())
			fmt.Fprintln(out)
			report.UtilizationTable(out, sim.Timeline())

			if err != nil {
				return fmt.Errorf("stopped after %s ticks: %w",
					humanize.Comma(int64(ticks)), err)
			}

			fmt.Fprintf(out, "\n%s ticks simulated\n", humanize.Comma(int64(ticks)))

			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 0,
		"Stop after this many ticks (default from SCHEDSIM_MAX_TICKS or 100000)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the Gantt chart")

	return cmd
}
