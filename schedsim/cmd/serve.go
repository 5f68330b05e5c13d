package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cpusched/monitoring"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		flags    simFlags
		addr     string
		interval time.Duration
		open     bool
		autorun  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web monitor and drive the simulation from it",
		Example: `  schedsim serve -f workload.yaml --open
  schedsim serve --addr :8080 --interval 200ms`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				root.cfg.Addr = addr
			}

			if cmd.Flags().Changed("interval") {
				root.cfg.Interval = interval
			}

			if err := flags.settle(cmd, &root.cfg); err != nil {
				return err
			}

			sim, err := flags.build(cmd, root)
			if err != nil {
				return err
			}

			finish, err := startRecording(root, sim, "serve")
			if err != nil {
				return err
			}
			defer finish()

			monitor := monitoring.NewMonitor(sim).
				WithAddr(root.cfg.Addr).
				WithLogger(root.logger)

			url, err := monitor.StartServer()
			if err != nil {
				return err
			}

			root.logger.Info("monitor ready", "url", url)

			if open {
				if err := monitor.OpenBrowser(url); err != nil {
					root.logger.Warn("cannot open browser", "err", err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(),
				os.Interrupt, syscall.SIGTERM)
			defer stop()

			if autorun {
				if err := sim.Start(); err != nil {
					root.logger.Warn("cannot start simulation", "err", err)
				}
			}

			err = sim.Run(ctx)
			root.logger.Info("shutting down monitor")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if shutdownErr := monitor.Shutdown(shutdownCtx); shutdownErr != nil {
				root.logger.Error("monitor shutdown", "err", shutdownErr)
			}

			if ctx.Err() != nil {
				return nil
			}

			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "",
		"Address to listen on (default from SCHEDSIM_ADDR or localhost:0)")
	cmd.Flags().DurationVar(&interval, "interval", 0,
		"Simulated time unit length (default from SCHEDSIM_INTERVAL or 1s)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the monitor in a browser")
	cmd.Flags().BoolVar(&autorun, "autorun", false, "Start the simulation right away")

	return cmd
}
