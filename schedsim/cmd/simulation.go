package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/cpusched/config"
	"github.com/sarchlab/cpusched/datarecording"
	"github.com/sarchlab/cpusched/engine"
	"github.com/sarchlab/cpusched/scenario"
)

// simFlags are the simulation settings shared by run and serve. Only the
// flags set on the command line override the scenario file.
type simFlags struct {
	file         string
	algorithm    string
	quantum      int
	units        int
	srtfEviction bool
	record       string
	recorder     string
	dsn          string
}

func (f *simFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.file, "file", "f", "",
		"Scenario file (.yaml, .yml or .csv)")
	flags.StringVar(&f.algorithm, "algorithm", "",
		"Scheduling algorithm (FCFS, SJF, SRTF, Priority, RR)")
	flags.IntVar(&f.quantum, "quantum", 0, "Round Robin time quantum")
	flags.IntVar(&f.units, "units", 0, "Number of processing units")
	flags.BoolVar(&f.srtfEviction, "srtf-eviction", true,
		"Let a shorter arrival take a unit from a running SRTF process")
	flags.StringVar(&f.record, "record", "",
		"Record the simulation into <path>.sqlite3")
	flags.StringVar(&f.recorder, "recorder", "",
		"Recording backend (sqlite, clickhouse)")
	flags.StringVar(&f.dsn, "dsn", "", "ClickHouse DSN for recording")
}

// settle folds the flags into the loaded settings.
func (f *simFlags) settle(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("algorithm") {
		cfg.Algorithm = f.algorithm
	}

	if changed("quantum") {
		cfg.Quantum = f.quantum
	}

	if changed("units") {
		cfg.Units = f.units
	}

	if changed("srtf-eviction") {
		cfg.SRTFEviction = f.srtfEviction
	}

	if changed("record") {
		cfg.Recorder.Path = f.record
	}

	if changed("recorder") {
		cfg.Recorder.Type = f.recorder
	}

	if changed("dsn") {
		cfg.Recorder.DSN = f.dsn
	}

	return cfg.Validate()
}

// overrideScenario reapplies the settings given as flags, so they win over
// the ones in the scenario file.
func (f *simFlags) overrideScenario(cmd *cobra.Command, sim *engine.Simulator) error {
	changed := cmd.Flags().Changed

	if changed("algorithm") {
		if err := sim.SetAlgorithm(f.algorithm); err != nil {
			return err
		}
	}

	if changed("quantum") {
		if err := sim.SetQuantum(f.quantum); err != nil {
			return err
		}
	}

	if changed("units") {
		if err := sim.SetUnitCount(f.units); err != nil {
			return err
		}
	}

	if changed("srtf-eviction") {
		sim.SetEviction(f.srtfEviction)
	}

	return nil
}

// build creates a simulator and loads the scenario file into it, if any.
func (f *simFlags) build(
	cmd *cobra.Command,
	root *rootOptions,
) (*engine.Simulator, error) {
	opts, err := root.cfg.EngineOptions(root.logger)
	if err != nil {
		return nil, err
	}

	sim, err := engine.New(opts)
	if err != nil {
		return nil, err
	}

	if f.file != "" {
		sc, err := scenario.Load(f.file)
		if err != nil {
			return nil, err
		}

		ids, err := sc.Apply(sim)
		if err != nil {
			return nil, fmt.Errorf("apply %s: %w", f.file, err)
		}

		root.logger.Info("scenario loaded", "file", f.file, "processes", len(ids))
	}

	if err := f.overrideScenario(cmd, sim); err != nil {
		return nil, err
	}

	return sim, nil
}

func recordingEnabled(cfg config.Config) bool {
	return cfg.Recorder.Path != "" ||
		cfg.Recorder.Type == datarecording.BackendClickHouse
}

// startRecording attaches a tracer to the simulator. The returned function
// writes the execution record and closes the recorder.
func startRecording(
	root *rootOptions,
	sim *engine.Simulator,
	command string,
) (func(), error) {
	if !recordingEnabled(root.cfg) {
		return func() {}, nil
	}

	rec, err := datarecording.NewWithConfig(root.cfg.Recorder)
	if err != nil {
		return nil, err
	}

	exec := datarecording.NewExecRecorder(rec)
	exec.Start()

	tracer := datarecording.NewSimulationTracer(rec)
	sim.AcceptHook(tracer)

	st := sim.Snapshot()
	exec.Note("Subcommand", command)
	exec.Note("Run ID", tracer.RunID())
	exec.Note("Algorithm", string(st.Algorithm))
	exec.Note("Quantum", strconv.Itoa(st.Quantum))
	exec.Note("Units", strconv.Itoa(st.UnitCount))
	exec.Note("SRTF Eviction", strconv.FormatBool(!st.DispatchOnlySRTF))
	exec.Note("Processes", strconv.Itoa(len(st.Processes)))

	root.logger.Info("recording simulation",
		"backend", root.cfg.Recorder.Type,
		"run_id", tracer.RunID(),
	)

	started := time.Now()

	return func() {
		exec.Note("Wall Time", time.Since(started).String())
		exec.End()

		if err := rec.Close(); err != nil {
			root.logger.Error("close recorder", "err", err)
		}
	}, nil
}
