// Package engine drives a scheduling simulation. It serializes access to a
// single sched.State, validates caller input, and owns the run cadence.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sarchlab/cpusched/idgen"
	"github.com/sarchlab/cpusched/sched"
)

// Defaults of a Simulator.
const (
	DefaultMaxUnits = 8
	DefaultInterval = time.Second
)

// Errors returned by the Simulator.
var (
	ErrNoProcesses      = errors.New("no process is defined")
	ErrCompleted        = errors.New("all processes have completed")
	ErrUnknownProcess   = errors.New("unknown process")
	ErrInvalidQuantum   = errors.New("quantum must be at least 1")
	ErrInvalidUnitCount = errors.New("invalid unit count")
	ErrTickLimit        = errors.New("tick limit reached")
)

// Options configures a Simulator.
type Options struct {
	Algorithm        sched.Algorithm
	Quantum          int
	Units            int
	DispatchOnlySRTF bool

	// MaxUnits bounds SetUnitCount.
	MaxUnits int

	// Interval is the wall-clock time between two ticks of a continuous run.
	Interval time.Duration

	IDs    idgen.Generator
	Logger *slog.Logger
}

// A Simulator owns a simulation and the cadence at which it advances. All
// methods are safe for concurrent use. Hooks are invoked outside of the
// state lock, so they may read the Simulator, but they must not issue
// commands.
type Simulator struct {
	sched.HookableBase

	// opLock serializes operations together with their hook invocations.
	opLock sync.Mutex

	stateLock sync.RWMutex
	state     sched.State
	timeline  []sched.TickReport

	ids      idgen.Generator
	maxUnits int
	interval time.Duration
	logger   *slog.Logger
}

// New creates a Simulator.
func New(opts Options) (*Simulator, error) {
	if opts.MaxUnits < 1 {
		opts.MaxUnits = DefaultMaxUnits
	}

	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	if opts.IDs == nil {
		opts.IDs = idgen.NewSequential("p")
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Algorithm != "" && !opts.Algorithm.Known() {
		return nil, fmt.Errorf("%w: %q", sched.ErrUnknownAlgorithm, opts.Algorithm)
	}

	if opts.Quantum < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantum, opts.Quantum)
	}

	if opts.Units < 0 || opts.Units > opts.MaxUnits {
		return nil, fmt.Errorf("%w: %d is not in 1..%d",
			ErrInvalidUnitCount, opts.Units, opts.MaxUnits)
	}

	s := &Simulator{
		ids:      opts.IDs,
		maxUnits: opts.MaxUnits,
		interval: opts.Interval,
		logger:   opts.Logger.With("component", "simulator"),
	}

	s.state = sched.NewState(sched.Options{
		Algorithm:        opts.Algorithm,
		Quantum:          opts.Quantum,
		UnitCount:        opts.Units,
		DispatchOnlySRTF: opts.DispatchOnlySRTF,
	})

	return s, nil
}

// MaxUnits returns the largest accepted unit count.
func (s *Simulator) MaxUnits() int {
	return s.maxUnits
}

// Interval returns the time between two ticks of a continuous run.
func (s *Simulator) Interval() time.Duration {
	return s.interval
}

// Snapshot returns a copy of the current state.
func (s *Simulator) Snapshot() sched.State {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()

	return s.state.Clone()
}

// Now returns the current simulated time.
func (s *Simulator) Now() int {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()

	return s.state.CurrentTime
}

// IsRunning tells if a continuous run is in progress.
func (s *Simulator) IsRunning() bool {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()

	return s.state.IsRunning
}

// Metrics aggregates the processes completed so far.
func (s *Simulator) Metrics() sched.Metrics {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()

	return s.state.Metrics()
}

// Timeline returns the reports of every tick since the last reset.
func (s *Simulator) Timeline() []sched.TickReport {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()

	out := make([]sched.TickReport, len(s.timeline))
	copy(out, s.timeline)

	return out
}
