package engine

import (
	"fmt"

	"github.com/sarchlab/cpusched/sched"
)

// AddProcess validates and defines a process. It returns the identifier
// assigned to the new process.
func (s *Simulator) AddProcess(spec sched.ProcessSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}

	id := s.ids.Generate()
	s.apply(sched.AddProcess{ID: id, Spec: spec}, nil)

	s.logger.Debug("process defined",
		"id", id,
		"name", spec.Name,
		"arrival", spec.ArrivalTime,
		"burst", spec.BurstTime,
		"priority", spec.Priority,
	)

	return id, nil
}

// EditProcess replaces the definition of a process and resets its progress.
func (s *Simulator) EditProcess(id string, spec sched.ProcessSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	return s.apply(sched.EditProcess{ID: id, Spec: spec}, s.requireProcess(id))
}

// RemoveProcess deletes a process.
func (s *Simulator) RemoveProcess(id string) error {
	return s.apply(sched.RemoveProcess{ID: id}, s.requireProcess(id))
}

// SetAlgorithm switches the scheduling policy by name.
func (s *Simulator) SetAlgorithm(name string) error {
	alg, err := sched.ParseAlgorithm(name)
	if err != nil {
		return err
	}

	return s.apply(sched.SetAlgorithm{Algorithm: alg}, nil)
}

// SetQuantum changes the Round Robin time slice.
func (s *Simulator) SetQuantum(q int) error {
	if q < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantum, q)
	}

	return s.apply(sched.SetQuantum{Quantum: q}, nil)
}

// SetUnitCount changes the number of processing units.
func (s *Simulator) SetUnitCount(n int) error {
	if n < 1 || n > s.maxUnits {
		return fmt.Errorf("%w: %d is not in 1..%d",
			ErrInvalidUnitCount, n, s.maxUnits)
	}

	return s.apply(sched.SetUnitCount{Count: n}, nil)
}

// SetEviction turns SRTF eviction of running processes on or off.
func (s *Simulator) SetEviction(enabled bool) {
	_ = s.apply(sched.SetEviction{DispatchOnly: !enabled}, nil)
}

// Start lets a continuous run advance the simulation.
func (s *Simulator) Start() error {
	return s.apply(sched.Start{}, tickable)
}

// Pause stops a continuous run. The current tick, if any, still completes.
func (s *Simulator) Pause() {
	_ = s.apply(sched.Pause{}, nil)
}

// Reset returns the simulation to time zero and clears the timeline. The
// process definitions and settings are kept.
func (s *Simulator) Reset() {
	_ = s.apply(sched.Reset{}, nil)
	s.logger.Info("simulation reset")
}

func (s *Simulator) requireProcess(id string) func(sched.State) error {
	return func(st sched.State) error {
		if _, ok := st.FindProcess(id); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownProcess, id)
		}

		return nil
	}
}

func tickable(st sched.State) error {
	if len(st.Processes) == 0 {
		return ErrNoProcesses
	}

	if st.Done() {
		return ErrCompleted
	}

	return nil
}

// apply runs a non-tick command. The check, if given, runs against the
// current state under the lock and vetoes the command when it fails.
func (s *Simulator) apply(
	cmd sched.Command,
	check func(sched.State) error,
) error {
	s.opLock.Lock()
	defer s.opLock.Unlock()

	s.stateLock.Lock()
	if check != nil {
		if err := check(s.state); err != nil {
			s.stateLock.Unlock()
			return err
		}
	}

	s.state = sched.Apply(s.state, cmd)

	_, reset := cmd.(sched.Reset)
	if reset {
		s.timeline = nil
	}

	next := s.state.Clone()
	s.stateLock.Unlock()

	ctx := sched.HookCtx{
		Domain: s,
		Pos:    sched.HookPosCommand,
		Item:   cmd,
		Detail: next,
	}

	if reset {
		ctx = sched.HookCtx{
			Domain: s,
			Pos:    sched.HookPosReset,
			Item:   next,
		}
	}

	s.InvokeHook(ctx)

	return nil
}
