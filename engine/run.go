package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sarchlab/cpusched/sched"
)

// Step advances the simulation by one tick and pauses it.
func (s *Simulator) Step() (sched.TickReport, error) {
	return s.advance(sched.Step{})
}

// Run advances the simulation every Interval while it is running, until the
// context is cancelled. Cancelling only stops future ticks.
func (s *Simulator) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.IsRunning() {
				continue
			}

			_, err := s.advance(sched.AdvanceTick{})
			if errors.Is(err, ErrNoProcesses) || errors.Is(err, ErrCompleted) {
				s.Pause()
				continue
			}

			if err != nil {
				return err
			}
		}
	}
}

// RunToCompletion advances the simulation until every process has
// completed. It returns the number of ticks it took. ErrTickLimit is
// returned if maxTicks ticks were not enough; zero means no limit.
func (s *Simulator) RunToCompletion(maxTicks int) (int, error) {
	if err := tickable(s.Snapshot()); err != nil {
		return 0, err
	}

	ticks := 0
	for {
		if maxTicks > 0 && ticks >= maxTicks {
			return ticks, fmt.Errorf("%w: %d ticks", ErrTickLimit, maxTicks)
		}

		_, err := s.advance(sched.AdvanceTick{})
		if errors.Is(err, ErrCompleted) {
			return ticks, nil
		}

		if err != nil {
			return ticks, err
		}

		ticks++

		if s.Snapshot().Done() {
			return ticks, nil
		}
	}
}

func (s *Simulator) advance(cmd sched.Command) (sched.TickReport, error) {
	s.opLock.Lock()
	defer s.opLock.Unlock()

	s.stateLock.Lock()
	if err := tickable(s.state); err != nil {
		s.stateLock.Unlock()
		return sched.TickReport{}, err
	}

	next, report := sched.Execute(s.state, cmd)

	done := next.Done()
	if done {
		next = sched.Apply(next, sched.Pause{})
	}

	s.state = next
	s.timeline = append(s.timeline, report)
	snapshot := next.Clone()
	s.stateLock.Unlock()

	s.logger.Debug("tick",
		"time", report.Time,
		"executed", report.Executed,
		"ready", len(snapshot.ReadyQueue),
	)

	for _, id := range report.Completed {
		p, _ := snapshot.Current(id)
		s.InvokeHook(sched.HookCtx{
			Domain: s,
			Pos:    sched.HookPosProcessDone,
			Item:   p,
		})
	}

	s.InvokeHook(sched.HookCtx{
		Domain: s,
		Pos:    sched.HookPosAfterTick,
		Item:   report,
		Detail: snapshot,
	})

	if done {
		m := snapshot.Metrics()
		s.logger.Info("simulation complete",
			"time", snapshot.CurrentTime,
			"completed", m.Completed,
			"avg_waiting", m.AverageWaitingTime,
			"avg_turnaround", m.AverageTurnaroundTime,
			"throughput", m.Throughput,
		)

		s.InvokeHook(sched.HookCtx{
			Domain: s,
			Pos:    sched.HookPosSimulationDone,
			Item:   snapshot,
		})
	}

	return report, nil
}
