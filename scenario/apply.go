package scenario

import (
	"fmt"

	"github.com/sarchlab/cpusched/sched"
)

// A Target is a simulation that accepts scenario settings and definitions.
// engine.Simulator is a Target.
type Target interface {
	SetAlgorithm(name string) error
	SetQuantum(q int) error
	SetUnitCount(n int) error
	SetEviction(enabled bool)
	AddProcess(spec sched.ProcessSpec) (string, error)
}

// Apply pushes the settings and then the process definitions into the
// target, in file order. It returns the identifiers of the new processes.
func (sc *Scenario) Apply(t Target) ([]string, error) {
	if sc.Algorithm != "" {
		if err := t.SetAlgorithm(sc.Algorithm); err != nil {
			return nil, err
		}
	}

	if sc.Quantum > 0 {
		if err := t.SetQuantum(sc.Quantum); err != nil {
			return nil, err
		}
	}

	if sc.Units > 0 {
		if err := t.SetUnitCount(sc.Units); err != nil {
			return nil, err
		}
	}

	if sc.SRTFEviction != nil {
		t.SetEviction(*sc.SRTFEviction)
	}

	ids := make([]string, 0, len(sc.Processes))
	for i, p := range sc.Processes {
		id, err := t.AddProcess(p)
		if err != nil {
			return ids, fmt.Errorf("process %d (%q): %w", i+1, p.Name, err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}
