package sched

// A Command is a control input to the simulation. Commands are plain data;
// Apply interprets them with a type switch.
type Command interface {
	isCommand()
}

// AddProcess defines a new process. The ID must be unique; commands with an
// empty or already used ID are ignored.
type AddProcess struct {
	ID   string
	Spec ProcessSpec
}

// EditProcess replaces the definition of an existing process and resets its
// progress.
type EditProcess struct {
	ID   string
	Spec ProcessSpec
}

// RemoveProcess deletes a process from every location.
type RemoveProcess struct {
	ID string
}

// SetAlgorithm switches the scheduling policy.
type SetAlgorithm struct {
	Algorithm Algorithm
}

// SetQuantum changes the Round Robin time slice. Every unit's remaining
// slice is reset to the new value.
type SetQuantum struct {
	Quantum int
}

// SetUnitCount changes the number of processing units.
type SetUnitCount struct {
	Count int
}

// SetEviction toggles SRTF eviction of running processes.
type SetEviction struct {
	DispatchOnly bool
}

// Start marks the simulation as running.
type Start struct{}

// Pause marks the simulation as paused.
type Pause struct{}

// AdvanceTick advances the clock by one tick and leaves the running flag
// alone. Timers driving a continuous run issue this command.
type AdvanceTick struct{}

// Step advances the clock by one tick and pauses the simulation.
type Step struct{}

// Reset returns to time zero, keeping the process definitions.
type Reset struct{}

func (AddProcess) isCommand()    {}
func (EditProcess) isCommand()   {}
func (RemoveProcess) isCommand() {}
func (SetAlgorithm) isCommand()  {}
func (SetQuantum) isCommand()    {}
func (SetUnitCount) isCommand()  {}
func (SetEviction) isCommand()   {}
func (Start) isCommand()         {}
func (Pause) isCommand()         {}
func (AdvanceTick) isCommand()   {}
func (Step) isCommand()          {}
func (Reset) isCommand()         {}

// Apply computes the state that results from applying the command. The input
// state is not modified. Commands carrying invalid values are ignored; input
// validation belongs to the caller.
func Apply(s State, cmd Command) State {
	next, _ := Execute(s, cmd)
	return next
}

// Execute is Apply that also returns the report of the tick, if the command
// advanced the clock. For all other commands the report is the zero value.
func Execute(s State, cmd Command) (State, TickReport) {
	var report TickReport

	next := s.Clone()

	switch c := cmd.(type) {
	case AddProcess:
		next.addProcess(c.ID, c.Spec)
	case EditProcess:
		next.editProcess(c.ID, c.Spec)
	case RemoveProcess:
		next.removeProcess(c.ID)
	case SetAlgorithm:
		next.Algorithm = c.Algorithm
	case SetQuantum:
		next.setQuantum(c.Quantum)
	case SetUnitCount:
		next.setUnitCount(c.Count)
	case SetEviction:
		next.DispatchOnlySRTF = c.DispatchOnly
	case Start:
		next.IsRunning = true
	case Pause:
		next.IsRunning = false
	case AdvanceTick:
		next, report = Advance(s)
	case Step:
		next, report = Advance(s)
		next.IsRunning = false
	case Reset:
		next.reset()
	}

	next.prime()

	return next, report
}

func (s *State) addProcess(id string, spec ProcessSpec) {
	if id == "" || indexOf(s.Processes, id) >= 0 {
		return
	}

	s.Processes = append(s.Processes, NewProcess(id, spec))
}

func (s *State) editProcess(id string, spec ProcessSpec) {
	i := indexOf(s.Processes, id)
	if i < 0 {
		return
	}

	p := NewProcess(id, spec)
	s.Processes[i] = p

	arrived := p.ArrivalTime <= s.CurrentTime

	if j := indexOf(s.ReadyQueue, id); j >= 0 {
		if arrived {
			s.ReadyQueue[j] = p
		} else {
			s.ReadyQueue = removeAt(s.ReadyQueue, j)
		}
	}

	if u := s.unitOf(id); u >= 0 {
		s.vacate(u)
		if arrived {
			s.ReadyQueue = append(s.ReadyQueue, p)
		}
	}

	if j := indexOf(s.Completed, id); j >= 0 {
		s.Completed = removeAt(s.Completed, j)
	}
}

func (s *State) removeProcess(id string) {
	i := indexOf(s.Processes, id)
	if i < 0 {
		return
	}

	s.Processes = removeAt(s.Processes, i)

	if j := indexOf(s.ReadyQueue, id); j >= 0 {
		s.ReadyQueue = removeAt(s.ReadyQueue, j)
	}

	if u := s.unitOf(id); u >= 0 {
		s.vacate(u)
	}

	if j := indexOf(s.Completed, id); j >= 0 {
		s.Completed = removeAt(s.Completed, j)
	}
}

func (s *State) setQuantum(q int) {
	if q < 1 {
		return
	}

	s.Quantum = q
	s.QuantumLeft = fullQuantum(s.UnitCount, q)
}

// setUnitCount grows or shrinks the unit array. Processes on removed units
// go back to the tail of the ready queue with their progress intact.
func (s *State) setUnitCount(n int) {
	if n < 1 || n == s.UnitCount {
		return
	}

	if n > s.UnitCount {
		for i := s.UnitCount; i < n; i++ {
			s.Units = append(s.Units, nil)
			s.QuantumLeft = append(s.QuantumLeft, s.Quantum)
		}
	} else {
		for _, p := range s.Units[n:] {
			if p != nil {
				s.ReadyQueue = append(s.ReadyQueue, *p)
			}
		}

		s.Units = s.Units[:n]
		s.QuantumLeft = s.QuantumLeft[:n]
	}

	s.UnitCount = n
}

func (s *State) reset() {
	s.CurrentTime = 0
	s.IsRunning = false
	s.ReadyQueue = nil
	s.Completed = nil
	s.Units = make([]*Process, s.UnitCount)
	s.QuantumLeft = fullQuantum(s.UnitCount, s.Quantum)

	for i, p := range s.Processes {
		s.Processes[i] = p.resetProgress()
	}
}
