package sched

// Dispatch records a process being placed on a unit.
type Dispatch struct {
	Unit      int    `json:"unit"`
	ProcessID string `json:"process_id"`
	First     bool   `json:"first"`
}

// A TickReport describes what happened during one unit of simulated time.
type TickReport struct {
	// Time is the simulated time at the end of the tick.
	Time int `json:"time"`

	// Executed holds, per unit, the ID of the process that ran during the
	// tick. Idle units hold an empty string.
	Executed []string `json:"executed"`

	Admitted   []string   `json:"admitted,omitempty"`
	Completed  []string   `json:"completed,omitempty"`
	Preempted  []string   `json:"preempted,omitempty"`
	Evicted    []string   `json:"evicted,omitempty"`
	Dispatched []Dispatch `json:"dispatched,omitempty"`
}

// Idle tells if no unit did any work during the tick.
func (r TickReport) Idle() bool {
	for _, id := range r.Executed {
		if id != "" {
			return false
		}
	}

	return true
}

// Tick advances the simulation by one unit of time.
func Tick(s State) State {
	next, _ := Advance(s)
	return next
}

// Advance advances the simulation by one unit of time and reports the
// transitions that took place. The input state is not modified.
func Advance(prev State) (State, TickReport) {
	s := prev.Clone()
	now := s.CurrentTime + 1

	r := TickReport{
		Time:     now,
		Executed: make([]string, len(s.Units)),
	}

	s.admit(now, &r)
	s.age(&r)
	s.complete(now, &r)
	s.expireQuanta(&r)
	s.dispatch(now, &r)
	s.evictLonger(now, &r)

	s.CurrentTime = now

	return s, r
}

// admit moves every due process that is not placed anywhere yet to the tail
// of the ready queue, in master-list order.
func (s *State) admit(now int, r *TickReport) {
	for _, p := range s.Processes {
		if p.ArrivalTime > now || s.placed(p.ID) {
			continue
		}

		s.ReadyQueue = append(s.ReadyQueue, p)
		r.Admitted = append(r.Admitted, p.ID)
	}
}

func (s *State) age(r *TickReport) {
	for i, p := range s.Units {
		if p == nil {
			continue
		}

		r.Executed[i] = p.ID

		if p.RemainingTime > 0 {
			p.RemainingTime--
		}
		s.QuantumLeft[i]--
	}
}

func (s *State) complete(now int, r *TickReport) {
	for i, p := range s.Units {
		if p == nil || p.RemainingTime > 0 {
			continue
		}

		s.Completed = append(s.Completed, p.finished(now))
		s.vacate(i)
		r.Completed = append(r.Completed, p.ID)
	}
}

// expireQuanta sends processes that used up their time slice back to the
// tail of the ready queue. Only Round Robin has time slices.
func (s *State) expireQuanta(r *TickReport) {
	if s.Algorithm != RoundRobin {
		return
	}

	for i, p := range s.Units {
		if p == nil || s.QuantumLeft[i] > 0 {
			continue
		}

		s.ReadyQueue = append(s.ReadyQueue, *p)
		s.vacate(i)
		r.Preempted = append(r.Preempted, p.ID)
	}
}

func (s *State) dispatch(now int, r *TickReport) {
	for i := range s.Units {
		if s.Units[i] != nil {
			continue
		}

		idx := selectIndex(s.ReadyQueue, s.Algorithm)
		if idx < 0 {
			return
		}

		s.place(now, i, idx, r)
	}
}

// evictLonger lets a ready process with strictly less remaining time take
// the unit of the running process with the most remaining time. Each swap
// strictly lowers the total remaining time on the units, so the loop ends.
func (s *State) evictLonger(now int, r *TickReport) {
	if s.Algorithm != SRTF || s.DispatchOnlySRTF {
		return
	}

	less := comparator(SRTF)

	for {
		idx := selectIndex(s.ReadyQueue, SRTF)
		if idx < 0 {
			return
		}

		worst := -1
		for i, p := range s.Units {
			if p == nil {
				continue
			}

			if worst < 0 || less(*s.Units[worst], *p) {
				worst = i
			}
		}

		if worst < 0 {
			return
		}

		victim := *s.Units[worst]
		if s.ReadyQueue[idx].RemainingTime >= victim.RemainingTime {
			return
		}

		s.place(now, worst, idx, r)
		s.ReadyQueue = append(s.ReadyQueue, victim)
		r.Evicted = append(r.Evicted, victim.ID)
	}
}

// place moves ready-queue entry idx onto the unit, which is assumed free or
// about to be given up by its occupant.
func (s *State) place(now, unit, idx int, r *TickReport) {
	p := s.ReadyQueue[idx]
	first := !p.Started
	p = p.dispatched(now, unit)

	s.ReadyQueue = removeAt(s.ReadyQueue, idx)
	s.Units[unit] = &p
	s.QuantumLeft[unit] = s.Quantum

	r.Dispatched = append(r.Dispatched, Dispatch{
		Unit:      unit,
		ProcessID: p.ID,
		First:     first,
	})
}

func (s *State) vacate(unit int) {
	s.Units[unit] = nil
	s.QuantumLeft[unit] = s.Quantum
}

// prime rebuilds the time-zero state: zero-arrival processes are made ready
// in master-list order and dispatched onto the free units right away. At
// time zero nothing has executed yet, so the state only depends on the
// definitions and the settings.
func (s *State) prime() {
	if s.CurrentTime != 0 {
		return
	}

	s.ReadyQueue = nil
	s.Completed = nil
	s.Units = make([]*Process, s.UnitCount)
	s.QuantumLeft = fullQuantum(s.UnitCount, s.Quantum)

	for _, p := range s.Processes {
		if p.ArrivalTime <= 0 {
			s.ReadyQueue = append(s.ReadyQueue, p.resetProgress())
		}
	}

	s.dispatch(0, &TickReport{})
}
