package sched

// Default settings of a fresh simulation.
const (
	DefaultQuantum   = 2
	DefaultUnitCount = 1
	DefaultAlgorithm = FCFS
)

// Options configures a new State.
type Options struct {
	Algorithm Algorithm
	Quantum   int
	UnitCount int

	// DispatchOnlySRTF disables SRTF eviction. A running process is then only
	// reconsidered when it leaves its unit on its own.
	DispatchOnlySRTF bool
}

// Location tells where a process currently is.
type Location int

// The locations a defined process can be in.
const (
	LocationUnknown Location = iota
	LocationPending
	LocationReady
	LocationRunning
	LocationCompleted
)

func (l Location) String() string {
	switch l {
	case LocationPending:
		return "pending"
	case LocationReady:
		return "ready"
	case LocationRunning:
		return "running"
	case LocationCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// State is a full snapshot of a simulation. A State is treated as an
// immutable value: every transition works on a Clone.
type State struct {
	Processes   []Process  `json:"processes"`
	ReadyQueue  []Process  `json:"ready_queue"`
	Units       []*Process `json:"units"`
	QuantumLeft []int      `json:"quantum_left"`
	Completed   []Process  `json:"completed"`

	UnitCount   int       `json:"unit_count"`
	CurrentTime int       `json:"current_time"`
	Quantum     int       `json:"quantum"`
	IsRunning   bool      `json:"is_running"`
	Algorithm   Algorithm `json:"algorithm"`

	DispatchOnlySRTF bool `json:"dispatch_only_srtf"`
}

// NewState creates the canonical empty state.
func NewState(opts Options) State {
	if opts.Algorithm == "" {
		opts.Algorithm = DefaultAlgorithm
	}

	if opts.Quantum < 1 {
		opts.Quantum = DefaultQuantum
	}

	if opts.UnitCount < 1 {
		opts.UnitCount = DefaultUnitCount
	}

	s := State{
		Algorithm:        opts.Algorithm,
		Quantum:          opts.Quantum,
		UnitCount:        opts.UnitCount,
		DispatchOnlySRTF: opts.DispatchOnlySRTF,
		Units:            make([]*Process, opts.UnitCount),
		QuantumLeft:      fullQuantum(opts.UnitCount, opts.Quantum),
	}

	return s
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	c := s

	c.Processes = cloneList(s.Processes)
	c.ReadyQueue = cloneList(s.ReadyQueue)
	c.Completed = cloneList(s.Completed)

	if s.QuantumLeft != nil {
		c.QuantumLeft = make([]int, len(s.QuantumLeft))
		copy(c.QuantumLeft, s.QuantumLeft)
	}

	if s.Units != nil {
		c.Units = make([]*Process, len(s.Units))
		for i, p := range s.Units {
			if p != nil {
				cp := *p
				c.Units[i] = &cp
			}
		}
	}

	return c
}

// FindProcess returns the definition of a process in the master list.
func (s State) FindProcess(id string) (Process, bool) {
	i := indexOf(s.Processes, id)
	if i < 0 {
		return Process{}, false
	}

	return s.Processes[i], true
}

// Current returns the live copy of a process, wherever it is. Pending
// processes are returned from the master list.
func (s State) Current(id string) (Process, Location) {
	if i := indexOf(s.ReadyQueue, id); i >= 0 {
		return s.ReadyQueue[i], LocationReady
	}

	if u := s.unitOf(id); u >= 0 {
		return *s.Units[u], LocationRunning
	}

	if i := indexOf(s.Completed, id); i >= 0 {
		return s.Completed[i], LocationCompleted
	}

	if i := indexOf(s.Processes, id); i >= 0 {
		return s.Processes[i], LocationPending
	}

	return Process{}, LocationUnknown
}

// Location returns where the process currently is.
func (s State) Location(id string) Location {
	_, loc := s.Current(id)
	return loc
}

// BusyUnits counts the occupied units.
func (s State) BusyUnits() int {
	n := 0
	for _, p := range s.Units {
		if p != nil {
			n++
		}
	}

	return n
}

// Done tells if every defined process has completed.
func (s State) Done() bool {
	return len(s.Processes) > 0 && len(s.Completed) == len(s.Processes)
}

// Metrics aggregates the completed processes.
func (s State) Metrics() Metrics {
	return ComputeMetrics(s.Completed)
}

func (s State) unitOf(id string) int {
	for i, p := range s.Units {
		if p != nil && p.ID == id {
			return i
		}
	}

	return -1
}

// placed tells if the process is in the ready queue, on a unit, or
// completed.
func (s State) placed(id string) bool {
	return indexOf(s.ReadyQueue, id) >= 0 ||
		s.unitOf(id) >= 0 ||
		indexOf(s.Completed, id) >= 0
}

func cloneList(list []Process) []Process {
	if list == nil {
		return nil
	}

	out := make([]Process, len(list))
	copy(out, list)

	return out
}

func indexOf(list []Process, id string) int {
	for i, p := range list {
		if p.ID == id {
			return i
		}
	}

	return -1
}

func removeAt(list []Process, i int) []Process {
	out := make([]Process, 0, len(list)-1)
	out = append(out, list[:i]...)

	return append(out, list[i+1:]...)
}

func fullQuantum(n, quantum int) []int {
	q := make([]int, n)
	for i := range q {
		q[i] = quantum
	}

	return q
}
