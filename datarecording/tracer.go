package datarecording

import (
	"sync"

	"github.com/rs/xid"
	"github.com/sarchlab/cpusched/sched"
)

// Tables written by the SimulationTracer.
const (
	SliceTableName      = "exec_slices"
	CompletionTableName = "completions"
	EventTableName      = "sched_events"
)

// SliceEntry records one unit executing one process for one tick.
type SliceEntry struct {
	RunID       string
	StartTime   int
	EndTime     int
	Unit        int
	ProcessID   string
	ProcessName string
}

// CompletionEntry records the statistics of a completed process.
type CompletionEntry struct {
	RunID          string
	ProcessID      string
	Name           string
	ArrivalTime    int
	BurstTime      int
	Priority       int
	StartTime      int
	FinishTime     int
	WaitingTime    int
	TurnaroundTime int
	ResponseTime   int
}

// EventEntry records a scheduling decision.
type EventEntry struct {
	RunID     string
	Time      int
	Kind      string
	ProcessID string
	Unit      int
}

// SimulationTracer is a hook that writes the execution of a simulation into
// a DataRecorder. Every reset starts a new run with a fresh RunID.
type SimulationTracer struct {
	mu       sync.Mutex
	recorder DataRecorder
	runID    string
}

// NewSimulationTracer creates the tracer tables in the recorder.
func NewSimulationTracer(recorder DataRecorder) *SimulationTracer {
	recorder.CreateTable(SliceTableName, SliceEntry{})
	recorder.CreateTable(CompletionTableName, CompletionEntry{})
	recorder.CreateTable(EventTableName, EventEntry{})

	return &SimulationTracer{
		recorder: recorder,
		runID:    xid.New().String(),
	}
}

// RunID returns the identifier of the run being recorded.
func (t *SimulationTracer) RunID() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.runID
}

// Func records the hook site.
func (t *SimulationTracer) Func(ctx sched.HookCtx) {
	switch ctx.Pos {
	case sched.HookPosAfterTick:
		report := ctx.Item.(sched.TickReport)
		st, _ := ctx.Detail.(sched.State)
		t.recordTick(report, st)
	case sched.HookPosProcessDone:
		t.recordCompletion(ctx.Item.(sched.Process))
	case sched.HookPosSimulationDone:
		t.recorder.Flush()
	case sched.HookPosReset:
		t.mu.Lock()
		t.runID = xid.New().String()
		t.mu.Unlock()
	}
}

func (t *SimulationTracer) recordTick(report sched.TickReport, st sched.State) {
	runID := t.RunID()

	for unit, id := range report.Executed {
		if id == "" {
			continue
		}

		p, _ := st.Current(id)
		t.recorder.InsertData(SliceTableName, SliceEntry{
			RunID:       runID,
			StartTime:   report.Time - 1,
			EndTime:     report.Time,
			Unit:        unit,
			ProcessID:   id,
			ProcessName: p.Name,
		})
	}

	event := func(kind, id string, unit int) {
		t.recorder.InsertData(EventTableName, EventEntry{
			RunID:     runID,
			Time:      report.Time,
			Kind:      kind,
			ProcessID: id,
			Unit:      unit,
		})
	}

	for _, id := range report.Admitted {
		event("admit", id, sched.NoUnit)
	}

	for _, id := range report.Preempted {
		event("preempt", id, sched.NoUnit)
	}

	for _, id := range report.Evicted {
		event("evict", id, sched.NoUnit)
	}

	for _, d := range report.Dispatched {
		event("dispatch", d.ProcessID, d.Unit)
	}
}

func (t *SimulationTracer) recordCompletion(p sched.Process) {
	t.recorder.InsertData(CompletionTableName, CompletionEntry{
		RunID:          t.RunID(),
		ProcessID:      p.ID,
		Name:           p.Name,
		ArrivalTime:    p.ArrivalTime,
		BurstTime:      p.BurstTime,
		Priority:       p.Priority,
		StartTime:      p.StartTime,
		FinishTime:     p.FinishTime,
		WaitingTime:    p.WaitingTime,
		TurnaroundTime: p.TurnaroundTime,
		ResponseTime:   p.ResponseTime,
	})
}
