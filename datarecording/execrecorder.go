package datarecording

import (
	"os"
	"strings"
	"sync"
	"time"
)

// ExecTableName is the table that holds execution information.
const ExecTableName = "exec_info"

const execTimeLayout = "2006-01-02 15:04:05.000000000"

// ExecInfo is a property of a program execution.
type ExecInfo struct {
	Property string
	Value    string
}

// ExecRecorder records how the simulator was invoked.
type ExecRecorder struct {
	mu       sync.Mutex
	recorder DataRecorder
	entries  []ExecInfo
	ended    bool
}

// NewExecRecorder creates the exec_info table in the recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	recorder.CreateTable(ExecTableName, ExecInfo{})

	return &ExecRecorder{recorder: recorder}
}

// Start notes the start time, the command line and the working directory.
func (e *ExecRecorder) Start() {
	e.Note("Start Time", time.Now().Format(execTimeLayout))
	e.Note("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "unknown"
	}

	e.Note("Working Directory", cwd)
}

// Note adds a property to the execution record.
func (e *ExecRecorder) Note(property, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.entries = append(e.entries, ExecInfo{Property: property, Value: value})
}

// End writes the collected properties along with the end time. Only the
// first call has an effect.
func (e *ExecRecorder) End() {
	e.mu.Lock()
	if e.ended {
		e.mu.Unlock()
		return
	}

	e.ended = true
	entries := append(e.entries, ExecInfo{
		Property: "End Time",
		Value:    time.Now().Format(execTimeLayout),
	})
	e.entries = nil
	e.mu.Unlock()

	for _, entry := range entries {
		e.recorder.InsertData(ExecTableName, entry)
	}

	e.recorder.Flush()
}
