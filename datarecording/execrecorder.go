package datarecording

import (
	"os"
	"strings"
	"time"
)

const execTableName = "exec_info"

// ExecInfo is one property of a run.
type ExecInfo struct {
	Property string
	Value    string
}

// ExecRecorder records how a simulation was launched and when it ended.
type ExecRecorder struct {
	recorder DataRecorder
	entries  []ExecInfo
}

// NewExecRecorder creates the exec_info table in recorder.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	recorder.CreateTable(execTableName, ExecInfo{})

	return &ExecRecorder{recorder: recorder}
}

// Set records an extra property of the run, such as a setting.
func (e *ExecRecorder) Set(property, value string) {
	e.entries = append(e.entries, ExecInfo{property, value})
}

// Start records the start time, the command and the working directory.
func (e *ExecRecorder) Start() {
	e.Set("Start Time", formatTime(time.Now()))
	e.Set("Command", strings.Join(os.Args, " "))

	if cwd, err := os.Getwd(); err == nil {
		e.Set("Working Directory", cwd)
	}
}

// End writes every property into the recorder along with the end time.
func (e *ExecRecorder) End() {
	e.Set("End Time", formatTime(time.Now()))

	for _, entry := range e.entries {
		e.recorder.InsertData(execTableName, entry)
	}

	e.entries = nil

	e.recorder.Flush()
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05.000000000")
}
