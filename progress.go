package primecount

import "time"

// ProgressBar is the contract the Orchestrator drives a display through:
// SetTotal once, then Set on every tick, Start/Stop bracketing the run.
// NewOrchestrator substitutes NullProgressBar when Options.ProgressBar is
// nil, so callers never need a nil check of their own.
type ProgressBar interface {
	SetTotal(total int64)
	Set(current int64)
	Start()
	Stop()
}

// NullProgressBar discards every call; used for --no-progress runs and
// whenever stderr isn't a terminal.
type NullProgressBar struct{}

func (NullProgressBar) SetTotal(int64) {}
func (NullProgressBar) Set(int64)      {}
func (NullProgressBar) Start()         {}
func (NullProgressBar) Stop()          {}

// WorkerSnapshot is one row of the progress/report table.
type WorkerSnapshot struct {
	WorkerID       int
	TasksCompleted int64
	PrimesFound    int64
	AvgMs          float64
	Class          WorkerClass
	CurrentTaskID  int
	CurrentSize    int64
	HasCurrent     bool
}

// ProgressSnapshot is computed at most once per ReportPeriod (one second by
// default) by the Orchestrator; its byte count drives the progress bar and
// the CLI prints it to stderr via Options.OnProgress.
type ProgressSnapshot struct {
	Percent             float64
	TotalBytesProcessed int64
	FileSize            int64
	GlobalAvgMs         float64
	Elapsed             time.Duration
	ETA                 time.Duration
	ResidentMemoryBytes uint64
	Workers             []WorkerSnapshot
}

// computeETA projects remaining time from elapsed wall-clock and the
// fraction of bytes processed so far, per §4.6: elapsed * (1-p) / p.
func computeETA(elapsed time.Duration, percent float64) time.Duration {
	if percent <= 0 {
		return 0
	}
	return time.Duration(float64(elapsed) * (1 - percent) / percent)
}
