package primecount

import "fmt"

// WorkerFault describes a worker that died while processing a task. The
// Orchestrator converts it into a failed-queue entry rather than propagating
// it directly.
type WorkerFault struct {
	WorkerID int
	Task     Task
	Cause    error
}

func (e *WorkerFault) Error() string {
	return fmt.Sprintf("worker %d faulted on task %d [%d,%d): %v", e.WorkerID, e.Task.ID, e.Task.Start, e.Task.End, e.Cause)
}

func (e *WorkerFault) Unwrap() error {
	return e.Cause
}
