package primecount

import (
	"context"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Options configures an Orchestrator run. Zero values fall back to sane
// defaults (worker count -> runtime.NumCPU(), progress -> NullProgressBar).
type Options struct {
	Workers      int
	MinChunk     int64 // 0 = package default MinChunk
	MaxChunk     int64 // 0 = package default MaxChunk
	ProgressBar  ProgressBar
	RetryCap     int // 0 = unbounded, per spec's default (§9)
	ReportPeriod time.Duration
	// OnProgress, if set, is called at most once per ReportPeriod with a
	// snapshot of run state. Used by the CLI to render the free-form
	// progress block described in §6; the core engine itself only drives
	// the ProgressBar.
	OnProgress func(ProgressSnapshot)
}

// RunSummary is the final report: total prime count, elapsed time, and a
// per-worker breakdown, modeled on the teacher's JSON-tagged stats structs
// even though the CLI renders it as plain text.
type RunSummary struct {
	PrimeCount  int64            `json:"prime-count"`
	ElapsedMs   int64            `json:"elapsed-ms"`
	GlobalAvgMs float64          `json:"global-avg-ms"`
	Workers     []WorkerSnapshot `json:"workers"`
	FileSize    int64            `json:"file-size"`
}

type taskExecutor func(workerID int, t Task) (ChunkResult, error)

// Orchestrator owns the task queue, failed queue, remaining-range cursor,
// worker pool, and aggregate counters for a single counting run. All
// mutation of that state happens on the goroutine that calls Run; workers
// only ever exchange tasks and results through channels (§5).
type Orchestrator struct {
	path     string
	fileSize int64

	numWorkers int
	retryCap   int

	tm    *TaskManager
	stats *WorkerStats

	taskQueue   []Task
	failedQueue []Task
	retries     map[int]int

	remStart  int64
	remEnd    int64
	remActive bool

	primeCount int64
	startTime  time.Time

	progress     ProgressBar
	reportPeriod time.Duration
	lastReportAt time.Time
	onProgress   func(ProgressSnapshot)

	execute taskExecutor

	msgs chan workerMsg
}

type workerMsg struct {
	workerID int
	result   Result
	err      error
	exited   bool
}

type workerCmd struct {
	task Task
	exit bool
}

// NewOrchestrator stats path and prepares the initial partition. A stat
// failure, or a path that is a directory, is a startup error: returned to
// the caller as a wrapped error rather than retried.
func NewOrchestrator(path string, opt Options) (*Orchestrator, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to stat input file")
	}
	if info.IsDir() {
		return nil, errors.Errorf("%s is a directory, not a file", path)
	}

	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	progress := opt.ProgressBar
	if progress == nil {
		progress = NullProgressBar{}
	}
	period := opt.ReportPeriod
	if period <= 0 {
		period = time.Second
	}

	o := &Orchestrator{
		path:         path,
		fileSize:     info.Size(),
		numWorkers:   workers,
		retryCap:     opt.RetryCap,
		tm:           NewTaskManager(workers, opt.MinChunk, opt.MaxChunk),
		stats:        NewWorkerStats(),
		retries:      make(map[int]int),
		progress:     progress,
		reportPeriod: period,
		onProgress:   opt.OnProgress,
		msgs:         make(chan workerMsg),
	}
	o.execute = func(_ int, t Task) (ChunkResult, error) {
		return ReadIntegers(o.path, t.Start, t.End)
	}
	o.taskQueue = o.tm.InitialPartition(o.fileSize)
	return o, nil
}

// Run dispatches the worker pool and blocks until every task has either
// completed (I4) or, with Options.RetryCap set, been dropped after exceeding
// the cap, or until ctx is cancelled; it returns the final summary.
func (o *Orchestrator) Run(ctx context.Context) (RunSummary, error) {
	o.startTime = time.Now()
	o.progress.SetTotal(o.fileSize)
	o.progress.Start()
	defer o.progress.Stop()

	channels := make(map[int]chan workerCmd)
	live := make(map[int]bool)

	numStart := o.numWorkers
	if len(o.taskQueue) < numStart {
		numStart = len(o.taskQueue)
	}
	for i := 0; i < numStart; i++ {
		o.stats.Init(i)
		ch := o.spawnWorker(ctx, i)
		channels[i] = ch
		live[i] = true
		task := o.popInitialTask()
		o.stats.SetCurrent(i, task)
		ch <- workerCmd{task: task}
	}

	if numStart == 0 {
		return o.summary(), nil
	}

	for len(live) > 0 {
		select {
		case <-ctx.Done():
			return o.summary(), ctx.Err()
		case msg := <-o.msgs:
			switch {
			case msg.exited:
				delete(live, msg.workerID)
			case msg.err != nil:
				o.onWorkerError(ctx, msg.workerID, msg.err, channels, live)
			default:
				o.onResult(msg.result)
				o.dispatch(msg.workerID, channels[msg.workerID], live)
			}
		}
	}

	return o.summary(), nil
}

func (o *Orchestrator) popInitialTask() Task {
	t := o.taskQueue[0]
	o.taskQueue = o.taskQueue[1:]
	return t
}

func (o *Orchestrator) spawnWorker(ctx context.Context, id int) chan workerCmd {
	ch := make(chan workerCmd)
	go o.workerLoop(ctx, id, ch)
	return ch
}

// workerLoop runs a single logical worker lane. It processes one task at a
// time and reports back on the shared message channel; on any task error it
// terminates without reporting "exited" (this is what "worker death" means
// in this implementation — see §4.5 on-worker-error).
func (o *Orchestrator) workerLoop(ctx context.Context, id int, cmds chan workerCmd) {
	for cmd := range cmds {
		if cmd.exit {
			select {
			case o.msgs <- workerMsg{workerID: id, exited: true}:
			case <-ctx.Done():
			}
			return
		}
		start := time.Now()
		res, err := o.execute(id, cmd.task)
		elapsed := time.Since(start).Milliseconds()
		if err != nil {
			fault := &WorkerFault{WorkerID: id, Task: cmd.task, Cause: err}
			select {
			case o.msgs <- workerMsg{workerID: id, err: fault}:
			case <-ctx.Done():
			}
			return
		}
		select {
		case o.msgs <- workerMsg{workerID: id, result: Result{
			Task:         cmd.task,
			PrimeCount:   res.PrimeCount,
			ElapsedMs:    elapsed,
			BytesCovered: res.BytesCovered,
			WorkerID:     id,
		}}:
		case <-ctx.Done():
			return
		}
	}
}

func (o *Orchestrator) onResult(r Result) {
	o.primeCount += int64(r.PrimeCount)
	o.stats.Update(r)
	o.tm.Record(r.ElapsedMs)
	o.maybeReportProgress()
}

// onWorkerError pushes the worker's in-flight task to the failed queue and,
// if any work remains, spawns a replacement worker under the same id with
// its stats history preserved (§4.5 on-worker-error).
func (o *Orchestrator) onWorkerError(ctx context.Context, workerID int, cause error, channels map[int]chan workerCmd, live map[int]bool) {
	if t, ok := o.stats.GetCurrent(workerID); ok {
		o.enqueueFailed(t)
		o.stats.ClearCurrent(workerID)
	}
	Log.WithField("worker", workerID).Warn(cause)

	if !o.hasRemainingWork() {
		delete(live, workerID)
		return
	}
	ch := o.spawnWorker(ctx, workerID)
	channels[workerID] = ch
	Log.WithField("worker", workerID).Info("replacement worker spawned")
	o.dispatch(workerID, ch, live)
}

// enqueueFailed pushes t onto the failed queue, honoring an optional retry
// cap (§9 hardening note; unbounded by default per spec).
func (o *Orchestrator) enqueueFailed(t Task) bool {
	if o.retryCap > 0 {
		o.retries[t.ID]++
		if o.retries[t.ID] > o.retryCap {
			Log.WithField("task", t.ID).Error("task exceeded retry cap, dropping")
			return false
		}
	}
	o.failedQueue = append(o.failedQueue, t)
	return true
}

func (o *Orchestrator) hasRemainingWork() bool {
	return len(o.failedQueue) > 0 || len(o.taskQueue) > 0 || o.remActive
}

// dispatch implements the Dispatch Policy of §4.5: failed queue first,
// then the main queue (smallest-first for a slow worker when there are at
// least two tasks queued, LIFO otherwise), then an adaptive task minted
// from the remaining range, and finally an exit signal.
func (o *Orchestrator) dispatch(workerID int, ch chan workerCmd, live map[int]bool) {
	if len(o.failedQueue) > 0 {
		t := o.failedQueue[0]
		o.failedQueue = o.failedQueue[1:]
		o.dispatchTask(workerID, ch, t)
		return
	}

	if len(o.taskQueue) > 0 {
		class := o.stats.PerformanceClass(workerID)
		var t Task
		if class == ClassSlow && len(o.taskQueue) >= 2 {
			sort.Slice(o.taskQueue, func(i, j int) bool {
				return o.taskQueue[i].Size() < o.taskQueue[j].Size()
			})
			t = o.taskQueue[0]
			o.taskQueue = o.taskQueue[1:]
		} else {
			last := len(o.taskQueue) - 1
			t = o.taskQueue[last]
			o.taskQueue = o.taskQueue[:last]
		}
		o.dispatchTask(workerID, ch, t)
		return
	}

	if o.remActive {
		class := o.stats.PerformanceClass(workerID)
		t := o.tm.CreateAdaptiveTask(o.remStart, o.remEnd, class)
		o.remStart = t.End
		if o.remStart >= o.remEnd {
			o.remActive = false
		}
		o.dispatchTask(workerID, ch, t)
		return
	}

	// Leave workerID in live: the worker goroutine is still running and will
	// report back via the exited ack (handled by Run's msg.exited case) once
	// it has actually returned, not the instant the exit command is sent.
	ch <- workerCmd{exit: true}
}

func (o *Orchestrator) dispatchTask(workerID int, ch chan workerCmd, t Task) {
	o.stats.SetCurrent(workerID, t)
	ch <- workerCmd{task: t}
}

// maybeReportProgress pushes an updated ProgressSnapshot at most once per
// reportPeriod (§4.6).
func (o *Orchestrator) maybeReportProgress() {
	now := time.Now()
	if !o.lastReportAt.IsZero() && now.Sub(o.lastReportAt) < o.reportPeriod {
		return
	}
	o.lastReportAt = now

	processed := o.stats.TotalBytesProcessed()
	o.progress.Set(processed)

	var percent float64
	if o.fileSize > 0 {
		percent = float64(processed) / float64(o.fileSize)
	}
	elapsed := now.Sub(o.startTime)
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	snap := ProgressSnapshot{
		Percent:             percent,
		TotalBytesProcessed: processed,
		FileSize:            o.fileSize,
		GlobalAvgMs:         o.stats.GlobalAvgMs(),
		Elapsed:             elapsed,
		ETA:                 computeETA(elapsed, percent),
		ResidentMemoryBytes: mem.Sys,
		Workers:             o.workerSnapshots(),
	}
	if o.onProgress != nil {
		o.onProgress(snap)
	}
}

func (o *Orchestrator) workerSnapshots() []WorkerSnapshot {
	ids := o.stats.WorkerIDs()
	out := make([]WorkerSnapshot, 0, len(ids))
	for _, id := range ids {
		tasks, primes, avg := o.stats.Snapshot(id)
		cur, has := o.stats.GetCurrent(id)
		ws := WorkerSnapshot{
			WorkerID:       id,
			TasksCompleted: tasks,
			PrimesFound:    primes,
			AvgMs:          avg,
			Class:          o.stats.PerformanceClass(id),
			HasCurrent:     has,
		}
		if has {
			ws.CurrentTaskID = cur.ID
			ws.CurrentSize = cur.Size()
		}
		out = append(out, ws)
	}
	return out
}

func (o *Orchestrator) summary() RunSummary {
	return RunSummary{
		PrimeCount:  o.primeCount,
		ElapsedMs:   time.Since(o.startTime).Milliseconds(),
		GlobalAvgMs: o.stats.GlobalAvgMs(),
		Workers:     o.workerSnapshots(),
		FileSize:    o.fileSize,
	}
}
