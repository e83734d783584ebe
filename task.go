package primecount

import "runtime"

const (
	// MinChunk is the smallest byte range an adaptive task is allowed to
	// cover, aside from one clamped to the end of the remaining range. The
	// initial partition can use smaller tasks.
	MinChunk int64 = 1 << 20 // 1 MiB
	// MaxChunk is the largest byte range an adaptive task is allowed to
	// request.
	MaxChunk int64 = 10 << 20 // 10 MiB
	// HistoryWindow bounds how many recent task durations feed the
	// adaptive sizer's running mean.
	HistoryWindow = 20
)

// Task is a half-open byte range of the input file plus an id unique within
// the run.
type Task struct {
	ID    int
	Start int64
	End   int64
}

// Size returns the number of bytes the task covers.
func (t Task) Size() int64 { return t.End - t.Start }

// TaskManager mints tasks with unique, monotonically increasing ids and
// computes both the initial partition of a file and the adaptive size of
// tasks minted later from the remaining range. It's only ever used from the
// Orchestrator's single lane, so the id counter needs no synchronization
// (see DESIGN.md).
type TaskManager struct {
	numCores int
	minChunk int64
	maxChunk int64

	nextID int

	history   []int64 // recent per-task durations, FIFO, capped at HistoryWindow
	recentAvg float64 // cached mean of history
}

// NewTaskManager creates a TaskManager targeting numCores workers, sizing
// chunks between minChunk and maxChunk. A numCores <= 0 falls back to
// runtime.NumCPU(); a minChunk or maxChunk <= 0 falls back to the package
// defaults MinChunk/MaxChunk.
func NewTaskManager(numCores int, minChunk, maxChunk int64) *TaskManager {
	if numCores <= 0 {
		numCores = runtime.NumCPU()
	}
	if minChunk <= 0 {
		minChunk = MinChunk
	}
	if maxChunk <= 0 {
		maxChunk = MaxChunk
	}
	return &TaskManager{numCores: numCores, minChunk: minChunk, maxChunk: maxChunk}
}

func (m *TaskManager) mint(start, end int64) Task {
	t := Task{ID: m.nextID, Start: start, End: end}
	m.nextID++
	return t
}

// InitialPartition computes the starting set of tasks covering [0, fileSize)
// per the sizing table in §4.3: small files get a floor-clamped even split,
// mid-sized files target four tasks per core, and large files clamp the
// per-core-quarter share into [MinChunk, MaxChunk].
func (m *TaskManager) InitialPartition(fileSize int64) []Task {
	if fileSize <= 0 {
		return nil
	}
	size := m.initialChunkSize(fileSize)

	var tasks []Task
	for start := int64(0); start < fileSize; start += size {
		end := start + size
		if end > fileSize {
			end = fileSize
		}
		tasks = append(tasks, m.mint(start, end))
	}
	return tasks
}

func (m *TaskManager) initialChunkSize(fileSize int64) int64 {
	cores := int64(m.numCores)
	switch {
	case fileSize < m.minChunk*cores*2:
		size := ceilDiv(fileSize, cores*2)
		if size < 1024 {
			size = 1024
		}
		return size
	case fileSize < m.maxChunk*cores*4:
		return ceilDiv(fileSize, cores*4)
	default:
		return clamp(ceilDiv(fileSize, cores*4), m.minChunk, m.maxChunk)
	}
}

// Record appends a task's duration to the adaptive sizer's history window,
// dropping the oldest entry once the window is full, and recomputes the
// cached mean.
func (m *TaskManager) Record(durationMs int64) {
	m.history = append(m.history, durationMs)
	if len(m.history) > HistoryWindow {
		m.history = m.history[len(m.history)-HistoryWindow:]
	}
	var sum int64
	for _, d := range m.history {
		sum += d
	}
	m.recentAvg = float64(sum) / float64(len(m.history))
}

// adaptiveSize maps the sizer's recent-average window onto a base chunk
// size per the table in §4.3. No data yet behaves like "fast".
func (m *TaskManager) adaptiveSize() int64 {
	if len(m.history) == 0 {
		return m.maxChunk
	}
	avg := m.recentAvg
	switch {
	case avg > 1000:
		return m.minChunk
	case avg > 500:
		return (m.minChunk + m.maxChunk) / 4
	case avg > 200:
		return (m.minChunk + m.maxChunk) / 2
	default:
		return m.maxChunk
	}
}

// CreateAdaptiveTask mints a new task starting at remStart, sized from the
// sizer's current base size adjusted by class, clamped to the remaining
// range [remStart, remEnd).
func (m *TaskManager) CreateAdaptiveTask(remStart, remEnd int64, class WorkerClass) Task {
	base := m.adaptiveSize()
	adjusted := m.applyClassMultiplier(base, class)

	remaining := remEnd - remStart
	size := adjusted
	if size > remaining {
		size = remaining
	}
	return m.mint(remStart, remStart+size)
}

func (m *TaskManager) applyClassMultiplier(base int64, class WorkerClass) int64 {
	switch class {
	case ClassSlow:
		adjusted := base / 2
		if adjusted < m.minChunk {
			adjusted = m.minChunk
		}
		return adjusted
	case ClassFast:
		adjusted := int64(float64(base) * 1.5)
		if adjusted > m.maxChunk {
			adjusted = m.maxChunk
		}
		return adjusted
	default:
		return base
	}
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
