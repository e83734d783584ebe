package primecount

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitialPartitionSmallFile(t *testing.T) {
	// scenario 1: 16 byte file, 4 cores -> floor of 1024 bytes dominates,
	// so the whole file is a single task.
	tm := NewTaskManager(4, 0, 0)
	tasks := tm.InitialPartition(16)
	require.Len(t, tasks, 1)
	require.Equal(t, int64(0), tasks[0].Start)
	require.Equal(t, int64(16), tasks[0].End)
}

func TestInitialPartitionCoversWholeFile(t *testing.T) {
	tm := NewTaskManager(4, 0, 0)
	const fileSize = int64(50_000_000)
	tasks := tm.InitialPartition(fileSize)
	require.NotEmpty(t, tasks)

	var cursor int64
	for _, task := range tasks {
		require.Equal(t, cursor, task.Start)
		require.Greater(t, task.End, task.Start)
		cursor = task.End
	}
	require.Equal(t, fileSize, cursor)
}

func TestInitialPartitionIDsUnique(t *testing.T) {
	tm := NewTaskManager(8, 0, 0)
	tasks := tm.InitialPartition(100_000_000)
	seen := make(map[int]bool)
	for _, task := range tasks {
		require.False(t, seen[task.ID], "duplicate id %d", task.ID)
		seen[task.ID] = true
	}
}

func TestAdaptiveSizeBounds(t *testing.T) {
	// P4: every adaptive chunk size lies in [MinChunk, MaxChunk].
	tm := NewTaskManager(4, 0, 0)
	for _, ms := range []int64{2000, 800, 300, 100, 0} {
		if ms > 0 {
			tm.Record(ms)
		}
		task := tm.CreateAdaptiveTask(0, MaxChunk*100, ClassAverage)
		require.GreaterOrEqual(t, task.Size(), MinChunk)
		require.LessOrEqual(t, task.Size(), MaxChunk)
	}
}

func TestAdaptiveSizeClampedByRemainingRange(t *testing.T) {
	tm := NewTaskManager(4, 0, 0)
	tm.Record(100) // drives base size to MaxChunk
	task := tm.CreateAdaptiveTask(0, 500, ClassAverage)
	require.Equal(t, int64(500), task.Size())
}

func TestAdaptiveSizeUnderSlowTasks(t *testing.T) {
	// scenario 5: a worker sleeping 1500ms per task drives the sizer to
	// MinChunk.
	tm := NewTaskManager(4, 0, 0)
	tm.Record(1500)
	task := tm.CreateAdaptiveTask(0, MaxChunk*10, ClassAverage)
	require.Equal(t, MinChunk, task.Size())
}

func TestAdaptiveSizeClassMultiplier(t *testing.T) {
	tm := NewTaskManager(4, 0, 0)
	tm.Record(100) // base = MaxChunk

	slow := tm.CreateAdaptiveTask(0, MaxChunk*10, ClassSlow)
	require.Equal(t, MaxChunk/2, slow.Size())

	fast := tm.CreateAdaptiveTask(slow.End, slow.End+MaxChunk*10, ClassFast)
	require.Equal(t, MaxChunk, fast.Size()) // 1.5x clamps back down to MaxChunk
}

func TestRecordWindowEviction(t *testing.T) {
	tm := NewTaskManager(4, 0, 0)
	for i := 0; i < HistoryWindow+5; i++ {
		tm.Record(1000)
	}
	require.Len(t, tm.history, HistoryWindow)
}

func TestMinMaxChunkOverride(t *testing.T) {
	tm := NewTaskManager(2, 4096, 8192)
	tm.Record(100)
	task := tm.CreateAdaptiveTask(0, 1<<30, ClassAverage)
	require.Equal(t, int64(8192), task.Size())
}
