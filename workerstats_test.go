package primecount

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerStatsUpdateAccumulates(t *testing.T) {
	s := NewWorkerStats()
	s.Init(0)
	s.Update(Result{WorkerID: 0, PrimeCount: 3, ElapsedMs: 100, BytesCovered: 1000})
	s.Update(Result{WorkerID: 0, PrimeCount: 2, ElapsedMs: 300, BytesCovered: 2000})

	tasks, primes, avg := s.Snapshot(0)
	require.EqualValues(t, 2, tasks)
	require.EqualValues(t, 5, primes)
	require.InDelta(t, 200.0, avg, 0.001)
	require.EqualValues(t, 3000, s.TotalBytesProcessed())
}

func TestWorkerStatsClassificationNeedsMinimumHistory(t *testing.T) {
	s := NewWorkerStats()
	s.Init(0)
	s.Update(Result{WorkerID: 0, ElapsedMs: 5000})
	require.Equal(t, ClassAverage, s.PerformanceClass(0))

	s.Update(Result{WorkerID: 0, ElapsedMs: 5000})
	require.Equal(t, ClassAverage, s.PerformanceClass(0))
}

func TestWorkerStatsClassificationSlowFast(t *testing.T) {
	s := NewWorkerStats()
	s.Init(0)
	s.Init(1)
	s.Init(2)
	// Three tasks across workers establish a global average of (10+10+100)/3.
	s.Update(Result{WorkerID: 0, ElapsedMs: 10})
	s.Update(Result{WorkerID: 1, ElapsedMs: 10})
	s.Update(Result{WorkerID: 2, ElapsedMs: 100})

	require.Equal(t, ClassSlow, s.PerformanceClass(2))
	require.Equal(t, ClassFast, s.PerformanceClass(0))
}

func TestWorkerStatsClassificationMonotonicity(t *testing.T) {
	// P5: a strictly slower worker is never classified faster than a
	// strictly faster one once the global average has enough samples.
	s := NewWorkerStats()
	s.Init(0)
	s.Init(1)
	for i := 0; i < 5; i++ {
		s.Update(Result{WorkerID: 0, ElapsedMs: 50})
		s.Update(Result{WorkerID: 1, ElapsedMs: 500})
	}
	classA := s.PerformanceClass(0)
	classB := s.PerformanceClass(1)
	require.False(t, classA == ClassSlow && classB == ClassFast)
}

func TestWorkerStatsCurrentTaskTracking(t *testing.T) {
	s := NewWorkerStats()
	s.Init(0)
	task := Task{ID: 7, Start: 0, End: 100}
	s.SetCurrent(0, task)

	got, ok := s.GetCurrent(0)
	require.True(t, ok)
	require.Equal(t, task, got)

	s.ClearCurrent(0)
	_, ok = s.GetCurrent(0)
	require.False(t, ok)
}

func TestWorkerStatsUpdateClearsCurrent(t *testing.T) {
	s := NewWorkerStats()
	s.Init(0)
	s.SetCurrent(0, Task{ID: 1, Start: 0, End: 10})
	s.Update(Result{WorkerID: 0, ElapsedMs: 5, BytesCovered: 10})
	_, ok := s.GetCurrent(0)
	require.False(t, ok)
}

func TestWorkerIDsSorted(t *testing.T) {
	s := NewWorkerStats()
	s.Init(3)
	s.Init(1)
	s.Init(2)
	require.Equal(t, []int{1, 2, 3}, s.WorkerIDs())
}
