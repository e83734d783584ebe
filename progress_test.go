package primecount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComputeETAHalfway(t *testing.T) {
	eta := computeETA(10*time.Second, 0.5)
	require.Equal(t, 10*time.Second, eta)
}

func TestComputeETAZeroPercent(t *testing.T) {
	require.Equal(t, time.Duration(0), computeETA(5*time.Second, 0))
}

func TestComputeETANearlyDone(t *testing.T) {
	eta := computeETA(90*time.Second, 0.9)
	require.InDelta(t, float64(10*time.Second), float64(eta), float64(time.Millisecond))
}

func TestNullProgressBarNoOp(t *testing.T) {
	var p NullProgressBar
	p.SetTotal(100)
	p.Set(50)
	p.Start()
	p.Stop()
}
