package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mtenth/primecount"
)

func runCount(cmd *cobra.Command, path string) error {
	bar := NewProgressBar()

	opt := primecount.Options{
		Workers:      numWorkers,
		MinChunk:     minChunk,
		MaxChunk:     maxChunk,
		RetryCap:     retryCap,
		ReportPeriod: time.Second,
	}
	if !noProgress {
		opt.ProgressBar = bar
		opt.OnProgress = func(snap primecount.ProgressSnapshot) {
			printProgress(cmd, snap)
		}
	}

	o, err := primecount.NewOrchestrator(path, opt)
	if err != nil {
		return err
	}

	summary, err := o.Run(context.Background())
	if err != nil {
		return err
	}

	printSummary(cmd, summary)
	return nil
}

func printProgress(cmd *cobra.Command, snap primecount.ProgressSnapshot) {
	fmt.Fprintf(cmd.ErrOrStderr(), "\r%5.1f%%  %d/%d bytes  mem %dMiB  avg %.1fms  eta %s",
		snap.Percent*100, snap.TotalBytesProcessed, snap.FileSize,
		snap.ResidentMemoryBytes/(1<<20), snap.GlobalAvgMs, snap.ETA.Round(time.Millisecond))
}

func printSummary(cmd *cobra.Command, s primecount.RunSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nprimes found: %d\n", s.PrimeCount)
	fmt.Fprintf(out, "elapsed: %dms\n", s.ElapsedMs)
	fmt.Fprintf(out, "global avg task time: %.1fms\n", s.GlobalAvgMs)
	fmt.Fprintln(out, "worker  tasks  primes  avg-ms  class")
	for _, w := range s.Workers {
		fmt.Fprintf(out, "%6d  %5d  %6d  %6.1f  %s\n", w.WorkerID, w.TasksCompleted, w.PrimesFound, w.AvgMs, w.Class)
	}
}
