package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mtenth/primecount"
)

var (
	numWorkers int
	minChunk   int64
	maxChunk   int64
	noProgress bool
	verbose    bool
	retryCap   int
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "primecount [path]",
		Short: "Count prime integers in a large line-oriented integer file.",
		Long: `primecount partitions a file of one decimal integer per line into byte
ranges, counts primes across a pool of workers, and adapts future chunk
sizes to live worker throughput. Defaults to input.txt in the current
directory.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "input.txt"
			if len(args) > 0 {
				path = args[0]
			}
			if verbose {
				primecount.Log.SetOutput(cmd.ErrOrStderr())
				primecount.Log.SetLevel(logrus.InfoLevel)
			}
			return runCount(cmd, path)
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&numWorkers, "workers", "n", 0, "number of worker lanes (default: number of CPUs)")
	flags.Int64Var(&minChunk, "min-chunk", 0, "override MIN_CHUNK in bytes (default: 1 MiB)")
	flags.Int64Var(&maxChunk, "max-chunk", 0, "override MAX_CHUNK in bytes (default: 10 MiB)")
	flags.BoolVar(&noProgress, "no-progress", false, "disable the live progress bar")
	flags.BoolVar(&verbose, "verbose", false, "log worker failures and replacements to stderr")
	flags.IntVar(&retryCap, "retry-cap", 0, "maximum retries for a failed task (0 = unbounded)")
	return cmd
}
