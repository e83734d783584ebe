package main

import (
	"os"

	"golang.org/x/crypto/ssh/terminal"
	pb "gopkg.in/cheggaaa/pb.v1"

	"github.com/mtenth/primecount"
)

// NewProgressBar returns a terminal-aware progress bar wrapping
// github.com/cheggaaa/pb, or a no-op when stderr isn't a terminal.
func NewProgressBar() primecount.ProgressBar {
	if !terminal.IsTerminal(int(os.Stderr.Fd())) {
		return primecount.NullProgressBar{}
	}
	bar := pb.New64(0)
	bar.ShowCounters = true
	bar.SetUnits(pb.U_BYTES)
	bar.Output = os.Stderr
	return consoleProgressBar{bar}
}

// consoleProgressBar adapts a *pb.ProgressBar to primecount.ProgressBar.
type consoleProgressBar struct {
	*pb.ProgressBar
}

func (p consoleProgressBar) SetTotal(total int64) {
	p.ProgressBar.Total = total
}

func (p consoleProgressBar) Set(current int64) {
	p.ProgressBar.Set64(current)
}

func (p consoleProgressBar) Start() {
	p.ProgressBar.Start()
}

func (p consoleProgressBar) Stop() {
	p.ProgressBar.Finish()
}
