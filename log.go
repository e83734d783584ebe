package primecount

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Log is the package-wide logger. It's silenced by default; the CLI raises
// its level and output on --verbose.
var Log = logrus.New()

func init() {
	Log.SetOutput(io.Discard)
}
