package monitoring

import (
	"io"
	"log"
	"os"
)

const logFlags = log.LstdFlags | log.Lmicroseconds

// Logf is the process-wide ops logger used by the seeder binary and the
// migration hooks. Replace it with SetLogger or SetOutput.
var Logf func(format string, v ...interface{}) = log.New(os.Stderr, "[trackseed] ", logFlags).Printf

// SetLogger replaces the package logger. Passing nil installs a no-op.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetOutput sends Logf to w with the standard prefix. Passing nil mutes it.
func SetOutput(w io.Writer) {
	if w == nil {
		SetLogger(nil)
		return
	}
	Logf = log.New(w, "[trackseed] ", logFlags).Printf
}
