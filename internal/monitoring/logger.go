// Package monitoring holds the diagnostic loggers shared by the analysis
// packages and the CLI.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

var verbose bool

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetVerbose enables or disables Debugf output.
func SetVerbose(v bool) {
	verbose = v
}

// Debugf logs through Logf only when verbose output is enabled. Skipped
// records and other per-line detail go here.
func Debugf(format string, v ...interface{}) {
	if !verbose {
		return
	}
	Logf("[debug] "+format, v...)
}
