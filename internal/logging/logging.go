// Package logging provides leveled log output on top of the standard logger,
// optionally written to a rotating log file.
package logging

import (
	"io"
	"log"
	"os"
	"sync/atomic"

	"github.com/natefinch/lumberjack"
)

// Config controls where log messages go
type Config struct {
	// File is the log file path; empty sends messages to stderr
	File string

	// MaxSizeMB is the size at which the log file is rotated
	MaxSizeMB int

	// MaxAgeDays is how long rotated files are kept
	MaxAgeDays int

	// Verbose enables Debugf output
	Verbose bool
}

var (
	verbose atomic.Bool
	rotator *lumberjack.Logger
)

// Setup configures the standard logger. It returns a function that closes
// the log file, if one was opened.
func Setup(c Config) func() {
	verbose.Store(c.Verbose)
	if c.File == "" {
		log.SetOutput(os.Stderr)
		return func() {}
	}
	rotator = &lumberjack.Logger{
		Filename: c.File,
		MaxSize:  c.MaxSizeMB, // megabytes
		MaxAge:   c.MaxAgeDays,
	}
	log.SetOutput(rotator)
	return func() {
		log.SetOutput(os.Stderr)
		rotator.Close()
		rotator = nil
	}
}

// SetOutput redirects log messages, mostly for tests
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// SetVerbose toggles Debugf output
func SetVerbose(v bool) {
	verbose.Store(v)
}

// Debugf logs at DEBUG level when verbose output is enabled
func Debugf(format string, args ...interface{}) {
	if verbose.Load() {
		log.Printf(" DEBUG "+format, args...)
	}
}

// Infof logs at INFO level
func Infof(format string, args ...interface{}) {
	log.Printf(" INFO "+format, args...)
}

// Warningf logs at WARNING level
func Warningf(format string, args ...interface{}) {
	log.Printf(" WARNING "+format, args...)
}

// Errorf logs at ERROR level
func Errorf(format string, args ...interface{}) {
	log.Printf(" ERROR "+format, args...)
}
