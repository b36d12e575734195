// Package logging holds the process-wide diagnostic logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger  = log.New(os.Stderr, "[igatool] ", log.LstdFlags|log.Lmicroseconds)
	verbose atomic.Bool
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Options configures Setup.
type Options struct {
	File       string // Rotating log file; empty logs to the console only
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
	Compress   bool
	Verbose    bool
}

// Setup directs the logger to console, teed into a rotating file when
// opts.File is set. The returned closer releases the file.
func Setup(console io.Writer, opts Options) (io.Closer, error) {
	verbose.Store(opts.Verbose)
	if opts.File == "" {
		logger.SetOutput(console)
		return nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxAge:     opts.MaxAgeDays,
		MaxBackups: opts.MaxBackups,
		Compress:   opts.Compress,
	}
	logger.SetOutput(io.MultiWriter(console, rotator))
	return rotator, nil
}

// SetOutput redirects the logger.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetVerbose toggles Debugf output.
func SetVerbose(v bool) {
	verbose.Store(v)
}

// Logf logs unconditionally.
func Logf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

// Debugf logs only in verbose mode.
func Debugf(format string, args ...interface{}) {
	if verbose.Load() {
		logger.Printf(format, args...)
	}
}
