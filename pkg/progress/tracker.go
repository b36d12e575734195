package progress

import (
	"fmt"
	"io"
	"time"
)

// Interval is the minimum time between two progress lines.
const Interval = time.Second

// Tracker reports extracted entry names and, when enabled, transfer progress.
// A nil *Tracker discards everything.
type Tracker struct {
	out     io.Writer
	enabled bool
	now     func() time.Time

	totalSize      uint64
	processed      uint64
	prevBytes      uint64
	prevPercentage float64
	startTime      time.Time
	lastOutputTime time.Time
}

// New returns a Tracker writing to out. Progress lines are printed only
// when showProgress is set; entry names are always printed.
func New(out io.Writer, showProgress bool) *Tracker {
	return &Tracker{out: out, enabled: showProgress, now: time.Now}
}

// Init resets the counters for an operation transferring size bytes.
func (t *Tracker) Init(size uint64) {
	if t == nil {
		return
	}
	t.totalSize = size
	if t.totalSize == 0 {
		t.totalSize = 1 // Avoid division by zero
	}
	t.processed = 0
	t.prevBytes = 0
	t.prevPercentage = 0
	t.startTime = t.now()
	t.lastOutputTime = t.startTime
}

// Entry reports the member about to be transferred.
func (t *Tracker) Entry(name string) {
	if t == nil {
		return
	}
	fmt.Fprintln(t.out, name)
}

// Printf writes an operator-facing line.
func (t *Tracker) Printf(format string, args ...interface{}) {
	if t == nil {
		return
	}
	fmt.Fprintf(t.out, format, args...)
}

// Processed returns the number of bytes counted since Init.
func (t *Tracker) Processed() uint64 {
	if t == nil {
		return 0
	}
	return t.processed
}

// AddBytes adds processed bytes to the counter
func (t *Tracker) AddBytes(n uint64) {
	if t == nil || n == 0 {
		return
	}
	t.processed += n
	if !t.enabled {
		return
	}

	now := t.now()
	elapsed := now.Sub(t.lastOutputTime)
	currentPercentage := float64(t.processed) / float64(t.totalSize) * 100
	if elapsed < Interval && currentPercentage-t.prevPercentage < 10 {
		return
	}

	seconds := elapsed.Seconds()
	if seconds < 0.001 {
		seconds = 0.001
	}
	rate := uint64(float64(t.processed-t.prevBytes) / seconds)
	fmt.Fprintf(t.out, "Processed %s of %s (%.1f%%) | Rate: %s\n",
		formatSize(t.processed), formatSize(t.totalSize), currentPercentage, formatRate(rate))

	t.prevBytes = t.processed
	t.prevPercentage = currentPercentage
	t.lastOutputTime = now
}

// Stop prints the completion summary when progress is enabled.
func (t *Tracker) Stop() {
	if t == nil || !t.enabled {
		return
	}
	totalTime := t.now().Sub(t.startTime).Seconds()
	if totalTime < 0.001 {
		totalTime = 0.001
	}
	fmt.Fprintf(t.out, "Completed processing %s in %.1f seconds (avg rate: %s)\n",
		formatSize(t.processed), totalTime, formatRate(uint64(float64(t.processed)/totalTime)))
}

// formatSize returns a human-readable size string
func formatSize(bytes uint64) string {
	return humanize(bytes, "B")
}

// formatRate returns a human-readable rate string
func formatRate(bytesPerSec uint64) string {
	return humanize(bytesPerSec, "B/s")
}

func humanize(n uint64, suffix string) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d %s", n, suffix)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ci%s", float64(n)/float64(div), "KMGTPE"[exp], suffix)
}

// Writer is a writer that tracks bytes written for progress reporting
type Writer struct {
	W io.Writer
	T *Tracker
}

// Write implements io.Writer and tracks bytes written
func (pw *Writer) Write(p []byte) (n int, err error) {
	n, err = pw.W.Write(p)
	if n > 0 {
		pw.T.AddBytes(uint64(n))
	}
	return
}
