package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"igatool/pkg/logging"
	"igatool/pkg/progress"
)

// ExtractOptions controls Extract.
type ExtractOptions struct {
	OutputDir  string            // Directory receiving the members; must exist unless MkdirAll
	Policy     KeyPolicy         // Payload transform key selection
	LZ4        bool              // The archive file is an LZ4 frame holding the container
	MkdirAll   bool              // Create OutputDir once the archive has been validated
	BufferSize int               // Transfer buffer size; zero means DefaultBufferSize
	Progress   *progress.Tracker // Receives entry names and byte counts; may be nil
}

// Extract writes every member of the archive at input into opts.OutputDir,
// in table order. The whole directory is parsed and range-checked before
// the first file is created; the first error aborts the remaining entries.
func Extract(input string, opts ExtractOptions) error {
	bufSize := opts.BufferSize
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if err := checkBufferSize(bufSize); err != nil {
		return err
	}

	a, err := OpenArchive(input, opts.LZ4)
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, err := extractTasks(a.Dir, opts.OutputDir, opts.Policy)
	if err != nil {
		return err
	}
	if opts.MkdirAll && opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	opts.Progress.Init(a.Dir.PayloadSize())
	defer opts.Progress.Stop()

	buf := make([]byte, bufSize)
	for _, task := range tasks {
		opts.Progress.Entry(task.Name)
		if err := extractFile(a, task, buf, opts.Progress); err != nil {
			return err
		}
	}
	return nil
}

// extractTasks resolves destination paths and keys for every entry.
func extractTasks(dir *Directory, outputDir string, policy KeyPolicy) ([]ExtractTask, error) {
	if outputDir == "" {
		outputDir = "."
	}
	tasks := make([]ExtractTask, len(dir.Entries))
	for i, e := range dir.Entries {
		if err := checkEntryName(e.Name); err != nil {
			return nil, err
		}
		tasks[i] = ExtractTask{
			Entry:    e,
			Start:    dir.Start(e),
			DestPath: filepath.Join(outputDir, e.Name),
			Key:      DataKey(e.Name, policy),
		}
	}
	return tasks, nil
}

// checkEntryName rejects names that would land outside the output directory.
func checkEntryName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty entry name", ErrFormat)
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return fmt.Errorf("%w: absolute entry name %q", ErrFormat, name)
	}
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return fmt.Errorf("%w: entry name %q leaves the output directory", ErrFormat, name)
		}
	}
	return nil
}

// extractFile streams one payload through the transform into its destination.
func extractFile(a *Archive, task ExtractTask, buf []byte, tr *progress.Tracker) (err error) {
	f, err := os.Create(task.DestPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", task.DestPath, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", task.DestPath, cerr)
		}
	}()

	logging.Debugf("extract %s: offset %d, size %d, key 0x%02X", task.Name, task.Start, task.Size, task.Key)
	w := &progress.Writer{W: f, T: tr}
	if _, err := copyTransformed(w, a.Payload(task.Entry), int64(task.Size), task.Key, buf); err != nil {
		return fmt.Errorf("extract %s: %w", task.Name, err)
	}
	return nil
}
