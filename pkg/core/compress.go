package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"igatool/pkg/logging"
	"igatool/pkg/progress"

	"github.com/pierrec/lz4/v4"
)

// CompressOptions controls Compress.
type CompressOptions struct {
	BufferSize int               // Transfer buffer size; zero means DefaultBufferSize
	LZ4        bool              // Wrap the whole container in an LZ4 frame
	Progress   *progress.Tracker // Receives byte counts; may be nil
}

// Compress writes a new archive at output holding the files in inputs, in
// order. Each member is named after the final component of its path.
//
// A failure part way through leaves a truncated archive behind.
func Compress(output string, inputs []string, opts CompressOptions) error {
	bufSize := opts.BufferSize
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if err := checkBufferSize(bufSize); err != nil {
		return err
	}

	entries, sizes, err := collectInputs(inputs)
	if err != nil {
		return err
	}
	names := make([]string, len(entries))
	for i, in := range entries {
		names[i] = in.Name
	}
	dir, err := NewDirectory(names, sizes)
	if err != nil {
		return err
	}

	opts.Progress.Init(dir.PayloadSize())
	defer opts.Progress.Stop()

	return writeArchive(output, dir, entries, opts.LZ4, make([]byte, bufSize), opts.Progress)
}

// FileName returns the final component of path. A path ending in a
// separator has no file name and yields ErrInvalidName.
func FileName(path string) (string, error) {
	seps := "/" + string(os.PathSeparator)
	if path == "" || strings.ContainsRune(seps, rune(path[len(path)-1])) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, path)
	}
	return path[strings.LastIndexAny(path, seps)+1:], nil
}

// collectInputs names each input and measures its size.
func collectInputs(paths []string) ([]Input, []int64, error) {
	inputs := make([]Input, len(paths))
	sizes := make([]int64, len(paths))
	for i, p := range paths {
		name, err := FileName(p)
		if err != nil {
			return nil, nil, err
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, nil, fmt.Errorf("stat input: %w", err)
		}
		if !info.Mode().IsRegular() {
			return nil, nil, fmt.Errorf("input %s: not a regular file", p)
		}
		inputs[i] = Input{Name: name, FilePath: p}
		sizes[i] = info.Size()
	}
	return inputs, sizes, nil
}

// writeArchive writes the directory followed by every transformed payload.
func writeArchive(output string, dir *Directory, inputs []Input, wrap bool, buf []byte, tr *progress.Tracker) (err error) {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	bw := bufio.NewWriter(f)
	var w io.Writer = bw
	var zw *lz4.Writer
	if wrap {
		zw = lz4.NewWriter(bw)
		w = zw
	}

	head, err := dir.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.Write(head); err != nil {
		return fmt.Errorf("write directory: %w", err)
	}
	logging.Debugf("%s: %d entries, data start %d", output, len(dir.Entries), dir.DataStart)

	pw := &progress.Writer{W: w, T: tr}
	for i, in := range inputs {
		if err := appendPayload(pw, in, dir.Entries[i], buf); err != nil {
			return err
		}
	}

	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close lz4 writer: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// appendPayload streams one input file through the transform.
func appendPayload(w io.Writer, in Input, e Entry, buf []byte) error {
	f, err := os.Open(in.FilePath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	key := DataKey(e.Name, KeyByName)
	if _, err := copyTransformed(w, f, int64(e.Size), key, buf); err != nil {
		return fmt.Errorf("compress %s: %w", in.FilePath, err)
	}
	return nil
}
