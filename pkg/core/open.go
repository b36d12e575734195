package core

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"igatool/pkg/logging"

	"github.com/pierrec/lz4/v4"
)

// lz4FrameMagic starts every LZ4 frame.
var lz4FrameMagic = []byte{0x04, 0x22, 0x4d, 0x18}

// Archive is an opened archive with its parsed directory.
type Archive struct {
	Path    string
	Dir     *Directory
	Size    int64 // Size of the container in bytes
	Wrapped bool  // The file held the container inside an LZ4 frame

	r io.ReaderAt
	f *os.File
}

// maxUnwrapSize bounds the container held in an LZ4 frame. Offsets and sizes
// are 32-bit, so no valid container is much larger than twice that.
var maxUnwrapSize int64 = 1 << 33

// OpenArchive opens path, parses its directory and checks every payload
// against the container size. With unwrap set the file must be an LZ4 frame
// holding the container, which is decompressed into memory first.
func OpenArchive(path string, unwrap bool) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	a, err := newArchive(path, f, unwrap)
	if err != nil {
		f.Close()
		return nil, err
	}
	return a, nil
}

func newArchive(path string, f *os.File, unwrap bool) (*Archive, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	a := &Archive{Path: path, Size: info.Size(), r: f, f: f}

	if unwrap {
		buf, err := unwrapLZ4(f, info.Size())
		if err != nil {
			return nil, err
		}
		logging.Debugf("%s: unwrapped lz4 frame, %d -> %d bytes", path, info.Size(), len(buf))
		a.r = bytes.NewReader(buf)
		a.Size = int64(len(buf))
		a.Wrapped = true
	}

	dir, err := ReadDirectory(io.NewSectionReader(a.r, 0, a.Size))
	if err != nil {
		return nil, err
	}
	logging.Debugf("%s: %d entries, data start %d, size %d", path, len(dir.Entries), dir.DataStart, a.Size)
	if err := dir.Resolve(a.Size); err != nil {
		return nil, err
	}
	a.Dir = dir
	return a, nil
}

// unwrapLZ4 decompresses the LZ4 frame in the first size bytes of r.
func unwrapLZ4(r io.ReaderAt, size int64) ([]byte, error) {
	var magic [4]byte
	n, err := r.ReadAt(magic[:], 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read frame magic: %w", err)
	}
	if n < len(magic) || !bytes.Equal(magic[:], lz4FrameMagic) {
		return nil, fmt.Errorf("%w: not an lz4 frame", ErrFormat)
	}

	var buf bytes.Buffer
	zr := lz4.NewReader(io.NewSectionReader(r, 0, size))
	if _, err := io.Copy(&buf, io.LimitReader(zr, maxUnwrapSize+1)); err != nil {
		return nil, fmt.Errorf("unwrap lz4 frame: %w", err)
	}
	if int64(buf.Len()) > maxUnwrapSize {
		return nil, fmt.Errorf("%w: lz4 frame holds more than %d bytes", ErrTooLarge, maxUnwrapSize)
	}
	return buf.Bytes(), nil
}

// Payload returns a reader over the raw, still transformed, payload of e.
func (a *Archive) Payload(e Entry) *io.SectionReader {
	return io.NewSectionReader(a.r, a.Dir.Start(e), int64(e.Size))
}

// Close releases the archive file.
func (a *Archive) Close() error {
	return a.f.Close()
}
