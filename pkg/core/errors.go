package core

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat marks an entry table or name block that is inconsistent with its declared lengths.
	ErrFormat = errors.New("malformed archive")
	// ErrInvalidName is returned for an input path that has no final file name component.
	ErrInvalidName = errors.New("invalid entry name")
	// ErrBufferSize is returned for a transfer buffer that is not a positive multiple of 256.
	ErrBufferSize = errors.New("buffer size must be a positive multiple of 256")
	// ErrTooLarge is returned when a size or offset does not fit the 32-bit table fields.
	ErrTooLarge = errors.New("value does not fit in 32 bits")
)

// SignatureError reports an archive that does not start with Magic.
type SignatureError struct {
	Got [4]byte
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("unexpected signature: 0x%02X%02X%02X%02X", e.Got[0], e.Got[1], e.Got[2], e.Got[3])
}

// RangeError reports an entry whose payload extends past the end of the archive.
type RangeError struct {
	Name     string
	Offset   int64
	Size     uint32
	FileSize int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("entry %q out of range: offset %d, size %d, file size %d", e.Name, e.Offset, e.Size, e.FileSize)
}
