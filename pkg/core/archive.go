package core

import (
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"
)

// Constants for archive format
const (
	Magic      = "IGA0" // Signature at the start of every archive
	HeaderSize = 16     // Offset of the entry table length
)

// DefaultBufferSize is the transfer buffer used for payload copies.
const DefaultBufferSize = 4096

// The payload transform has a period of 256 bytes.
var _ = [1]struct{}{}[DefaultBufferSize%256]

var (
	headerUnknown = [4]byte{0x00, 0x00, 0x00, 0x00}
	headerPadding = [8]byte{0x02, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00}
)

// Header is the fixed-size block at the start of an archive.
// Only Signature is validated; the other fields are carried as written.
type Header struct {
	Signature [4]byte
	Unknown   [4]byte
	Padding   [8]byte
}

// NewHeader returns the header written by Compress.
func NewHeader() Header {
	var h Header
	copy(h.Signature[:], Magic)
	h.Unknown = headerUnknown
	h.Padding = headerPadding
	return h
}

// MarshalBinary packs the header into its 16-byte wire form.
func (h Header) MarshalBinary() ([]byte, error) {
	b, err := restruct.Pack(binary.LittleEndian, &h)
	if err != nil {
		return nil, fmt.Errorf("pack header: %w", err)
	}
	return b, nil
}

// UnmarshalBinary unpacks the 16-byte wire form.
func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) < HeaderSize {
		return fmt.Errorf("%w: header is %d bytes, want %d", ErrFormat, len(b), HeaderSize)
	}
	if err := restruct.Unpack(b[:HeaderSize], binary.LittleEndian, h); err != nil {
		return fmt.Errorf("unpack header: %w", err)
	}
	return nil
}

// Valid reports whether the signature matches Magic.
func (h Header) Valid() bool {
	return string(h.Signature[:]) == Magic
}

// Entry is one archive member as recorded in the entry table.
type Entry struct {
	NameOffset uint32 // Offset of the name in the unpacked name sequence
	Name       string // Member file name
	Offset     uint32 // Payload offset relative to the end of the name block
	Size       uint32 // Payload length in bytes
}

// Directory is the parsed header, entry table and name block of an archive.
type Directory struct {
	Header    Header
	Entries   []Entry
	DataStart int64 // Absolute offset immediately after the name block
}

// Start returns the absolute payload offset of e.
func (d *Directory) Start(e Entry) int64 {
	return d.DataStart + int64(e.Offset)
}

// ExtractTask defines one member extraction
type ExtractTask struct {
	Entry
	Start    int64  // Absolute payload offset in the archive
	DestPath string // Destination path for extraction
	Key      byte   // Payload transform key
}

// Input holds file information for compression
type Input struct {
	Name     string // Member name stored in the archive
	FilePath string // Full file path on disk
}
