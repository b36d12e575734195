package core

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
)

// countingReader tracks the absolute stream position while parsing.
type countingReader struct {
	r *bufio.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

// ReadHeader reads and validates the fixed header at the start of r.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf[:len(Magic)]); err != nil {
		return h, fmt.Errorf("read signature: %w", err)
	}
	copy(h.Signature[:], buf)
	if !h.Valid() {
		return h, &SignatureError{Got: h.Signature}
	}
	if _, err := io.ReadFull(r, buf[len(Magic):]); err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := h.UnmarshalBinary(buf); err != nil {
		return h, err
	}
	return h, nil
}

// ReadDirectory parses the header, entry table and name block from r, which
// must be positioned at the start of the archive. The returned DataStart is
// the absolute offset of the payload block.
func ReadDirectory(r io.Reader) (*Directory, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	cr := &countingReader{r: bufio.NewReader(r), n: HeaderSize}

	table, err := readBlock(cr)
	if err != nil {
		return nil, fmt.Errorf("read entry table: %w", err)
	}
	names, err := readBlock(cr)
	if err != nil {
		return nil, fmt.Errorf("read name block: %w", err)
	}

	entries, err := parseEntryTable(table)
	if err != nil {
		return nil, err
	}
	if err := parseNames(entries, names); err != nil {
		return nil, err
	}
	return &Directory{Header: h, Entries: entries, DataStart: cr.n}, nil
}

// readBlock reads a VarUint length followed by that many bytes.
func readBlock(cr *countingReader) ([]byte, error) {
	n, err := ReadVarUint(cr)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, cr, int64(n)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseEntryTable decodes (name offset, offset, size) triples until the
// table is exhausted.
func parseEntryTable(table []byte) ([]Entry, error) {
	r := bytes.NewReader(table)
	var entries []Entry
	for r.Len() > 0 {
		var f [3]uint32
		for i := range f {
			v, err := ReadVarUint(r)
			if err != nil {
				return nil, fmt.Errorf("%w: entry %d: %v", ErrFormat, len(entries), err)
			}
			f[i] = v
		}
		entries = append(entries, Entry{NameOffset: f[0], Offset: f[1], Size: f[2]})
	}
	return entries, nil
}

// parseNames fills in entry names from the name block. Every name but the
// last is read by the delta of adjacent name offsets. The last one is read
// until the end of the block: some producers write a stray zero byte before
// certain characters, so the block length in bytes cannot be used to size it.
func parseNames(entries []Entry, names []byte) error {
	r := bytes.NewReader(names)
	for i := range entries {
		e := &entries[i]
		if i == len(entries)-1 {
			name, err := ReadPackedStringTo(r)
			if err != nil {
				return fmt.Errorf("%w: name of entry %d: %v", ErrFormat, i, err)
			}
			e.Name = name
			break
		}
		n := int64(entries[i+1].NameOffset) - int64(e.NameOffset)
		if n < 0 || n > int64(r.Len()) {
			return fmt.Errorf("%w: entry %d name length %d with %d name bytes left", ErrFormat, i, n, r.Len())
		}
		name, err := ReadPackedString(r, int(n))
		if err != nil {
			return fmt.Errorf("%w: name of entry %d: %v", ErrFormat, i, err)
		}
		e.Name = name
	}
	return nil
}

// NewDirectory lays out a directory for members with the given names and
// payload sizes, in order.
func NewDirectory(names []string, sizes []int64) (*Directory, error) {
	if len(names) != len(sizes) {
		return nil, fmt.Errorf("%d names for %d sizes", len(names), len(sizes))
	}
	entries := make([]Entry, len(names))
	var nameOffset, offset uint64
	for i, name := range names {
		if sizes[i] < 0 || sizes[i] > math.MaxUint32 {
			return nil, fmt.Errorf("%w: size %d of %q", ErrTooLarge, sizes[i], name)
		}
		if nameOffset > math.MaxUint32 || offset > math.MaxUint32 {
			return nil, fmt.Errorf("%w: offset of %q", ErrTooLarge, name)
		}
		entries[i] = Entry{
			NameOffset: uint32(nameOffset),
			Name:       name,
			Offset:     uint32(offset),
			Size:       uint32(sizes[i]),
		}
		nameOffset += uint64(len(name))
		offset += uint64(sizes[i])
	}
	d := &Directory{Header: NewHeader(), Entries: entries}
	b, err := d.MarshalBinary()
	if err != nil {
		return nil, err
	}
	d.DataStart = int64(len(b))
	return d, nil
}

// MarshalBinary encodes the header, entry table and name block.
func (d *Directory) MarshalBinary() ([]byte, error) {
	var table, names []byte
	for _, e := range d.Entries {
		table = AppendVarUint(table, e.NameOffset)
		table = AppendVarUint(table, e.Offset)
		table = AppendVarUint(table, e.Size)
		names = AppendPackedString(names, e.Name)
	}
	if uint64(len(table)) > math.MaxUint32 || uint64(len(names)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: directory blocks", ErrTooLarge)
	}
	b, err := d.Header.MarshalBinary()
	if err != nil {
		return nil, err
	}
	b = AppendVarUint(b, uint32(len(table)))
	b = append(b, table...)
	b = AppendVarUint(b, uint32(len(names)))
	b = append(b, names...)
	return b, nil
}

// Resolve checks that every payload lies within an archive of fileSize bytes.
func (d *Directory) Resolve(fileSize int64) error {
	for _, e := range d.Entries {
		start := d.Start(e)
		if start+int64(e.Size) > fileSize {
			return &RangeError{Name: e.Name, Offset: start, Size: e.Size, FileSize: fileSize}
		}
	}
	return nil
}

// PayloadSize returns the sum of all entry sizes.
func (d *Directory) PayloadSize() uint64 {
	var n uint64
	for _, e := range d.Entries {
		n += uint64(e.Size)
	}
	return n
}
