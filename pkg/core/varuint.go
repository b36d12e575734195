package core

import (
	"fmt"
	"io"
	"math"
)

// MaxVarUintLen is the longest encoding AppendVarUint produces.
const MaxVarUintLen = 5

// AppendVarUint appends the encoding of v to b.
//
// Each byte carries a 7-bit group in its upper bits, most significant group
// first, and a terminator flag in bit 0. Leading zero groups are skipped; the
// last group is always written, so zero encodes as a single byte.
func AppendVarUint(b []byte, v uint32) []byte {
	started := false
	for shift := 28; shift > 0; shift -= 7 {
		g := byte(v>>uint(shift)) & 0x7f
		if g != 0 {
			started = true
		}
		if started {
			b = append(b, g<<1)
		}
	}
	return append(b, byte(v&0x7f)<<1|1)
}

// WriteVarUint writes the encoding of v to w.
func WriteVarUint(w io.Writer, v uint32) error {
	var buf [MaxVarUintLen]byte
	_, err := w.Write(AppendVarUint(buf[:0], v))
	return err
}

// ReadVarUint decodes one value from r.
//
// Bytes are accumulated as value<<7|byte until a byte with bit 0 set is
// read; the flag is then shifted out. Leading zero bytes are accepted.
// Running out of input before the terminator yields io.ErrUnexpectedEOF.
func ReadVarUint(r io.ByteReader) (uint32, error) {
	var value uint64
	first := true
	for value&1 == 0 {
		c, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && !first {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		first = false
		value = value<<7 | uint64(c)
		if value>>1 > math.MaxUint32 {
			return 0, fmt.Errorf("%w: varuint overflows 32 bits", ErrFormat)
		}
	}
	return uint32(value >> 1), nil
}
