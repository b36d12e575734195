package core

import "io"

// AppendPackedString appends s to b as one VarUint per byte.
// Names are expected to be ASCII; other bytes are stored as their raw value.
func AppendPackedString(b []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		b = AppendVarUint(b, uint32(s[i]))
	}
	return b
}

// ReadPackedString decodes exactly n packed bytes from r. Each decoded value
// is truncated to its low byte.
func ReadPackedString(r io.ByteReader, n int) (string, error) {
	buf := make([]byte, n)
	for i := range buf {
		c, err := readPackedByte(r)
		if err != nil {
			return "", err
		}
		buf[i] = c
	}
	return string(buf), nil
}

// ReadPackedStringTo decodes packed bytes from r until it is exhausted.
// r must be limited to the end of the name block.
func ReadPackedStringTo(r interface {
	io.ByteReader
	Len() int
}) (string, error) {
	var buf []byte
	for r.Len() > 0 {
		c, err := readPackedByte(r)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	return string(buf), nil
}

func readPackedByte(r io.ByteReader) (byte, error) {
	v, err := ReadVarUint(r)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return 0, err
	}
	return byte(v), nil
}
