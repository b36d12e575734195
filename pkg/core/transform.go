package core

import (
	"fmt"
	"io"
	"strings"
)

// KeyPolicy selects how the payload transform key is derived.
type KeyPolicy int

const (
	// KeyByName uses 0xFF for names ending in ".s" and 0x00 otherwise.
	KeyByName KeyPolicy = iota
	// KeyForced uses 0xFF for every entry.
	KeyForced
)

func (p KeyPolicy) String() string {
	switch p {
	case KeyByName:
		return "by-name"
	case KeyForced:
		return "forced"
	}
	return fmt.Sprintf("KeyPolicy(%d)", int(p))
}

// DataKey returns the transform key for an entry named name.
func DataKey(name string, p KeyPolicy) byte {
	if p == KeyForced || strings.HasSuffix(name, ".s") {
		return 0xff
	}
	return 0x00
}

// Transform applies the payload transform in place to buf, whose first byte
// sits at offset pos within its entry's payload. It is its own inverse.
func Transform(buf []byte, key byte, pos int64) {
	for i := range buf {
		buf[i] ^= byte(pos+int64(i)+2) ^ key
	}
}

// Cipher applies the payload transform to one entry's payload across
// successive chunks, keeping the position within the payload.
type Cipher struct {
	key byte
	pos int64
}

// NewCipher returns a Cipher positioned at the start of a payload.
func NewCipher(key byte) *Cipher {
	return &Cipher{key: key}
}

// Apply transforms buf in place and advances the position.
func (c *Cipher) Apply(buf []byte) {
	Transform(buf, c.key, c.pos)
	c.pos += int64(len(buf))
}

// Pos returns the number of bytes transformed so far.
func (c *Cipher) Pos() int64 {
	return c.pos
}

func checkBufferSize(n int) error {
	if n <= 0 || n%256 != 0 {
		return fmt.Errorf("%w: %d", ErrBufferSize, n)
	}
	return nil
}

// copyTransformed copies exactly n bytes from src to dst through the payload
// transform keyed by key, using buf for staging.
func copyTransformed(dst io.Writer, src io.Reader, n int64, key byte, buf []byte) (int64, error) {
	c := NewCipher(key)
	for c.Pos() < n {
		chunk := buf
		if rem := n - c.Pos(); rem < int64(len(chunk)) {
			chunk = chunk[:rem]
		}
		if _, err := io.ReadFull(src, chunk); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return c.Pos(), fmt.Errorf("read payload: %w", err)
		}
		c.Apply(chunk)
		if _, err := dst.Write(chunk); err != nil {
			return c.Pos(), fmt.Errorf("write payload: %w", err)
		}
	}
	return c.Pos(), nil
}
