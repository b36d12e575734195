package core

import (
	"bytes"
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendVarUint(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x01}},
		{1, []byte{0x03}},
		{5, []byte{0x0b}},
		{127, []byte{0xff}},
		{128, []byte{0x02, 0x01}},
		{0x3fff, []byte{0xfe, 0xff}},
		{0x80000000, []byte{0x10, 0x00, 0x00, 0x00, 0x01}},
		{math.MaxUint32, []byte{0x1e, 0xfe, 0xfe, 0xfe, 0xff}},
	}
	for _, tt := range tests {
		got := AppendVarUint(nil, tt.v)
		assert.Equal(t, tt.want, got, "encode %d", tt.v)

		v, err := ReadVarUint(bytes.NewReader(got))
		require.NoError(t, err)
		assert.Equal(t, tt.v, v, "decode %x", got)
	}
}

func TestVarUintRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 63, 64, 127, 128, 255, 256, 1<<14 - 1, 1 << 14, 1<<21 - 1, 1 << 21, 1<<28 - 1, 1 << 28, 1<<31 - 1, 1 << 31, math.MaxUint32 - 1, math.MaxUint32}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		values = append(values, rng.Uint32())
	}

	var buf bytes.Buffer
	for _, v := range values {
		require.NoError(t, WriteVarUint(&buf, v))
	}
	r := bytes.NewReader(buf.Bytes())
	for _, want := range values {
		got, err := ReadVarUint(r)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	assert.Zero(t, r.Len())
}

func TestVarUintLength(t *testing.T) {
	assert.Len(t, AppendVarUint(nil, 0), 1)
	assert.Len(t, AppendVarUint(nil, math.MaxUint32), MaxVarUintLen)
}

func TestReadVarUintLeadingZeros(t *testing.T) {
	v, err := ReadVarUint(bytes.NewReader([]byte{0x00, 0x00, 0xc3}))
	require.NoError(t, err)
	assert.Equal(t, uint32('a'), v)
}

func TestReadVarUintErrors(t *testing.T) {
	_, err := ReadVarUint(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)

	_, err = ReadVarUint(bytes.NewReader([]byte{0x02}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = ReadVarUint(bytes.NewReader([]byte{0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0xfe, 0x01}))
	assert.ErrorIs(t, err, ErrFormat)
}
