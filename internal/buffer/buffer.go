// Package buffer implements the ByteBuffer primitive: an owned,
// length-tagged, zeroisable byte sequence with a stored path tag and a
// lazily computed CRC-64 checksum.
package buffer

import (
	"crypto/subtle"
	"encoding/hex"
	"hash/crc64"
	"strings"

	"github.com/ImageMagick/WizardsToolkit-sub001/internal/wizerr"
)

var crcTable = crc64.MakeTable(crc64.ECMA)

// Buffer is an owned, mutable-content byte sequence. The zero value is an
// empty, usable Buffer.
type Buffer struct {
	data []byte
	path string
	crc  uint64
	have bool // whether crc is up to date
}

// New returns a zero-initialised Buffer of the given length.
func New(length int) (*Buffer, error) {
	if length < 0 {
		return nil, wizerr.New(wizerr.Allocation, "negative length", "")
	}
	return &Buffer{data: make([]byte, length)}, nil
}

// FromBytes copies b verbatim into a new Buffer.
func FromBytes(b []byte) *Buffer {
	data := make([]byte, len(b))
	copy(data, b)
	return &Buffer{data: data}
}

// FromString copies the UTF-8 bytes of s verbatim into a new Buffer.
func FromString(s string) *Buffer {
	return FromBytes([]byte(s))
}

// FromHex decodes s (two hex digits per byte, whitespace ignored) into a
// new Buffer.
func FromHex(s string) (*Buffer, error) {
	s = strings.Join(strings.Fields(s), "")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, wizerr.Wrap(wizerr.Parse, "invalid hex buffer", err)
	}
	return FromBytes(b), nil
}

// Bytes returns the buffer's content. Callers must not retain the slice
// across a Reset/SetLength/destroy of the Buffer.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Len returns the buffer's length in bytes.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Path returns the buffer's diagnostic path tag, if any.
func (b *Buffer) Path() string { return b.path }

// SetPath sets the buffer's diagnostic path tag. It has no semantic effect
// beyond diagnostics.
func (b *Buffer) SetPath(path string) { b.path = path }

// ToHex renders the buffer's content as lowercase hex.
func (b *Buffer) ToHex() string {
	return hex.EncodeToString(b.data)
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	out := FromBytes(b.data)
	out.path = b.path
	return out
}

// SetLength truncates or zero-extends the buffer to n bytes.
func (b *Buffer) SetLength(n int) {
	switch {
	case n == len(b.data):
		return
	case n < len(b.data):
		overwrite(b.data[n:])
		b.data = b.data[:n]
	default:
		grown := make([]byte, n)
		copy(grown, b.data)
		overwrite(b.data)
		b.data = grown
	}
	b.have = false
}

// Compare returns -1, 0 or 1 as a sorts before, equal to, or after b, in an
// order derived from length-then-content, but evaluated in time that
// depends only on the lengths involved: when both buffers share a length,
// every byte position is inspected regardless of where the first
// difference occurs.
func (b *Buffer) Compare(o *Buffer) int {
	if len(b.data) != len(o.data) {
		if len(b.data) < len(o.data) {
			return -1
		}
		return 1
	}
	if subtle.ConstantTimeCompare(b.data, o.data) == 1 {
		return 0
	}
	// Buffers differ; walk every byte position and keep the ordering of the
	// first difference without branching on content, so the time taken does
	// not depend on where that difference lies.
	result := 0
	for i := range b.data {
		x, y := int(b.data[i]), int(o.data[i])
		undecided := subtle.ConstantTimeEq(int32(result), 0)
		result = subtle.ConstantTimeSelect(undecided&subtle.ConstantTimeLessOrEq(x+1, y), -1, result)
		result = subtle.ConstantTimeSelect(undecided&subtle.ConstantTimeLessOrEq(y+1, x), 1, result)
	}
	return result
}

// Equal reports whether b and o hold identical content, in constant time
// with respect to content for buffers of equal length.
func (b *Buffer) Equal(o *Buffer) bool {
	if len(b.data) != len(o.data) {
		return false
	}
	return subtle.ConstantTimeCompare(b.data, o.data) == 1
}

// CRC returns the CRC-64 (ECMA polynomial) of the buffer's content,
// computing it lazily and caching the result until the buffer is mutated.
func (b *Buffer) CRC() uint64 {
	if !b.have {
		b.crc = crc64.Checksum(b.data, crcTable)
		b.have = true
	}
	return b.crc
}

// Reset zeroes every byte of the buffer without changing its length.
func (b *Buffer) Reset() {
	overwrite(b.data)
	b.have = false
}

// Destroy zeroes every byte before releasing the buffer's storage. A
// destroyed Buffer must not be used again.
func (b *Buffer) Destroy() {
	overwrite(b.data)
	b.data = nil
	b.have = false
}

func overwrite(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
