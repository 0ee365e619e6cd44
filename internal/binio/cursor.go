// Package binio provides a positioned, bounds-checked reader over an
// in-memory byte slice.
package binio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding/unicode"
)

// Cursor reads typed values from an immutable byte slice. A Cursor is not
// safe for concurrent use; use Fork to give each goroutine its own position.
type Cursor struct {
	data  []byte
	pos   int
	order binary.ByteOrder
}

// New creates a cursor at position 0. A nil order means big-endian.
func New(data []byte, order binary.ByteOrder) *Cursor {
	if order == nil {
		order = binary.BigEndian
	}
	return &Cursor{data: data, order: order}
}

// Fork returns a cursor over the same bytes with an independent position.
func (c *Cursor) Fork() *Cursor {
	return &Cursor{data: c.data, pos: c.pos, order: c.order}
}

func (c *Cursor) Tell() int {
	return c.pos
}

func (c *Cursor) Len() int {
	return len(c.data)
}

func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

func (c *Cursor) Order() binary.ByteOrder {
	return c.order
}

func (c *Cursor) SetOrder(order binary.ByteOrder) {
	c.order = order
}

// Seek moves to an absolute position. Seeking to Len() is allowed so that
// empty trailing reads can be expressed; any read there fails.
func (c *Cursor) Seek(pos int) error {
	if pos < 0 || pos > len(c.data) {
		return NewError(KindOffsetOutOfBounds, pos, fmt.Sprintf("[0, %d]", len(c.data)), pos)
	}
	c.pos = pos
	return nil
}

// Skip advances the position by n bytes.
func (c *Cursor) Skip(n int) error {
	if n < 0 || n > c.Remaining() {
		return NewError(KindTruncated, c.pos, n, c.Remaining())
	}
	c.pos += n
	return nil
}

// At seeks to pos, runs fn, and restores the previous position whether or
// not fn succeeds.
func (c *Cursor) At(pos int, fn func() error) error {
	saved := c.pos
	if err := c.Seek(pos); err != nil {
		return err
	}
	defer func() { c.pos = saved }()
	return fn()
}

// take returns the next n bytes without copying and advances past them.
func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, NewError(KindTruncated, c.pos, n, c.Remaining())
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Bytes returns an owned copy of the next n bytes.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	b, err := c.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (c *Cursor) Uint8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) Int8() (int8, error) {
	v, err := c.Uint8()
	return int8(v), err
}

func (c *Cursor) Uint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return c.order.Uint16(b), nil
}

func (c *Cursor) Int16() (int16, error) {
	v, err := c.Uint16()
	return int16(v), err
}

func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return c.order.Uint32(b), nil
}

func (c *Cursor) Int32() (int32, error) {
	v, err := c.Uint32()
	return int32(v), err
}

func (c *Cursor) Float32() (float32, error) {
	v, err := c.Uint32()
	return math.Float32frombits(v), err
}

// Uint16s reads n consecutive uint16 values.
func (c *Cursor) Uint16s(n int) ([]uint16, error) {
	b, err := c.take(n * 2)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = c.order.Uint16(b[i*2:])
	}
	return out, nil
}

// Uint32s reads n consecutive uint32 values.
func (c *Cursor) Uint32s(n int) ([]uint32, error) {
	b, err := c.take(n * 4)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = c.order.Uint32(b[i*4:])
	}
	return out, nil
}

// Float32s reads n consecutive IEEE-754 singles.
func (c *Cursor) Float32s(n int) ([]float32, error) {
	words, err := c.Uint32s(n)
	if err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i, w := range words {
		out[i] = math.Float32frombits(w)
	}
	return out, nil
}

// Tag reads a 4-byte ASCII signature.
func (c *Cursor) Tag() (string, error) {
	b, err := c.take(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ExpectTag reads a 4-byte signature and fails with KindTagMismatch if it is
// not want.
func (c *Cursor) ExpectTag(want string) error {
	start := c.pos
	got, err := c.Tag()
	if err != nil {
		return err
	}
	if got != want {
		return NewError(KindTagMismatch, start, want, got)
	}
	return nil
}

// CString reads a zero-terminated string and consumes the terminator.
func (c *Cursor) CString() (string, error) {
	end := bytes.IndexByte(c.data[c.pos:], 0)
	if end < 0 {
		return "", NewError(KindTruncated, c.pos, "zero terminator", "end of data")
	}
	s := string(c.data[c.pos : c.pos+end])
	c.pos += end + 1
	return s, nil
}

// UTF16String reads a uint32 code unit count followed by that many UTF-16
// code units in the cursor's byte order.
func (c *Cursor) UTF16String() (string, error) {
	start := c.pos
	n, err := c.Uint32()
	if err != nil {
		return "", err
	}
	if int64(n)*2 > int64(c.Remaining()) {
		c.pos = start
		return "", NewError(KindTruncated, start+4, int(n)*2, c.Remaining())
	}
	raw, _ := c.take(int(n) * 2)

	endianness := unicode.BigEndian
	if c.order == binary.LittleEndian {
		endianness = unicode.LittleEndian
	}
	decoded, err := unicode.UTF16(endianness, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return "", &DecodeError{Kind: KindTruncated, Offset: start + 4, Err: err}
	}
	return string(decoded), nil
}
