// Package bfres decodes Wii U BFRES resource archives into an immutable
// in-memory graph of models, skeletons, buffers, materials and textures.
package bfres

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/jchantrell/fresdb/internal/binio"
)

// OffsetOrigin selects the position a self-relative offset is added to.
type OffsetOrigin int

const (
	// OriginField resolves offsets against the address of the offset field
	// itself. This is how BFRES files are written.
	OriginField OffsetOrigin = iota
	// OriginAfterField resolves offsets against the position immediately
	// after the 4-byte offset field.
	OriginAfterField
)

func (o OffsetOrigin) String() string {
	switch o {
	case OriginField:
		return "field"
	case OriginAfterField:
		return "after-field"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// Decoder turns raw, uncompressed BFRES bytes into a File.
type Decoder interface {
	Decode(data []byte) (*File, error)
}

// DecodeOptions configures decoding behavior
type DecodeOptions struct {
	// OffsetOrigin is the base that self-relative offsets resolve against
	OffsetOrigin OffsetOrigin

	// Logger receives debug and warning output; nil means slog.Default()
	Logger *slog.Logger
}

// DefaultDecodeOptions returns options matching files written by Nintendo tools
func DefaultDecodeOptions() *DecodeOptions {
	return &DecodeOptions{
		OffsetOrigin: OriginField,
	}
}

// FileDecoder implements Decoder.
type FileDecoder struct {
	options *DecodeOptions
}

// NewDecoder creates a decoder. Nil options use DefaultDecodeOptions.
func NewDecoder(options *DecodeOptions) *FileDecoder {
	if options == nil {
		options = DefaultDecodeOptions()
	}
	return &FileDecoder{options: options}
}

// Decode decodes a complete archive. On any failure no partial graph is
// returned and the error wraps a *binio.DecodeError.
func (fd *FileDecoder) Decode(data []byte) (*File, error) {
	logger := fd.options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d := &decoder{
		c:      binio.New(data, binary.BigEndian),
		origin: fd.options.OffsetOrigin,
		log:    logger,
	}
	f, err := decodeFile(d)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Decode decodes data with the given options.
func Decode(data []byte, options *DecodeOptions) (*File, error) {
	return NewDecoder(options).Decode(data)
}

// decoder carries the shared cursor through one decode pass. Field reads
// are sticky: after the first failure every read returns a zero value and
// err holds the cause, so fixed headers can be read without a check per
// field.
type decoder struct {
	c      *binio.Cursor
	origin OffsetOrigin
	log    *slog.Logger
	err    error
}

func (d *decoder) fail(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

func (d *decoder) u8() uint8 {
	if d.err != nil {
		return 0
	}
	v, err := d.c.Uint8()
	d.fail(err)
	return v
}

func (d *decoder) i8() int8 {
	return int8(d.u8())
}

func (d *decoder) u16() uint16 {
	if d.err != nil {
		return 0
	}
	v, err := d.c.Uint16()
	d.fail(err)
	return v
}

func (d *decoder) u32() uint32 {
	if d.err != nil {
		return 0
	}
	v, err := d.c.Uint32()
	d.fail(err)
	return v
}

func (d *decoder) f32() float32 {
	if d.err != nil {
		return 0
	}
	v, err := d.c.Float32()
	d.fail(err)
	return v
}

func (d *decoder) u16s(n int) []uint16 {
	if d.err != nil {
		return nil
	}
	v, err := d.c.Uint16s(n)
	d.fail(err)
	return v
}

func (d *decoder) u32s(n int) []uint32 {
	if d.err != nil {
		return nil
	}
	v, err := d.c.Uint32s(n)
	d.fail(err)
	return v
}

func (d *decoder) bytes(n int) []byte {
	if d.err != nil {
		return nil
	}
	v, err := d.c.Bytes(n)
	d.fail(err)
	return v
}

func (d *decoder) vec2() Vec2 {
	return Vec2{d.f32(), d.f32()}
}

func (d *decoder) vec3() Vec3 {
	return Vec3{d.f32(), d.f32(), d.f32()}
}

func (d *decoder) vec4() Vec4 {
	return Vec4{d.f32(), d.f32(), d.f32(), d.f32()}
}

func (d *decoder) expectTag(tag string) {
	if d.err != nil {
		return
	}
	d.fail(d.c.ExpectTag(tag))
}

// at runs fn with the cursor at o's target and restores the position
// afterwards. Absent offsets must be filtered out by the caller.
func (d *decoder) at(o Offset, fn func() error) error {
	if d.err != nil {
		return d.err
	}
	if o.Absent() {
		return binio.NewError(binio.KindOffsetOutOfBounds, o.Address, "non-zero offset", 0)
	}
	return d.c.At(o.Target, fn)
}

// arrayAt decodes n fixed-size records laid out back to back at o. Every
// record takes at least one byte, so the capacity never exceeds what is left
// of the data after o however large the stored count is.
func arrayAt[T any](d *decoder, o Offset, n int, decode func(*decoder) (T, error)) ([]T, error) {
	if n == 0 || o.Absent() {
		if n != 0 {
			return nil, binio.NewError(binio.KindCountMismatch, o.Address, n, 0)
		}
		return nil, nil
	}
	if n < 0 {
		return nil, binio.NewError(binio.KindCountMismatch, o.Address, "non-negative count", n)
	}
	out := make([]T, 0, min(n, d.c.Len()-o.Target))
	err := d.at(o, func() error {
		for i := 0; i < n; i++ {
			v, err := decode(d)
			if err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
