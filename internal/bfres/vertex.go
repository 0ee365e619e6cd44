package bfres

import (
	"encoding/binary"
	"fmt"

	"github.com/jchantrell/fresdb/internal/binio"
)

// VertexBuffer is an FVTX section: attribute descriptions over one or more
// interleaved data buffers.
type VertexBuffer struct {
	Index       uint16
	VertexCount uint32
	Unknown0C   uint32

	Attributes     []Attribute
	AttributeGroup *IndexGroup[Attribute]
	Buffers        []Buffer
}

// Attribute locates one vertex attribute inside a buffer.
type Attribute struct {
	Name          string
	BufferIndex   uint8
	ElementOffset uint32
	Format        AttributeFormat
}

// Buffer is a raw interleaved vertex data block.
type Buffer struct {
	Unknown00 uint32
	Unknown08 uint32
	Stride    uint16
	Unknown0E uint16
	Unknown10 uint32
	Data      []byte
}

// Attribute looks an attribute up by name.
func (v *VertexBuffer) Attribute(name string) (Attribute, bool) {
	if a, ok := v.AttributeGroup.Lookup(name); ok {
		return a, true
	}
	for _, a := range v.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Read decodes attr's value for one vertex.
func (v *VertexBuffer) Read(attr Attribute, vertex int) ([]float32, error) {
	if int(attr.BufferIndex) >= len(v.Buffers) {
		return nil, binio.NewError(binio.KindOffsetOutOfBounds, -1, fmt.Sprintf("buffer index < %d", len(v.Buffers)), attr.BufferIndex)
	}
	buf := v.Buffers[attr.BufferIndex]
	size := attr.Format.Size()
	if size == 0 {
		return nil, binio.NewError(binio.KindUnknownType, -1, "vertex attribute format", attr.Format.String())
	}

	start := vertex*int(buf.Stride) + int(attr.ElementOffset)
	if vertex < 0 || start+size > len(buf.Data) {
		return nil, binio.NewError(binio.KindTruncated, start, size, len(buf.Data)-start)
	}
	values, err := attr.Format.Decode(buf.Data[start:start+size], binary.BigEndian)
	if err != nil {
		return nil, fmt.Errorf("attribute %q vertex %d: %w", attr.Name, vertex, err)
	}
	return values, nil
}

// ReadAll decodes attr for every vertex in the buffer. A vertex count the
// attribute's buffer cannot hold is reported as truncated before anything
// is decoded.
func (v *VertexBuffer) ReadAll(attr Attribute) ([][]float32, error) {
	if int(attr.BufferIndex) < len(v.Buffers) && attr.Format.Known() {
		buf := v.Buffers[attr.BufferIndex]
		if v.VertexCount > 0 {
			last := (int(v.VertexCount)-1)*int(buf.Stride) + int(attr.ElementOffset) + attr.Format.Size()
			if last > len(buf.Data) {
				return nil, binio.NewError(binio.KindTruncated, 0, last, len(buf.Data))
			}
		}
	}
	out := make([][]float32, v.VertexCount)
	for i := range out {
		values, err := v.Read(attr, i)
		if err != nil {
			return nil, err
		}
		out[i] = values
	}
	return out, nil
}

func decodeVertexBuffer(d *decoder) (*VertexBuffer, error) {
	start := d.c.Tell()
	d.expectTag("FVTX")
	v := &VertexBuffer{}
	attributeCount := int(d.u8())
	bufferCount := int(d.u8())
	v.Index = d.u16()
	v.VertexCount = d.u32()
	v.Unknown0C = d.u32()
	attributeArrayOffset := d.offset()
	attributeGroupOffset := d.offset()
	bufferArrayOffset := d.offset()
	d.u32()
	if d.err != nil {
		return nil, fmt.Errorf("reading FVTX header at 0x%X: %w", start, d.err)
	}

	var err error
	v.Attributes, err = arrayAt(d, attributeArrayOffset, attributeCount, decodeAttribute)
	if err != nil {
		return nil, fmt.Errorf("vertex buffer %d attributes: %w", v.Index, err)
	}
	v.AttributeGroup, err = decodeIndexGroup(d, attributeGroupOffset, attributeCount, decodeAttribute)
	if err != nil {
		return nil, fmt.Errorf("vertex buffer %d attribute group: %w", v.Index, err)
	}
	v.Buffers, err = arrayAt(d, bufferArrayOffset, bufferCount, decodeBuffer)
	if err != nil {
		return nil, fmt.Errorf("vertex buffer %d buffers: %w", v.Index, err)
	}
	return v, nil
}

func decodeAttribute(d *decoder) (Attribute, error) {
	var a Attribute
	a.Name = d.name()
	packed := d.u32()
	a.BufferIndex = uint8(packed >> 24)
	a.ElementOffset = packed & 0x00FFFFFF
	a.Format = AttributeFormat(d.u32())
	return a, d.err
}

func decodeBuffer(d *decoder) (Buffer, error) {
	var b Buffer
	b.Unknown00 = d.u32()
	size := int(d.u32())
	b.Unknown08 = d.u32()
	b.Stride = d.u16()
	b.Unknown0E = d.u16()
	b.Unknown10 = d.u32()
	dataOffset := d.offset()
	if d.err != nil {
		return b, d.err
	}
	if size == 0 {
		return b, nil
	}
	err := d.at(dataOffset, func() error {
		b.Data = d.bytes(size)
		return d.err
	})
	return b, err
}
