package bfres

import (
	"fmt"

	"github.com/jchantrell/fresdb/internal/binio"
	"github.com/jchantrell/fresdb/internal/gx2"
)

// Shape is an FSHP section: a polygon group drawn with one material and one
// vertex buffer, at one or more levels of detail.
type Shape struct {
	Name              string
	Unknown08         uint32
	Index             uint16
	MaterialIndex     uint16
	BoneIndex         uint16
	VertexBufferIndex uint16
	// VertexSkinCount is the number of bone influences per vertex
	VertexSkinCount uint8
	Radius          float32
	// VertexBufferOffset points at the FVTX this shape draws from
	VertexBufferOffset Offset

	LODs              []LODModel
	SkinBoneIndices   []uint16
	VisibilityNodes   []VisibilityNode
	VisibilityRanges  []VisibilityRange
	VisibilityIndices []uint16
}

// LODModel is one level of detail of a shape.
type LODModel struct {
	PrimitiveType    gx2.PrimitiveMode
	IndexFormat      uint32
	PointDrawCount   uint32
	Unknown0E        uint16
	VisibilityGroups []VisibilityGroup
	IndexBuffer      IndexBuffer
	// SkipVertices is how many leading vertices of the shape's vertex
	// buffer to skip before these indices apply
	SkipVertices uint32
}

// VisibilityGroup is a sub-range of a LOD's index buffer.
type VisibilityGroup struct {
	IndexByteOffset uint32
	IndexCount      uint32
}

// IndexBuffer holds 16-bit vertex indices.
type IndexBuffer struct {
	Unknown00 uint32
	Unknown08 uint32
	Unknown0C uint16
	Unknown0E uint16
	Unknown10 uint32
	Indices   []uint16
}

// VisibilityNode is one node of the visibility culling tree. A child index
// equal to the node's own index means there is no child.
type VisibilityNode struct {
	Left                 uint16
	Right                uint16
	Unknown04            uint16
	NextSibling          uint16
	VisibilityGroupIndex uint16
	VisibilityGroupCount uint16
}

// VisibilityRange is the bounding volume of a visibility node.
type VisibilityRange struct {
	Min Vec3
	Max Vec3
}

// LOD returns the i-th level of detail, or nil if it does not exist.
func (s *Shape) LOD(i int) *LODModel {
	if i < 0 || i >= len(s.LODs) {
		return nil
	}
	return &s.LODs[i]
}

// IndexCount returns the number of indices in the LOD's index buffer.
func (l *LODModel) IndexCount() int {
	return len(l.IndexBuffer.Indices)
}

// GroupIndices returns the slice of the index buffer covered by g.
func (l *LODModel) GroupIndices(g VisibilityGroup) ([]uint16, error) {
	first := int(g.IndexByteOffset / 2)
	last := first + int(g.IndexCount)
	if last > len(l.IndexBuffer.Indices) {
		return nil, binio.NewError(binio.KindOffsetOutOfBounds, int(g.IndexByteOffset), len(l.IndexBuffer.Indices), last)
	}
	return l.IndexBuffer.Indices[first:last], nil
}

func decodeShape(d *decoder) (*Shape, error) {
	start := d.c.Tell()
	d.expectTag("FSHP")
	s := &Shape{}
	s.Name = d.name()
	s.Unknown08 = d.u32()
	s.Index = d.u16()
	s.MaterialIndex = d.u16()
	s.BoneIndex = d.u16()
	s.VertexBufferIndex = d.u16()
	skinBoneIndexCount := int(d.u16())
	s.VertexSkinCount = d.u8()
	lodCount := int(d.u8())
	nodeCount := int(d.u32())
	s.Radius = d.f32()
	s.VertexBufferOffset = d.offset()
	lodArrayOffset := d.offset()
	skinBoneIndexOffset := d.offset()
	d.u32()
	nodesOffset := d.offset()
	rangesOffset := d.offset()
	indicesOffset := d.offset()
	d.u32()
	if d.err != nil {
		return nil, fmt.Errorf("reading FSHP header at 0x%X: %w", start, d.err)
	}

	var err error
	s.LODs, err = arrayAt(d, lodArrayOffset, lodCount, decodeLODModel)
	if err != nil {
		return nil, fmt.Errorf("shape %q LODs: %w", s.Name, err)
	}

	s.SkinBoneIndices, err = u16sAt(d, skinBoneIndexOffset, skinBoneIndexCount)
	if err != nil {
		return nil, fmt.Errorf("shape %q skin bone indices: %w", s.Name, err)
	}

	s.VisibilityNodes, err = arrayAt(d, nodesOffset, nodeCount, func(d *decoder) (VisibilityNode, error) {
		n := VisibilityNode{
			Left:                 d.u16(),
			Right:                d.u16(),
			Unknown04:            d.u16(),
			NextSibling:          d.u16(),
			VisibilityGroupIndex: d.u16(),
			VisibilityGroupCount: d.u16(),
		}
		return n, d.err
	})
	if err != nil {
		return nil, fmt.Errorf("shape %q visibility nodes: %w", s.Name, err)
	}

	s.VisibilityRanges, err = arrayAt(d, rangesOffset, nodeCount, func(d *decoder) (VisibilityRange, error) {
		r := VisibilityRange{Min: d.vec3(), Max: d.vec3()}
		return r, d.err
	})
	if err != nil {
		return nil, fmt.Errorf("shape %q visibility ranges: %w", s.Name, err)
	}

	s.VisibilityIndices, err = u16sAt(d, indicesOffset, nodeCount)
	if err != nil {
		return nil, fmt.Errorf("shape %q visibility indices: %w", s.Name, err)
	}

	return s, nil
}

func decodeLODModel(d *decoder) (LODModel, error) {
	var l LODModel
	l.PrimitiveType = gx2.PrimitiveMode(d.u32())
	l.IndexFormat = d.u32()
	l.PointDrawCount = d.u32()
	groupCount := int(d.u16())
	l.Unknown0E = d.u16()
	groupOffset := d.offset()
	indexBufferOffset := d.offset()
	l.SkipVertices = d.u32()
	if d.err != nil {
		return l, d.err
	}

	var err error
	l.VisibilityGroups, err = arrayAt(d, groupOffset, groupCount, func(d *decoder) (VisibilityGroup, error) {
		g := VisibilityGroup{IndexByteOffset: d.u32(), IndexCount: d.u32()}
		return g, d.err
	})
	if err != nil {
		return l, fmt.Errorf("visibility groups: %w", err)
	}

	if !indexBufferOffset.Absent() {
		err = d.at(indexBufferOffset, func() error {
			var ierr error
			l.IndexBuffer, ierr = decodeIndexBuffer(d)
			return ierr
		})
		if err != nil {
			return l, fmt.Errorf("index buffer: %w", err)
		}
	}
	return l, nil
}

func decodeIndexBuffer(d *decoder) (IndexBuffer, error) {
	var b IndexBuffer
	b.Unknown00 = d.u32()
	size := int(d.u32())
	b.Unknown08 = d.u32()
	b.Unknown0C = d.u16()
	b.Unknown0E = d.u16()
	b.Unknown10 = d.u32()
	dataOffset := d.offset()
	if d.err != nil {
		return b, d.err
	}

	var err error
	b.Indices, err = u16sAt(d, dataOffset, size/2)
	return b, err
}

// u16sAt reads n consecutive uint16 values at o.
func u16sAt(d *decoder, o Offset, n int) ([]uint16, error) {
	if n == 0 {
		return nil, nil
	}
	if o.Absent() {
		return nil, binio.NewError(binio.KindCountMismatch, o.Address, n, 0)
	}
	var out []uint16
	err := d.at(o, func() error {
		out = d.u16s(n)
		return d.err
	})
	return out, err
}
