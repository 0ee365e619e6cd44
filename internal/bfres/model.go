package bfres

import "fmt"

// Model is an FMDL section: one skeleton with the vertex buffers, shapes and
// materials drawn with it.
type Model struct {
	Name string
	// DataOffset points at the end of the string table where model data starts
	DataOffset Offset
	// TotalVertexCount is the unverified vertex total stored in the header
	TotalVertexCount uint32

	Skeleton      *Skeleton
	VertexBuffers []*VertexBuffer
	Shapes        *IndexGroup[*Shape]
	Materials     *IndexGroup[*Material]
	Parameters    *IndexGroup[Parameter]
}

// Parameter is a named user value attached to a model.
type Parameter struct {
	Name      string
	Unknown04 uint16
	Unknown06 uint16
	Value     float32
}

// VertexBuffer returns the i-th vertex buffer, or nil when i is out of range.
func (m *Model) VertexBuffer(i int) *VertexBuffer {
	if i < 0 || i >= len(m.VertexBuffers) {
		return nil
	}
	return m.VertexBuffers[i]
}

// ShapeMaterial resolves a shape's material index within this model.
func (m *Model) ShapeMaterial(s *Shape) *Material {
	i := int(s.MaterialIndex)
	if i >= m.Materials.Len() {
		return nil
	}
	return m.Materials.At(i)
}

// ShapeVertexBuffer resolves a shape's vertex buffer index within this model.
func (m *Model) ShapeVertexBuffer(s *Shape) *VertexBuffer {
	return m.VertexBuffer(int(s.VertexBufferIndex))
}

func decodeModel(d *decoder) (*Model, error) {
	start := d.c.Tell()
	d.expectTag("FMDL")
	m := &Model{}
	m.Name = d.name()
	m.DataOffset = d.offset()
	skeletonOffset := d.offset()
	vertexArrayOffset := d.offset()
	shapeGroupOffset := d.offset()
	materialGroupOffset := d.offset()
	paramGroupOffset := d.offset()
	vertexCount := int(d.u16())
	shapeCount := int(d.u16())
	materialCount := int(d.u16())
	paramCount := int(d.u16())
	m.TotalVertexCount = d.u32()
	if d.err != nil {
		return nil, fmt.Errorf("reading FMDL header at 0x%X: %w", start, d.err)
	}

	var err error
	if !skeletonOffset.Absent() {
		err = d.at(skeletonOffset, func() error {
			var serr error
			m.Skeleton, serr = decodeSkeleton(d)
			return serr
		})
		if err != nil {
			return nil, fmt.Errorf("model %q skeleton: %w", m.Name, err)
		}
	}

	m.VertexBuffers, err = arrayAt(d, vertexArrayOffset, vertexCount, decodeVertexBuffer)
	if err != nil {
		return nil, fmt.Errorf("model %q vertex buffers: %w", m.Name, err)
	}

	m.Shapes, err = decodeIndexGroup(d, shapeGroupOffset, shapeCount, decodeShape)
	if err != nil {
		return nil, fmt.Errorf("model %q shapes: %w", m.Name, err)
	}

	m.Materials, err = decodeIndexGroup(d, materialGroupOffset, materialCount, decodeMaterial)
	if err != nil {
		return nil, fmt.Errorf("model %q materials: %w", m.Name, err)
	}

	m.Parameters, err = decodeIndexGroup(d, paramGroupOffset, paramCount, decodeParameter)
	if err != nil {
		return nil, fmt.Errorf("model %q parameters: %w", m.Name, err)
	}

	d.log.Debug("Decoded model",
		"name", m.Name,
		"vertex_buffers", len(m.VertexBuffers),
		"shapes", m.Shapes.Len(),
		"materials", m.Materials.Len())

	return m, nil
}

func decodeParameter(d *decoder) (Parameter, error) {
	p := Parameter{
		Name:      d.name(),
		Unknown04: d.u16(),
		Unknown06: d.u16(),
		Value:     d.f32(),
	}
	return p, d.err
}
