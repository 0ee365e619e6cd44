package gx2

import "fmt"

// PrimitiveMode is how a shape's index buffer is assembled into primitives.
type PrimitiveMode uint32

const (
	PrimitivePoints        PrimitiveMode = 0x01
	PrimitiveLines         PrimitiveMode = 0x02
	PrimitiveLineStrip     PrimitiveMode = 0x03
	PrimitiveTriangles     PrimitiveMode = 0x04
	PrimitiveTriangleFan   PrimitiveMode = 0x05
	PrimitiveTriangleStrip PrimitiveMode = 0x06
	PrimitiveQuads         PrimitiveMode = 0x13
	PrimitiveQuadStrip     PrimitiveMode = 0x14
	PrimitiveLineLoop      PrimitiveMode = 0x82
)

var primitiveModeNames = map[PrimitiveMode]string{
	PrimitivePoints:        "Points",
	PrimitiveLines:         "Lines",
	PrimitiveLineStrip:     "LineStrip",
	PrimitiveTriangles:     "Triangles",
	PrimitiveTriangleFan:   "TriangleFan",
	PrimitiveTriangleStrip: "TriangleStrip",
	PrimitiveQuads:         "Quads",
	PrimitiveQuadStrip:     "QuadStrip",
	PrimitiveLineLoop:      "LineLoop",
}

func (m PrimitiveMode) String() string {
	if name, ok := primitiveModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("PrimitiveMode(0x%X)", uint32(m))
}

// Triangles expands indices drawn with m into a triangle list, three
// indices per triangle. Strips keep a consistent winding by swapping every
// other triangle; a trailing partial primitive is dropped. Modes that do
// not produce triangles return an error.
func (m PrimitiveMode) Triangles(indices []uint16) ([]uint16, error) {
	switch m {
	case PrimitiveTriangles:
		return indices[:len(indices)/3*3], nil
	case PrimitiveTriangleStrip:
		if len(indices) < 3 {
			return nil, nil
		}
		out := make([]uint16, 0, (len(indices)-2)*3)
		for i := 2; i < len(indices); i++ {
			a, b, c := indices[i-2], indices[i-1], indices[i]
			if i%2 == 1 {
				a, b = b, a
			}
			out = append(out, a, b, c)
		}
		return out, nil
	case PrimitiveTriangleFan:
		if len(indices) < 3 {
			return nil, nil
		}
		out := make([]uint16, 0, (len(indices)-2)*3)
		for i := 2; i < len(indices); i++ {
			out = append(out, indices[0], indices[i-1], indices[i])
		}
		return out, nil
	case PrimitiveQuads:
		out := make([]uint16, 0, len(indices)/4*6)
		for i := 0; i+3 < len(indices); i += 4 {
			a, b, c, d := indices[i], indices[i+1], indices[i+2], indices[i+3]
			out = append(out, a, b, c, a, c, d)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("primitive mode %s does not draw triangles", m)
	}
}
