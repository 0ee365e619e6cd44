package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/jchantrell/fresdb/internal/bfres"
	"github.com/jchantrell/fresdb/internal/utils"
)

// Vertex attribute names read for OBJ output
const (
	AttributePosition = "_p0"
	AttributeNormal   = "_n0"
	AttributeTexCoord = "_u0"
)

// Texture samplers mapped to MTL texture statements
var samplerMaps = []struct {
	sampler   string
	statement string
}{
	{"_a0", "map_Kd"},
	{"_n0", "map_Bump"},
	{"_s0", "map_Ks"},
	{"_e0", "map_Ke"},
}

// WriteOBJ writes every shape of m as a Wavefront OBJ object built from the
// shape's most detailed level. Vertex indices are shifted by the level's
// skipped vertices and numbered across the whole file. mtlLib names the
// material library referenced by usemtl statements; empty omits it.
func WriteOBJ(w io.Writer, m *bfres.Model, mtlLib string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %s\n", m.Name)
	if mtlLib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", mtlLib)
	}

	base := 0
	for name, shape := range m.Shapes.All() {
		written, err := writeShape(bw, m, shape, base)
		if err != nil {
			return fmt.Errorf("shape %s: %w", name, err)
		}
		base += written
	}

	return bw.Flush()
}

func writeShape(w *bufio.Writer, m *bfres.Model, s *bfres.Shape, base int) (int, error) {
	vb := m.ShapeVertexBuffer(s)
	if vb == nil {
		return 0, fmt.Errorf("vertex buffer %d does not exist", s.VertexBufferIndex)
	}

	pos, ok := vb.Attribute(AttributePosition)
	if !ok {
		return 0, fmt.Errorf("no %s position attribute", AttributePosition)
	}
	positions, err := vb.ReadAll(pos)
	if err != nil {
		return 0, fmt.Errorf("reading positions: %w", err)
	}
	texCoords, err := readOptional(vb, AttributeTexCoord)
	if err != nil {
		return 0, err
	}
	normals, err := readOptional(vb, AttributeNormal)
	if err != nil {
		return 0, err
	}

	var faces []uint16
	skip := 0
	if lod := s.LOD(0); lod != nil {
		faces, err = lod.PrimitiveType.Triangles(lod.IndexBuffer.Indices)
		if err != nil {
			return 0, err
		}
		skip = int(lod.SkipVertices)
	}
	for _, idx := range faces {
		if v := skip + int(idx); v >= len(positions) {
			return 0, fmt.Errorf("index %d addresses vertex %d of %d", idx, v, len(positions))
		}
	}

	fmt.Fprintf(w, "o %s\n", s.Name)
	for _, p := range positions {
		fmt.Fprintf(w, "v %s %s %s\n", component(p, 0), component(p, 1), component(p, 2))
	}
	for _, t := range texCoords {
		fmt.Fprintf(w, "vt %s %s\n", component(t, 0), component(t, 1))
	}
	for _, n := range normals {
		fmt.Fprintf(w, "vn %s %s %s\n", component(n, 0), component(n, 1), component(n, 2))
	}

	if mat := m.ShapeMaterial(s); mat != nil {
		fmt.Fprintf(w, "usemtl %s\n", mat.Name)
	}
	if len(faces) > 0 {
		w.WriteString("s 1\n")
	}
	for i := 0; i < len(faces); i += 3 {
		w.WriteString("f")
		for _, idx := range faces[i : i+3] {
			w.WriteByte(' ')
			w.WriteString(faceVertex(base+skip+int(idx)+1, texCoords != nil, normals != nil))
		}
		w.WriteByte('\n')
	}

	return len(positions), nil
}

func readOptional(vb *bfres.VertexBuffer, name string) ([][]float32, error) {
	attr, ok := vb.Attribute(name)
	if !ok {
		return nil, nil
	}
	values, err := vb.ReadAll(attr)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return values, nil
}

// faceVertex formats one OBJ face corner. Positions, texture coordinates and
// normals share the same index because they come from one vertex buffer.
func faceVertex(i int, texCoords, normals bool) string {
	n := strconv.Itoa(i)
	switch {
	case texCoords && normals:
		return n + "/" + n + "/" + n
	case texCoords:
		return n + "/" + n
	case normals:
		return n + "//" + n
	default:
		return n
	}
}

func component(v []float32, i int) string {
	if i >= len(v) {
		return "0"
	}
	return strconv.FormatFloat(float64(v[i]), 'g', -1, 32)
}

// WriteMTL writes the materials of m as a Wavefront material library.
// Texture statements point at the raw surface data Export writes below
// textures/, relative to the models directory.
func WriteMTL(w io.Writer, m *bfres.Model) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# %s\n", m.Name)
	for name, mat := range m.Materials.All() {
		fmt.Fprintf(bw, "\nnewmtl %s\n", name)
		bw.WriteString("Kd 1 1 1\n")

		bindings := mat.TextureBindings()
		used := make(map[string]bool)
		for _, sm := range samplerMaps {
			for _, b := range bindings {
				if b.Sampler == sm.sampler && !used[sm.statement] {
					fmt.Fprintf(bw, "%s %s\n", sm.statement, texturePath(b.Texture))
					used[sm.statement] = true
				}
			}
		}
		// A first texture bound to no known sampler is taken as the albedo.
		if !used["map_Kd"] && len(bindings) > 0 && !knownSampler(bindings[0].Sampler) {
			fmt.Fprintf(bw, "map_Kd %s\n", texturePath(bindings[0].Texture))
		}
	}

	return bw.Flush()
}

func knownSampler(sampler string) bool {
	for _, sm := range samplerMaps {
		if sm.sampler == sampler {
			return true
		}
	}
	return false
}

func texturePath(name string) string {
	return "../" + TexturesDir + "/" + utils.SafeName(name) + ".data"
}
