package bfres

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/jchantrell/fresdb/internal/binio"
)

// MaterialStructureSize is the byte size of the opaque material structure.
const MaterialStructureSize = 0x30

// Material is an FMAT section.
type Material struct {
	Name      string
	Unknown08 uint32
	Index     uint16
	Unknown18 uint32

	RenderParameters *IndexGroup[RenderParameter]
	// Structure is kept verbatim; its fields are game specific
	Structure     [MaterialStructureSize]byte
	ShaderControl *ShaderControl

	TextureSelectors          []TextureSelector
	TextureAttributeSelectors []TextureAttributeSelector
	TextureAttributeGroup     *IndexGroup[TextureAttributeSelector]

	Parameters     []MaterialParameter
	ParameterGroup *IndexGroup[MaterialParameter]
	// ParameterData is the raw block material parameter values point into
	ParameterData []byte

	ShadowParameters *IndexGroup[ShadowParameter]
	// Unknown44 holds 12 bytes when present, nil otherwise
	Unknown44 []byte
}

// RenderParameterType selects how a render parameter value is stored.
type RenderParameterType uint8

const (
	RenderParameterNull   RenderParameterType = 0x00
	RenderParameterVec2   RenderParameterType = 0x01
	RenderParameterString RenderParameterType = 0x02
)

// RenderParameter is a named render state value. Exactly one of Raw, Vec2 or
// Text is meaningful, according to Type.
type RenderParameter struct {
	Unknown00 uint16
	Type      RenderParameterType
	Unknown03 uint8
	Name      string
	Raw       []byte
	Vec2      Vec2
	Text      string
}

// ShaderControl names the shader program and maps its inputs.
type ShaderControl struct {
	ShaderArchive string
	ShadingModel  string
	Unknown08     uint32
	// VertexShaderInputs maps vertex attribute names to shader variables
	VertexShaderInputs *IndexGroup[string]
	// PixelShaderInputs maps vertex attribute names to pixel shader variables
	PixelShaderInputs *IndexGroup[string]
	// Params maps uniform names to their string values
	Params *IndexGroup[string]
}

// TextureSelector binds a texture by name. TextureOffset is the position of
// the FTEX section it refers to.
type TextureSelector struct {
	Name          string
	TextureOffset Offset
}

// TextureAttributeSelector describes the sampler a texture is bound to.
type TextureAttributeSelector struct {
	Unknown00     [4]uint8
	Unknown04     int8
	Unknown05     uint8
	Unknown06     uint16
	Unknown08     uint32
	Unknown0C     uint32
	AttributeName string
	Index         uint8
	Unknown       uint32
}

// MaterialParameterType is the value type of a material parameter.
type MaterialParameterType uint8

const (
	ParamInt32     MaterialParameterType = 0x04
	ParamFloat     MaterialParameterType = 0x0C
	ParamVec2      MaterialParameterType = 0x0D
	ParamVec3      MaterialParameterType = 0x0E
	ParamVec4      MaterialParameterType = 0x0F
	ParamMatrix2x3 MaterialParameterType = 0x1E
)

var materialParameterSizes = map[MaterialParameterType]int{
	ParamInt32:     4,
	ParamFloat:     4,
	ParamVec2:      8,
	ParamVec3:      12,
	ParamVec4:      16,
	ParamMatrix2x3: 24,
}

func (t MaterialParameterType) String() string {
	switch t {
	case ParamInt32:
		return "int32"
	case ParamFloat:
		return "float"
	case ParamVec2:
		return "vec2"
	case ParamVec3:
		return "vec3"
	case ParamVec4:
		return "vec4"
	case ParamMatrix2x3:
		return "mat2x3"
	default:
		return fmt.Sprintf("type(0x%02X)", uint8(t))
	}
}

// MaterialParameter describes a shader uniform whose value lives in the
// material's ParameterData at ValueOffset.
type MaterialParameter struct {
	Type        MaterialParameterType
	Size        uint8
	ValueOffset uint16
	Unknown04   uint32
	Unknown08   uint32
	Index       uint16
	IndexAgain  uint16
	Name        string
}

// ShadowParameter is a named shadow setting.
type ShadowParameter struct {
	Name      string
	Unknown04 uint16
	Unknown06 uint8
	Unknown07 uint8
	Value     uint32
}

// TextureBinding pairs a texture name with the sampler attribute it feeds.
type TextureBinding struct {
	Texture       string
	TextureOffset Offset
	Sampler       string
}

// TextureBindings pairs texture selectors with attribute selectors by
// position.
func (m *Material) TextureBindings() []TextureBinding {
	n := min(len(m.TextureSelectors), len(m.TextureAttributeSelectors))
	out := make([]TextureBinding, n)
	for i := range out {
		out[i] = TextureBinding{
			Texture:       m.TextureSelectors[i].Name,
			TextureOffset: m.TextureSelectors[i].TextureOffset,
			Sampler:       m.TextureAttributeSelectors[i].AttributeName,
		}
	}
	return out
}

// ParameterValue decodes p's value from the parameter data block. The result
// is an int32, float32, Vec2, Vec3, Vec4 or Matrix2x3.
func (m *Material) ParameterValue(p MaterialParameter) (any, error) {
	size, ok := materialParameterSizes[p.Type]
	if !ok {
		return nil, binio.NewError(binio.KindUnknownType, -1, "material parameter type", p.Type.String())
	}
	start := int(p.ValueOffset)
	if start+size > len(m.ParameterData) {
		return nil, binio.NewError(binio.KindTruncated, start, size, len(m.ParameterData)-start)
	}

	b := m.ParameterData[start : start+size]
	f := func(i int) float32 {
		return math.Float32frombits(binary.BigEndian.Uint32(b[i*4:]))
	}
	switch p.Type {
	case ParamInt32:
		return int32(binary.BigEndian.Uint32(b)), nil
	case ParamFloat:
		return f(0), nil
	case ParamVec2:
		return Vec2{f(0), f(1)}, nil
	case ParamVec3:
		return Vec3{f(0), f(1), f(2)}, nil
	case ParamVec4:
		return Vec4{f(0), f(1), f(2), f(3)}, nil
	default:
		var mat Matrix2x3
		for c := 0; c < 3; c++ {
			for r := 0; r < 2; r++ {
				mat[r][c] = f(c*2 + r)
			}
		}
		return mat, nil
	}
}

func decodeMaterial(d *decoder) (*Material, error) {
	start := d.c.Tell()
	d.expectTag("FMAT")
	m := &Material{}
	m.Name = d.name()
	m.Unknown08 = d.u32()
	m.Index = d.u16()
	renderParamCount := int(d.u16())
	textureSelectorCount := int(d.u8())
	textureAttributeCount := int(d.u8())
	paramCount := int(d.u16())
	paramDataSize := int(d.u32())
	m.Unknown18 = d.u32()
	renderParamGroupOffset := d.offset()
	structureOffset := d.offset()
	shaderControlOffset := d.offset()
	textureSelectorOffset := d.offset()
	textureAttributeOffset := d.offset()
	textureAttributeGroupOffset := d.offset()
	paramArrayOffset := d.offset()
	paramGroupOffset := d.offset()
	paramDataOffset := d.offset()
	shadowGroupOffset := d.offset()
	unknown44Offset := d.offset()
	if d.err != nil {
		return nil, fmt.Errorf("reading FMAT header at 0x%X: %w", start, d.err)
	}

	var err error
	m.RenderParameters, err = decodeIndexGroup(d, renderParamGroupOffset, renderParamCount, decodeRenderParameter)
	if err != nil {
		return nil, fmt.Errorf("material %q render parameters: %w", m.Name, err)
	}

	if !structureOffset.Absent() {
		err = d.at(structureOffset, func() error {
			copy(m.Structure[:], d.bytes(MaterialStructureSize))
			return d.err
		})
		if err != nil {
			return nil, fmt.Errorf("material %q structure: %w", m.Name, err)
		}
	}

	if !shaderControlOffset.Absent() {
		err = d.at(shaderControlOffset, func() error {
			var serr error
			m.ShaderControl, serr = decodeShaderControl(d)
			return serr
		})
		if err != nil {
			return nil, fmt.Errorf("material %q shader control: %w", m.Name, err)
		}
	}

	m.TextureSelectors, err = arrayAt(d, textureSelectorOffset, textureSelectorCount, func(d *decoder) (TextureSelector, error) {
		s := TextureSelector{Name: d.name(), TextureOffset: d.offset()}
		return s, d.err
	})
	if err != nil {
		return nil, fmt.Errorf("material %q texture selectors: %w", m.Name, err)
	}

	m.TextureAttributeSelectors, err = arrayAt(d, textureAttributeOffset, textureAttributeCount, decodeTextureAttributeSelector)
	if err != nil {
		return nil, fmt.Errorf("material %q texture attribute selectors: %w", m.Name, err)
	}
	m.TextureAttributeGroup, err = decodeIndexGroup(d, textureAttributeGroupOffset, textureAttributeCount, decodeTextureAttributeSelector)
	if err != nil {
		return nil, fmt.Errorf("material %q texture attribute group: %w", m.Name, err)
	}

	m.Parameters, err = arrayAt(d, paramArrayOffset, paramCount, decodeMaterialParameter)
	if err != nil {
		return nil, fmt.Errorf("material %q parameters: %w", m.Name, err)
	}
	m.ParameterGroup, err = decodeIndexGroup(d, paramGroupOffset, paramCount, decodeMaterialParameter)
	if err != nil {
		return nil, fmt.Errorf("material %q parameter group: %w", m.Name, err)
	}

	if paramDataSize > 0 {
		if paramDataOffset.Absent() {
			return nil, binio.NewError(binio.KindCountMismatch, paramDataOffset.Address, paramDataSize, 0)
		}
		err = d.at(paramDataOffset, func() error {
			m.ParameterData = d.bytes(paramDataSize)
			return d.err
		})
		if err != nil {
			return nil, fmt.Errorf("material %q parameter data: %w", m.Name, err)
		}
	}

	m.ShadowParameters, err = decodeIndexGroup(d, shadowGroupOffset, -1, decodeShadowParameter)
	if err != nil {
		return nil, fmt.Errorf("material %q shadow parameters: %w", m.Name, err)
	}

	if !unknown44Offset.Absent() {
		err = d.at(unknown44Offset, func() error {
			m.Unknown44 = d.bytes(12)
			return d.err
		})
		if err != nil {
			return nil, fmt.Errorf("material %q unknown block: %w", m.Name, err)
		}
	}

	return m, nil
}

func decodeRenderParameter(d *decoder) (RenderParameter, error) {
	var p RenderParameter
	p.Unknown00 = d.u16()
	typeAt := d.c.Tell()
	p.Type = RenderParameterType(d.u8())
	p.Unknown03 = d.u8()
	p.Name = d.name()
	if d.err != nil {
		return p, d.err
	}

	switch p.Type {
	case RenderParameterNull:
		p.Raw = d.bytes(8)
	case RenderParameterVec2:
		p.Vec2 = d.vec2()
	case RenderParameterString:
		p.Text = d.name()
	default:
		return p, binio.NewError(binio.KindUnknownType, typeAt, "render parameter type 0-2", uint8(p.Type))
	}
	return p, d.err
}

func decodeShaderControl(d *decoder) (*ShaderControl, error) {
	s := &ShaderControl{}
	s.ShaderArchive = d.name()
	s.ShadingModel = d.name()
	s.Unknown08 = d.u32()
	vertexInputCount := int(d.u8())
	pixelInputCount := int(d.u8())
	paramCount := int(d.u16())
	vertexGroupOffset := d.offset()
	pixelGroupOffset := d.offset()
	paramGroupOffset := d.offset()
	if d.err != nil {
		return nil, d.err
	}

	value := func(d *decoder) (string, error) {
		if d.err != nil {
			return "", d.err
		}
		v, err := d.c.CString()
		d.fail(err)
		return v, err
	}

	var err error
	if s.VertexShaderInputs, err = decodeIndexGroup(d, vertexGroupOffset, vertexInputCount, value); err != nil {
		return nil, fmt.Errorf("vertex shader inputs: %w", err)
	}
	if s.PixelShaderInputs, err = decodeIndexGroup(d, pixelGroupOffset, pixelInputCount, value); err != nil {
		return nil, fmt.Errorf("pixel shader inputs: %w", err)
	}
	if s.Params, err = decodeIndexGroup(d, paramGroupOffset, paramCount, value); err != nil {
		return nil, fmt.Errorf("shader params: %w", err)
	}
	return s, nil
}

func decodeTextureAttributeSelector(d *decoder) (TextureAttributeSelector, error) {
	var s TextureAttributeSelector
	for i := range s.Unknown00 {
		s.Unknown00[i] = d.u8()
	}
	s.Unknown04 = d.i8()
	s.Unknown05 = d.u8()
	s.Unknown06 = d.u16()
	s.Unknown08 = d.u32()
	s.Unknown0C = d.u32()
	s.AttributeName = d.name()
	packed := d.u32()
	s.Index = uint8(packed >> 24)
	s.Unknown = packed & 0x00FFFFFF
	return s, d.err
}

func decodeMaterialParameter(d *decoder) (MaterialParameter, error) {
	var p MaterialParameter
	typeAt := d.c.Tell()
	p.Type = MaterialParameterType(d.u8())
	p.Size = d.u8()
	p.ValueOffset = d.u16()
	p.Unknown04 = d.u32()
	p.Unknown08 = d.u32()
	p.Index = d.u16()
	p.IndexAgain = d.u16()
	p.Name = d.name()
	if d.err != nil {
		return p, d.err
	}
	if _, ok := materialParameterSizes[p.Type]; !ok {
		return p, binio.NewError(binio.KindUnknownType, typeAt, "material parameter type", p.Type.String())
	}
	return p, nil
}

func decodeShadowParameter(d *decoder) (ShadowParameter, error) {
	p := ShadowParameter{
		Name:      d.name(),
		Unknown04: d.u16(),
		Unknown06: d.u8(),
		Unknown07: d.u8(),
		Value:     d.u32(),
	}
	return p, d.err
}
