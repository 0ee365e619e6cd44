package bfres

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jchantrell/fresdb/internal/binio"
)

func TestMaterial(t *testing.T) {
	require := require.New(t)

	m, ok := decodeScene(t).Models.At(0).Materials.Lookup("Mat")
	require.True(ok)
	require.Equal("Mat", m.Name)

	cull, ok := m.RenderParameters.Lookup("gsys_cull")
	require.True(ok)
	require.Equal(RenderParameterString, cull.Type)
	require.Equal("back", cull.Text)
	depth, ok := m.RenderParameters.Lookup("gsys_depth")
	require.True(ok)
	require.Equal(Vec2{0.5, 1}, depth.Vec2)

	require.Equal(byte(0), m.Structure[0])
	require.Equal(byte(MaterialStructureSize-1), m.Structure[MaterialStructureSize-1])

	sc := m.ShaderControl
	require.NotNil(sc)
	require.Equal("shaderarc", sc.ShaderArchive)
	require.Equal("uking_mat", sc.ShadingModel)
	in, ok := sc.VertexShaderInputs.Lookup("_p0")
	require.True(ok)
	require.Equal("pos", in)
	require.Nil(sc.PixelShaderInputs)
	require.Equal([]string{"enable_color"}, sc.Params.Names())
	require.Equal([]string{"1"}, sc.Params.Values())

	require.Equal([]TextureBinding{{
		Texture:       "Tex_Alb",
		TextureOffset: m.TextureSelectors[0].TextureOffset,
		Sampler:       "_a0",
	}}, m.TextureBindings())
	require.Equal(int8(-1), m.TextureAttributeSelectors[0].Unknown04)
	sel, ok := m.TextureAttributeGroup.Lookup("_a0")
	require.True(ok)
	require.Equal(m.TextureAttributeSelectors[0], sel)

	require.Nil(m.ShadowParameters)
	require.Nil(m.Unknown44)
	require.Len(m.ParameterData, 40)
}

func TestMaterialParameterValues(t *testing.T) {
	require := require.New(t)

	m := decodeScene(t).Models.At(0).Materials.At(0)
	require.Len(m.Parameters, 2)
	require.Equal([]string{"alpha", "tex_mtx"}, m.ParameterGroup.Names())

	alpha, err := m.ParameterValue(m.Parameters[0])
	require.NoError(err)
	require.Equal(float32(0.75), alpha)

	mtx, ok := m.ParameterGroup.Lookup("tex_mtx")
	require.True(ok)
	require.Equal(ParamMatrix2x3, mtx.Type)
	v, err := m.ParameterValue(mtx)
	require.NoError(err)
	require.Equal(Matrix2x3{{1, 0, 0.5}, {0, 1, 0.25}}, v)
}

func TestParameterValueTypes(t *testing.T) {
	m := &Material{ParameterData: []byte{
		0xFF, 0xFF, 0xFF, 0xFE,
		0x3F, 0x80, 0x00, 0x00,
		0x40, 0x00, 0x00, 0x00,
		0x40, 0x40, 0x00, 0x00,
		0x40, 0x80, 0x00, 0x00,
	}}

	tests := []struct {
		name  string
		param MaterialParameter
		want  any
		kind  binio.Kind
	}{
		{"int32", MaterialParameter{Type: ParamInt32}, int32(-2), 0},
		{"float", MaterialParameter{Type: ParamFloat, ValueOffset: 4}, float32(1), 0},
		{"vec2", MaterialParameter{Type: ParamVec2, ValueOffset: 4}, Vec2{1, 2}, 0},
		{"vec3", MaterialParameter{Type: ParamVec3, ValueOffset: 4}, Vec3{1, 2, 3}, 0},
		{"vec4", MaterialParameter{Type: ParamVec4, ValueOffset: 4}, Vec4{1, 2, 3, 4}, 0},
		{"past end", MaterialParameter{Type: ParamVec4, ValueOffset: 8}, nil, binio.KindTruncated},
		{"unknown type", MaterialParameter{Type: 0x99}, nil, binio.KindUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			got, err := m.ParameterValue(tt.param)
			if tt.kind != 0 {
				require.Error(err)
				require.Equal(tt.kind, binio.KindOf(err))
				return
			}
			require.NoError(err)
			require.Equal(tt.want, got)
		})
	}
}

func TestMaterialParameterTypeString(t *testing.T) {
	require.Equal(t, "mat2x3", ParamMatrix2x3.String())
	require.Equal(t, "type(0x99)", MaterialParameterType(0x99).String())
}
