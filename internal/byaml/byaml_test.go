package byaml

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jchantrell/fresdb/internal/binio"
)

var be = binary.BigEndian

func stringTable(strs ...string) []byte {
	node := []byte{byte(TypeStringArray), 0, 0, byte(len(strs))}
	dataStart := 4 + 4*len(strs)
	var data []byte
	for _, s := range strs {
		node = be.AppendUint32(node, uint32(dataStart+len(data)))
		data = append(append(data, s...), 0)
	}
	node = append(node, data...)
	for len(node)%4 != 0 {
		node = append(node, 0)
	}
	return node
}

func pathTable(points ...PathPoint) []byte {
	node := []byte{byte(TypePathArray), 0, 0, 1}
	node = be.AppendUint32(node, 12)
	node = be.AppendUint32(node, uint32(12+len(points)*pathPointSize))
	for _, p := range points {
		for _, c := range append(p.Position[:], p.Normal[:]...) {
			node = be.AppendUint32(node, math.Float32bits(c))
		}
		node = be.AppendUint32(node, p.Unknown18)
	}
	return node
}

func entry(node []byte, name int, typ NodeType, value uint32) []byte {
	node = be.AppendUint32(node, uint32(name)<<8|uint32(typ))
	return be.AppendUint32(node, value)
}

var samplePath = Path{
	{Position: [3]float32{0, 1, 2}, Normal: [3]float32{0, 1, 0}, Unknown18: 7},
	{Position: [3]float32{3, 4, 5}, Normal: [3]float32{0, 0, 1}, Unknown18: 8},
}

// sampleDocument is a dictionary root holding every scalar kind, a nested
// array and a dictionary inside that array.
func sampleDocument() []byte {
	b := make([]byte, 0x14)
	copy(b, Magic)
	be.PutUint16(b[2:], Version)

	nameAt := len(b)
	b = append(b, stringTable("flag", "items", "name", "path", "scale")...)
	stringAt := len(b)
	b = append(b, stringTable("hello")...)
	pathAt := len(b)
	b = append(b, pathTable(samplePath...)...)

	rootAt := len(b)
	arrayAt := rootAt + 4 + 5*dictionaryItem
	innerAt := arrayAt + 8 + 12

	root := []byte{byte(TypeDictionary), 0, 0, 5}
	root = entry(root, 0, TypeBoolean, 1)
	root = entry(root, 1, TypeArray, uint32(arrayAt))
	root = entry(root, 2, TypeStringIndex, 0)
	root = entry(root, 3, TypePathIndex, 0)
	root = entry(root, 4, TypeFloat, math.Float32bits(1.5))
	b = append(b, root...)

	array := []byte{byte(TypeArray), 0, 0, 3, byte(TypeInteger), byte(TypeFloat), byte(TypeDictionary), 0}
	array = be.AppendUint32(array, 0xFFFFFFF9)
	array = be.AppendUint32(array, math.Float32bits(2))
	array = be.AppendUint32(array, uint32(innerAt))
	b = append(b, array...)

	b = append(b, entry([]byte{byte(TypeDictionary), 0, 0, 1}, 0, TypeBoolean, 0)...)

	be.PutUint32(b[4:], uint32(nameAt))
	be.PutUint32(b[8:], uint32(stringAt))
	be.PutUint32(b[12:], uint32(pathAt))
	be.PutUint32(b[16:], uint32(rootAt))
	return b
}

func TestDecode(t *testing.T) {
	require := require.New(t)

	doc, err := Decode(sampleDocument())
	require.NoError(err)
	require.Equal([]string{"flag", "items", "name", "path", "scale"}, doc.Names)
	require.Equal([]string{"hello"}, doc.Strings)
	require.Equal([]Path{samplePath}, doc.Paths)

	root, ok := doc.Root.(*Dictionary)
	require.True(ok)
	require.Equal(5, root.Len())
	require.Equal(doc.Names, root.Keys())

	flag, ok := root.Get("flag")
	require.True(ok)
	require.Equal(true, flag)
	name, _ := root.Get("name")
	require.Equal("hello", name)
	path, _ := root.Get("path")
	require.Equal(samplePath, path)
	scale, _ := root.Get("scale")
	require.Equal(float32(1.5), scale)
	_, ok = root.Get("missing")
	require.False(ok)

	items, _ := root.Get("items")
	list, ok := items.([]any)
	require.True(ok)
	require.Len(list, 3)
	require.Equal(int32(-7), list[0])
	require.Equal(float32(2), list[1])
	inner, ok := list[2].(*Dictionary)
	require.True(ok)
	v, ok := inner.Get("flag")
	require.True(ok)
	require.Equal(false, v)

	var keys []string
	for k := range root.All() {
		keys = append(keys, k)
		if k == "name" {
			break
		}
	}
	require.Equal([]string{"flag", "items", "name"}, keys)
}

func TestDecodeWithoutOptionalTables(t *testing.T) {
	require := require.New(t)

	b := make([]byte, 0x14)
	copy(b, Magic)
	be.PutUint16(b[2:], Version)
	nameAt := len(b)
	b = append(b, stringTable("a")...)
	rootAt := len(b)
	b = append(b, entry([]byte{byte(TypeDictionary), 0, 0, 1}, 0, TypeInteger, 3)...)
	be.PutUint32(b[4:], uint32(nameAt))
	be.PutUint32(b[16:], uint32(rootAt))

	doc, err := Decode(b)
	require.NoError(err)
	require.Nil(doc.Strings)
	require.Nil(doc.Paths)
	a, ok := doc.Root.(*Dictionary).Get("a")
	require.True(ok)
	require.Equal(int32(3), a)

	// A string node without a string table has nothing to index.
	be.PutUint32(b[rootAt+4:], 0<<8|uint32(TypeStringIndex))
	_, err = Decode(b)
	require.ErrorIs(err, binio.ErrOffsetOutOfBounds)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(b []byte) []byte
		kind   binio.Kind
	}{
		{"bad magic", func(b []byte) []byte { b[0] = 'X'; return b }, binio.KindBadMagic},
		{"bad version", func(b []byte) []byte { b[3] = 2; return b }, binio.KindUnknownType},
		{"short header", func(b []byte) []byte { return b[:10] }, binio.KindTruncated},
		{"truncated root", func(b []byte) []byte { return b[:len(b)-12] }, binio.KindTruncated},
		{"root offset past end", func(b []byte) []byte { be.PutUint32(b[16:], 0xFFFF); return b }, binio.KindOffsetOutOfBounds},
		{"root is a table", func(b []byte) []byte { copy(b[16:], b[4:8]); return b }, binio.KindUnknownType},
		{"name index past table", func(b []byte) []byte {
			root := int(be.Uint32(b[16:]))
			be.PutUint32(b[root+4:], 9<<8|uint32(TypeBoolean))
			return b
		}, binio.KindOffsetOutOfBounds},
		{"unknown node type", func(b []byte) []byte {
			root := int(be.Uint32(b[16:]))
			be.PutUint32(b[root+4:], 0<<8|0x77)
			return b
		}, binio.KindUnknownType},
		{"container type mismatch", func(b []byte) []byte {
			root := int(be.Uint32(b[16:]))
			be.PutUint32(b[root+12:], 1<<8|uint32(TypeDictionary))
			return b
		}, binio.KindTagMismatch},
		{"huge dictionary", func(b []byte) []byte {
			root := int(be.Uint32(b[16:]))
			b[root+1] = 0xFF
			return b
		}, binio.KindTruncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			doc, err := Decode(tt.modify(sampleDocument()))
			require.Nil(doc)
			require.Error(err)
			require.Equal(tt.kind, binio.KindOf(err))
		})
	}
}

func TestDecodeSelfReference(t *testing.T) {
	require := require.New(t)

	b := make([]byte, 0x14)
	copy(b, Magic)
	be.PutUint16(b[2:], Version)
	nameAt := len(b)
	b = append(b, stringTable("a")...)
	rootAt := len(b)
	// An array whose only element is the array itself.
	b = append(b, byte(TypeArray), 0, 0, 1, byte(TypeArray), 0, 0, 0)
	b = be.AppendUint32(b, uint32(rootAt))
	be.PutUint32(b[4:], uint32(nameAt))
	be.PutUint32(b[16:], uint32(rootAt))

	_, err := Decode(b)
	require.ErrorIs(err, binio.ErrOffsetOutOfBounds)
	require.Contains(err.Error(), "nesting")
}

func TestSharedNodesDecodeOnce(t *testing.T) {
	require := require.New(t)

	b := make([]byte, 0x14)
	copy(b, Magic)
	be.PutUint16(b[2:], Version)
	nameAt := len(b)
	b = append(b, stringTable("a")...)
	rootAt := len(b)
	innerAt := rootAt + 8 + 8
	b = append(b, byte(TypeArray), 0, 0, 2, byte(TypeDictionary), byte(TypeDictionary), 0, 0)
	b = be.AppendUint32(b, uint32(innerAt))
	b = be.AppendUint32(b, uint32(innerAt))
	b = append(b, entry([]byte{byte(TypeDictionary), 0, 0, 1}, 0, TypeInteger, 1)...)
	be.PutUint32(b[4:], uint32(nameAt))
	be.PutUint32(b[16:], uint32(rootAt))

	doc, err := Decode(b)
	require.NoError(err)
	list := doc.Root.([]any)
	require.Len(list, 2)
	require.Same(list[0], list[1])
}

func TestNodeTypeString(t *testing.T) {
	require.Equal(t, "dictionary", TypeDictionary.String())
	require.Equal(t, "type(0x77)", NodeType(0x77).String())
}

func TestYAML(t *testing.T) {
	require := require.New(t)

	doc, err := Decode(sampleDocument())
	require.NoError(err)

	out, err := doc.YAML()
	require.NoError(err)
	require.True(strings.HasPrefix(string(out), "flag: true\nitems:\n"), string(out))

	var parsed map[string]any
	require.NoError(yaml.Unmarshal(out, &parsed))
	require.Equal(map[string]any{
		"flag":  true,
		"items": []any{-7, 2.0, map[string]any{"flag": false}},
		"name":  "hello",
		"path": []any{
			map[string]any{"position": []any{0.0, 1.0, 2.0}, "normal": []any{0.0, 1.0, 0.0}, "unknown": 7},
			map[string]any{"position": []any{3.0, 4.0, 5.0}, "normal": []any{0.0, 0.0, 1.0}, "unknown": 8},
		},
		"scale": 1.5,
	}, parsed)
}

func TestYAMLScalars(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{"true", "\"true\"\n"},
		{float32(3), "3.0\n"},
		{float32(math.Inf(-1)), "-.inf\n"},
		{nil, "null\n"},
		{[]string{"a"}, "- a\n"},
	}
	for _, tt := range tests {
		out, err := (&Document{Root: tt.value}).YAML()
		require.NoError(t, err)
		require.Equal(t, tt.want, string(out))
	}

	d := NewDictionary()
	d.Set("b", int32(1))
	d.Set("a", int32(2))
	d.Set("b", int32(3))
	out, err := (&Document{Root: d}).YAML()
	require.NoError(t, err)
	require.Equal(t, "b: 3\na: 2\n", string(out))
}
