// Package byaml decodes Nintendo binary YAML (BYAML) documents: trees of
// arrays, dictionaries and scalars stored big-endian, with dictionary keys
// and string values kept in shared string tables.
package byaml

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"

	"github.com/jchantrell/fresdb/internal/binio"
)

const (
	Magic   = "BY"
	Version = 1

	pathPointSize  = 0x1C
	maxDepth       = 128
	dictionaryItem = 8
)

// NodeType is the type byte that precedes or describes every node.
type NodeType uint8

const (
	TypeStringIndex NodeType = 0xA0
	TypePathIndex   NodeType = 0xA1
	TypeArray       NodeType = 0xC0
	TypeDictionary  NodeType = 0xC1
	TypeStringArray NodeType = 0xC2
	TypePathArray   NodeType = 0xC3
	TypeBoolean     NodeType = 0xD0
	TypeInteger     NodeType = 0xD1
	TypeFloat       NodeType = 0xD2
)

var nodeTypeNames = map[NodeType]string{
	TypeStringIndex: "string",
	TypePathIndex:   "path",
	TypeArray:       "array",
	TypeDictionary:  "dictionary",
	TypeStringArray: "string_array",
	TypePathArray:   "path_array",
	TypeBoolean:     "bool",
	TypeInteger:     "int",
	TypeFloat:       "float",
}

func (t NodeType) String() string {
	if name, ok := nodeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(0x%02X)", uint8(t))
}

// container reports whether t is stored behind an offset.
func (t NodeType) container() bool {
	return t >= TypeArray && t <= TypePathArray
}

// PathPoint is one point of a path.
type PathPoint struct {
	Position  [3]float32
	Normal    [3]float32
	Unknown18 uint32
}

// Path is a sequence of points referenced from path nodes.
type Path []PathPoint

// Dictionary is a string-keyed node that keeps its entries in stored order.
type Dictionary struct {
	keys   []string
	values map[string]any
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{values: make(map[string]any)}
}

// Set adds or replaces key. New keys are appended to the order.
func (d *Dictionary) Set(key string, value any) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

func (d *Dictionary) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.values[key]
	return v, ok
}

func (d *Dictionary) Keys() []string {
	if d == nil {
		return nil
	}
	return d.keys
}

// All yields the entries in stored order.
func (d *Dictionary) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if d == nil {
			return
		}
		for _, k := range d.keys {
			if !yield(k, d.values[k]) {
				return
			}
		}
	}
}

// Document is a decoded BYAML file. Root is a []any or *Dictionary, or nil
// when the file has no root node. Values below it are string, Path, bool,
// int32, float32, []any, *Dictionary, []string or []Path.
type Document struct {
	Names   []string
	Strings []string
	Paths   []Path
	Root    any
}

type reader struct {
	c     *binio.Cursor
	doc   *Document
	depth int
	// nodes holds decoded containers; documents may share them
	nodes map[nodeKey]any
}

type nodeKey struct {
	offset int
	typ    NodeType
}

// Decode parses a complete BYAML document.
func Decode(data []byte) (*Document, error) {
	r := &reader{
		c:     binio.New(data, binary.BigEndian),
		doc:   &Document{},
		nodes: make(map[nodeKey]any),
	}

	magic, err := r.c.Bytes(2)
	if err != nil {
		return nil, err
	}
	if string(magic) != Magic {
		return nil, binio.NewError(binio.KindBadMagic, 0, Magic, string(magic))
	}
	version, err := r.c.Uint16()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, binio.NewError(binio.KindUnknownType, 2, fmt.Sprintf("version %d", Version), version)
	}
	offsets, err := r.c.Uint32s(4)
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	nameOffset, stringOffset, pathOffset, rootOffset := offsets[0], offsets[1], offsets[2], offsets[3]

	tables := []struct {
		name   string
		offset uint32
		want   NodeType
		set    func(any)
	}{
		{"name table", nameOffset, TypeStringArray, func(v any) { r.doc.Names = v.([]string) }},
		{"string table", stringOffset, TypeStringArray, func(v any) { r.doc.Strings = v.([]string) }},
		{"path table", pathOffset, TypePathArray, func(v any) { r.doc.Paths = v.([]Path) }},
	}
	for _, t := range tables {
		if t.offset == 0 {
			continue
		}
		v, typ, err := r.rootNode(t.offset)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.name, err)
		}
		if typ != t.want {
			return nil, binio.NewError(binio.KindUnknownType, int(t.offset), t.want.String(), typ.String())
		}
		t.set(v)
	}

	if rootOffset != 0 {
		v, typ, err := r.rootNode(rootOffset)
		if err != nil {
			return nil, fmt.Errorf("root: %w", err)
		}
		if typ != TypeArray && typ != TypeDictionary {
			return nil, binio.NewError(binio.KindUnknownType, int(rootOffset), "array or dictionary", typ.String())
		}
		r.doc.Root = v
	}
	return r.doc, nil
}

// rootNode reads a container whose type is its own first byte.
func (r *reader) rootNode(offset uint32) (any, NodeType, error) {
	var (
		v   any
		typ NodeType
	)
	err := r.c.At(int(offset), func() error {
		b, err := r.c.Uint8()
		if err != nil {
			return err
		}
		typ = NodeType(b)
		if !typ.container() {
			return binio.NewError(binio.KindUnknownType, int(offset), "container node", typ.String())
		}
		v, err = r.container(int(offset), typ)
		return err
	})
	return v, typ, err
}

// value reads the 4-byte value of a node whose type is already known:
// scalars are inline and containers are an absolute offset.
func (r *reader) value(typ NodeType) (any, error) {
	at := r.c.Tell()
	raw, err := r.c.Uint32()
	if err != nil {
		return nil, err
	}

	switch typ {
	case TypeStringIndex:
		if int(raw) >= len(r.doc.Strings) {
			return nil, binio.NewError(binio.KindOffsetOutOfBounds, at, fmt.Sprintf("string index < %d", len(r.doc.Strings)), raw)
		}
		return r.doc.Strings[raw], nil
	case TypePathIndex:
		if int(raw) >= len(r.doc.Paths) {
			return nil, binio.NewError(binio.KindOffsetOutOfBounds, at, fmt.Sprintf("path index < %d", len(r.doc.Paths)), raw)
		}
		return r.doc.Paths[raw], nil
	case TypeBoolean:
		return raw != 0, nil
	case TypeInteger:
		return int32(raw), nil
	case TypeFloat:
		return math.Float32frombits(raw), nil
	}

	if !typ.container() {
		return nil, binio.NewError(binio.KindUnknownType, at, "node type", typ.String())
	}
	key := nodeKey{int(raw), typ}
	if v, ok := r.nodes[key]; ok {
		return v, nil
	}
	var v any
	err = r.c.At(int(raw), func() error {
		b, err := r.c.Uint8()
		if err != nil {
			return err
		}
		if NodeType(b) != typ {
			return binio.NewError(binio.KindTagMismatch, int(raw), typ.String(), NodeType(b).String())
		}
		v, err = r.container(int(raw), typ)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s at 0x%X: %w", typ, raw, err)
	}
	r.nodes[key] = v
	return v, nil
}

// container reads a container node starting at start, with the cursor just
// past its type byte.
func (r *reader) container(start int, typ NodeType) (any, error) {
	if r.depth >= maxDepth {
		return nil, binio.NewError(binio.KindOffsetOutOfBounds, start, fmt.Sprintf("nesting below %d", maxDepth), r.depth)
	}
	r.depth++
	defer func() { r.depth-- }()

	hi, err := r.c.Uint8()
	if err != nil {
		return nil, err
	}
	lo, err := r.c.Uint16()
	if err != nil {
		return nil, err
	}
	length := int(hi)<<16 | int(lo)

	switch typ {
	case TypeArray:
		return r.array(length)
	case TypeDictionary:
		return r.dictionary(length)
	case TypeStringArray:
		return r.stringArray(start, length)
	case TypePathArray:
		return r.pathArray(start, length)
	}
	return nil, binio.NewError(binio.KindUnknownType, start, "container node", typ.String())
}

func (r *reader) array(length int) ([]any, error) {
	types, err := r.c.Bytes(length)
	if err != nil {
		return nil, err
	}
	if pad := (4 - r.c.Tell()%4) % 4; pad > 0 {
		if err := r.c.Skip(pad); err != nil {
			return nil, err
		}
	}

	out := make([]any, 0, length)
	for i, t := range types {
		v, err := r.value(NodeType(t))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *reader) dictionary(length int) (*Dictionary, error) {
	if length*dictionaryItem > r.c.Remaining() {
		return nil, binio.NewError(binio.KindTruncated, r.c.Tell(), length*dictionaryItem, r.c.Remaining())
	}

	d := &Dictionary{keys: make([]string, 0, length), values: make(map[string]any, length)}
	for i := 0; i < length; i++ {
		at := r.c.Tell()
		packed, err := r.c.Uint32()
		if err != nil {
			return nil, err
		}
		nameIndex := int(packed >> 8)
		if nameIndex >= len(r.doc.Names) {
			return nil, binio.NewError(binio.KindOffsetOutOfBounds, at, fmt.Sprintf("name index < %d", len(r.doc.Names)), nameIndex)
		}
		key := r.doc.Names[nameIndex]
		v, err := r.value(NodeType(packed & 0xFF))
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		d.Set(key, v)
	}
	return d, nil
}

// stringArray reads length zero-terminated strings whose offsets are
// relative to the node start.
func (r *reader) stringArray(start, length int) ([]string, error) {
	offsets, err := r.c.Uint32s(length)
	if err != nil {
		return nil, err
	}
	out := make([]string, length)
	for i, o := range offsets {
		err := r.c.At(start+int(o), func() error {
			var err error
			out[i], err = r.c.CString()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("string %d: %w", i, err)
		}
	}
	return out, nil
}

// pathArray reads length paths. One more offset than paths is stored so
// that each path's point count follows from the distance to the next.
func (r *reader) pathArray(start, length int) ([]Path, error) {
	offsets, err := r.c.Uint32s(length + 1)
	if err != nil {
		return nil, err
	}
	out := make([]Path, length)
	for i := range out {
		if offsets[i+1] < offsets[i] {
			return nil, binio.NewError(binio.KindOffsetOutOfBounds, start, fmt.Sprintf(">= 0x%X", offsets[i]), offsets[i+1])
		}
		count := int(offsets[i+1]-offsets[i]) / pathPointSize
		err := r.c.At(start+int(offsets[i]), func() error {
			if count*pathPointSize > r.c.Remaining() {
				return binio.NewError(binio.KindTruncated, r.c.Tell(), count*pathPointSize, r.c.Remaining())
			}
			path := make(Path, count)
			for j := range path {
				values, err := r.c.Float32s(6)
				if err != nil {
					return err
				}
				copy(path[j].Position[:], values[:3])
				copy(path[j].Normal[:], values[3:])
				if path[j].Unknown18, err = r.c.Uint32(); err != nil {
					return err
				}
			}
			out[i] = path
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("path %d: %w", i, err)
		}
	}
	return out, nil
}
