package bfres

import (
	"fmt"
	"iter"

	"github.com/jchantrell/fresdb/internal/binio"
)

const indexGroupNodeSize = 16

// IndexGroupNode is one element of the flattened search tree. Node 0 is the
// root sentinel and carries no entry.
type IndexGroupNode struct {
	SearchValue uint32
	Left        uint16
	Right       uint16
	Name        string
	Data        Offset
}

// IndexGroup is a named, ordered collection decoded from an index group.
// Methods are safe on a nil group, which represents an absent one.
type IndexGroup[T any] struct {
	// Length is the byte length recorded in the group header
	Length uint32

	nodes  []IndexGroupNode
	values []T
	byName map[string]int
}

// NewIndexGroup assembles a group from parallel names and values, for graphs
// built in memory rather than decoded. Tree nodes carry names only.
func NewIndexGroup[T any](names []string, values []T) (*IndexGroup[T], error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("index group with %d names and %d values", len(names), len(values))
	}
	g := &IndexGroup[T]{
		nodes:  make([]IndexGroupNode, len(names)+1),
		values: append([]T(nil), values...),
		byName: make(map[string]int, len(names)),
	}
	g.nodes[0].SearchValue = 0xFFFFFFFF
	for i, name := range names {
		g.nodes[i+1].Name = name
		if _, dup := g.byName[name]; !dup {
			g.byName[name] = i
		}
	}
	return g, nil
}

// Len returns the number of entries, excluding the sentinel.
func (g *IndexGroup[T]) Len() int {
	if g == nil {
		return 0
	}
	return len(g.values)
}

// At returns the i-th entry in stored order. It panics if i is out of range.
func (g *IndexGroup[T]) At(i int) T {
	return g.values[i]
}

// Name returns the name of the i-th entry.
func (g *IndexGroup[T]) Name(i int) string {
	return g.nodes[i+1].Name
}

// Lookup returns the entry stored under name. With duplicate names the first
// stored entry wins.
func (g *IndexGroup[T]) Lookup(name string) (T, bool) {
	var zero T
	if g == nil {
		return zero, false
	}
	i, ok := g.byName[name]
	if !ok {
		return zero, false
	}
	return g.values[i], true
}

// Names returns entry names in stored order.
func (g *IndexGroup[T]) Names() []string {
	if g == nil {
		return nil
	}
	names := make([]string, len(g.values))
	for i := range g.values {
		names[i] = g.nodes[i+1].Name
	}
	return names
}

// Values returns a copy of the entries in stored order.
func (g *IndexGroup[T]) Values() []T {
	if g == nil {
		return nil
	}
	return append([]T(nil), g.values...)
}

// All iterates (name, entry) pairs in stored order.
func (g *IndexGroup[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		if g == nil {
			return
		}
		for i, v := range g.values {
			if !yield(g.nodes[i+1].Name, v) {
				return
			}
		}
	}
}

// Nodes returns the raw tree nodes including the root sentinel.
func (g *IndexGroup[T]) Nodes() []IndexGroupNode {
	if g == nil {
		return nil
	}
	return append([]IndexGroupNode(nil), g.nodes...)
}

// decodeIndexGroup reads the group at o. A declared count of -1 accepts
// whatever count the group records. An absent offset yields a nil group.
func decodeIndexGroup[T any](d *decoder, o Offset, declared int, decode func(*decoder) (T, error)) (*IndexGroup[T], error) {
	if o.Absent() {
		if declared > 0 {
			return nil, binio.NewError(binio.KindCountMismatch, o.Address, declared, 0)
		}
		return nil, nil
	}

	g := &IndexGroup[T]{}
	err := d.at(o, func() error {
		start := d.c.Tell()
		g.Length = d.u32()
		count := int32(d.u32())
		if d.err != nil {
			return d.err
		}
		if count < 0 || (declared >= 0 && int(count) != declared) {
			return binio.NewError(binio.KindCountMismatch, start+4, declared, count)
		}
		if (int(count)+1)*indexGroupNodeSize > d.c.Remaining() {
			return binio.NewError(binio.KindTruncated, d.c.Tell(), (int(count)+1)*indexGroupNodeSize, d.c.Remaining())
		}

		g.nodes = make([]IndexGroupNode, int(count)+1)
		for i := range g.nodes {
			n := &g.nodes[i]
			n.SearchValue = d.u32()
			n.Left = d.u16()
			n.Right = d.u16()
			n.Name = d.name()
			n.Data = d.offset()
		}
		if d.err != nil {
			return d.err
		}

		g.values = make([]T, 0, count)
		g.byName = make(map[string]int, count)
		for i := 1; i < len(g.nodes); i++ {
			n := g.nodes[i]
			if n.Data.Absent() {
				return binio.NewError(binio.KindOffsetOutOfBounds, n.Data.Address, "entry data offset", 0)
			}
			var v T
			err := d.at(n.Data, func() error {
				var err error
				v, err = decode(d)
				return err
			})
			if err != nil {
				return fmt.Errorf("entry %q: %w", n.Name, err)
			}
			g.values = append(g.values, v)
			if _, dup := g.byName[n.Name]; !dup {
				g.byName[n.Name] = i - 1
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}
