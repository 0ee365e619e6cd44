package bfres

import "fmt"

// Animation is the common header of the animation and scene sections. Only
// the signature, name and path are decoded; curve data is not.
type Animation struct {
	Kind SectionKind
	Tag  string
	Name string
	Path string
	// Offset is where the section starts
	Offset int
}

func animationDecoder(kind SectionKind) func(*decoder) (*Animation, error) {
	return func(d *decoder) (*Animation, error) {
		a := &Animation{Kind: kind, Tag: kind.Tag(), Offset: d.c.Tell()}
		d.expectTag(a.Tag)
		a.Name = d.name()
		a.Path = d.name()
		if d.err != nil {
			return nil, fmt.Errorf("reading %s header at 0x%X: %w", a.Tag, a.Offset, d.err)
		}
		return a, nil
	}
}
