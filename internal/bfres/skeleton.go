package bfres

import "fmt"

// NoBone marks an unused child slot in a Bone.
const NoBone = 0xFFFF

// Skeleton is an FSKL section.
type Skeleton struct {
	Unknown04 uint16
	// Flags is 0x1100 or 0x1200 in known files
	Flags     uint16
	Unknown0E uint16

	// Bones in stored order; a bone's index is its position here
	Bones []Bone
	// BoneGroup provides lookup of the same bones by name
	BoneGroup *IndexGroup[Bone]

	// InverseIndices maps skinning slots to bone indices. It holds one entry
	// per inverse matrix followed by the extra rigid-skinning entries.
	InverseIndices []uint16
	// InverseMatrices are the inverse bind transforms used for smooth skinning
	InverseMatrices []Matrix4x3
}

// Bone is one joint of a skeleton in its parent's space.
type Bone struct {
	Name        string
	Index       uint16
	ChildIndex  [4]uint16
	Unknown0E   uint16
	Flags       uint16
	Unknown12   uint16
	Scale       Vec3
	Rotation    Vec4
	Translation Vec3
}

// Children returns the child slots that reference a bone.
func (b Bone) Children() []uint16 {
	var out []uint16
	for _, c := range b.ChildIndex {
		if c != NoBone {
			out = append(out, c)
		}
	}
	return out
}

// Bone returns the bone called name.
func (s *Skeleton) Bone(name string) (Bone, bool) {
	return s.BoneGroup.Lookup(name)
}

func decodeSkeleton(d *decoder) (*Skeleton, error) {
	start := d.c.Tell()
	d.expectTag("FSKL")
	s := &Skeleton{}
	s.Unknown04 = d.u16()
	s.Flags = d.u16()
	boneCount := int(d.u16())
	inverseCount := int(d.u16())
	extraIndexCount := int(d.u16())
	s.Unknown0E = d.u16()
	boneGroupOffset := d.offset()
	boneArrayOffset := d.offset()
	inverseIndexOffset := d.offset()
	inverseMatrixOffset := d.offset()
	d.u32()
	if d.err != nil {
		return nil, fmt.Errorf("reading FSKL header at 0x%X: %w", start, d.err)
	}

	var err error
	s.Bones, err = arrayAt(d, boneArrayOffset, boneCount, decodeBone)
	if err != nil {
		return nil, fmt.Errorf("bone array: %w", err)
	}
	s.BoneGroup, err = decodeIndexGroup(d, boneGroupOffset, boneCount, decodeBone)
	if err != nil {
		return nil, fmt.Errorf("bone group: %w", err)
	}

	s.InverseIndices, err = u16sAt(d, inverseIndexOffset, inverseCount+extraIndexCount)
	if err != nil {
		return nil, fmt.Errorf("inverse indices: %w", err)
	}

	s.InverseMatrices, err = arrayAt(d, inverseMatrixOffset, inverseCount, func(d *decoder) (Matrix4x3, error) {
		m := d.matrix4x3()
		return m, d.err
	})
	if err != nil {
		return nil, fmt.Errorf("inverse matrices: %w", err)
	}

	return s, nil
}

func decodeBone(d *decoder) (Bone, error) {
	var b Bone
	b.Name = d.name()
	b.Index = d.u16()
	for i := range b.ChildIndex {
		b.ChildIndex[i] = d.u16()
	}
	b.Unknown0E = d.u16()
	b.Flags = d.u16()
	b.Unknown12 = d.u16()
	b.Scale = d.vec3()
	b.Rotation = d.vec4()
	b.Translation = d.vec3()
	d.u32()
	return b, d.err
}
