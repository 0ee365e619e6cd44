package bfres

import (
	"fmt"
)

// SectionKind identifies one of the twelve section groups of an archive.
type SectionKind int

const (
	SectionModels SectionKind = iota
	SectionTextures
	SectionSkeletalAnimations
	SectionShaderParamAnimations
	SectionColorAnimations
	SectionTextureSRTAnimations
	SectionTexturePatternAnimations
	SectionBoneVisibilityAnimations
	SectionMaterialVisibilityAnimations
	SectionShapeAnimations
	SectionSceneAnimations
	SectionEmbeddedFiles

	SectionCount = 12
)

var sectionKinds = [SectionCount]struct {
	name string
	tag  string
}{
	{"models", "FMDL"},
	{"textures", "FTEX"},
	{"skeletal_animations", "FSKA"},
	{"shader_param_animations", "FSHU"},
	{"color_animations", "FSHU"},
	{"texture_srt_animations", "FSHU"},
	{"texture_pattern_animations", "FTXP"},
	{"bone_visibility_animations", "FVIS"},
	{"material_visibility_animations", "FVIS"},
	{"shape_animations", "FSHA"},
	{"scene_animations", "FSCN"},
	{"embedded_files", ""},
}

func (k SectionKind) String() string {
	if k >= 0 && int(k) < SectionCount {
		return sectionKinds[k].name
	}
	return fmt.Sprintf("section(%d)", int(k))
}

// Tag returns the signature entries of this kind start with; embedded files
// have none.
func (k SectionKind) Tag() string {
	if k >= 0 && int(k) < SectionCount {
		return sectionKinds[k].tag
	}
	return ""
}

// IsAnimation reports whether entries of k decode to *Animation.
func (k SectionKind) IsAnimation() bool {
	return k >= SectionSkeletalAnimations && k <= SectionSceneAnimations
}

// Header is the fixed FRES file header.
type Header struct {
	Version           Version
	ByteOrderMark     uint16
	FormatVersion     uint16
	FileLength        uint32
	Alignment         uint32
	StringTableLength uint32
	StringTableOffset Offset
	GroupOffsets      [SectionCount]Offset
	GroupCounts       [SectionCount]uint16
}

// File is a decoded archive. It is read-only once returned.
type File struct {
	Header Header
	Name   string

	Models                       *IndexGroup[*Model]
	Textures                     *IndexGroup[*Texture]
	SkeletalAnimations           *IndexGroup[*Animation]
	ShaderParamAnimations        *IndexGroup[*Animation]
	ColorAnimations              *IndexGroup[*Animation]
	TextureSRTAnimations         *IndexGroup[*Animation]
	TexturePatternAnimations     *IndexGroup[*Animation]
	BoneVisibilityAnimations     *IndexGroup[*Animation]
	MaterialVisibilityAnimations *IndexGroup[*Animation]
	ShapeAnimations              *IndexGroup[*Animation]
	SceneAnimations              *IndexGroup[*Animation]
	EmbeddedFiles                *IndexGroup[*EmbeddedFile]
}

// SlotInfo describes one of the twelve section slots.
type SlotInfo struct {
	Kind    SectionKind
	Present bool
	Offset  Offset
	Count   int
}

// Slot reports the state of a section slot.
func (f *File) Slot(kind SectionKind) SlotInfo {
	info := SlotInfo{Kind: kind, Offset: f.Header.GroupOffsets[kind]}
	info.Present = !info.Offset.Absent()
	switch {
	case kind == SectionModels:
		info.Count = f.Models.Len()
	case kind == SectionTextures:
		info.Count = f.Textures.Len()
	case kind == SectionEmbeddedFiles:
		info.Count = f.EmbeddedFiles.Len()
	case kind.IsAnimation():
		info.Count = f.Animations(kind).Len()
	}
	return info
}

// Present reports whether the archive has a group for kind.
func (f *File) Present(kind SectionKind) bool {
	return !f.Header.GroupOffsets[kind].Absent()
}

// Slots returns all twelve slots in order.
func (f *File) Slots() []SlotInfo {
	out := make([]SlotInfo, SectionCount)
	for k := range out {
		out[k] = f.Slot(SectionKind(k))
	}
	return out
}

// Summary returns the entry count of every non-empty slot keyed by slot name.
func (f *File) Summary() map[string]int {
	out := make(map[string]int)
	for _, slot := range f.Slots() {
		if slot.Count > 0 {
			out[slot.Kind.String()] = slot.Count
		}
	}
	return out
}

// Animations returns the animation group for an animation kind, or nil.
func (f *File) Animations(kind SectionKind) *IndexGroup[*Animation] {
	if p := f.animationSlot(kind); p != nil {
		return *p
	}
	return nil
}

func (f *File) animationSlot(kind SectionKind) **IndexGroup[*Animation] {
	switch kind {
	case SectionSkeletalAnimations:
		return &f.SkeletalAnimations
	case SectionShaderParamAnimations:
		return &f.ShaderParamAnimations
	case SectionColorAnimations:
		return &f.ColorAnimations
	case SectionTextureSRTAnimations:
		return &f.TextureSRTAnimations
	case SectionTexturePatternAnimations:
		return &f.TexturePatternAnimations
	case SectionBoneVisibilityAnimations:
		return &f.BoneVisibilityAnimations
	case SectionMaterialVisibilityAnimations:
		return &f.MaterialVisibilityAnimations
	case SectionShapeAnimations:
		return &f.ShapeAnimations
	case SectionSceneAnimations:
		return &f.SceneAnimations
	default:
		return nil
	}
}

// Texture returns the texture called name.
func (f *File) Texture(name string) (*Texture, bool) {
	return f.Textures.Lookup(name)
}

// TextureAt returns the texture whose section starts at o, which is how
// texture selectors reference textures.
func (f *File) TextureAt(o Offset) (*Texture, bool) {
	if o.Absent() {
		return nil, false
	}
	for _, t := range f.Textures.All() {
		if t.Offset == o.Target {
			return t, true
		}
	}
	return nil, false
}

func decodeFile(d *decoder) (*File, error) {
	d.expectTag("FRES")
	f := &File{}
	h := &f.Header
	for i := range h.Version {
		h.Version[i] = d.u8()
	}
	h.ByteOrderMark = d.u16()
	h.FormatVersion = d.u16()
	h.FileLength = d.u32()
	h.Alignment = d.u32()
	f.Name = d.name()
	h.StringTableLength = d.u32()
	h.StringTableOffset = d.offset()
	for i := range h.GroupOffsets {
		h.GroupOffsets[i] = d.offset()
	}
	for i := range h.GroupCounts {
		h.GroupCounts[i] = d.u16()
	}
	if d.err != nil {
		return nil, fmt.Errorf("reading FRES header: %w", d.err)
	}

	if h.ByteOrderMark != 0xFEFF {
		d.log.Warn("Unexpected byte order mark", "bom", fmt.Sprintf("0x%04X", h.ByteOrderMark))
	}
	if int(h.FileLength) != d.c.Len() {
		d.log.Debug("File length differs from header", "header", h.FileLength, "actual", d.c.Len())
	}

	for k := range SectionCount {
		kind := SectionKind(k)
		if h.GroupOffsets[k].Absent() {
			if h.GroupCounts[k] != 0 {
				d.log.Warn("Section count without group", "section", kind, "count", h.GroupCounts[k])
			}
			continue
		}
		if err := f.decodeSlot(d, kind); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", kind, err)
		}
	}

	d.log.Debug("Decoded archive",
		"name", f.Name,
		"version", h.Version,
		"sections", f.Summary())

	return f, nil
}

func (f *File) decodeSlot(d *decoder, kind SectionKind) error {
	o := f.Header.GroupOffsets[kind]
	count := int(f.Header.GroupCounts[kind])

	var err error
	switch {
	case kind == SectionModels:
		f.Models, err = decodeIndexGroup(d, o, count, decodeModel)
	case kind == SectionTextures:
		f.Textures, err = decodeIndexGroup(d, o, count, decodeTexture)
		for i := 0; err == nil && i < f.Textures.Len(); i++ {
			f.Textures.At(i).Name = f.Textures.Name(i)
		}
	case kind == SectionEmbeddedFiles:
		f.EmbeddedFiles, err = decodeIndexGroup(d, o, count, decodeEmbeddedFile)
		for i := 0; err == nil && i < f.EmbeddedFiles.Len(); i++ {
			f.EmbeddedFiles.At(i).Name = f.EmbeddedFiles.Name(i)
		}
	case kind.IsAnimation():
		*f.animationSlot(kind), err = decodeIndexGroup(d, o, count, animationDecoder(kind))
	}
	return err
}
