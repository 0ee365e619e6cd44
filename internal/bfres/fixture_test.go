package bfres

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
)

// builder assembles big-endian archives for tests. Offsets are written as
// labelled placeholders and patched when bytes is called.
type builder struct {
	buf     []byte
	labels  map[string]int
	fixups  []fixup
	strings []string
	origin  OffsetOrigin
}

type fixup struct {
	at    int
	label string
}

type groupEntry struct {
	name  string
	label string
}

type slot struct {
	label string
	count uint16
}

func newBuilder(origin OffsetOrigin) *builder {
	return &builder{labels: map[string]int{}, origin: origin}
}

func (b *builder) mark(label string) {
	b.labels[label] = len(b.buf)
}

func (b *builder) u8(vs ...uint8) {
	b.buf = append(b.buf, vs...)
}

func (b *builder) u16(vs ...uint16) {
	for _, v := range vs {
		b.buf = binary.BigEndian.AppendUint16(b.buf, v)
	}
}

func (b *builder) u32(vs ...uint32) {
	for _, v := range vs {
		b.buf = binary.BigEndian.AppendUint32(b.buf, v)
	}
}

func (b *builder) f32(vs ...float32) {
	for _, v := range vs {
		b.u32(math.Float32bits(v))
	}
}

func (b *builder) tag(s string) {
	b.buf = append(b.buf, s...)
}

func (b *builder) pad(n int) {
	b.buf = append(b.buf, make([]byte, n)...)
}

func (b *builder) align(n int) {
	for len(b.buf)%n != 0 {
		b.buf = append(b.buf, 0)
	}
}

func (b *builder) ref(label string) {
	b.fixups = append(b.fixups, fixup{at: len(b.buf), label: label})
	b.u32(0)
}

// opt writes a reference, or a zero offset for an empty label.
func (b *builder) opt(label string) {
	if label == "" {
		b.u32(0)
		return
	}
	b.ref(label)
}

// name writes a reference into the string pool emitted by bytes.
func (b *builder) name(s string) {
	b.ref("$" + s)
	if !slices.Contains(b.strings, s) {
		b.strings = append(b.strings, s)
	}
}

func (b *builder) cstr(s string) {
	b.tag(s)
	b.u8(0)
	b.align(4)
}

func (b *builder) group(label string, entries ...groupEntry) {
	b.align(4)
	b.mark(label)
	b.u32(uint32(8+16*(len(entries)+1)), uint32(len(entries)))
	b.u32(0xFFFFFFFF)
	b.u16(1, 0)
	b.u32(0, 0)
	for i, e := range entries {
		b.u32(uint32(i))
		b.u16(0, 0)
		b.name(e.name)
		b.ref(e.label)
	}
}

func (b *builder) fres(name string, slots map[SectionKind]slot) {
	b.tag("FRES")
	b.u8(3, 4, 0, 4)
	b.u16(0xFEFF, 0x0010)
	b.u32(0, 0x2000)
	b.name(name)
	b.u32(0, 0)
	for k := range SectionCount {
		b.opt(slots[SectionKind(k)].label)
	}
	for k := range SectionCount {
		b.u16(slots[SectionKind(k)].count)
	}
	b.u32(0)
}

func (b *builder) bytes() []byte {
	for _, s := range b.strings {
		b.align(4)
		b.u32(uint32(len(s)))
		b.mark("$" + s)
		b.tag(s)
		b.u8(0)
	}
	b.strings = nil
	b.align(4)

	for _, f := range b.fixups {
		target, ok := b.labels[f.label]
		if !ok {
			panic(fmt.Sprintf("undefined label %q", f.label))
		}
		base := f.at
		if b.origin == OriginAfterField {
			base += 4
		}
		if target == base {
			panic(fmt.Sprintf("offset to %q resolves to zero", f.label))
		}
		binary.BigEndian.PutUint32(b.buf[f.at:], uint32(int32(target-base)))
	}
	return b.buf
}

func quietOptions(origin OffsetOrigin) *DecodeOptions {
	return &DecodeOptions{
		OffsetOrigin: origin,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// minimalArchive holds a single model with no children.
func minimalArchive(origin OffsetOrigin) []byte {
	b := newBuilder(origin)
	b.fres("minimal", map[SectionKind]slot{SectionModels: {"models", 1}})
	b.group("models", groupEntry{"Body", "fmdl"})
	b.pad(4)
	b.mark("fmdl")
	b.tag("FMDL")
	b.name("Body")
	b.u32(0, 0, 0, 0, 0, 0)
	b.u16(0, 0, 0, 0)
	b.u32(0)
	return b.bytes()
}

// sceneArchive holds a skinned model with one shape and material, the
// texture the material samples, a skeletal animation and an embedded file.
func sceneArchive() []byte {
	b := newBuilder(OriginField)
	b.fres("scene", map[SectionKind]slot{
		SectionModels:             {"models", 1},
		SectionTextures:           {"textures", 1},
		SectionSkeletalAnimations: {"skanims", 1},
		SectionEmbeddedFiles:      {"embedded", 1},
	})

	b.group("models", groupEntry{"Body", "fmdl"})
	b.mark("fmdl")
	b.tag("FMDL")
	b.name("Body")
	b.u32(0)
	b.ref("fskl")
	b.ref("fvtx")
	b.ref("shapes")
	b.ref("materials")
	b.ref("mparams")
	b.u16(1, 1, 1, 1)
	b.u32(3)

	// skeleton
	b.mark("fskl")
	b.tag("FSKL")
	b.u16(0, 0x1100, 2, 1, 1, 0)
	b.ref("bonegroup")
	b.ref("bones")
	b.ref("invidx")
	b.ref("invmat")
	b.u32(0)

	b.mark("bones")
	b.mark("bone0")
	b.name("Root")
	b.u16(0, 1, NoBone, NoBone, NoBone, 0, 0, 0)
	b.f32(1, 1, 1, 0, 0, 0, 1, 0, 0, 0)
	b.u32(0)
	b.mark("bone1")
	b.name("Arm")
	b.u16(1, NoBone, NoBone, NoBone, NoBone, 0, 0, 0)
	b.f32(1, 1, 1, 0, 0, 0, 1, 0, 2, 0)
	b.u32(0)
	b.group("bonegroup", groupEntry{"Root", "bone0"}, groupEntry{"Arm", "bone1"})

	b.mark("invidx")
	b.u16(0, 1)
	b.mark("invmat")
	b.f32(1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, -2)

	// vertex buffer
	b.mark("fvtx")
	b.tag("FVTX")
	b.u8(2, 1)
	b.u16(0)
	b.u32(3, 0)
	b.ref("attrs")
	b.ref("attrgroup")
	b.ref("bufs")
	b.u32(0)

	b.mark("attrs")
	b.mark("attr0")
	b.name("_p0")
	b.u32(0, uint32(FormatThree32BitFloat))
	b.mark("attr1")
	b.name("_u0")
	b.u32(12, uint32(FormatTwo16BitNormalized))
	b.group("attrgroup", groupEntry{"_p0", "attr0"}, groupEntry{"_u0", "attr1"})

	b.mark("bufs")
	b.u32(0, 48, 0)
	b.u16(16, 0)
	b.u32(0)
	b.ref("vdata")
	b.mark("vdata")
	b.f32(0, 0, 0)
	b.u16(0, 0)
	b.f32(1, 0, 0)
	b.u16(0xFFFF, 0)
	b.f32(0, 1, 0)
	b.u16(0, 0x8000)

	// shape
	b.group("shapes", groupEntry{"Body__Mat", "fshp"})
	b.mark("fshp")
	b.tag("FSHP")
	b.name("Body__Mat")
	b.u32(0)
	b.u16(0, 0, 0, 0, 1)
	b.u8(1, 1)
	b.u32(1)
	b.f32(1.5)
	b.ref("fvtx")
	b.ref("lods")
	b.ref("skinbones")
	b.u32(0)
	b.ref("visnodes")
	b.ref("visranges")
	b.ref("visidx")
	b.u32(0)

	b.mark("lods")
	b.u32(4, 0, 3)
	b.u16(1, 0)
	b.ref("visgroups")
	b.ref("ib")
	b.u32(0)
	b.mark("visgroups")
	b.u32(0, 3)
	b.mark("ib")
	b.u32(0, 6, 0)
	b.u16(0, 0)
	b.u32(0)
	b.ref("ibdata")
	b.mark("ibdata")
	b.u16(0, 1, 2)
	b.align(4)
	b.mark("skinbones")
	b.u16(0)
	b.align(4)
	b.mark("visnodes")
	b.u16(0, 0, 0, 0, 0, 1)
	b.mark("visranges")
	b.f32(0, 0, 0, 1, 1, 0)
	b.mark("visidx")
	b.u16(0)
	b.align(4)

	// material
	b.group("materials", groupEntry{"Mat", "fmat"})
	b.mark("fmat")
	b.tag("FMAT")
	b.name("Mat")
	b.u32(0)
	b.u16(0, 2)
	b.u8(1, 1)
	b.u16(2)
	b.u32(40, 0)
	b.ref("rparams")
	b.ref("structure")
	b.ref("shaderctl")
	b.ref("texsel")
	b.ref("texattr")
	b.ref("texattrgroup")
	b.ref("params")
	b.ref("paramgroup")
	b.ref("paramdata")
	b.u32(0, 0)

	b.group("rparams", groupEntry{"gsys_cull", "rp0"}, groupEntry{"gsys_depth", "rp1"})
	b.mark("rp0")
	b.u16(0)
	b.u8(uint8(RenderParameterString), 0)
	b.name("gsys_cull")
	b.name("back")
	b.mark("rp1")
	b.u16(0)
	b.u8(uint8(RenderParameterVec2), 0)
	b.name("gsys_depth")
	b.f32(0.5, 1)

	b.mark("structure")
	for i := range MaterialStructureSize {
		b.u8(uint8(i))
	}

	b.mark("shaderctl")
	b.name("shaderarc")
	b.name("uking_mat")
	b.u32(0)
	b.u8(1, 0)
	b.u16(1)
	b.ref("vsin")
	b.u32(0)
	b.ref("shparams")
	b.group("vsin", groupEntry{"_p0", "vsinval"})
	b.mark("vsinval")
	b.cstr("pos")
	b.group("shparams", groupEntry{"enable_color", "shval"})
	b.mark("shval")
	b.cstr("1")

	b.mark("texsel")
	b.name("Tex_Alb")
	b.ref("ftex")
	b.mark("texattr")
	b.mark("tas0")
	b.u8(0, 0, 0, 0, 0xFF, 0)
	b.u16(0)
	b.u32(0, 0)
	b.name("_a0")
	b.u32(0)
	b.group("texattrgroup", groupEntry{"_a0", "tas0"})

	b.mark("params")
	b.mark("mp0")
	b.u8(uint8(ParamFloat), 4)
	b.u16(0)
	b.u32(0, 0)
	b.u16(0, 0)
	b.name("alpha")
	b.mark("mp1")
	b.u8(uint8(ParamMatrix2x3), 24)
	b.u16(16)
	b.u32(0, 0)
	b.u16(1, 1)
	b.name("tex_mtx")
	b.group("paramgroup", groupEntry{"alpha", "mp0"}, groupEntry{"tex_mtx", "mp1"})
	b.mark("paramdata")
	b.f32(0.75, 0, 0, 0)
	b.f32(1, 0, 0, 1, 0.5, 0.25)

	b.group("mparams", groupEntry{"scale", "mparam0"})
	b.mark("mparam0")
	b.name("scale")
	b.u16(0, 0)
	b.f32(2)

	// texture
	b.group("textures", groupEntry{"Tex_Alb", "ftex"})
	b.mark("ftex")
	b.tag("FTEX")
	b.u32(1, 4, 4, 1, 1, 0x031, 0, 1, 8, 0, 0, 0, 4, 0, 0x200, 4)
	b.pad(TextureRegisterCount * 4)
	b.ref("texdata")
	b.u32(0, 0, 0)
	b.mark("texdata")
	b.u8(0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88)

	// animation
	b.group("skanims", groupEntry{"Walk", "fska"})
	b.mark("fska")
	b.tag("FSKA")
	b.name("Walk")
	b.name("anim/Walk")
	b.u32(0)

	// embedded file
	b.group("embedded", groupEntry{"readme.txt", "emb"})
	b.mark("emb")
	b.ref("embdata")
	b.u32(5)
	b.mark("embdata")
	b.tag("hello")

	return b.bytes()
}
