package bfres

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/x448/float16"

	"github.com/jchantrell/fresdb/internal/binio"
)

// AttributeFormat is the GX2 format tag of a vertex attribute.
type AttributeFormat uint32

const (
	FormatTwo8BitNormalized  AttributeFormat = 0x004
	FormatTwo16BitNormalized AttributeFormat = 0x007
	FormatFour8BitSigned     AttributeFormat = 0x20A
	FormatThree10BitSigned   AttributeFormat = 0x20B
	FormatTwo32BitFloat      AttributeFormat = 0x80D
	FormatFour16BitFloat     AttributeFormat = 0x80F
	FormatThree32BitFloat    AttributeFormat = 0x811
)

var attributeFormats = map[AttributeFormat]struct {
	name       string
	components int
	size       int
}{
	FormatTwo8BitNormalized:  {"unorm8x2", 2, 2},
	FormatTwo16BitNormalized: {"unorm16x2", 2, 4},
	FormatFour8BitSigned:     {"snorm8x4", 4, 4},
	FormatThree10BitSigned:   {"snorm10x3", 3, 4},
	FormatTwo32BitFloat:      {"float32x2", 2, 8},
	FormatFour16BitFloat:     {"float16x4", 4, 8},
	FormatThree32BitFloat:    {"float32x3", 3, 12},
}

func (f AttributeFormat) Known() bool {
	_, ok := attributeFormats[f]
	return ok
}

// Components returns the number of values per vertex, or 0 if unknown.
func (f AttributeFormat) Components() int {
	return attributeFormats[f].components
}

// Size returns the encoded byte width per vertex, or 0 if unknown.
func (f AttributeFormat) Size() int {
	return attributeFormats[f].size
}

func (f AttributeFormat) String() string {
	if info, ok := attributeFormats[f]; ok {
		return info.name
	}
	return fmt.Sprintf("format(0x%03X)", uint32(f))
}

// Decode converts one encoded element into floats. b must hold at least
// Size() bytes.
func (f AttributeFormat) Decode(b []byte, order binary.ByteOrder) ([]float32, error) {
	info, ok := attributeFormats[f]
	if !ok {
		return nil, binio.NewError(binio.KindUnknownType, -1, "vertex attribute format", fmt.Sprintf("0x%X", uint32(f)))
	}
	if len(b) < info.size {
		return nil, binio.NewError(binio.KindTruncated, -1, info.size, len(b))
	}

	out := make([]float32, info.components)
	switch f {
	case FormatTwo8BitNormalized:
		for i := range out {
			out[i] = float32(b[i]) / 255
		}
	case FormatTwo16BitNormalized:
		for i := range out {
			out[i] = float32(order.Uint16(b[i*2:])) / 65535
		}
	case FormatFour8BitSigned:
		for i := range out {
			out[i] = snorm(float32(int8(b[i])) / 127)
		}
	case FormatThree10BitSigned:
		packed := order.Uint32(b)
		out[0] = snorm(float32(signExtend10(packed>>20)) / 511)
		out[1] = snorm(float32(signExtend10(packed>>10)) / 511)
		out[2] = snorm(float32(signExtend10(packed)) / 511)
	case FormatTwo32BitFloat, FormatThree32BitFloat:
		for i := range out {
			out[i] = math.Float32frombits(order.Uint32(b[i*4:]))
		}
	case FormatFour16BitFloat:
		for i := range out {
			out[i] = float16.Frombits(order.Uint16(b[i*2:])).Float32()
		}
	}
	return out, nil
}

func signExtend10(v uint32) int32 {
	return int32(v<<22) >> 22
}

// snorm clamps the most negative encoding to -1.
func snorm(v float32) float32 {
	if v < -1 {
		return -1
	}
	return v
}
