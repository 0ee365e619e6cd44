package gx2

import "fmt"

// SurfaceFormat is a GX2 surface format. The low byte selects the layout;
// bits 8 and above select the numeric interpretation.
type SurfaceFormat uint32

const (
	FormatInvalid           SurfaceFormat = 0x000
	FormatR8UNorm           SurfaceFormat = 0x001
	FormatR8UInt            SurfaceFormat = 0x101
	FormatR8SNorm           SurfaceFormat = 0x201
	FormatR8SInt            SurfaceFormat = 0x301
	FormatR4G4UNorm         SurfaceFormat = 0x002
	FormatR16UNorm          SurfaceFormat = 0x005
	FormatR16UInt           SurfaceFormat = 0x105
	FormatR16SNorm          SurfaceFormat = 0x205
	FormatR16SInt           SurfaceFormat = 0x305
	FormatR16Float          SurfaceFormat = 0x806
	FormatR8G8UNorm         SurfaceFormat = 0x007
	FormatR8G8UInt          SurfaceFormat = 0x107
	FormatR8G8SNorm         SurfaceFormat = 0x207
	FormatR8G8SInt          SurfaceFormat = 0x307
	FormatR5G6B5UNorm       SurfaceFormat = 0x008
	FormatR5G5B5A1UNorm     SurfaceFormat = 0x00A
	FormatR4G4B4A4UNorm     SurfaceFormat = 0x00B
	FormatA1B5G5R5UNorm     SurfaceFormat = 0x00C
	FormatR32UInt           SurfaceFormat = 0x10D
	FormatR32SInt           SurfaceFormat = 0x30D
	FormatR32Float          SurfaceFormat = 0x80E
	FormatR16G16UNorm       SurfaceFormat = 0x00F
	FormatR16G16UInt        SurfaceFormat = 0x10F
	FormatR16G16SNorm       SurfaceFormat = 0x20F
	FormatR16G16SInt        SurfaceFormat = 0x30F
	FormatR16G16Float       SurfaceFormat = 0x810
	FormatD24S8UNorm        SurfaceFormat = 0x011
	FormatX24G8UInt         SurfaceFormat = 0x111
	FormatD24S8Float        SurfaceFormat = 0x811
	FormatR11G11B10Float    SurfaceFormat = 0x816
	FormatR10G10B10A2UNorm  SurfaceFormat = 0x019
	FormatR10G10B10A2UInt   SurfaceFormat = 0x119
	FormatR10G10B10A2SNorm  SurfaceFormat = 0x219
	FormatR10G10B10A2SInt   SurfaceFormat = 0x319
	FormatR8G8B8A8UNorm     SurfaceFormat = 0x01A
	FormatR8G8B8A8UInt      SurfaceFormat = 0x11A
	FormatR8G8B8A8SNorm     SurfaceFormat = 0x21A
	FormatR8G8B8A8SInt      SurfaceFormat = 0x31A
	FormatR8G8B8A8SRGB      SurfaceFormat = 0x41A
	FormatA2B10G10R10UNorm  SurfaceFormat = 0x01B
	FormatA2B10G10R10UInt   SurfaceFormat = 0x11B
	FormatD32FloatS8UIntX24 SurfaceFormat = 0x81C
	FormatX32G8UIntX24      SurfaceFormat = 0x11C
	FormatR32G32UInt        SurfaceFormat = 0x11D
	FormatR32G32SInt        SurfaceFormat = 0x31D
	FormatR32G32Float       SurfaceFormat = 0x81E
	FormatR16G16B16A16UNorm SurfaceFormat = 0x01F
	FormatR16G16B16A16UInt  SurfaceFormat = 0x11F
	FormatR16G16B16A16SNorm SurfaceFormat = 0x21F
	FormatR16G16B16A16SInt  SurfaceFormat = 0x31F
	FormatR16G16B16A16Float SurfaceFormat = 0x820
	FormatR32G32B32A32UInt  SurfaceFormat = 0x122
	FormatR32G32B32A32SInt  SurfaceFormat = 0x322
	FormatR32G32B32A32Float SurfaceFormat = 0x823
	FormatBC1UNorm          SurfaceFormat = 0x031
	FormatBC1SRGB           SurfaceFormat = 0x431
	FormatBC2UNorm          SurfaceFormat = 0x032
	FormatBC2SRGB           SurfaceFormat = 0x432
	FormatBC3UNorm          SurfaceFormat = 0x033
	FormatBC3SRGB           SurfaceFormat = 0x433
	FormatBC4UNorm          SurfaceFormat = 0x034
	FormatBC4SNorm          SurfaceFormat = 0x234
	FormatBC5UNorm          SurfaceFormat = 0x035
	FormatBC5SNorm          SurfaceFormat = 0x235
	FormatNV12UNorm         SurfaceFormat = 0x081
)

var surfaceFormatNames = map[SurfaceFormat]string{
	FormatInvalid:           "Invalid",
	FormatR8UNorm:           "R8_UNorm",
	FormatR8UInt:            "R8_UInt",
	FormatR8SNorm:           "R8_SNorm",
	FormatR8SInt:            "R8_SInt",
	FormatR4G4UNorm:         "R4_G4_UNorm",
	FormatR16UNorm:          "R16_UNorm",
	FormatR16UInt:           "R16_UInt",
	FormatR16SNorm:          "R16_SNorm",
	FormatR16SInt:           "R16_SInt",
	FormatR16Float:          "R16_Float",
	FormatR8G8UNorm:         "R8_G8_UNorm",
	FormatR8G8UInt:          "R8_G8_UInt",
	FormatR8G8SNorm:         "R8_G8_SNorm",
	FormatR8G8SInt:          "R8_G8_SInt",
	FormatR5G6B5UNorm:       "R5_G6_B5_UNorm",
	FormatR5G5B5A1UNorm:     "R5_G5_B5_A1_UNorm",
	FormatR4G4B4A4UNorm:     "R4_G4_B4_A4_UNorm",
	FormatA1B5G5R5UNorm:     "A1_B5_G5_R5_UNorm",
	FormatR32UInt:           "R32_UInt",
	FormatR32SInt:           "R32_SInt",
	FormatR32Float:          "R32_Float",
	FormatR16G16UNorm:       "R16_G16_UNorm",
	FormatR16G16UInt:        "R16_G16_UInt",
	FormatR16G16SNorm:       "R16_G16_SNorm",
	FormatR16G16SInt:        "R16_G16_SInt",
	FormatR16G16Float:       "R16_G16_Float",
	FormatD24S8UNorm:        "D24_S8_UNorm",
	FormatX24G8UInt:         "X24_G8_UInt",
	FormatD24S8Float:        "D24_S8_Float",
	FormatR11G11B10Float:    "R11_G11_B10_Float",
	FormatR10G10B10A2UNorm:  "R10_G10_B10_A2_UNorm",
	FormatR10G10B10A2UInt:   "R10_G10_B10_A2_UInt",
	FormatR10G10B10A2SNorm:  "R10_G10_B10_A2_SNorm",
	FormatR10G10B10A2SInt:   "R10_G10_B10_A2_SInt",
	FormatR8G8B8A8UNorm:     "R8_G8_B8_A8_UNorm",
	FormatR8G8B8A8UInt:      "R8_G8_B8_A8_UInt",
	FormatR8G8B8A8SNorm:     "R8_G8_B8_A8_SNorm",
	FormatR8G8B8A8SInt:      "R8_G8_B8_A8_SInt",
	FormatR8G8B8A8SRGB:      "R8_G8_B8_A8_SRGB",
	FormatA2B10G10R10UNorm:  "A2_B10_G10_R10_UNorm",
	FormatA2B10G10R10UInt:   "A2_B10_G10_R10_UInt",
	FormatD32FloatS8UIntX24: "D32_Float_S8_UInt_X24",
	FormatX32G8UIntX24:      "X32_G8_UInt_X24",
	FormatR32G32UInt:        "R32_G32_UInt",
	FormatR32G32SInt:        "R32_G32_SInt",
	FormatR32G32Float:       "R32_G32_Float",
	FormatR16G16B16A16UNorm: "R16_G16_B16_A16_UNorm",
	FormatR16G16B16A16UInt:  "R16_G16_B16_A16_UInt",
	FormatR16G16B16A16SNorm: "R16_G16_B16_A16_SNorm",
	FormatR16G16B16A16SInt:  "R16_G16_B16_A16_SInt",
	FormatR16G16B16A16Float: "R16_G16_B16_A16_Float",
	FormatR32G32B32A32UInt:  "R32_G32_B32_A32_UInt",
	FormatR32G32B32A32SInt:  "R32_G32_B32_A32_SInt",
	FormatR32G32B32A32Float: "R32_G32_B32_A32_Float",
	FormatBC1UNorm:          "BC1_UNorm",
	FormatBC1SRGB:           "BC1_SRGB",
	FormatBC2UNorm:          "BC2_UNorm",
	FormatBC2SRGB:           "BC2_SRGB",
	FormatBC3UNorm:          "BC3_UNorm",
	FormatBC3SRGB:           "BC3_SRGB",
	FormatBC4UNorm:          "BC4_UNorm",
	FormatBC4SNorm:          "BC4_SNorm",
	FormatBC5UNorm:          "BC5_UNorm",
	FormatBC5SNorm:          "BC5_SNorm",
	FormatNV12UNorm:         "NV12_UNorm",
}

func (f SurfaceFormat) String() string {
	if name, ok := surfaceFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("SurfaceFormat(0x%X)", uint32(f))
}

// Known reports whether f is a defined format.
func (f SurfaceFormat) Known() bool {
	_, ok := surfaceFormatNames[f]
	return ok
}

// IsBlockCompressed reports whether f is one of the BCn formats.
func (f SurfaceFormat) IsBlockCompressed() bool {
	layout := f & 0xFF
	return layout >= 0x31 && layout <= 0x35
}

// IsSRGB reports whether f stores sRGB encoded color.
func (f SurfaceFormat) IsSRGB() bool {
	return f&0xF00 == 0x400
}

// BlockBytes returns the size in bytes of one 4x4 block for BCn formats and
// 0 otherwise.
func (f SurfaceFormat) BlockBytes() int {
	switch f & 0xFF {
	case 0x31, 0x34:
		return 8
	case 0x32, 0x33, 0x35:
		return 16
	default:
		return 0
	}
}
