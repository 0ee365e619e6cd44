// Package gx2 holds the Wii U GPU enumerations referenced by texture headers
// and shape levels of detail.
package gx2

import "fmt"

type SurfaceDim uint32

const (
	Dim1D SurfaceDim = iota
	Dim2D
	Dim3D
	DimCube
	Dim1DArray
	Dim2DArray
	Dim2DMSAA
	Dim2DMSAAArray
)

var surfaceDimNames = [...]string{"1D", "2D", "3D", "Cube", "1DArray", "2DArray", "2DMSAA", "2DMSAAArray"}

func (d SurfaceDim) String() string {
	if int(d) < len(surfaceDimNames) {
		return surfaceDimNames[d]
	}
	return fmt.Sprintf("SurfaceDim(%d)", uint32(d))
}

type AAMode uint32

const (
	AA1X AAMode = iota
	AA2X
	AA4X
	AA8X
)

func (m AAMode) String() string {
	if m <= AA8X {
		return fmt.Sprintf("%dx", 1<<m)
	}
	return fmt.Sprintf("AAMode(%d)", uint32(m))
}

type TileMode uint32

const (
	TileDefault       TileMode = 0x00
	TileLinearAligned TileMode = 0x01
	Tile1DThin1       TileMode = 0x02
	Tile1DThick       TileMode = 0x03
	Tile2DThin1       TileMode = 0x04
	Tile2DThin2       TileMode = 0x05
	Tile2DThin4       TileMode = 0x06
	Tile2DThick       TileMode = 0x07
	Tile2BThin1       TileMode = 0x08
	Tile2BThin2       TileMode = 0x09
	Tile2BThin4       TileMode = 0x0A
	Tile2BThick       TileMode = 0x0B
	Tile3DThin1       TileMode = 0x0C
	Tile3DThick       TileMode = 0x0D
	Tile3BThin1       TileMode = 0x0E
	Tile3BThick       TileMode = 0x0F
	TileLinearSpecial TileMode = 0x10
)

var tileModeNames = map[TileMode]string{
	TileDefault:       "Default",
	TileLinearAligned: "LinearAligned",
	Tile1DThin1:       "1DTiledThin1",
	Tile1DThick:       "1DTiledThick",
	Tile2DThin1:       "2DTiledThin1",
	Tile2DThin2:       "2DTiledThin2",
	Tile2DThin4:       "2DTiledThin4",
	Tile2DThick:       "2DTiledThick",
	Tile2BThin1:       "2BTiledThin1",
	Tile2BThin2:       "2BTiledThin2",
	Tile2BThin4:       "2BTiledThin4",
	Tile2BThick:       "2BTiledThick",
	Tile3DThin1:       "3DTiledThin1",
	Tile3DThick:       "3DTiledThick",
	Tile3BThin1:       "3BTiledThin1",
	Tile3BThick:       "3BTiledThick",
	TileLinearSpecial: "LinearSpecial",
}

func (t TileMode) String() string {
	if name, ok := tileModeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TileMode(0x%X)", uint32(t))
}

// SurfaceUse is a bit set.
type SurfaceUse uint32

const (
	UseTexture     SurfaceUse = 1 << 0
	UseColorBuffer SurfaceUse = 1 << 1
	UseDepthBuffer SurfaceUse = 1 << 2
	UseScanBuffer  SurfaceUse = 1 << 4
	UseFTV         SurfaceUse = 1 << 31
)

func (u SurfaceUse) String() string {
	if u == 0 {
		return "None"
	}
	var s string
	for _, f := range []struct {
		bit  SurfaceUse
		name string
	}{
		{UseTexture, "Texture"},
		{UseColorBuffer, "ColorBuffer"},
		{UseDepthBuffer, "DepthBuffer"},
		{UseScanBuffer, "ScanBuffer"},
		{UseFTV, "FTV"},
	} {
		if u&f.bit != 0 {
			if s != "" {
				s += "|"
			}
			s += f.name
		}
	}
	if rest := u &^ (UseTexture | UseColorBuffer | UseDepthBuffer | UseScanBuffer | UseFTV); rest != 0 {
		if s != "" {
			s += "|"
		}
		s += fmt.Sprintf("0x%X", uint32(rest))
	}
	return s
}
