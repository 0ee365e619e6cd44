package bfres

import (
	"fmt"

	"github.com/jchantrell/fresdb/internal/gx2"
)

// TextureRegisterCount is the number of reserved words kept verbatim after
// the surface description.
const TextureRegisterCount = 27

// Texture is an FTEX section. Pixel data is kept in its GPU layout.
type Texture struct {
	// Name is taken from the index group the texture was found in
	Name string
	// Offset is where the FTEX section starts; texture selectors point here
	Offset int

	Dim         gx2.SurfaceDim
	Width       uint32
	Height      uint32
	Depth       uint32
	MipCount    uint32
	Format      gx2.SurfaceFormat
	AAMode      gx2.AAMode
	Use         gx2.SurfaceUse
	DataSize    uint32
	Unknown28   uint32
	MipDataSize uint32
	Unknown30   uint32
	TileMode    gx2.TileMode
	Swizzle     uint32
	Alignment   uint32
	Pitch       uint32
	Registers   [TextureRegisterCount]uint32
	UnknownB8   uint32
	UnknownBC   uint32

	Data    []byte
	MipData []byte
}

func decodeTexture(d *decoder) (*Texture, error) {
	t := &Texture{Offset: d.c.Tell()}
	d.expectTag("FTEX")
	t.Dim = gx2.SurfaceDim(d.u32())
	t.Width = d.u32()
	t.Height = d.u32()
	t.Depth = d.u32()
	t.MipCount = d.u32()
	t.Format = gx2.SurfaceFormat(d.u32())
	t.AAMode = gx2.AAMode(d.u32())
	t.Use = gx2.SurfaceUse(d.u32())
	t.DataSize = d.u32()
	t.Unknown28 = d.u32()
	t.MipDataSize = d.u32()
	t.Unknown30 = d.u32()
	t.TileMode = gx2.TileMode(d.u32())
	t.Swizzle = d.u32()
	t.Alignment = d.u32()
	t.Pitch = d.u32()
	copy(t.Registers[:], d.u32s(TextureRegisterCount))
	dataOffset := d.offset()
	mipOffset := d.offset()
	t.UnknownB8 = d.u32()
	t.UnknownBC = d.u32()
	if d.err != nil {
		return nil, fmt.Errorf("reading FTEX header at 0x%X: %w", t.Offset, d.err)
	}

	if !t.Format.Known() {
		d.log.Warn("Unknown texture surface format", "offset", t.Offset, "format", t.Format)
	}

	var err error
	if t.Data, err = blobAt(d, dataOffset, int(t.DataSize)); err != nil {
		return nil, fmt.Errorf("texture data: %w", err)
	}
	if t.MipData, err = blobAt(d, mipOffset, int(t.MipDataSize)); err != nil {
		return nil, fmt.Errorf("texture mip data: %w", err)
	}
	return t, nil
}

// blobAt copies size bytes at o. An absent offset yields nil.
func blobAt(d *decoder, o Offset, size int) ([]byte, error) {
	if o.Absent() || size == 0 {
		return nil, nil
	}
	var b []byte
	err := d.at(o, func() error {
		b = d.bytes(size)
		return d.err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}
