package bfres

import "fmt"

// EmbeddedFile is an arbitrary file stored inside the archive.
type EmbeddedFile struct {
	Name string
	Data []byte
}

func decodeEmbeddedFile(d *decoder) (*EmbeddedFile, error) {
	dataOffset := d.offset()
	size := int(d.u32())
	if d.err != nil {
		return nil, d.err
	}
	data, err := blobAt(d, dataOffset, size)
	if err != nil {
		return nil, fmt.Errorf("embedded file data: %w", err)
	}
	return &EmbeddedFile{Data: data}, nil
}
