package archive

import (
	"fmt"

	"github.com/jchantrell/fresdb/internal/bfres"
)

// Compression identifies the outermost wrapper an archive is stored in.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionYaz0
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionYaz0:
		return "yaz0"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", int(c))
	}
}

// Archive is a decoded archive together with where it came from.
type Archive struct {
	Path           string
	Hash           uint64
	Compression    Compression
	CompressedSize int64
	// Size is the length of the decompressed payload
	Size int64
	// FromCache is set when the payload came from the decompression cache
	FromCache bool
	File      *bfres.File
}

// HashString returns the content hash in the form stored in the catalog.
func (a *Archive) HashString() string {
	return FormatHash(a.Hash)
}
