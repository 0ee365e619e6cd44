package archive

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/jchantrell/fresdb/internal/binio"
	"github.com/jchantrell/fresdb/internal/yaz0"
)

// Magic numbers recognized by Detect
var (
	MagicFRES = []byte("FRES")
	MagicYaz0 = []byte(yaz0.Magic)
	MagicZstd = []byte{0x28, 0xB5, 0x2F, 0xFD}
)

// zstdDecoderPool pools zstd decoders; a decoder runs without allocations
// once warmed up.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}
		return decoder
	},
}

// Detect reports the outermost wrapper of data. Data that is neither Yaz0
// nor zstd is reported as CompressionNone whether or not it is a FRES file.
func Detect(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, MagicZstd):
		return CompressionZstd
	case bytes.HasPrefix(data, MagicYaz0):
		return CompressionYaz0
	default:
		return CompressionNone
	}
}

// IsFRES reports whether data starts with the FRES signature.
func IsFRES(data []byte) bool {
	return bytes.HasPrefix(data, MagicFRES)
}

// Decompress removes at most one zstd layer and then at most one Yaz0 layer,
// returning the payload and the outermost wrapper.
func Decompress(data []byte) ([]byte, Compression, error) {
	compression := Detect(data)

	if Detect(data) == CompressionZstd {
		out, err := decompressZstd(data)
		if err != nil {
			return nil, compression, err
		}
		data = out
	}

	if Detect(data) == CompressionYaz0 {
		out, err := yaz0.Decompress(data)
		if err != nil {
			return nil, compression, fmt.Errorf("yaz0 decompression failed: %w", err)
		}
		data = out
	}

	return data, compression, nil
}

func decompressZstd(data []byte) ([]byte, error) {
	decoder := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	out, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, &binio.DecodeError{Kind: binio.KindBadMagic, Offset: 0, Err: fmt.Errorf("zstd decompression failed: %w", err)}
	}
	return out, nil
}
