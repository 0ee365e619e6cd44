// Package yaz0 decompresses Nintendo Yaz0 streams.
package yaz0

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/jchantrell/fresdb/internal/binio"
)

const (
	Magic      = "Yaz0"
	HeaderSize = 16

	// maxExpansion bounds the output produced per input byte: a three
	// byte back-reference copies at most 0x111 bytes.
	maxExpansion = 0x111/3 + 1
)

// IsCompressed reports whether src starts with the Yaz0 signature.
func IsCompressed(src []byte) bool {
	return len(src) >= 4 && bytes.Equal(src[:4], []byte(Magic))
}

// DecompressedSize returns the size declared in the stream header.
func DecompressedSize(src []byte) (int, error) {
	if len(src) < 8 {
		return 0, binio.NewError(binio.KindTruncated, 0, HeaderSize, len(src))
	}
	if !IsCompressed(src) {
		return 0, binio.NewError(binio.KindBadMagic, 0, Magic, string(src[:4]))
	}
	return int(binary.BigEndian.Uint32(src[4:8])), nil
}

// Decompress expands a complete Yaz0 stream. The result is exactly as long
// as the size in the header; a stream that runs out early is an error and
// no partial output is returned.
func Decompress(src []byte) ([]byte, error) {
	size, err := DecompressedSize(src)
	if err != nil {
		return nil, err
	}
	if len(src) < HeaderSize {
		return nil, binio.NewError(binio.KindTruncated, len(src), HeaderSize, len(src))
	}
	if limit := (len(src) - HeaderSize) * maxExpansion; size > limit {
		return nil, &binio.DecodeError{
			Kind:     binio.KindTruncated,
			Offset:   4,
			Expected: size,
			Actual:   limit,
			Err:      fmt.Errorf("%d input bytes cannot expand to %d", len(src)-HeaderSize, size),
		}
	}

	dst := make([]byte, size)
	written := 0
	pos := HeaderSize

	truncated := func() error {
		return &binio.DecodeError{
			Kind:     binio.KindTruncated,
			Offset:   pos,
			Expected: size,
			Actual:   written,
			Err:      fmt.Errorf("input exhausted after %d of %d bytes", written, size),
		}
	}

	for written < size {
		if pos >= len(src) {
			return nil, truncated()
		}
		group := src[pos]
		pos++

		for bit := 7; bit >= 0 && written < size; bit-- {
			if group&(1<<bit) != 0 {
				if pos >= len(src) {
					return nil, truncated()
				}
				dst[written] = src[pos]
				pos++
				written++
				continue
			}

			if pos+2 > len(src) {
				return nil, truncated()
			}
			v := binary.BigEndian.Uint16(src[pos:])
			pos += 2

			distance := int(v & 0x0FFF)
			length := int(v>>12) + 2
			if v>>12 == 0 {
				if pos >= len(src) {
					return nil, truncated()
				}
				length = int(src[pos]) + 0x12
				pos++
			}

			from := written - distance - 1
			if from < 0 {
				return nil, binio.NewError(binio.KindOffsetOutOfBounds, pos, "back-reference within output", from)
			}
			// Byte at a time: the source may overlap bytes produced by this copy.
			for i := 0; i < length && written < size; i++ {
				dst[written] = dst[from+i]
				written++
			}
		}
	}

	return dst, nil
}
