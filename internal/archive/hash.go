package archive

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Hash fingerprints archive contents. It is computed over the bytes as
// stored on disk, so it identifies a file before any decompression.
func Hash(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// FormatHash renders a hash as 16 lowercase hex digits.
func FormatHash(h uint64) string {
	return fmt.Sprintf("%016x", h)
}

// ParseHash parses the output of FormatHash.
func ParseHash(s string) (uint64, error) {
	h, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hash %q: %w", s, err)
	}
	return h, nil
}
