package bfres

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the four-part version stored in the FRES header, for example
// 3.4.0.4.
type Version [4]uint8

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
}

// Compare returns -1, 0 or 1 as v is older than, equal to or newer than o.
func (v Version) Compare(o Version) int {
	for i := range v {
		if v[i] < o[i] {
			return -1
		}
		if v[i] > o[i] {
			return 1
		}
	}
	return 0
}

// ParseVersion parses a dotted version with one to four parts; missing
// parts are zero.
func ParseVersion(s string) (Version, error) {
	var v Version
	if s == "" {
		return v, fmt.Errorf("version string cannot be empty")
	}

	parts := strings.Split(s, ".")
	if len(parts) > len(v) {
		return v, fmt.Errorf("invalid version format: %s (expected at most 4 parts)", s)
	}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return v, fmt.Errorf("invalid version part %q in %s: %w", p, s, err)
		}
		v[i] = uint8(n)
	}
	return v, nil
}
