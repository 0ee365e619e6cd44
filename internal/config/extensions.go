package config

import (
	"fmt"
	"strings"
)

// Archive file extensions recognized during discovery
const (
	ExtensionBFRES  = ".bfres"
	ExtensionSBFRES = ".sbfres"
	ExtensionSZS    = ".szs"
	ExtensionZS     = ".zs"
)

var DefaultExtensions = []string{ExtensionBFRES, ExtensionSZS, ExtensionZS, ExtensionSBFRES}

var validExtensions = map[string]bool{
	ExtensionBFRES:  true,
	ExtensionSBFRES: true,
	ExtensionSZS:    true,
	ExtensionZS:     true,
}

// validateExtensions ensures every extension is one the loader can unwrap.
// Extensions are compared case-insensitively and must carry the leading dot.
func validateExtensions(extensions []string) error {
	if len(extensions) == 0 {
		return fmt.Errorf("at least one extension is required")
	}

	for _, ext := range extensions {
		if ext == "" {
			return fmt.Errorf("extension cannot be empty")
		}
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid extension '%s': must start with '.'", ext)
		}
		if !validExtensions[strings.ToLower(ext)] {
			return fmt.Errorf("unsupported extension '%s': supported extensions are .bfres, .sbfres, .szs, .zs", ext)
		}
	}

	return nil
}
