package utils

import "strings"

var unsafeNameChars = strings.NewReplacer(
	"/", "@",
	"\\", "@",
	":", "_",
	"\x00", "_",
)

// SafeName turns an archive entry name into a single path element. Path
// separators become '@' so nested names stay distinguishable.
func SafeName(name string) string {
	name = unsafeNameChars.Replace(name)
	switch name {
	case "", ".", "..":
		return "_" + name
	}
	return name
}

// ReplaceExt swaps the extension of path for ext when it has one of from.
// Matching is case-insensitive. Other paths get ext appended.
func ReplaceExt(path, ext string, from ...string) string {
	lower := strings.ToLower(path)
	for _, f := range from {
		if strings.HasSuffix(lower, strings.ToLower(f)) {
			return path[:len(path)-len(f)] + ext
		}
	}
	return path + ext
}
