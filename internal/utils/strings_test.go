package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"readme.txt", "readme.txt"},
		{"Model/Link/tex.bin", "Model@Link@tex.bin"},
		{`dir\file`, "dir@file"},
		{"c:file", "c_file"},
		{"", "_"},
		{".", "_."},
		{"..", "_.."},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, SafeName(tt.in), tt.in)
	}
}

func TestReplaceExt(t *testing.T) {
	from := []string{".szs", ".zs"}
	require.Equal(t, "Link.bfres", ReplaceExt("Link.szs", ".bfres", from...))
	require.Equal(t, "Link.bfres", ReplaceExt("Link.SZS", ".bfres", from...))
	require.Equal(t, "Link.bfres", ReplaceExt("Link.zs", ".bfres", from...))
	require.Equal(t, "Link.bin.bfres", ReplaceExt("Link.bin", ".bfres", from...))
}
