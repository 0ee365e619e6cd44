package export

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jchantrell/fresdb/internal/bfres"
	"github.com/jchantrell/fresdb/internal/gx2"
)

func group[T any](t *testing.T, names []string, values ...T) *bfres.IndexGroup[T] {
	t.Helper()
	g, err := bfres.NewIndexGroup(names, values)
	require.NoError(t, err)
	return g
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleFile(t *testing.T) *bfres.File {
	t.Helper()
	return &bfres.File{
		Name: "sample",
		EmbeddedFiles: group(t, []string{"readme.txt", "dir/notes.txt"},
			&bfres.EmbeddedFile{Name: "readme.txt", Data: []byte("hello")},
			// "hi" in UTF-16LE with a byte order mark
			&bfres.EmbeddedFile{Name: "dir/notes.txt", Data: []byte{0xFF, 0xFE, 'h', 0, 'i', 0}},
		),
		Textures: group(t, []string{"Tex_Alb", "Tex_Nrm"},
			&bfres.Texture{Name: "Tex_Alb", Width: 4, Height: 4, Format: gx2.FormatBC1UNorm, Data: []byte{1, 2, 3, 4}, MipData: []byte{5, 6}},
			&bfres.Texture{Name: "Tex_Nrm", Width: 8, Height: 8, Data: []byte{7}},
		),
	}
}

func TestExport(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	var calls []string
	written, err := NewExporter(dir, nil, quietLogger()).Export(sampleFile(t), func(current, total int, description string) {
		require.Equal(4, total)
		require.Equal(len(calls)+1, current)
		calls = append(calls, description)
	})
	require.NoError(err)
	require.Equal([]string{"readme.txt", "dir/notes.txt", "Tex_Alb", "Tex_Nrm"}, calls)

	require.Equal([]string{
		filepath.Join(dir, "embedded", "readme.txt"),
		filepath.Join(dir, "embedded", "dir@notes.txt"),
		filepath.Join(dir, "textures", "Tex_Alb.data"),
		filepath.Join(dir, "textures", "Tex_Alb.mips"),
		filepath.Join(dir, "textures", "Tex_Alb.txt"),
		filepath.Join(dir, "textures", "Tex_Nrm.data"),
		filepath.Join(dir, "textures", "Tex_Nrm.txt"),
	}, written)

	data, err := os.ReadFile(filepath.Join(dir, "embedded", "readme.txt"))
	require.NoError(err)
	require.Equal("hello", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "embedded", "dir@notes.txt"))
	require.NoError(err)
	require.Equal([]byte{0xFF, 0xFE, 'h', 0, 'i', 0}, data, "embedded files are written unchanged")
	_, err = os.Stat(filepath.Join(dir, "embedded", "dir@notes.txt"+TextSuffix))
	require.ErrorIs(err, os.ErrNotExist)

	data, err = os.ReadFile(filepath.Join(dir, "textures", "Tex_Alb.mips"))
	require.NoError(err)
	require.Equal([]byte{5, 6}, data)

	header, err := os.ReadFile(filepath.Join(dir, "textures", "Tex_Alb.txt"))
	require.NoError(err)
	require.Contains(string(header), "format: BC1_UNorm\n")
	require.Contains(string(header), "width: 4\n")
	require.Contains(string(header), "data_size: 4 B\n")

	_, err = os.Stat(filepath.Join(dir, "textures", "Tex_Nrm.mips"))
	require.ErrorIs(err, os.ErrNotExist)
}

func TestExportKeepsBinaryWithMark(t *testing.T) {
	require := require.New(t)

	// Starts like big-endian UTF-16 but holds an unpaired surrogate.
	payload := []byte{0xFE, 0xFF, 0x00, 0x80, 0xD8, 0x00, 0x01, 0x02, 0x03}
	f := &bfres.File{
		EmbeddedFiles: group(t, []string{"blob.bin"}, &bfres.EmbeddedFile{Name: "blob.bin", Data: payload}),
	}

	for _, decodeText := range []bool{false, true} {
		dir := t.TempDir()
		_, err := NewExporter(dir, &ExportOptions{DecodeText: decodeText}, quietLogger()).Export(f, nil)
		require.NoError(err)

		data, err := os.ReadFile(filepath.Join(dir, "embedded", "blob.bin"))
		require.NoError(err)
		require.Equal(payload, data)
	}
}

func TestExportDecodeText(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	written, err := NewExporter(dir, &ExportOptions{DecodeText: true}, quietLogger()).Export(sampleFile(t), nil)
	require.NoError(err)

	textPath := filepath.Join(dir, "embedded", "dir@notes.txt.utf8.txt")
	require.Equal([]string{
		filepath.Join(dir, "embedded", "readme.txt"),
		filepath.Join(dir, "embedded", "dir@notes.txt"),
		textPath,
	}, written[:3])

	data, err := os.ReadFile(textPath)
	require.NoError(err)
	require.Equal("hi", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "embedded", "dir@notes.txt"))
	require.NoError(err)
	require.Equal([]byte{0xFF, 0xFE, 'h', 0, 'i', 0}, data)

	_, err = os.Stat(filepath.Join(dir, "embedded", "readme.txt"+TextSuffix))
	require.ErrorIs(err, os.ErrNotExist, "text without a mark gets no copy")
}

func TestExportModels(t *testing.T) {
	require := require.New(t)

	f := sampleFile(t)
	f.Models = group(t, []string{"Body"}, sampleModel(t))

	dir := t.TempDir()
	exporter := NewExporter(dir, &ExportOptions{Models: true}, quietLogger())
	require.Equal(5, exporter.Total(f))

	var last string
	written, err := exporter.Export(f, func(current, total int, description string) {
		last = description
	})
	require.NoError(err)
	require.Equal("Body", last)
	require.Equal([]string{
		filepath.Join(dir, "models", "Body.obj"),
		filepath.Join(dir, "models", "Body.mtl"),
	}, written[len(written)-2:])

	obj, err := os.ReadFile(filepath.Join(dir, "models", "Body.obj"))
	require.NoError(err)
	require.Contains(string(obj), "mtllib Body.mtl\n")
	require.Contains(string(obj), "usemtl Mat\n")

	require.Equal(4, NewExporter(dir, nil, nil).Total(f), "models are opt-in")
}

func TestExportEmpty(t *testing.T) {
	require := require.New(t)

	dir := filepath.Join(t.TempDir(), "out")
	written, err := NewExporter(dir, nil, nil).Export(&bfres.File{}, nil)
	require.NoError(err)
	require.Empty(written)

	_, err = os.Stat(dir)
	require.ErrorIs(err, os.ErrNotExist, "nothing to export creates nothing")

	_, err = NewExporter(dir, nil, nil).Export(nil, nil)
	require.Error(err)
}

func TestExportUnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := NewExporter(blocker, nil, quietLogger()).Export(sampleFile(t), nil)
	require.Error(t, err)
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"utf16le", []byte{0xFF, 0xFE, 'o', 0, 'k', 0}, "ok"},
		{"utf16be", []byte{0xFE, 0xFF, 0, 'o', 0, 'k'}, "ok"},
		{"utf8", []byte("plain"), "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeText(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, string(got))
		})
	}

	require.True(t, hasUTF16BOM([]byte{0xFE, 0xFF}))
	require.False(t, hasUTF16BOM([]byte("FE")))
}
