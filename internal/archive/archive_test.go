package archive

import (
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"github.com/jchantrell/fresdb/internal/bfres"
	"github.com/jchantrell/fresdb/internal/binio"
)

// emptyFRES is a header-only archive with every section slot absent.
func emptyFRES() []byte {
	b := []byte("FRES")
	b = append(b, 3, 4, 0, 4, 0xFE, 0xFF, 0x00, 0x10)
	return append(b, make([]byte, 108-len(b))...)
}

// yaz0Literal wraps data in a Yaz0 stream made only of literal runs.
func yaz0Literal(data []byte) []byte {
	out := []byte("Yaz0")
	out = binary.BigEndian.AppendUint32(out, uint32(len(data)))
	out = append(out, make([]byte, 8)...)
	for i := 0; i < len(data); i += 8 {
		out = append(out, 0xFF)
		out = append(out, data[i:min(i+8, len(data))]...)
	}
	return out
}

func zstdCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Compression
	}{
		{"fres", emptyFRES(), CompressionNone},
		{"yaz0", yaz0Literal([]byte("FRES")), CompressionYaz0},
		{"zstd", []byte{0x28, 0xB5, 0x2F, 0xFD, 0x00}, CompressionZstd},
		{"empty", nil, CompressionNone},
		{"short", []byte{0x28, 0xB5}, CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Detect(tt.data))
		})
	}

	require.True(t, IsFRES(emptyFRES()))
	require.False(t, IsFRES([]byte("Yaz0")))
}

func TestDecompress(t *testing.T) {
	payload := emptyFRES()

	tests := []struct {
		name string
		data []byte
		want Compression
	}{
		{"plain", payload, CompressionNone},
		{"yaz0", yaz0Literal(payload), CompressionYaz0},
		{"zstd", zstdCompress(t, payload), CompressionZstd},
		{"zstd around yaz0", zstdCompress(t, yaz0Literal(payload)), CompressionZstd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			got, compression, err := Decompress(tt.data)
			require.NoError(err)
			require.Equal(tt.want, compression)
			require.Equal(payload, got)
		})
	}
}

func TestDecompressErrors(t *testing.T) {
	require := require.New(t)

	corrupt := []byte{0x28, 0xB5, 0x2F, 0xFD, 0xFF, 0xFF, 0xFF}
	_, _, err := Decompress(corrupt)
	require.Error(err)
	require.ErrorIs(err, binio.ErrBadMagic)

	truncated := yaz0Literal(emptyFRES())
	_, _, err = Decompress(truncated[:40])
	require.ErrorIs(err, binio.ErrTruncated)
}

func TestHash(t *testing.T) {
	require := require.New(t)

	h := Hash([]byte("FRES"))
	require.Equal(h, Hash([]byte("FRES")))
	require.NotEqual(h, Hash([]byte("FREZ")))

	s := FormatHash(0xABC)
	require.Equal("0000000000000abc", s)
	back, err := ParseHash(s)
	require.NoError(err)
	require.Equal(uint64(0xABC), back)

	_, err = ParseHash("not-hex")
	require.Error(err)
}

func TestDiscover(t *testing.T) {
	require := require.New(t)

	root := t.TempDir()
	write := func(rel string) string {
		path := filepath.Join(root, rel)
		require.NoError(os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(os.WriteFile(path, []byte("x"), 0o644))
		return path
	}
	a := write("Model/Link.sbfres")
	b := write("Model/Enemy.SZS")
	write("Model/readme.txt")
	c := write("Pack/Nested/Tex.zs")
	loose := write("loose.bin")

	found, err := Discover([]string{root, a, loose}, []string{".sbfres", ".szs", ".zs"})
	require.NoError(err)
	require.Equal([]string{b, a, c, loose}, found)

	_, err = Discover([]string{filepath.Join(root, "missing")}, []string{".szs"})
	require.Error(err)
}

func TestLoader(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "scene.szs")
	raw := yaz0Literal(emptyFRES())
	require.NoError(os.WriteFile(path, raw, 0o644))

	cacheDir := t.TempDir()
	l := NewLoader(&LoaderOptions{Cache: true, CacheDir: cacheDir, Logger: quietLogger()})

	a, err := l.Load(path)
	require.NoError(err)
	require.Equal(path, a.Path)
	require.Equal(Hash(raw), a.Hash)
	require.Equal(CompressionYaz0, a.Compression)
	require.Equal(int64(len(raw)), a.CompressedSize)
	require.Equal(int64(108), a.Size)
	require.False(a.FromCache)
	require.NotNil(a.File)
	require.Equal("3.4.0.4", a.File.Header.Version.String())

	again, err := l.Load(path)
	require.NoError(err)
	require.True(again.FromCache)
	require.Equal(a.Hash, again.Hash)
	require.Equal(CompressionYaz0, again.Compression)
	require.Equal(a.Size, again.Size)

	payload, plain, err := NewLoader(&LoaderOptions{Logger: quietLogger()}).Unwrap(path)
	require.NoError(err)
	require.Equal(emptyFRES(), payload)
	require.False(plain.FromCache)
	require.Nil(plain.File)
}

func TestLoaderErrors(t *testing.T) {
	require := require.New(t)

	l := NewLoader(&LoaderOptions{Logger: quietLogger()})

	_, err := l.Load(filepath.Join(t.TempDir(), "missing.bfres"))
	require.ErrorIs(err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.bfres")
	bad := emptyFRES()
	copy(bad, "BFRS")
	require.NoError(os.WriteFile(path, bad, 0o644))
	_, err = l.Load(path)
	require.ErrorIs(err, binio.ErrTagMismatch)
}

type stubDecoder struct {
	calls int
}

func (s *stubDecoder) Decode(data []byte) (*bfres.File, error) {
	s.calls++
	return &bfres.File{Name: "stub"}, nil
}

func TestLoaderUsesProvidedDecoder(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "a.bfres")
	require.NoError(os.WriteFile(path, emptyFRES(), 0o644))

	stub := &stubDecoder{}
	a, err := NewLoader(&LoaderOptions{Decoder: stub, Logger: quietLogger()}).Load(path)
	require.NoError(err)
	require.Equal("stub", a.File.Name)
	require.Equal(1, stub.calls)
	require.Equal(CompressionNone, a.Compression)
}

func TestLoaderLoadBytes(t *testing.T) {
	require := require.New(t)

	raw := zstdCompress(t, emptyFRES())
	// The path is recorded but not read.
	a, err := NewLoader(&LoaderOptions{Logger: quietLogger()}).LoadBytes("virtual/a.zs", raw)
	require.NoError(err)
	require.Equal("virtual/a.zs", a.Path)
	require.Equal(Hash(raw), a.Hash)
	require.Equal(CompressionZstd, a.Compression)
	require.NotNil(a.File)
}
