package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGet(t *testing.T) {
	require := require.New(t)

	c := CacheManager(t.TempDir())

	data, ok, err := c.Get(0xDEADBEEF)
	require.NoError(err)
	require.False(ok)
	require.Nil(data)

	payload := []byte("FRES payload")
	require.NoError(c.Put(0xDEADBEEF, payload))

	path := c.GetPayloadPath(0xDEADBEEF)
	require.Equal(filepath.Join(c.Dir(), "00", "00000000deadbeef.bfres"), path)
	require.FileExists(path)

	data, ok, err = c.Get(0xDEADBEEF)
	require.NoError(err)
	require.True(ok)
	require.Equal(payload, data)

	// Overwrite in place.
	require.NoError(c.Put(0xDEADBEEF, []byte("v2")))
	data, _, err = c.Get(0xDEADBEEF)
	require.NoError(err)
	require.Equal([]byte("v2"), data)

	matches, err := filepath.Glob(filepath.Join(c.Dir(), "00", ".payload-*"))
	require.NoError(err)
	require.Empty(matches, "temporary files must not be left behind")
}

func TestStatsAndClear(t *testing.T) {
	require := require.New(t)

	c := CacheManager(filepath.Join(t.TempDir(), "cache"))

	stats, err := c.Stats()
	require.NoError(err)
	require.Zero(stats, "a cache that was never written is empty")

	require.NoError(c.Put(0x01, []byte("abc")))
	require.NoError(c.Put(0xFF00000000000000, []byte("defgh")))
	// Foreign files are not counted.
	require.NoError(os.WriteFile(filepath.Join(c.Dir(), "notes.txt"), []byte("x"), 0o644))

	stats, err = c.Stats()
	require.NoError(err)
	require.Equal(Stats{Entries: 2, Size: 8}, stats)

	require.NoError(c.Clear())
	require.NoDirExists(c.Dir())
	_, ok, err := c.Get(0x01)
	require.NoError(err)
	require.False(ok)

	stats, err = c.Stats()
	require.NoError(err)
	require.Zero(stats)
}

func TestDefaultDir(t *testing.T) {
	c := CacheManager("")
	require.Equal(t, DefaultDir(), c.Dir())
	require.Equal(t, filepath.Join(".fresdb", "cache"), filepath.Join(filepath.Base(filepath.Dir(c.Dir())), filepath.Base(c.Dir())))
}
