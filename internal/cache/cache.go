package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const payloadExt = ".bfres"

// Cache stores decompressed archive payloads keyed by the content hash of
// the compressed file.
type Cache struct {
	dir string
}

// CacheManager creates a cache rooted at dir, or at the default location
// when dir is empty.
func CacheManager(dir string) *Cache {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Cache{dir: dir}
}

// DefaultDir returns ~/.fresdb/cache, falling back to the working directory
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".fresdb", "cache")
	}
	return filepath.Join(homeDir, ".fresdb", "cache")
}

// Dir returns the cache root
func (m *Cache) Dir() string {
	return m.dir
}

// Stats summarizes what is stored in a cache
type Stats struct {
	Entries int
	Size    int64
}

// Stats counts the cached payloads and their total size. A cache that was
// never written to is empty, not an error.
func (m *Cache) Stats() (Stats, error) {
	var stats Stats
	err := filepath.WalkDir(m.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == m.dir {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != payloadExt {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stats.Entries++
		stats.Size += info.Size()
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("scanning cache %s: %w", m.dir, err)
	}
	return stats, nil
}

// GetPayloadPath returns where the payload for hash is stored. Entries are
// sharded by the first byte of the hash.
func (m *Cache) GetPayloadPath(hash uint64) string {
	name := fmt.Sprintf("%016x", hash)
	return filepath.Join(m.dir, name[:2], name+payloadExt)
}

// Get returns the cached payload for hash. A miss is not an error.
func (m *Cache) Get(hash uint64) ([]byte, bool, error) {
	path := m.GetPayloadPath(hash)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cached payload %s: %w", path, err)
	}
	return data, true, nil
}

// Put stores data for hash. The entry is written to a temporary file and
// renamed so concurrent readers never see a partial payload.
func (m *Cache) Put(hash uint64, data []byte) error {
	path := m.GetPayloadPath(hash)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".payload-*")
	if err != nil {
		return fmt.Errorf("creating temporary cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("moving cache file into place: %w", err)
	}
	return nil
}

// Clear removes every cached payload.
func (m *Cache) Clear() error {
	return os.RemoveAll(m.dir)
}
