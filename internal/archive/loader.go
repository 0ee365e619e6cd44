package archive

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jchantrell/fresdb/internal/bfres"
	"github.com/jchantrell/fresdb/internal/cache"
)

// LoaderOptions configures how archives are read from disk
type LoaderOptions struct {
	// Cache enables the decompressed payload cache
	Cache bool

	// CacheDir overrides the default cache location
	CacheDir string

	// Decoder decodes payloads; nil uses bfres.NewDecoder(Decode)
	Decoder bfres.Decoder

	// Decode is passed to the default decoder
	Decode *bfres.DecodeOptions

	// Logger receives debug and warning output; nil means slog.Default()
	Logger *slog.Logger
}

// DefaultLoaderOptions returns options with caching disabled
func DefaultLoaderOptions() *LoaderOptions {
	return &LoaderOptions{
		Decode: bfres.DefaultDecodeOptions(),
	}
}

// Loader reads, unwraps and decodes archive files. It is safe for
// concurrent use.
type Loader struct {
	options *LoaderOptions
	decoder bfres.Decoder
	cache   *cache.Cache
	log     *slog.Logger
}

// NewLoader creates a loader. Nil options use DefaultLoaderOptions.
func NewLoader(options *LoaderOptions) *Loader {
	if options == nil {
		options = DefaultLoaderOptions()
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	decoder := options.Decoder
	if decoder == nil {
		decodeOptions := options.Decode
		if decodeOptions == nil {
			decodeOptions = bfres.DefaultDecodeOptions()
		}
		if decodeOptions.Logger == nil {
			copied := *decodeOptions
			copied.Logger = logger
			decodeOptions = &copied
		}
		decoder = bfres.NewDecoder(decodeOptions)
	}

	l := &Loader{
		options: options,
		decoder: decoder,
		log:     logger,
	}
	if options.Cache {
		l.cache = cache.CacheManager(options.CacheDir)
	}
	return l
}

// Unwrap reads path and removes its compression. The returned Archive has
// every field but File set.
func (l *Loader) Unwrap(path string) ([]byte, *Archive, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return l.UnwrapBytes(path, raw)
}

// UnwrapBytes is Unwrap for contents the caller has already read from path.
func (l *Loader) UnwrapBytes(path string, raw []byte) ([]byte, *Archive, error) {
	a := &Archive{
		Path:           path,
		Hash:           Hash(raw),
		Compression:    Detect(raw),
		CompressedSize: int64(len(raw)),
	}

	if a.Compression == CompressionNone {
		a.Size = a.CompressedSize
		return raw, a, nil
	}

	if l.cache != nil {
		payload, ok, err := l.cache.Get(a.Hash)
		if err != nil {
			l.log.Warn("Failed to read cache", "path", path, "error", err)
		}
		if ok {
			a.Size = int64(len(payload))
			a.FromCache = true
			l.log.Debug("Using cached payload", "path", path, "hash", a.HashString())
			return payload, a, nil
		}
	}

	payload, _, err := Decompress(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	a.Size = int64(len(payload))

	if l.cache != nil {
		if err := l.cache.Put(a.Hash, payload); err != nil {
			l.log.Warn("Failed to write cache", "path", path, "error", err)
		}
	}

	l.log.Debug("Decompressed archive",
		"path", path,
		"compression", a.Compression,
		"compressed_size", a.CompressedSize,
		"size", a.Size)

	return payload, a, nil
}

// Load reads, unwraps and decodes path.
func (l *Loader) Load(path string) (*Archive, error) {
	payload, a, err := l.Unwrap(path)
	if err != nil {
		return nil, err
	}
	return l.decode(payload, a)
}

// LoadBytes is Load for contents the caller has already read from path.
func (l *Loader) LoadBytes(path string, raw []byte) (*Archive, error) {
	payload, a, err := l.UnwrapBytes(path, raw)
	if err != nil {
		return nil, err
	}
	return l.decode(payload, a)
}

func (l *Loader) decode(payload []byte, a *Archive) (*Archive, error) {
	path := a.Path
	f, err := l.decoder.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	a.File = f
	return a, nil
}
