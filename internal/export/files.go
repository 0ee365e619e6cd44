package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jchantrell/fresdb/internal/bfres"
	"github.com/jchantrell/fresdb/internal/utils"
)

const (
	EmbeddedDir = "embedded"
	TexturesDir = "textures"
	ModelsDir   = "models"

	// TextSuffix is appended to the name of the UTF-8 copy of a UTF-16
	// embedded text file
	TextSuffix = ".utf8.txt"
)

// ExportOptions selects what Export writes besides the embedded files and
// texture blobs
type ExportOptions struct {
	// DecodeText writes a UTF-8 copy next to every embedded file that starts
	// with a UTF-16 byte order mark. The embedded file itself is always
	// written unchanged.
	DecodeText bool

	// Models writes every model as Wavefront OBJ with an MTL library
	Models bool
}

// DefaultExportOptions returns options that write embedded files and
// textures only
func DefaultExportOptions() *ExportOptions {
	return &ExportOptions{}
}

// Exporter writes the embedded files, texture blobs and optionally the models
// of decoded archives to disk
type Exporter struct {
	outputDir string
	options   *ExportOptions
	log       *slog.Logger
}

// NewExporter creates a new exporter. Nil options use DefaultExportOptions
// and a nil logger means slog.Default().
func NewExporter(outputDir string, options *ExportOptions, logger *slog.Logger) *Exporter {
	if options == nil {
		options = DefaultExportOptions()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		outputDir: outputDir,
		options:   options,
		log:       logger,
	}
}

// ProgressCallback is called to report export progress
type ProgressCallback func(current int, total int, description string)

// Total returns the number of items Export reports progress for
func (e *Exporter) Total(f *bfres.File) int {
	total := f.EmbeddedFiles.Len() + f.Textures.Len()
	if e.options.Models {
		total += f.Models.Len()
	}
	return total
}

// Export writes f below the output directory and returns the paths written
// in order.
func (e *Exporter) Export(f *bfres.File, progressCallback ProgressCallback) ([]string, error) {
	if f == nil {
		return nil, fmt.Errorf("file cannot be nil")
	}

	total := e.Total(f)
	if total == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var written []string
	current := 0
	report := func(description string) {
		current++
		if progressCallback != nil {
			progressCallback(current, total, description)
		}
	}

	for name, file := range f.EmbeddedFiles.All() {
		paths, err := e.exportEmbedded(name, file.Data)
		written = append(written, paths...)
		if err != nil {
			return written, fmt.Errorf("exporting embedded file %s: %w", name, err)
		}
		report(name)
	}

	for name, tex := range f.Textures.All() {
		paths, err := e.exportTexture(name, tex)
		written = append(written, paths...)
		if err != nil {
			return written, fmt.Errorf("exporting texture %s: %w", name, err)
		}
		report(name)
	}

	if e.options.Models {
		for name, model := range f.Models.All() {
			paths, err := e.exportModel(name, model)
			written = append(written, paths...)
			if err != nil {
				return written, fmt.Errorf("exporting model %s: %w", name, err)
			}
			report(name)
		}
	}

	return written, nil
}

func (e *Exporter) exportEmbedded(name string, data []byte) ([]string, error) {
	outputPath := filepath.Join(e.outputDir, EmbeddedDir, utils.SafeName(name))

	if err := writeFile(outputPath, data); err != nil {
		return nil, err
	}
	written := []string{outputPath}
	e.log.Debug("Exported embedded file", "name", name, "output", outputPath, "size", len(data))

	if !e.options.DecodeText || !hasUTF16BOM(data) {
		return written, nil
	}

	text, err := DecodeText(data)
	if err != nil {
		e.log.Warn("Embedded file is not UTF-16 text", "name", name, "error", err)
		return written, nil
	}
	textPath := outputPath + TextSuffix
	if err := writeFile(textPath, text); err != nil {
		return written, err
	}
	e.log.Debug("Decoded UTF-16 text to UTF-8", "name", name, "output", textPath)
	return append(written, textPath), nil
}

func (e *Exporter) exportModel(name string, m *bfres.Model) ([]string, error) {
	base := filepath.Join(e.outputDir, ModelsDir, utils.SafeName(name))
	mtlName := filepath.Base(base) + ".mtl"

	var obj, mtl bytes.Buffer
	if err := WriteOBJ(&obj, m, mtlName); err != nil {
		return nil, err
	}
	if err := WriteMTL(&mtl, m); err != nil {
		return nil, err
	}

	var written []string
	for _, out := range []struct {
		path string
		data []byte
	}{
		{base + ".obj", obj.Bytes()},
		{base + ".mtl", mtl.Bytes()},
	} {
		if err := writeFile(out.path, out.data); err != nil {
			return written, err
		}
		written = append(written, out.path)
	}

	e.log.Debug("Exported model", "name", name, "shapes", m.Shapes.Len(), "materials", m.Materials.Len())
	return written, nil
}

func (e *Exporter) exportTexture(name string, tex *bfres.Texture) ([]string, error) {
	base := filepath.Join(e.outputDir, TexturesDir, utils.SafeName(name))

	var written []string
	outputs := []struct {
		suffix string
		data   []byte
	}{
		{".data", tex.Data},
		{".mips", tex.MipData},
		{".txt", []byte(TextureHeader(tex))},
	}
	for _, out := range outputs {
		if len(out.data) == 0 {
			continue
		}
		path := base + out.suffix
		if err := writeFile(path, out.data); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	e.log.Debug("Exported texture", "name", name, "format", tex.Format.String(), "size", len(tex.Data))
	return written, nil
}

// TextureHeader describes a texture's surface in the plain-text form written
// next to its data
func TextureHeader(tex *bfres.Texture) string {
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\n", tex.Name)
	fmt.Fprintf(&b, "dim: %s\n", tex.Dim)
	fmt.Fprintf(&b, "width: %d\n", tex.Width)
	fmt.Fprintf(&b, "height: %d\n", tex.Height)
	fmt.Fprintf(&b, "depth: %d\n", tex.Depth)
	fmt.Fprintf(&b, "mip_count: %d\n", tex.MipCount)
	fmt.Fprintf(&b, "format: %s\n", tex.Format)
	fmt.Fprintf(&b, "aa_mode: %s\n", tex.AAMode)
	fmt.Fprintf(&b, "use: %s\n", tex.Use)
	fmt.Fprintf(&b, "tile_mode: %s\n", tex.TileMode)
	fmt.Fprintf(&b, "swizzle: 0x%08X\n", tex.Swizzle)
	fmt.Fprintf(&b, "alignment: 0x%X\n", tex.Alignment)
	fmt.Fprintf(&b, "pitch: %d\n", tex.Pitch)
	fmt.Fprintf(&b, "data_size: %s\n", humanize.IBytes(uint64(len(tex.Data))))
	fmt.Fprintf(&b, "mip_data_size: %s\n", humanize.IBytes(uint64(len(tex.MipData))))
	return b.String()
}

var (
	bomLittleEndian = []byte{0xFF, 0xFE}
	bomBigEndian    = []byte{0xFE, 0xFF}
)

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, bomLittleEndian) || bytes.HasPrefix(data, bomBigEndian)
}

// DecodeText converts text with a UTF-16 byte order mark to UTF-8. Data
// without a mark is treated as UTF-8 and returned unchanged.
func DecodeText(data []byte) ([]byte, error) {
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, fmt.Errorf("decoding text: %w", err)
	}
	return decoded, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}
	return nil
}
