package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jchantrell/fresdb/internal/archive"
	"github.com/jchantrell/fresdb/internal/bfres"
	"github.com/jchantrell/fresdb/internal/utils"
)

type infoOptions struct {
	shapes    bool
	materials bool
	textures  bool
}

var infoFlags infoOptions

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print the decoded contents of an archive",
	Long: `Info decodes an archive and prints its header, models and the contents of
every present section. Use --shapes, --materials and --textures for detail.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newLoader().Load(args[0])
		if err != nil {
			return err
		}
		printArchive(cmd.OutOrStdout(), a, infoFlags)
		return nil
	},
}

func printArchive(w io.Writer, a *archive.Archive, opts infoOptions) {
	f := a.File

	fmt.Fprintf(w, "%s\n", a.Path)
	fmt.Fprintf(w, "  compression: %s (%s -> %s)\n", a.Compression, utils.Bytes(a.CompressedSize), utils.Bytes(a.Size))
	fmt.Fprintf(w, "  hash: %s\n", a.HashString())
	fmt.Fprintf(w, "  name: %s\n", f.Name)
	fmt.Fprintf(w, "  version: %s\n", f.Header.Version)

	for _, slot := range f.Slots() {
		if slot.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%d)\n", slot.Kind, slot.Count)

		switch {
		case slot.Kind == bfres.SectionModels:
			for _, m := range f.Models.Values() {
				printModel(w, m, opts)
			}
		case slot.Kind == bfres.SectionTextures:
			for _, t := range f.Textures.Values() {
				printTexture(w, t, opts.textures)
			}
		case slot.Kind == bfres.SectionEmbeddedFiles:
			for name, e := range f.EmbeddedFiles.All() {
				fmt.Fprintf(w, "  %s  %s\n", name, utils.Bytes(int64(len(e.Data))))
			}
		case slot.Kind.IsAnimation():
			for name, anim := range f.Animations(slot.Kind).All() {
				if anim.Path != "" {
					fmt.Fprintf(w, "  %s  %s  %s\n", name, anim.Tag, anim.Path)
				} else {
					fmt.Fprintf(w, "  %s  %s\n", name, anim.Tag)
				}
			}
		}
	}
}

func printModel(w io.Writer, m *bfres.Model, opts infoOptions) {
	bones := 0
	if m.Skeleton != nil {
		bones = len(m.Skeleton.Bones)
	}
	fmt.Fprintf(w, "  %s  vertices=%s bones=%d buffers=%d shapes=%d materials=%d\n",
		m.Name, utils.Number(int64(m.TotalVertexCount)), bones, len(m.VertexBuffers), m.Shapes.Len(), m.Materials.Len())

	if opts.shapes {
		for _, s := range m.Shapes.Values() {
			indices := 0
			if lod := s.LOD(0); lod != nil {
				indices = lod.IndexCount()
			}
			material := ""
			if mat := m.ShapeMaterial(s); mat != nil {
				material = mat.Name
			}
			fmt.Fprintf(w, "    shape %s  material=%s buffer=%d lods=%d indices=%d skin=%d\n",
				s.Name, material, s.VertexBufferIndex, len(s.LODs), indices, s.VertexSkinCount)

			if v := m.ShapeVertexBuffer(s); v != nil {
				names := make([]string, len(v.Attributes))
				for i, attr := range v.Attributes {
					names[i] = attr.Name + ":" + attr.Format.String()
				}
				fmt.Fprintf(w, "      attributes %s\n", strings.Join(names, " "))
			}
		}
	}

	if opts.materials {
		for _, mat := range m.Materials.Values() {
			shader := "-"
			if sc := mat.ShaderControl; sc != nil {
				shader = sc.ShaderArchive + "/" + sc.ShadingModel
			}
			fmt.Fprintf(w, "    material %s  shader=%s params=%d\n", mat.Name, shader, len(mat.Parameters))
			for _, b := range mat.TextureBindings() {
				sampler := b.Sampler
				if sampler == "" {
					sampler = "-"
				}
				fmt.Fprintf(w, "      texture %s  sampler=%s\n", b.Texture, sampler)
			}
		}
	}
}

func printTexture(w io.Writer, t *bfres.Texture, detail bool) {
	fmt.Fprintf(w, "  %s  %dx%d %s  %s\n", t.Name, t.Width, t.Height, t.Format, utils.Bytes(int64(len(t.Data))))
	if detail {
		fmt.Fprintf(w, "    dim=%s depth=%d mips=%d tile=%s swizzle=0x%X alignment=0x%X pitch=%d mip_data=%s\n",
			t.Dim, t.Depth, t.MipCount, t.TileMode, t.Swizzle, t.Alignment, t.Pitch, utils.Bytes(int64(len(t.MipData))))
	}
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&infoFlags.shapes, "shapes", false, "list shapes and their vertex attributes")
	infoCmd.Flags().BoolVar(&infoFlags.materials, "materials", false, "list materials and texture bindings")
	infoCmd.Flags().BoolVar(&infoFlags.textures, "textures", false, "show texture surface details")
}
