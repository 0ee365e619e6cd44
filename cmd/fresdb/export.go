package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jchantrell/fresdb/internal/export"
)

var (
	exportOutput     string
	exportDecodeText bool
	exportModels     bool
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write embedded files, texture data and models to a directory",
	Long: `Export decodes an archive and writes its embedded files unchanged to
<dir>/embedded and the raw surface and mipmap data of every texture to
<dir>/textures, each with a .txt description of the surface.

With --decode-text, embedded files starting with a UTF-16 byte order mark also
get a UTF-8 copy named <name>.utf8.txt. With --models, every model is written
to <dir>/models as Wavefront OBJ with an MTL material library.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportOutput == "" {
			return fmt.Errorf("an output directory is required (-o)")
		}

		a, err := newLoader().Load(args[0])
		if err != nil {
			return err
		}

		exporter := export.NewExporter(exportOutput, &export.ExportOptions{
			DecodeText: exportDecodeText,
			Models:     exportModels,
		}, slog.Default())
		progress := newProgress(exporter.Total(a.File))
		written, err := exporter.Export(a.File, func(current, total int, description string) {
			progress.Update(current, description)
		})
		progress.Finish()
		if err != nil {
			return err
		}

		slog.Info("Exported archive", "path", a.Path, "output", exportOutput, "files", len(written))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output directory")
	exportCmd.Flags().BoolVar(&exportDecodeText, "decode-text", false, "also write UTF-8 copies of UTF-16 embedded text")
	exportCmd.Flags().BoolVar(&exportModels, "models", false, "write models as OBJ/MTL")
}
