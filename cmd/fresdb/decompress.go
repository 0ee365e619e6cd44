package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jchantrell/fresdb/internal/config"
	"github.com/jchantrell/fresdb/internal/utils"
)

var decompressOutput string

var decompressCmd = &cobra.Command{
	Use:   "decompress <input>",
	Short: "Remove the Yaz0 or zstd wrapper from an archive",
	Long: `Decompress writes the fully unwrapped payload of an archive. Without -o the
output is written next to the input with its .szs, .zs or .sbfres extension
replaced by .bfres.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]

		output := decompressOutput
		if output == "" {
			output = defaultDecompressOutput(input)
		}

		if same, err := samePath(input, output); err != nil {
			return err
		} else if same {
			return fmt.Errorf("output %s would overwrite the input", output)
		}

		payload, a, err := newLoader().Unwrap(input)
		if err != nil {
			return err
		}

		if err := os.WriteFile(output, payload, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}

		slog.Info("Decompressed archive",
			"input", input,
			"output", output,
			"compression", a.Compression,
			"size", utils.Bytes(a.Size))
		return nil
	},
}

// defaultDecompressOutput derives the output path for an archive
func defaultDecompressOutput(input string) string {
	// Tex.bfres.zs becomes Tex.bfres
	if strings.HasSuffix(strings.ToLower(input), config.ExtensionBFRES+config.ExtensionZS) {
		return input[:len(input)-len(config.ExtensionZS)]
	}
	return utils.ReplaceExt(input, config.ExtensionBFRES, config.ExtensionSBFRES, config.ExtensionSZS, config.ExtensionZS)
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", a, err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, fmt.Errorf("resolving %s: %w", b, err)
	}
	return absA == absB, nil
}

func init() {
	rootCmd.AddCommand(decompressCmd)
	decompressCmd.Flags().StringVarP(&decompressOutput, "output", "o", "", "output file path")
}
