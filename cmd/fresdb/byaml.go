package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jchantrell/fresdb/internal/archive"
	"github.com/jchantrell/fresdb/internal/byaml"
)

var byamlCmd = &cobra.Command{
	Use:   "byaml <file>",
	Short: "Print a binary YAML document as text YAML",
	Long: `Byaml decodes a BYAML document, unwrapping a Yaz0 or zstd layer first, and
prints its root node as YAML.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		if err := renderBYAML(cmd.OutOrStdout(), raw); err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		return nil
	},
}

func renderBYAML(w io.Writer, raw []byte) error {
	data, _, err := archive.Decompress(raw)
	if err != nil {
		return err
	}

	doc, err := byaml.Decode(data)
	if err != nil {
		return err
	}

	out, err := doc.YAML()
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func init() {
	rootCmd.AddCommand(byamlCmd)
}
