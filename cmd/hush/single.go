package main

import (
	"fmt"

	"github.com/spf13/cobra"

	def "hush/definitions"
	"hush/internal/manifest"
)

var sha256Cmd = &cobra.Command{
	Use:   "sha256 <file>",
	Short: "Print the plain SHA-256 manifest line of one file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return hashOne(cmd, args[0], def.PlainSHA256())
	},
}

var hsha256Cmd = &cobra.Command{
	Use:   "hsha256 <file>",
	Short: "Print the hierarchical SHA-256 manifest line of one file",
	Long: `hsha256 always uses the hierarchical algorithm with --blocksize,
even for files no larger than one block.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return hashOne(cmd, args[0], def.HierarchicalSHA256(cfg.BlockSize))
	},
}

func hashOne(cmd *cobra.Command, path string, alg def.Algorithm) error {
	eng, err := newEngine(nil)
	if err != nil {
		return err
	}
	digest, err := eng.Compute(cmd.Context(), path, alg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), manifest.Encode(def.ManifestEntry{Digest: digest, Algorithm: alg, RelPath: path}))
	return err
}
