package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"hush/internal/split"
)

var splitCmd = &cobra.Command{
	Use:   "split <file> <dest_dir>",
	Short: "Cut a file into --blocksize parts with SHA-256 sidecars",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		parts, err := split.Split(args[0], args[1], split.Options{
			PartSize:   cfg.BlockSize,
			BufferSize: cfg.BufferSize,
			Logger:     log,
		})
		if err != nil {
			return err
		}
		for _, p := range parts {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s  %s  %s\n", p.Digest, humanize.IBytes(uint64(p.Size)), p.Path)
		}
		return nil
	},
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild <dest_dir> <file>",
	Short: "Concatenate the parts in dest_dir back into file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := split.Rebuild(args[0], args[1], split.Options{BufferSize: cfg.BufferSize, Logger: log})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "rebuilt %s (%s)\n", args[1], humanize.IBytes(uint64(n)))
		return nil
	},
}
