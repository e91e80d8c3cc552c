package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hush/internal/size"
	"hush/internal/verify"
)

var errFilesDiffer = errors.New("files differ")

var diffCmd = &cobra.Command{
	Use:   "diff <file1> <file2> [<file>...]",
	Short: "Compare files block by block and list the blocks that differ",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := verify.CompareBlocks(args, cfg.BlockSize, cfg.BufferSize)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "block size: %s, compared blocks: %d\n", size.Format(res.BlockSize), res.Blocks)
		for i, p := range res.Paths {
			fmt.Fprintf(out, "  [%d] %s  %s", i, p, humanize.IBytes(uint64(res.Sizes[i])))
			if res.TailBytes[i] > 0 {
				fmt.Fprintf(out, "  (+%d bytes past the shortest file)", res.TailBytes[i])
			}
			fmt.Fprintln(out)
		}

		red := color.New(color.FgRed)
		for _, d := range res.DifferingBlocks {
			red.Fprintf(out, "block %d [%d, %d) differs\n", d.Index, d.Start, d.End)
			for i, h := range d.Hashes {
				fmt.Fprintf(out, "    [%d] %s\n", i, h)
			}
		}

		if len(res.DifferingBlocks) > 0 || res.MinSize != res.MaxSize {
			return fmt.Errorf("%w: %d differing blocks, sizes %d..%d", errFilesDiffer, len(res.DifferingBlocks), res.MinSize, res.MaxSize)
		}
		color.New(color.FgGreen).Fprintln(out, "identical")
		return nil
	},
}
