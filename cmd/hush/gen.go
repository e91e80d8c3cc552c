package main

import (
	"os"
	"sync/atomic"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"hush/internal/discover"
	"hush/internal/metrics"
	"hush/internal/pipeline"
)

var genCmd = &cobra.Command{
	Use:   "gen <path_or_glob>",
	Short: "Hash files and print a manifest on stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		found, err := discover.Discover(args[0], cfg.Recursive)
		if err != nil {
			return err
		}
		log.Debug("discovered", "root", found.Root, "files", len(found.Paths))

		stats := &metrics.Stats{}
		stats.Start()
		atomic.StoreInt64(&stats.Total, int64(len(found.Paths)))
		atomic.StoreInt64(&stats.TotalBytes, totalSize(found.Paths))

		bar := newBar("hashing", stats.TotalBytes, stats)
		eng, err := newEngine(func(n int64) {
			stats.AddBytes(n)
			bar.AddBytes(n)
		})
		if err != nil {
			bar.Close()
			return err
		}

		sum, err := pipeline.Generate(cmd.Context(), eng, found.Root, found.Paths, os.Stdout, pipeline.Options{
			Workers:          cfg.Workers,
			StopOnFirstError: cfg.StopOnFirstError,
			Logger:           log,
			Stats:            stats,
		})
		bar.Close()
		stats.Stop()
		printStats(stats)

		if err != nil {
			color.New(color.FgRed).Fprintf(os.Stderr, "FAIL  %d of %d files hashed, %d failed\n", sum.Produced, sum.Discovered, sum.Failed)
			return err
		}
		if sum.NotRelocatable > 0 {
			color.New(color.FgYellow).Fprintf(os.Stderr, "%d files outside %s were left out of the manifest\n", sum.NotRelocatable, found.Root)
		}
		if flagLog {
			color.New(color.FgGreen).Fprintf(os.Stderr, "OK  %d files hashed, %d lines written\n", sum.Produced, sum.Written)
		}
		return nil
	},
}

// totalSize is only used to size the progress bar; unreadable files count
// as zero and are reported later by the pipeline.
func totalSize(paths []string) int64 {
	var n int64
	for _, p := range paths {
		if st, err := os.Stat(p); err == nil {
			n += st.Size()
		}
	}
	return n
}
