package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/spf13/cobra"

	"hush/internal/config"
	"hush/internal/hasher"
	"hush/internal/logging"
	"hush/internal/metrics"
	"hush/internal/progress"
	"hush/internal/size"
)

var rootCmd = &cobra.Command{
	Use:   "hush",
	Short: "Chunked hierarchical SHA-256 manifests",
	Long: `hush hashes file trees into relocatable manifests and verifies them.
Files larger than the block size are hashed block by block in parallel.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	flagConfig      string
	flagLog         bool
	flagBlockSize   string
	flagBufferSize  string
	flagWorkers     int
	flagMaxConcur   int
	flagMaxParallel int
	flagProgress    bool
	flagStop        bool
	flagRecursive   bool
)

// cfg and log are set once by setup before any command runs.
var (
	cfg config.PipelineConfig
	log *slog.Logger
)

func main() {
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(rebuildCmd)
	rootCmd.AddCommand(sha256Cmd)
	rootCmd.AddCommand(hsha256Cmd)
	rootCmd.AddCommand(diffCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "TOML file with default settings")
	pf.BoolVar(&flagLog, "log", false, "verbose diagnostics on stderr")
	pf.StringVar(&flagBlockSize, "blocksize", config.DefaultBlockSize, "block size for hierarchical hashing (e.g. 50MB)")
	pf.StringVar(&flagBufferSize, "buffersize", config.DefaultBufferSize, "read buffer size (e.g. 10KB)")
	pf.IntVar(&flagWorkers, "n_workers", config.DefaultWorkers, "files hashed concurrently")
	pf.IntVar(&flagMaxConcur, "n_max_concur", config.DefaultMaxConcurrentBlocks, "blocks hashed concurrently per file")
	pf.IntVar(&flagMaxParallel, "max_parallel", 0, "hashing tasks running at once across all files (0 = n_workers)")
	pf.BoolVar(&flagProgress, "progress", false, "show a progress bar on stderr")
	pf.BoolVar(&flagStop, "stop", false, "stop at the first error")
	pf.BoolVar(&flagRecursive, "recursive", true, "descend into subdirectories")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup builds the logger and the run configuration: defaults, then the
// config file, then any flag given explicitly.
func setup(cmd *cobra.Command, _ []string) error {
	log = logging.New(os.Stderr, flagLog)

	c := config.Default()
	if flagConfig != "" {
		var err error
		if c, err = config.LoadFile(flagConfig, c); err != nil {
			return err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("blocksize") {
		n, err := size.Parse(flagBlockSize)
		if err != nil {
			return fmt.Errorf("--blocksize: %w", err)
		}
		c.BlockSize = n
	}
	if flags.Changed("buffersize") {
		n, err := config.ParseBufferSize(flagBufferSize)
		if err != nil {
			return fmt.Errorf("--buffersize: %w", err)
		}
		c.BufferSize = n
	}
	if flags.Changed("n_workers") {
		c.Workers = flagWorkers
	}
	if flags.Changed("n_max_concur") {
		c.MaxConcurrentBlocks = flagMaxConcur
	}
	if flags.Changed("max_parallel") {
		c.MaxParallel = flagMaxParallel
	}
	if flags.Changed("progress") {
		c.ShowProgress = flagProgress
	}
	if flags.Changed("stop") {
		c.StopOnFirstError = flagStop
	}
	if flags.Changed("recursive") {
		c.Recursive = flagRecursive
	}
	if err := c.Validate(); err != nil {
		return err
	}

	cfg = c
	log.Debug("config", "block_size", size.Format(cfg.BlockSize), "buffer_size", cfg.BufferSize,
		"workers", cfg.Workers, "max_concurrent_blocks", cfg.MaxConcurrentBlocks, "max_parallel", cfg.Parallelism())
	return nil
}

func newEngine(onProgress func(int64)) (*hasher.Engine, error) {
	return hasher.New(hasher.Options{
		BlockSize:           cfg.BlockSize,
		BufferSize:          cfg.BufferSize,
		MaxConcurrentBlocks: cfg.MaxConcurrentBlocks,
		MaxParallel:         cfg.Parallelism(),
		Logger:              log,
		OnProgress:          onProgress,
	})
}

// newBar returns nil unless progress output was requested.
func newBar(verb string, totalBytes int64, stats *metrics.Stats) *progress.Bar {
	if !cfg.ShowProgress {
		return nil
	}
	return progress.New(os.Stderr, verb, totalBytes, func() (p, total, ok, errc, bytesHashed int64) {
		return atomic.LoadInt64(&stats.Processed),
			atomic.LoadInt64(&stats.Total),
			atomic.LoadInt64(&stats.OK),
			stats.Errors(),
			atomic.LoadInt64(&stats.BytesHashed)
	})
}

func printStats(stats *metrics.Stats) {
	if flagLog || cfg.ShowProgress {
		metrics.Print(os.Stderr, stats)
	}
}
