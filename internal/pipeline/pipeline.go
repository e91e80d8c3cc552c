// Package pipeline hashes many files concurrently and writes one manifest
// line per file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	def "hush/definitions"
	"hush/internal/hasher"
	"hush/internal/manifest"
	"hush/internal/metrics"
	"hush/internal/pathres"
)

type Options struct {
	Workers          int
	StopOnFirstError bool
	Logger           *slog.Logger
	Stats            *metrics.Stats
}

// Outcome is what a worker hands to the collector for one path.
type Outcome struct {
	Path   string
	Result def.FileHashResult
	Err    error
}

type Summary struct {
	Discovered int
	// Produced counts files hashed without error, written or not.
	Produced       int
	Written        int
	NotRelocatable int
	Failed         int
	Stopped        bool
}

// Generate hashes paths with eng and writes manifest lines relative to root
// on out. Per-file failures are logged and counted; the returned error wraps
// ErrPartialCompletion unless every path was hashed. A file outside root is
// logged and skipped without failing the run.
func Generate(ctx context.Context, eng *hasher.Engine, root string, paths []string, out io.Writer, opts Options) (Summary, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	stats := opts.Stats
	if stats == nil {
		stats = &metrics.Stats{}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan string, len(paths))
	for _, p := range paths {
		jobs <- p
	}
	close(jobs)

	results := make(chan Outcome, workers)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()

		for p := range jobs {
			if ctx.Err() != nil {
				return
			}
			res, err := eng.HashFile(ctx, p)
			results <- Outcome{Path: p, Result: res, Err: err}
		}
	}

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go worker()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	sum := Summary{Discovered: len(paths)}
	mw := manifest.NewWriter(out)
	var writeErr error

	fail := func(kind def.Kind) {
		sum.Failed++
		stats.Record(kind)
		if opts.StopOnFirstError && !sum.Stopped {
			sum.Stopped = true
			cancel()
		}
	}

	for o := range results {
		if o.Err != nil {
			if errors.Is(o.Err, context.Canceled) && ctx.Err() != nil {
				continue
			}
			log.Error("hash failed", "path", o.Path, "err", o.Err)
			fail(def.KindOf(o.Err))
			continue
		}
		sum.Produced++

		rel, err := pathres.RelativeTo(o.Result.Path, root)
		if err != nil {
			log.Error("cannot relativize", "path", o.Result.Path, "root", root, "err", err)
			sum.NotRelocatable++
			stats.Record(def.KindPathNotRelocatable)
			continue
		}

		if writeErr != nil {
			continue
		}
		entry := def.ManifestEntry{Digest: o.Result.Digest, Algorithm: o.Result.Algorithm, RelPath: rel}
		if err := mw.Write(entry); err != nil {
			writeErr = fmt.Errorf("%w: write manifest: %w", def.ErrIoFailure, err)
			cancel()
			continue
		}
		stats.Record(def.KindNone)
		log.Debug("hashed", "path", rel, "alg", o.Result.Algorithm.String(), "size", o.Result.Size)
	}

	if err := mw.Flush(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("%w: flush manifest: %w", def.ErrIoFailure, err)
	}
	sum.Written = mw.Lines()
	if writeErr != nil {
		return sum, writeErr
	}
	if sum.Produced != sum.Discovered {
		return sum, fmt.Errorf("%w: %d of %d files hashed", def.ErrPartialCompletion, sum.Produced, sum.Discovered)
	}
	return sum, nil
}
