// Package verify re-hashes the files named in a manifest and compares them
// with the recorded digests.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	def "hush/definitions"
	"hush/internal/hasher"
	"hush/internal/manifest"
	"hush/internal/metrics"
	"hush/internal/pathres"
)

type lineOutcome struct {
	line     manifest.Line
	path     string
	expected string
	computed string
	err      error
}

// Verify checks every line of r against files below workDir. The returned
// error is reserved for failures that prevent verification altogether, such
// as an unreadable manifest; per-line problems are reported in Result.
func Verify(ctx context.Context, eng *hasher.Engine, r *manifest.Reader, workDir string, opts Options, stats *metrics.Stats) (*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if stats == nil {
		stats = &metrics.Stats{}
	}

	root, err := pathres.ToAbsolute(workDir)
	if err != nil {
		return nil, fmt.Errorf("work dir: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan manifest.Line, workers)
	results := make(chan lineOutcome, workers)

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		defer close(jobs)
		for {
			l, ok := r.Next()
			if !ok {
				return
			}
			select {
			case jobs <- l:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()

		for l := range jobs {
			if ctx.Err() != nil {
				return
			}
			o := verifyLine(ctx, eng, root, l)
			select {
			case results <- o:
			case <-ctx.Done():
				return
			}
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

	res := &Result{Failures: []Failure{}}
	for o := range results {
		if o.err != nil && errors.Is(o.err, context.Canceled) && ctx.Err() != nil {
			continue
		}

		res.LinesTotal++
		atomic.AddInt64(&stats.Total, 1)
		kind := def.KindOf(o.err)
		stats.Record(kind)
		if o.err == nil {
			res.Matches++
			log.Debug("match", "line", o.line.No, "path", o.path)
			continue
		}

		res.Errors++
		res.Failures = append(res.Failures, Failure{
			Line:     o.line.No,
			Path:     o.path,
			Kind:     kind,
			Expected: o.expected,
			Computed: o.computed,
			Error:    o.err.Error(),
		})
		log.Error("verification failed", "line", o.line.No, "kind", kind.String(), "err", o.err)

		if opts.StopOnFirstError {
			res.Stopped = true
			cancel()
			break
		}
	}
	// drain whatever workers still had in flight after a stop
	for range results {
	}
	<-readDone

	if err := r.Err(); err != nil && !res.Stopped {
		return res, err
	}
	return res, nil
}

func verifyLine(ctx context.Context, eng *hasher.Engine, root string, l manifest.Line) lineOutcome {
	o := lineOutcome{line: l}

	entry, err := manifest.Decode(l.Text)
	if err != nil {
		o.err = err
		return o
	}
	o.path = entry.RelPath
	o.expected = entry.Digest

	path, err := pathres.ResolveExisting(root, entry.RelPath)
	if err != nil {
		o.err = err
		return o
	}

	computed, err := eng.Compute(ctx, path, entry.Algorithm)
	if err != nil {
		o.err = err
		return o
	}
	o.computed = computed

	if !strings.EqualFold(strings.TrimSpace(entry.Digest), strings.TrimSpace(computed)) {
		o.err = fmt.Errorf("%w: %s (%s)", def.ErrDigestMismatch, entry.RelPath, entry.Algorithm)
	}
	return o
}
