// Package hasher computes plain and hierarchical SHA-256 digests of files.
//
// Files no larger than the configured block length are hashed in a single
// pass. Larger files are split into fixed-size blocks that are hashed
// concurrently; the file digest is the SHA-256 of the hex block digests
// concatenated in block order.
package hasher

import (
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	def "hush/definitions"
)

type Options struct {
	BlockSize           int64
	BufferSize          int
	MaxConcurrentBlocks int
	// MaxParallel caps the hashing tasks running at once across every file
	// handled by the engine, whole files and blocks alike. It has no default
	// here; config.PipelineConfig.Parallelism supplies it.
	MaxParallel int
	Logger      *slog.Logger
	// OnProgress receives hashed byte counts. It is called from several
	// goroutines.
	OnProgress func(n int64)
}

// Engine is safe for concurrent use by multiple pipeline workers.
type Engine struct {
	opts Options
	sem  *semaphore.Weighted
	log  *slog.Logger
}

func New(opts Options) (*Engine, error) {
	if opts.BlockSize <= 0 {
		return nil, fmt.Errorf("block size must be > 0, got %d", opts.BlockSize)
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.MaxConcurrentBlocks <= 0 {
		opts.MaxConcurrentBlocks = 1
	}
	if opts.MaxParallel <= 0 {
		return nil, fmt.Errorf("max parallel must be > 0, got %d", opts.MaxParallel)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		opts: opts,
		sem:  semaphore.NewWeighted(int64(opts.MaxParallel)),
		log:  log,
	}, nil
}

func (e *Engine) BlockSize() int64 { return e.opts.BlockSize }

// HashFile picks the algorithm from the file size: plain SHA-256 up to the
// block size, hierarchical above it.
func (e *Engine) HashFile(ctx context.Context, path string) (def.FileHashResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return def.FileHashResult{}, openErr(path, err)
	}
	if !info.Mode().IsRegular() {
		return def.FileHashResult{}, fmt.Errorf("%w: %s is not a regular file", def.ErrIoFailure, path)
	}

	alg := def.PlainSHA256()
	if info.Size() > e.opts.BlockSize {
		alg = def.HierarchicalSHA256(e.opts.BlockSize)
	}

	digest, err := e.compute(ctx, path, info.Size(), alg)
	if err != nil {
		return def.FileHashResult{}, err
	}
	return def.FileHashResult{
		Path:      path,
		Size:      info.Size(),
		Algorithm: alg,
		Digest:    digest,
	}, nil
}

// Compute hashes path with the given algorithm regardless of the engine's
// configured block size.
func (e *Engine) Compute(ctx context.Context, path string, alg def.Algorithm) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", openErr(path, err)
	}
	return e.compute(ctx, path, info.Size(), alg)
}

func (e *Engine) compute(ctx context.Context, path string, size int64, alg def.Algorithm) (string, error) {
	if alg.Kind == def.Hierarchical {
		return e.hierarchical(ctx, path, size, alg.BlockSize)
	}
	return e.plain(ctx, path)
}

func (e *Engine) plain(ctx context.Context, path string) (string, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer e.sem.Release(1)

	return FileHashHex(path, e.opts.BufferSize, e.opts.OnProgress)
}

func (e *Engine) hierarchical(ctx context.Context, path string, size int64, blockLen int64) (string, error) {
	blocks, err := Plan(size, blockLen)
	if err != nil {
		return "", err
	}
	if len(blocks) == 0 {
		return e.plain(ctx, path)
	}

	work := make(chan def.Block, len(blocks))
	for _, b := range blocks {
		work <- b
	}
	close(work)

	done := make(chan def.Block, len(blocks))
	g, gctx := errgroup.WithContext(ctx)
	for range min(e.opts.MaxConcurrentBlocks, len(blocks)) {
		g.Go(func() error {
			return e.blockWorker(gctx, path, work, done)
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	close(done)

	hashed := make([]def.Block, 0, len(blocks))
	for b := range done {
		hashed = append(hashed, b)
	}
	if len(hashed) != len(blocks) {
		return "", fmt.Errorf("%w: %s: hashed %d of %d blocks", def.ErrIoFailure, path, len(hashed), len(blocks))
	}

	digest := Combine(hashed)
	if e.log.Enabled(ctx, slog.LevelDebug) {
		for _, b := range SortBlocks(hashed) {
			e.log.Debug("block", "path", path, "index", b.Index, "start", b.Start, "end", b.End, "digest", b.Digest)
		}
		e.log.Debug("hierarchical digest", "path", path, "blocks", len(hashed), "digest", digest)
	}
	return digest, nil
}

// openBlock opens the reader for one block. A handle lives only while its
// task holds a semaphore slot, so open handles never exceed MaxParallel.
var openBlock = func(path string) (io.ReadSeekCloser, error) {
	return os.Open(path) // #nosec G304
}

// blockWorker hashes blocks until work is drained.
func (e *Engine) blockWorker(ctx context.Context, path string, work <-chan def.Block, done chan<- def.Block) error {
	buf := make([]byte, e.opts.BufferSize)
	for b := range work {
		hb, err := e.hashBlockInSlot(ctx, path, b, buf)
		if err != nil {
			return err
		}
		done <- hb
	}
	return nil
}

func (e *Engine) hashBlockInSlot(ctx context.Context, path string, b def.Block, buf []byte) (def.Block, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return b, err
	}
	defer e.sem.Release(1)

	f, err := openBlock(path)
	if err != nil {
		return b, openErr(path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	hb, err := HashBlock(f, b, buf, e.opts.OnProgress)
	if err != nil {
		return b, fmt.Errorf("%s: %w", path, err)
	}
	return hb, nil
}

// SortBlocks returns a copy of blocks ordered by index.
func SortBlocks(blocks []def.Block) []def.Block {
	sorted := slices.Clone(blocks)
	slices.SortFunc(sorted, func(a, b def.Block) int {
		return cmp.Compare(a.Index, b.Index)
	})
	return sorted
}

// Combine folds hashed blocks into the hierarchical file digest. Blocks may
// be given in any order. A single block's digest is returned unchanged.
func Combine(blocks []def.Block) string {
	sorted := SortBlocks(blocks)
	if len(sorted) == 1 {
		return sorted[0].Digest
	}

	h := sha256.New()
	for _, b := range sorted {
		h.Write([]byte(b.Digest))
	}
	return hex.EncodeToString(h.Sum(nil))
}
