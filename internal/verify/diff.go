package verify

import (
	"fmt"
	"os"

	def "hush/definitions"
	"hush/internal/hasher"
)

// CompareBlocks hashes the common prefix of every file block by block and
// reports the blocks whose digests differ, plus the bytes each file has
// beyond the shortest one.
func CompareBlocks(paths []string, blockSize int64, bufSize int) (*MultiBlockResult, error) {
	if len(paths) < 2 {
		return nil, fmt.Errorf("need at least 2 files")
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size must be > 0")
	}
	if bufSize <= 0 {
		bufSize = hasher.DefaultBufferSize
	}

	sizes := make([]int64, len(paths))
	var minSize, maxSize int64

	for i, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", def.ErrFileNotFound, p)
		}
		sz := st.Size()
		sizes[i] = sz

		if i == 0 {
			minSize, maxSize = sz, sz
		} else {
			minSize = min(minSize, sz)
			maxSize = max(maxSize, sz)
		}
	}

	blocks, err := hasher.Plan(minSize, blockSize)
	if err != nil {
		return nil, err
	}

	files := make([]*os.File, len(paths))
	defer func() {
		for _, f := range files {
			if f != nil {
				_ = f.Close()
			}
		}
	}()
	for i, p := range paths {
		f, err := os.Open(p) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("%w: %w", def.ErrIoFailure, err)
		}
		files[i] = f
	}

	buf := make([]byte, bufSize)
	differing := make([]BlockDiff, 0)
	for _, b := range blocks {
		hashes := make([]string, len(files))
		for fi, f := range files {
			hb, err := hasher.HashBlock(f, b, buf, nil)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", paths[fi], err)
			}
			hashes[fi] = hb.Digest
		}

		for fi := 1; fi < len(hashes); fi++ {
			if hashes[fi] != hashes[0] {
				differing = append(differing, BlockDiff{Index: b.Index, Start: b.Start, End: b.End, Hashes: hashes})
				break
			}
		}
	}

	tails := make([]int64, len(paths))
	for i := range sizes {
		tails[i] = sizes[i] - minSize
	}

	return &MultiBlockResult{
		BlockSize:       blockSize,
		Paths:           paths,
		Sizes:           sizes,
		Blocks:          len(blocks),
		DifferingBlocks: differing,
		TailBytes:       tails,
		MinSize:         minSize,
		MaxSize:         maxSize,
	}, nil
}
