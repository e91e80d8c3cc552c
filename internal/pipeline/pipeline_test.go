package pipeline_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	def "hush/definitions"
	"hush/internal/hasher"
	"hush/internal/manifest"
	"hush/internal/metrics"
	"hush/internal/pathres"
	"hush/internal/pipeline"
)

type tree struct {
	root  string
	paths []string
	data  map[string][]byte
}

func makeTree(t *testing.T, sizes map[string]int) tree {
	t.Helper()
	dir := t.TempDir()
	root, err := pathres.ToAbsolute(dir)
	require.NoError(t, err)

	tr := tree{root: root, data: map[string][]byte{}}
	for rel, n := range sizes {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		b := make([]byte, n)
		_, _ = rand.Read(b)
		require.NoError(t, os.WriteFile(full, b, 0o600))
		tr.paths = append(tr.paths, root+"/"+rel)
		tr.data["./"+rel] = b
	}
	return tr
}

func newEngine(t *testing.T, blockSize int64) *hasher.Engine {
	t.Helper()
	e, err := hasher.New(hasher.Options{BlockSize: blockSize, BufferSize: 256, MaxConcurrentBlocks: 3, MaxParallel: 4})
	require.NoError(t, err)
	return e
}

func parse(t *testing.T, out string) map[string]def.ManifestEntry {
	t.Helper()
	entries := map[string]def.ManifestEntry{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		e, err := manifest.Decode(line)
		require.NoError(t, err, line)
		entries[e.RelPath] = e
	}
	return entries
}

func TestGenerate_WritesOneLinePerFile(t *testing.T) {
	tr := makeTree(t, map[string]int{
		"small.txt":       10,
		"exact.bin":       1000,
		"big.bin":         5500,
		"nested/deep.bin": 2001,
		"empty":           0,
	})
	stats := &metrics.Stats{}

	var out bytes.Buffer
	sum, err := pipeline.Generate(context.Background(), newEngine(t, 1000), tr.root, tr.paths, &out, pipeline.Options{Workers: 3, Stats: stats})
	require.NoError(t, err)
	assert.Equal(t, pipeline.Summary{Discovered: 5, Produced: 5, Written: 5}, sum)
	assert.Equal(t, int64(5), stats.Snapshot().OK)

	entries := parse(t, out.String())
	require.Len(t, entries, 5)

	plain := func(b []byte) string { s := sha256.Sum256(b); return hex.EncodeToString(s[:]) }
	for rel, b := range tr.data {
		e, ok := entries[rel]
		require.True(t, ok, rel)
		if len(b) <= 1000 {
			assert.Equal(t, def.PlainSHA256(), e.Algorithm, rel)
			assert.Equal(t, plain(b), e.Digest, rel)
		} else {
			assert.Equal(t, "hsha256-1000B", e.Algorithm.String(), rel)
			assert.NotEqual(t, plain(b), e.Digest, rel)
		}
	}
}

func TestGenerate_NotRelocatableIsPerFile(t *testing.T) {
	tr := makeTree(t, map[string]int{"a": 5, "b": 6})
	other := makeTree(t, map[string]int{"c": 7})
	paths := append(tr.paths, other.paths...)

	var out bytes.Buffer
	stats := &metrics.Stats{}
	sum, err := pipeline.Generate(context.Background(), newEngine(t, 100), tr.root, paths, &out, pipeline.Options{Workers: 2, Stats: stats, StopOnFirstError: true})
	require.NoError(t, err, "a file outside root is reported, not fatal")
	assert.Equal(t, pipeline.Summary{Discovered: 3, Produced: 3, Written: 2, NotRelocatable: 1}, sum)
	assert.Equal(t, int64(1), stats.Snapshot().NotRelocatable)
	assert.Len(t, parse(t, out.String()), 2)
}

func TestGenerate_MissingFileIsPartial(t *testing.T) {
	tr := makeTree(t, map[string]int{"a": 5, "b": 6})
	paths := append(tr.paths, tr.root+"/vanished")

	var out bytes.Buffer
	stats := &metrics.Stats{}
	sum, err := pipeline.Generate(context.Background(), newEngine(t, 100), tr.root, paths, &out, pipeline.Options{Workers: 4, Stats: stats})
	require.ErrorIs(t, err, def.ErrPartialCompletion)
	assert.Equal(t, 2, sum.Produced)
	assert.Equal(t, 2, sum.Written)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, int64(1), stats.Snapshot().NotFound)
}

func TestGenerate_StopOnFirstError(t *testing.T) {
	sizes := map[string]int{}
	for i := range 50 {
		sizes[filepath.ToSlash(filepath.Join("d", string(rune('a'+i%26))+strings.Repeat("x", i)))] = 300
	}
	tr := makeTree(t, sizes)
	paths := append([]string{tr.root + "/missing-first"}, tr.paths...)

	var out bytes.Buffer
	sum, err := pipeline.Generate(context.Background(), newEngine(t, 100), tr.root, paths, &out, pipeline.Options{Workers: 1, StopOnFirstError: true})
	require.ErrorIs(t, err, def.ErrPartialCompletion)
	assert.True(t, sum.Stopped)
	assert.Equal(t, 1, sum.Failed)
	assert.Less(t, sum.Written, len(tr.paths))
}

func TestGenerate_NoFiles(t *testing.T) {
	var out bytes.Buffer
	sum, err := pipeline.Generate(context.Background(), newEngine(t, 100), "/", nil, &out, pipeline.Options{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, pipeline.Summary{}, sum)
	assert.Empty(t, out.String())
}
