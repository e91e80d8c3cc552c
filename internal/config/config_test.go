package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hush/internal/config"
	"hush/internal/size"
)

func TestDefault(t *testing.T) {
	c := config.Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, int64(50<<20), c.BlockSize)
	assert.Equal(t, 10<<10, c.BufferSize)
	assert.Equal(t, 15, c.Workers)
	assert.Equal(t, 15, c.MaxConcurrentBlocks)
	assert.Equal(t, 15, c.Parallelism())
	assert.True(t, c.Recursive)
	assert.False(t, c.StopOnFirstError)
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "hush.toml")
	require.NoError(t, os.WriteFile(p, []byte(`
block_size = "100MB"
buffer_size = "64KB"
workers = 4
max_concurrent_blocks = 8
max_parallel = 6
recursive = false
progress = true
stop = true
`), 0o600))

	c, err := config.LoadFile(p, config.Default())
	require.NoError(t, err)
	assert.Equal(t, config.PipelineConfig{
		Workers:             4,
		MaxConcurrentBlocks: 8,
		MaxParallel:         6,
		BlockSize:           100 << 20,
		BufferSize:          64 << 10,
		Recursive:           false,
		ShowProgress:        true,
		StopOnFirstError:    true,
	}, c)
	assert.Equal(t, 6, c.Parallelism())
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "hush.toml")
	require.NoError(t, os.WriteFile(p, []byte(`workers = 2`), 0o600))

	c, err := config.LoadFile(p, config.Default())
	require.NoError(t, err)
	want := config.Default()
	want.Workers = 2
	assert.Equal(t, want, c)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`block_size = "12XB"`), 0o600))
	_, err := config.LoadFile(bad, config.Default())
	require.ErrorIs(t, err, size.ErrInvalid)

	_, err = config.LoadFile(filepath.Join(dir, "missing.toml"), config.Default())
	require.Error(t, err)

	huge := filepath.Join(dir, "huge.toml")
	require.NoError(t, os.WriteFile(huge, []byte(`buffer_size = "2GB"`), 0o600))
	_, err = config.LoadFile(huge, config.Default())
	require.ErrorIs(t, err, size.ErrInvalid)
}

func TestValidate(t *testing.T) {
	c := config.Default()
	c.Workers = 0
	c.BlockSize = 0
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
	assert.Contains(t, err.Error(), "block size")
}
