// Package config builds the read-only PipelineConfig shared by every worker
// of a run.
package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"hush/internal/size"
)

const (
	DefaultBlockSize           = "50MB"
	DefaultBufferSize          = "10KB"
	DefaultWorkers             = 15
	DefaultMaxConcurrentBlocks = 15
)

type PipelineConfig struct {
	Workers             int
	MaxConcurrentBlocks int
	// MaxParallel caps hashing tasks across all files and blocks. Zero means
	// Workers.
	MaxParallel      int
	BlockSize        int64
	BufferSize       int
	Recursive        bool
	ShowProgress     bool
	StopOnFirstError bool
}

// File is the on-disk TOML form. Sizes are size literals.
type File struct {
	BlockSize           string `toml:"block_size"`
	BufferSize          string `toml:"buffer_size"`
	Workers             *int   `toml:"workers"`
	MaxConcurrentBlocks *int   `toml:"max_concurrent_blocks"`
	MaxParallel         *int   `toml:"max_parallel"`
	Recursive           *bool  `toml:"recursive"`
	Progress            *bool  `toml:"progress"`
	Stop                *bool  `toml:"stop"`
}

func Default() PipelineConfig {
	block, _ := size.Parse(DefaultBlockSize)
	buf, _ := size.Parse(DefaultBufferSize)
	return PipelineConfig{
		Workers:             DefaultWorkers,
		MaxConcurrentBlocks: DefaultMaxConcurrentBlocks,
		BlockSize:           block,
		BufferSize:          int(buf),
		Recursive:           true,
	}
}

// LoadFile overlays the settings found in a TOML file onto c.
func LoadFile(path string, c PipelineConfig) (PipelineConfig, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	return f.Apply(c)
}

func (f File) Apply(c PipelineConfig) (PipelineConfig, error) {
	if f.BlockSize != "" {
		n, err := size.Parse(f.BlockSize)
		if err != nil {
			return c, fmt.Errorf("block_size: %w", err)
		}
		c.BlockSize = n
	}
	if f.BufferSize != "" {
		n, err := ParseBufferSize(f.BufferSize)
		if err != nil {
			return c, fmt.Errorf("buffer_size: %w", err)
		}
		c.BufferSize = n
	}
	if f.Workers != nil {
		c.Workers = *f.Workers
	}
	if f.MaxConcurrentBlocks != nil {
		c.MaxConcurrentBlocks = *f.MaxConcurrentBlocks
	}
	if f.MaxParallel != nil {
		c.MaxParallel = *f.MaxParallel
	}
	if f.Recursive != nil {
		c.Recursive = *f.Recursive
	}
	if f.Progress != nil {
		c.ShowProgress = *f.Progress
	}
	if f.Stop != nil {
		c.StopOnFirstError = *f.Stop
	}
	return c, nil
}

const maxBufferSize = 1 << 30

// ParseBufferSize parses a size literal and checks it fits a read buffer.
func ParseBufferSize(s string) (int, error) {
	n, err := size.Parse(s)
	if err != nil {
		return 0, err
	}
	if n > maxBufferSize {
		return 0, fmt.Errorf("%w: buffer size %s exceeds 1GB", size.ErrInvalid, s)
	}
	return int(n), nil
}

// Parallelism returns the effective global hashing capacity.
func (c PipelineConfig) Parallelism() int {
	if c.MaxParallel > 0 {
		return c.MaxParallel
	}
	return c.Workers
}

func (c PipelineConfig) Validate() error {
	var errs []error
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be > 0, got %d", c.Workers))
	}
	if c.MaxConcurrentBlocks <= 0 {
		errs = append(errs, fmt.Errorf("max concurrent blocks must be > 0, got %d", c.MaxConcurrentBlocks))
	}
	if c.MaxParallel < 0 {
		errs = append(errs, fmt.Errorf("max parallel must be >= 0, got %d", c.MaxParallel))
	}
	if c.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("block size must be > 0, got %d", c.BlockSize))
	}
	if c.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("buffer size must be > 0, got %d", c.BufferSize))
	}
	return errors.Join(errs...)
}
