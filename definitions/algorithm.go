package definitions

import (
	"fmt"
	"strings"

	"hush/internal/size"
)

const (
	NameSHA256  = "sha256"
	NameHSHA256 = "hsha256"
)

type AlgorithmKind uint8

const (
	Plain AlgorithmKind = iota
	Hierarchical
)

// Algorithm identifies how a digest was computed. BlockSize is only
// meaningful for Hierarchical.
type Algorithm struct {
	Kind      AlgorithmKind
	BlockSize int64
}

func PlainSHA256() Algorithm { return Algorithm{Kind: Plain} }

func HierarchicalSHA256(blockSize int64) Algorithm {
	return Algorithm{Kind: Hierarchical, BlockSize: blockSize}
}

// String returns the manifest tag, e.g. "sha256" or "hsha256-50MB".
func (a Algorithm) String() string {
	if a.Kind == Hierarchical {
		return NameHSHA256 + "-" + size.Format(a.BlockSize)
	}
	return NameSHA256
}

// ParseAlgorithm decodes a manifest tag. A dash-separated suffix selects
// hierarchical hashing with that block length.
func ParseAlgorithm(tag string) (Algorithm, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	name, suffix, hasSuffix := strings.Cut(tag, "-")

	if name != NameSHA256 && name != NameHSHA256 {
		return Algorithm{}, fmt.Errorf("%w: unknown algorithm %q", ErrManifestMalformed, tag)
	}
	if !hasSuffix {
		return PlainSHA256(), nil
	}

	blockSize, err := size.Parse(suffix)
	if err != nil {
		return Algorithm{}, err
	}
	if blockSize <= 0 {
		return Algorithm{}, fmt.Errorf("%w: block size must be positive, got %q", ErrInvalidSizeLiteral, suffix)
	}
	return HierarchicalSHA256(blockSize), nil
}
