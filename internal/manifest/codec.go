// Package manifest reads and writes manifest lines of the form
//
//	<digest> ?<algorithm>*./<relative/path>
package manifest

import (
	"encoding/hex"
	"fmt"
	"strings"

	def "hush/definitions"
)

const digestHexLen = 64

// Encode formats one manifest line without the trailing newline.
func Encode(e def.ManifestEntry) string {
	return e.Digest + " ?" + e.Algorithm.String() + "*" + e.RelPath
}

// Decode parses one manifest line. Errors wrap ErrManifestMalformed or,
// for a bad block size suffix, ErrInvalidSizeLiteral.
func Decode(line string) (def.ManifestEntry, error) {
	line = strings.TrimRight(line, "\r\n")

	digest, rest, ok := strings.Cut(line, "?")
	if !ok {
		return def.ManifestEntry{}, fmt.Errorf("%w: missing '?' separator", def.ErrManifestMalformed)
	}
	tag, rel, ok := strings.Cut(rest, "*")
	if !ok {
		return def.ManifestEntry{}, fmt.Errorf("%w: missing '*' separator", def.ErrManifestMalformed)
	}

	digest = strings.TrimSpace(digest)
	if len(digest) != digestHexLen {
		return def.ManifestEntry{}, fmt.Errorf("%w: digest has %d characters, want %d", def.ErrManifestMalformed, len(digest), digestHexLen)
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return def.ManifestEntry{}, fmt.Errorf("%w: digest is not hex", def.ErrManifestMalformed)
	}
	if rel == "" {
		return def.ManifestEntry{}, fmt.Errorf("%w: empty path", def.ErrManifestMalformed)
	}

	alg, err := def.ParseAlgorithm(tag)
	if err != nil {
		return def.ManifestEntry{}, err
	}

	return def.ManifestEntry{
		Digest:    strings.ToLower(digest),
		Algorithm: alg,
		RelPath:   rel,
	}, nil
}
