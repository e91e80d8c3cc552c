// Package definitions holds the data model shared by the hashing engine,
// the generation pipeline and the verifier.
package definitions

// Block is a half-open byte range [Start, End) of a file. Digest is empty
// until the block has been hashed.
type Block struct {
	Index  uint64
	Start  uint64
	End    uint64
	Digest string
}

func (b Block) Len() uint64 { return b.End - b.Start }

// FileHashResult is the digest of one discovered file.
type FileHashResult struct {
	Path      string
	Size      int64
	Algorithm Algorithm
	Digest    string
}

// ManifestEntry is a FileHashResult expressed relative to a declared root.
type ManifestEntry struct {
	Digest    string
	Algorithm Algorithm
	RelPath   string
}
