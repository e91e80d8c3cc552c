// Package pathres canonicalizes file paths and expresses them relative to a
// manifest root.
package pathres

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	def "hush/definitions"
)

const relPrefix = "./"

// ToAbsolute resolves symlinks and relative components and returns the
// path with forward slashes.
func ToAbsolute(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("%w: %w", def.ErrIoFailure, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", def.ErrFileNotFound, p)
		}
		return "", fmt.Errorf("%w: %w", def.ErrIoFailure, err)
	}
	return filepath.ToSlash(resolved), nil
}

func components(p string) []string {
	clean := strings.TrimSuffix(path.Clean(filepath.ToSlash(p)), "/")
	return strings.Split(clean, "/")
}

// RelativeTo returns child as "./" + the part below root. Both paths must be
// absolute. Prefixes are compared by whole path components, so "/data/ab"
// is not below "/data/a".
func RelativeTo(child, root string) (string, error) {
	cc := components(child)
	rc := components(root)

	if len(cc) <= len(rc) {
		return "", fmt.Errorf("%w: %s is not below %s", def.ErrPathNotRelocatable, child, root)
	}
	for i := range rc {
		if cc[i] != rc[i] {
			return "", fmt.Errorf("%w: %s is not below %s", def.ErrPathNotRelocatable, child, root)
		}
	}
	return relPrefix + strings.Join(cc[len(rc):], "/"), nil
}

// Resolve joins a manifest relative path onto root.
func Resolve(root, rel string) string {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), relPrefix)
	return path.Join(filepath.ToSlash(root), rel)
}

// ResolveExisting is Resolve followed by ToAbsolute, failing with
// ErrFileNotFound when the file does not exist under root. A rel that
// lexically leaves root, through ".." or by naming root itself, is
// ErrManifestMalformed.
func ResolveExisting(root, rel string) (string, error) {
	joined := Resolve(root, rel)
	if _, err := RelativeTo(joined, root); err != nil {
		return "", fmt.Errorf("%w: %s is not below the work dir", def.ErrManifestMalformed, rel)
	}
	return ToAbsolute(filepath.FromSlash(joined))
}
