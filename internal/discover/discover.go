// Package discover turns a command-line path or glob pattern into the list
// of absolute file paths to hash and the root they are made relative to.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	def "hush/definitions"
	"hush/internal/pathres"
)

type Result struct {
	// Root is the canonical directory manifest paths are relative to.
	Root  string
	Paths []string
}

const globMeta = "*?[{"

// Discover enumerates regular files for pattern. A directory yields its
// files (recursively when recursive is set) with the directory as root; a
// single file yields itself with its parent as root; a glob pattern is
// matched below its longest literal directory prefix, which becomes root.
func Discover(pattern string, recursive bool) (Result, error) {
	slashed := filepath.ToSlash(pattern)
	if !strings.ContainsAny(slashed, globMeta) {
		return discoverPath(pattern, recursive)
	}
	return discoverGlob(slashed)
}

func discoverPath(p string, recursive bool) (Result, error) {
	abs, err := pathres.ToAbsolute(p)
	if err != nil {
		return Result{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", def.ErrIoFailure, err)
	}
	if !info.IsDir() {
		return Result{Root: path.Dir(abs), Paths: []string{abs}}, nil
	}

	paths, err := walk(abs, recursive, func(string) bool { return true })
	if err != nil {
		return Result{}, err
	}
	return Result{Root: abs, Paths: paths}, nil
}

func discoverGlob(pattern string) (Result, error) {
	parts := strings.Split(pattern, "/")
	literal := 0
	for literal < len(parts) && !strings.ContainsAny(parts[literal], globMeta) {
		literal++
	}

	base := strings.Join(parts[:literal], "/")
	switch {
	case base == "" && strings.HasPrefix(pattern, "/"):
		base = "/"
	case base == "":
		base = "."
	}
	rest := strings.Join(parts[literal:], "/")

	root, err := pathres.ToAbsolute(filepath.FromSlash(base))
	if err != nil {
		return Result{}, err
	}

	g, err := glob.Compile(strings.TrimSuffix(root, "/")+"/"+rest, '/')
	if err != nil {
		return Result{}, fmt.Errorf("invalid glob %q: %w", pattern, err)
	}

	recursive := strings.Contains(rest, "/") || strings.Contains(rest, "**")
	paths, err := walk(root, recursive, g.Match)
	if err != nil {
		return Result{}, err
	}
	return Result{Root: root, Paths: paths}, nil
}

// walk lists regular files below root whose slash path satisfies match.
// Symlinks are followed to regular files only.
func walk(root string, recursive bool, match func(string) bool) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(filepath.FromSlash(root), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: %w", def.ErrIoFailure, err)
		}
		slashed := filepath.ToSlash(p)
		if d.IsDir() {
			if !recursive && slashed != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !match(slashed) {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(p)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
			resolved, err := pathres.ToAbsolute(p)
			if err != nil {
				return nil
			}
			paths = append(paths, resolved)
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, slashed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}
