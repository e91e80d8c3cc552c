// Package split cuts a file into numbered parts and joins them back.
//
// Parts are written as <dest>/<base>_<n>, n counting from zero, each with a
// <part>.sha256.txt sidecar holding the part's hex digest.
package split

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	def "hush/definitions"
	"hush/internal/hasher"
)

const SidecarSuffix = ".sha256.txt"

type Options struct {
	PartSize   int64
	BufferSize int
	Logger     *slog.Logger
}

type Part struct {
	Index  int
	Path   string
	Size   int64
	Digest string
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func (o Options) buffer() []byte {
	if o.BufferSize <= 0 {
		return make([]byte, hasher.DefaultBufferSize)
	}
	return make([]byte, o.BufferSize)
}

func ioErr(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", def.ErrFileNotFound, err)
	}
	return fmt.Errorf("%w: %w", def.ErrIoFailure, err)
}

// Split copies file into PartSize pieces under destDir, creating it when
// missing. The last part may be shorter; an empty file yields no parts.
func Split(file, destDir string, opts Options) ([]Part, error) {
	if opts.PartSize <= 0 {
		return nil, fmt.Errorf("part size must be > 0, got %d", opts.PartSize)
	}
	log := opts.logger()

	in, err := os.Open(file) // #nosec G304
	if err != nil {
		return nil, ioErr(err)
	}
	defer in.Close()

	if _, err := os.Stat(destDir); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return nil, ioErr(err)
		}
		log.Info("created directory", "dir", destDir)
	}

	base := filepath.Base(file)
	buf := opts.buffer()
	var parts []Part
	for i := 0; ; i++ {
		p, err := writePart(in, filepath.Join(destDir, base+"_"+strconv.Itoa(i)), opts.PartSize, buf)
		if err != nil {
			return parts, err
		}
		if p.Size == 0 {
			return parts, nil
		}
		p.Index = i
		parts = append(parts, p)
		log.Debug("part written", "path", p.Path, "size", p.Size, "digest", p.Digest)
		if p.Size < opts.PartSize {
			return parts, nil
		}
	}
}

// writePart copies up to n bytes from r into name. Nothing is left on disk
// when r is already exhausted.
func writePart(r io.Reader, name string, n int64, buf []byte) (Part, error) {
	lr := io.LimitReader(r, n)
	first, err := io.ReadAtLeast(lr, buf[:1], 1)
	if errors.Is(err, io.EOF) {
		return Part{Path: name}, nil
	}
	if err != nil {
		return Part{}, ioErr(err)
	}

	out, err := os.Create(name) // #nosec G304
	if err != nil {
		return Part{}, ioErr(err)
	}
	h := sha256.New()
	w := io.MultiWriter(out, h)
	if _, err := w.Write(buf[:first]); err != nil {
		_ = out.Close()
		return Part{}, ioErr(err)
	}
	copied, err := io.CopyBuffer(w, lr, buf)
	if err != nil {
		_ = out.Close()
		return Part{}, ioErr(err)
	}
	if err := out.Close(); err != nil {
		return Part{}, ioErr(err)
	}

	digest := hex.EncodeToString(h.Sum(nil))
	if err := os.WriteFile(name+SidecarSuffix, []byte(digest), 0o644); err != nil { // #nosec G306
		return Part{}, ioErr(err)
	}
	return Part{Path: name, Size: int64(first) + copied, Digest: digest}, nil
}

// Parts lists the part files in dir ordered by numeric suffix. Sidecars and
// names without a numeric _<n> suffix are skipped.
func Parts(dir string) ([]Part, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ioErr(err)
	}

	var parts []Part
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || strings.HasSuffix(name, SidecarSuffix) {
			continue
		}
		i := strings.LastIndexByte(name, '_')
		if i < 0 {
			continue
		}
		n, err := strconv.Atoi(name[i+1:])
		if err != nil || n < 0 {
			continue
		}
		parts = append(parts, Part{Index: n, Path: filepath.Join(dir, name)})
	}
	slices.SortFunc(parts, func(a, b Part) int { return cmp.Compare(a.Index, b.Index) })
	return parts, nil
}

// Rebuild concatenates the parts found in dir into file. Sidecar digests
// are not checked.
func Rebuild(dir, file string, opts Options) (int64, error) {
	parts, err := Parts(dir)
	if err != nil {
		return 0, err
	}
	if len(parts) == 0 {
		return 0, fmt.Errorf("%w: no parts in %s", def.ErrFileNotFound, dir)
	}
	log := opts.logger()

	out, err := os.Create(file) // #nosec G304
	if err != nil {
		return 0, ioErr(err)
	}

	buf := opts.buffer()
	var total int64
	for _, p := range parts {
		n, err := appendPart(out, p.Path, buf)
		total += n
		if err != nil {
			_ = out.Close()
			return total, err
		}
		log.Debug("part appended", "path", p.Path, "size", n)
	}
	if err := out.Close(); err != nil {
		return total, ioErr(err)
	}
	return total, nil
}

func appendPart(w io.Writer, path string, buf []byte) (int64, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return 0, ioErr(err)
	}
	defer f.Close()

	n, err := io.CopyBuffer(w, f, buf)
	if err != nil {
		return n, ioErr(err)
	}
	return n, nil
}
