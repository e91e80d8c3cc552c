package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	def "hush/definitions"
)

const maxLineLen = 1 << 20

// Reader streams the non-blank lines of a manifest.
type Reader struct {
	sc     *bufio.Scanner
	closer io.Closer
	no     int
	err    error
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineLen)
	return &Reader{sc: sc}
}

// Open opens the manifest at path. Close must be called when done.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: manifest %s", def.ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", def.ErrIoFailure, err)
	}
	r := NewReader(f)
	r.closer = f
	return r, nil
}

// Next returns the next non-blank line. It returns false at end of input or
// on a read error, see Err.
func (r *Reader) Next() (Line, bool) {
	for r.sc.Scan() {
		r.no++
		text := r.sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		return Line{No: r.no, Text: text}, true
	}
	if err := r.sc.Err(); err != nil {
		r.err = fmt.Errorf("%w: read manifest line %d: %w", def.ErrIoFailure, r.no+1, err)
	}
	return Line{}, false
}

func (r *Reader) Err() error { return r.err }

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Load reads every non-blank line of the manifest at path.
func Load(path string) ([]Line, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()

	lines := []Line{}
	for {
		l, ok := r.Next()
		if !ok {
			break
		}
		lines = append(lines, l)
	}
	return lines, r.Err()
}
