package manifest

import (
	"bufio"
	"io"

	def "hush/definitions"
)

// Writer emits manifest lines. It is not safe for concurrent use; the
// pipeline collector is its only caller.
type Writer struct {
	w *bufio.Writer
	n int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) Write(e def.ManifestEntry) error {
	if _, err := w.w.WriteString(Encode(e)); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.n++
	return nil
}

// Lines reports how many entries have been written.
func (w *Writer) Lines() int { return w.n }

func (w *Writer) Flush() error { return w.w.Flush() }
