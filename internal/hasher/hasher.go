package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"fortio.org/safecast"

	def "hush/definitions"
)

const DefaultBufferSize = 1 << 20 // 1 MiB

func openErr(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", def.ErrFileNotFound, path)
	}
	return fmt.Errorf("%w: %w", def.ErrIoFailure, err)
}

// progressFlusher batches progress notifications so callers are not
// called once per buffer.
type progressFlusher struct {
	fn      func(n int64)
	pending int64
}

func (p *progressFlusher) add(n int64) {
	p.pending += n
	if p.pending >= DefaultBufferSize {
		p.flush()
	}
}

func (p *progressFlusher) flush() {
	if p.pending > 0 && p.fn != nil {
		p.fn(p.pending)
	}
	p.pending = 0
}

// FileHashHex returns the lowercase hex SHA-256 of the whole file, read in
// chunks of bufSize bytes.
func FileHashHex(path string, bufSize int, onProgress func(n int64)) (string, error) {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return "", openErr(path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	buf := make([]byte, bufSize)
	progress := progressFlusher{fn: onProgress}

	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			progress.add(int64(n))
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return "", fmt.Errorf("%w: read %s: %w", def.ErrIoFailure, path, rerr)
		}
	}
	progress.flush()

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashBlock seeks r to b.Start and hashes exactly b.Len() bytes using buf as
// the read buffer. The returned block carries the digest.
func HashBlock(r io.ReadSeeker, b def.Block, buf []byte, onProgress func(n int64)) (def.Block, error) {
	if len(buf) == 0 {
		buf = make([]byte, DefaultBufferSize)
	}
	if b.End < b.Start {
		return b, fmt.Errorf("invalid block %d: start=%d end=%d", b.Index, b.Start, b.End)
	}

	start, err := safecast.Conv[int64](b.Start)
	if err != nil {
		return b, fmt.Errorf("%w: block %d offset: %w", def.ErrIoFailure, b.Index, err)
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return b, fmt.Errorf("%w: seek block %d: %w", def.ErrIoFailure, b.Index, err)
	}

	h := sha256.New()
	progress := progressFlusher{fn: onProgress}
	remain := b.Len()

	for remain > 0 {
		toRead := min(uint64(len(buf)), remain)
		n, rerr := r.Read(buf[:toRead])
		if n > 0 {
			h.Write(buf[:n])
			remain -= uint64(n)
			progress.add(int64(n))
		}
		if remain == 0 {
			break
		}
		if rerr == io.EOF {
			return b, fmt.Errorf("%w: block %d: unexpected EOF, %d bytes short", def.ErrIoFailure, b.Index, remain)
		}
		if rerr != nil {
			return b, fmt.Errorf("%w: read block %d: %w", def.ErrIoFailure, b.Index, rerr)
		}
	}
	progress.flush()

	b.Digest = hex.EncodeToString(h.Sum(nil))
	return b, nil
}
