package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

type SnapshotFn func() (processed, total, ok, errc, bytesHashed int64)

// Bar renders hashed-byte progress on the diagnostic stream. AddBytes may be
// called from any goroutine; a nil *Bar ignores all calls.
type Bar struct {
	bar  *progressbar.ProgressBar
	ch   chan int64
	done chan struct{}
	stop chan struct{}
	tick chan struct{}

	verb   string
	snap   SnapshotFn
	lastB  int64
	lastAt time.Time
}

func New(w io.Writer, verb string, totalBytes int64, snap SnapshotFn) *Bar {
	b := &Bar{
		ch:     make(chan int64, 16384),
		done:   make(chan struct{}),
		stop:   make(chan struct{}),
		tick:   make(chan struct{}),
		verb:   verb,
		snap:   snap,
		lastAt: time.Now(),
	}

	b.bar = progressbar.NewOptions64(
		totalBytes,
		progressbar.OptionSetWriter(w),
		progressbar.OptionUseANSICodes(isTerminal(w)),
		progressbar.OptionSetDescription(verb),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(120*time.Millisecond),
	)

	_ = b.bar.RenderBlank()
	go func() {
		defer close(b.done)
		for n := range b.ch {
			_ = b.bar.Add64(n)
		}
		_ = b.bar.Finish()
	}()

	go func() {
		defer close(b.tick)
		t := time.NewTicker(1 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				b.updateDescription()
			case <-b.stop:
				return
			}
		}
	}()

	return b
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (b *Bar) AddBytes(n int64) {
	if b == nil || n <= 0 {
		return
	}
	b.ch <- n
}

func (b *Bar) Close() {
	if b == nil {
		return
	}
	close(b.stop)
	<-b.tick
	close(b.ch)
	<-b.done
}

func (b *Bar) updateDescription() {
	if b.snap == nil {
		return
	}
	processed, total, ok, errc, bytesHashed := b.snap()

	now := time.Now()
	dt := now.Sub(b.lastAt).Seconds()

	mbps := 0.0
	if dt > 0 {
		dBytes := bytesHashed - b.lastB
		mbps = (float64(dBytes) / 1_000_000.0) / dt
	}

	b.lastB = bytesHashed
	b.lastAt = now

	desc := fmt.Sprintf("%s %d/%d files | ok=%d err=%d | %.1f MB/s",
		b.verb, processed, total, ok, errc, mbps,
	)
	b.bar.Describe(desc)
}
