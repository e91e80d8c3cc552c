package metrics

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/dustin/go-humanize"
)

type Snapshot struct {
	DurationMs     int64
	Total          int64
	Processed      int64
	OK             int64
	Malformed      int64
	NotFound       int64
	InvalidSize    int64
	HashMismatches int64
	IoErrors       int64
	NotRelocatable int64
	BytesHashed    int64
	TotalBytes     int64
}

func (s *Stats) Snapshot() Snapshot {
	dur := s.Duration()

	return Snapshot{
		DurationMs:     dur.Milliseconds(),
		Total:          atomic.LoadInt64(&s.Total),
		Processed:      atomic.LoadInt64(&s.Processed),
		OK:             atomic.LoadInt64(&s.OK),
		Malformed:      atomic.LoadInt64(&s.Malformed),
		NotFound:       atomic.LoadInt64(&s.NotFound),
		InvalidSize:    atomic.LoadInt64(&s.InvalidSize),
		HashMismatches: atomic.LoadInt64(&s.HashMismatches),
		IoErrors:       atomic.LoadInt64(&s.IoErrors),
		NotRelocatable: atomic.LoadInt64(&s.NotRelocatable),
		BytesHashed:    atomic.LoadInt64(&s.BytesHashed),
		TotalBytes:     atomic.LoadInt64(&s.TotalBytes),
	}
}

func nonNegative(n int64) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}

// Print writes the run summary to w, normally stderr.
func Print(w io.Writer, s *Stats) {
	snap := s.Snapshot()

	fmt.Fprintln(w, "--- stats ---")
	fmt.Fprintln(w, "duration_ms:", snap.DurationMs)
	fmt.Fprintln(w, "total:", snap.Total)
	fmt.Fprintln(w, "processed:", snap.Processed)
	fmt.Fprintln(w, "ok:", snap.OK)
	fmt.Fprintln(w, "malformed:", snap.Malformed)
	fmt.Fprintln(w, "not_found:", snap.NotFound)
	fmt.Fprintln(w, "invalid_size:", snap.InvalidSize)
	fmt.Fprintln(w, "hash_mismatches:", snap.HashMismatches)
	fmt.Fprintln(w, "io_errors:", snap.IoErrors)
	fmt.Fprintln(w, "not_relocatable:", snap.NotRelocatable)
	fmt.Fprintln(w, "bytes_hashed:", humanize.IBytes(nonNegative(snap.BytesHashed)))
	fmt.Fprintln(w, "total_bytes:", humanize.IBytes(nonNegative(snap.TotalBytes)))

	if snap.DurationMs > 0 {
		secs := float64(snap.DurationMs) / 1000.0
		bps := float64(snap.BytesHashed) / secs
		fmt.Fprintf(w, "throughput: %s/s\n", humanize.IBytes(uint64(bps)))
	}
}
