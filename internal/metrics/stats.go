package metrics

import (
	"sync/atomic"
	"time"

	def "hush/definitions"
)

type Stats struct {
	TotalBytes int64

	Total          int64
	Processed      int64
	OK             int64
	Malformed      int64
	NotFound       int64
	InvalidSize    int64
	HashMismatches int64
	IoErrors       int64
	NotRelocatable int64

	BytesHashed int64
	Started     time.Time
	Finished    time.Time
}

func (s *Stats) Start() { s.Started = time.Now() }
func (s *Stats) Stop()  { s.Finished = time.Now() }
func (s *Stats) Duration() time.Duration {
	if s.Finished.IsZero() {
		return time.Since(s.Started)
	}
	return s.Finished.Sub(s.Started)
}

// AddBytes is an engine progress callback.
func (s *Stats) AddBytes(n int64) { atomic.AddInt64(&s.BytesHashed, n) }

// Record counts one processed item by outcome.
func (s *Stats) Record(kind def.Kind) {
	atomic.AddInt64(&s.Processed, 1)
	switch kind {
	case def.KindNone:
		atomic.AddInt64(&s.OK, 1)
	case def.KindManifestMalformed:
		atomic.AddInt64(&s.Malformed, 1)
	case def.KindFileNotFound:
		atomic.AddInt64(&s.NotFound, 1)
	case def.KindInvalidSizeLiteral:
		atomic.AddInt64(&s.InvalidSize, 1)
	case def.KindDigestMismatch:
		atomic.AddInt64(&s.HashMismatches, 1)
	case def.KindPathNotRelocatable:
		atomic.AddInt64(&s.NotRelocatable, 1)
	default:
		atomic.AddInt64(&s.IoErrors, 1)
	}
}

// Errors is the number of processed items that did not succeed.
func (s *Stats) Errors() int64 {
	return atomic.LoadInt64(&s.Processed) - atomic.LoadInt64(&s.OK)
}
