// Package diagnostics accumulates the per-run statistics the pipeline
// driver reports alongside its decoded events: bad-TOF and truncated-batch
// counts (spec.md §7's error taxonomy), and a per-batch checksum useful for
// spotting a worker that silently decoded a corrupt region twice.
package diagnostics

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Stats accumulates diagnostics across an entire run. Construct with New;
// Stats is safe for concurrent Record/Merge calls from multiple pipeline
// workers, but reading its exported counter fields directly (bypassing
// Snapshot) is not.
type Stats struct {
	mu sync.Mutex

	Batches    int
	Truncated  int
	Hits       int
	BadTOFHits int
	Events     int
	FailedFits int

	batchChecksum map[int64]uint64
}

// Snapshot is an immutable copy of Stats safe to read without locking.
type Snapshot struct {
	Batches    int
	Truncated  int
	Hits       int
	BadTOFHits int
	Events     int
	FailedFits int
}

// BadHitFraction returns the fraction of hits flagged BadTOF, 0 if no hits
// were decoded.
func (s Snapshot) BadHitFraction() float64 {
	if s.Hits == 0 {
		return 0
	}
	return float64(s.BadTOFHits) / float64(s.Hits)
}

// New returns an empty Stats ready for concurrent use.
func New() *Stats {
	return &Stats{batchChecksum: make(map[int64]uint64)}
}

// BatchChecksum computes the xxHash64 checksum of one batch's raw payload
// bytes (not including the "TPX3" header itself) and records it against the
// batch's byte offset, so a rerun against the same capture can be verified
// to have decoded byte-identical regions.
func (s *Stats) BatchChecksum(byteOffset int64, payload []byte) uint64 {
	sum := xxhash.Sum64(payload)

	s.mu.Lock()
	s.batchChecksum[byteOffset] = sum
	s.mu.Unlock()

	return sum
}

// ChecksumFor returns the checksum recorded for a batch at byteOffset, and
// whether one was recorded at all.
func (s *Stats) ChecksumFor(byteOffset int64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.batchChecksum[byteOffset]
	return v, ok
}

// RecordBatch increments the batch counter, and the truncated counter if
// truncated is true.
func (s *Stats) RecordBatch(truncated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Batches++
	if truncated {
		s.Truncated++
	}
}

// RecordHit increments the hit counter, and the bad-TOF counter if badTOF
// is true.
func (s *Stats) RecordHit(badTOF bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Hits++
	if badTOF {
		s.BadTOFHits++
	}
}

// RecordFit increments the event counter, or the failed-fit counter if the
// fitter returned its failure sentinel.
func (s *Stats) RecordFit(failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if failed {
		s.FailedFits++
		return
	}
	s.Events++
}

// Merge folds other's counters and recorded checksums into s. Used to
// combine a worker-local Stats into the run-wide accumulator without
// holding a lock for the worker's entire batch.
func (s *Stats) Merge(other *Stats) {
	other.mu.Lock()
	snap := Snapshot{
		Batches:    other.Batches,
		Truncated:  other.Truncated,
		Hits:       other.Hits,
		BadTOFHits: other.BadTOFHits,
		Events:     other.Events,
		FailedFits: other.FailedFits,
	}
	checksums := make(map[int64]uint64, len(other.batchChecksum))
	for k, v := range other.batchChecksum {
		checksums[k] = v
	}
	other.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Batches += snap.Batches
	s.Truncated += snap.Truncated
	s.Hits += snap.Hits
	s.BadTOFHits += snap.BadTOFHits
	s.Events += snap.Events
	s.FailedFits += snap.FailedFits
	for k, v := range checksums {
		s.batchChecksum[k] = v
	}
}

// Snapshot returns an immutable copy of the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Batches:    s.Batches,
		Truncated:  s.Truncated,
		Hits:       s.Hits,
		BadTOFHits: s.BadTOFHits,
		Events:     s.Events,
		FailedFits: s.FailedFits,
	}
}
