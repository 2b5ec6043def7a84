package diagnostics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordAndSnapshot(t *testing.T) {
	s := New()

	s.RecordBatch(false)
	s.RecordBatch(true)
	s.RecordHit(false)
	s.RecordHit(true)
	s.RecordHit(true)
	s.RecordFit(false)
	s.RecordFit(true)

	snap := s.Snapshot()

	require.Equal(t, 2, snap.Batches)
	require.Equal(t, 1, snap.Truncated)
	require.Equal(t, 3, snap.Hits)
	require.Equal(t, 2, snap.BadTOFHits)
	require.Equal(t, 1, snap.Events)
	require.Equal(t, 1, snap.FailedFits)
	require.InDelta(t, 2.0/3.0, snap.BadHitFraction(), 1e-9)
}

func TestMergeCombinesCounters(t *testing.T) {
	total := New()
	a := New()
	b := New()

	a.RecordHit(false)
	a.RecordHit(true)
	b.RecordHit(true)

	total.Merge(a)
	total.Merge(b)

	snap := total.Snapshot()
	require.Equal(t, 3, snap.Hits)
	require.Equal(t, 2, snap.BadTOFHits)
}

func TestMergeCarriesChecksums(t *testing.T) {
	total := New()
	worker := New()

	sum := worker.BatchChecksum(40, []byte("payload"))
	total.Merge(worker)

	got, ok := total.ChecksumFor(40)
	require.True(t, ok, "expected worker's checksum to survive Merge")
	require.Equal(t, sum, got)
}

func TestBatchChecksumIsRecordedPerOffset(t *testing.T) {
	s := New()

	sum := s.BatchChecksum(0, []byte("hello"))
	got, ok := s.ChecksumFor(0)
	require.True(t, ok, "expected a checksum recorded at offset 0")
	require.Equal(t, sum, got)

	_, ok = s.ChecksumFor(1234)
	require.False(t, ok, "unexpected checksum recorded at offset 1234")
}

func TestStatsIsSafeForConcurrentRecording(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordHit(false)
		}()
	}
	wg.Wait()

	require.Equal(t, 100, s.Snapshot().Hits)
}

func TestBadHitFractionWithNoHits(t *testing.T) {
	s := New()
	require.Zero(t, s.Snapshot().BadHitFraction())
}
