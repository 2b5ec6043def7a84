// Package pipeline orchestrates the decode -> cluster -> fit stages (C8)
// across a raw TPX3 byte region: a sequential batch-locate-and-seed pass,
// followed by an embarrassingly-parallel per-batch decode/cluster/fit pass.
package pipeline

import (
	"runtime"
	"sync"

	"github.com/alitto/pond"

	"github.com/ornl-neutronimaging/tpx3reduce/cluster"
	"github.com/ornl-neutronimaging/tpx3reduce/decode"
	"github.com/ornl-neutronimaging/tpx3reduce/diagnostics"
	"github.com/ornl-neutronimaging/tpx3reduce/fit"

	"github.com/ornl-neutronimaging/tpx3reduce"
)

// Result is the outcome of running the pipeline over one raw region.
type Result struct {
	Events []tpx3.Neutron
	Stats  diagnostics.Snapshot
	// Diagnostics is the full run-wide accumulator, including the per-batch
	// checksums BatchChecksum/ChecksumFor expose; Stats above is the cheap
	// immutable copy of just its counters. Excluded from JSON output (it
	// duplicates Stats and carries an internal mutex) — callers that want
	// the checksums use it directly, in-process.
	Diagnostics *diagnostics.Stats `json:"-"`
	// Consumed is the byte offset, relative to the start of the region, just
	// past the last word the batch locator fully inspected (spec.md §4.3).
	Consumed int
}

// Driver runs the full C3->C4->C5->C6->C7 pipeline over a raw byte region.
type Driver struct {
	cfg Config
}

// New constructs a Driver from cfg, validating it first.
func New(cfg Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Driver{cfg: cfg}, nil
}

// Run executes the pipeline over raw, starting the batch scan at offset.
func (d *Driver) Run(raw []byte, offset int) (Result, error) {
	batches, consumed := decode.Scan(raw, offset)

	// Stage 2: sequential timestamp seeding (spec.md §4.8 step 2). Batch k's
	// seeded state is the state after sweeping batches 0..k-1; this cannot
	// be parallelized.
	state := decode.State{}
	stats := diagnostics.New()
	for i := range batches {
		b := &batches[i]
		b.TDCStart = state.TDC
		b.GDCStart = state.GDC
		b.TimerLSB32Start = state.TimerLSB32

		before := int64(len(raw))
		state.Sweep(raw, b.ByteOffset, b.PacketCount)
		truncated := b.ByteOffset+8+int64(b.PacketCount*8) > before
		stats.RecordBatch(truncated)
	}

	// Stage 3: embarrassingly parallel per-batch decode/cluster/fit.
	var (
		mu     sync.Mutex
		events []tpx3.Neutron
	)

	process := func(b decode.Batch) {
		localStats := diagnostics.New()
		localEvents := d.processBatch(raw, b, localStats)

		stats.Merge(localStats)

		mu.Lock()
		events = append(events, localEvents...)
		mu.Unlock()
	}

	if d.cfg.Workers <= 0 {
		for _, b := range batches {
			process(b)
		}
	} else {
		n := d.cfg.Workers
		if n <= 0 {
			n = runtime.NumCPU()
		}
		pool := pond.New(n, 0, pond.MinWorkers(n))
		for _, b := range batches {
			batch := b
			pool.Submit(func() {
				process(batch)
			})
		}
		pool.StopAndWait()
	}

	return Result{
		Events:      events,
		Stats:       stats.Snapshot(),
		Diagnostics: stats,
		Consumed:    consumed,
	}, nil
}

// processBatch runs C5->C6->C7 over one already-seeded batch descriptor.
func (d *Driver) processBatch(raw []byte, b decode.Batch, stats *diagnostics.Stats) []tpx3.Neutron {
	state := decode.State{TDC: b.TDCStart, GDC: b.GDCStart, TimerLSB32: b.TimerLSB32Start}

	pos := int(b.ByteOffset) + 8
	hits := make([]tpx3.Hit, 0, b.PacketCount)

	for i := 0; i < b.PacketCount; i++ {
		if pos+8 > len(raw) {
			break
		}

		packet := raw[pos : pos+8]
		pos += 8

		// Only pixel-data packets produce hits; DecodeHit is harmless to
		// call on a TDC/GDC packet's bytes (it simply won't be invoked for
		// those here) because Sweep already classified the stream and we
		// re-derive the tag the same way it did.
		if packet[7]&0xF0 != 0xB0 {
			continue
		}

		h := decode.DecodeHit(packet, state, b.ChipID)
		bad := h.BadTOF(d.cfg.PulseRateHz)
		stats.RecordHit(bad)
		hits = append(hits, h)
	}

	stats.BatchChecksum(b.ByteOffset, raw[int(b.ByteOffset)+8:pos])

	engine := cluster.New(d.cfg.clusterConfig())
	groups := engine.Fit(hits)

	fitter, err := fit.New(d.cfg.PeakFitter, d.cfg.SuperResolutionFactor, d.cfg.WeightedByToT)
	if err != nil {
		// Validate already rejected an unknown PeakFitter at construction;
		// this can only happen if cfg was mutated after New.
		return nil
	}

	events := make([]tpx3.Neutron, 0, len(groups))
	for _, g := range groups {
		clusterHits := make([]tpx3.Hit, len(g))
		for i, idx := range g {
			clusterHits[i] = hits[idx]
		}

		n := fitter.Fit(clusterHits)
		stats.RecordFit(n.FitFailed())
		if n.FitFailed() {
			continue
		}
		events = append(events, n)
	}

	return events
}
