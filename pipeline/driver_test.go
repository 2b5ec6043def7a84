package pipeline

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ornl-neutronimaging/tpx3reduce/fit"
)

func TestConfigValidateRejectsUnknownFitter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PeakFitter = "bogus"

	require.Error(t, cfg.Validate())
}

func TestConfigValidateRejectsZeroSlots(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ABSNumSlots = 0

	require.Error(t, cfg.Validate())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PeakFitter = fit.Name("nope")

	_, err := New(cfg)
	require.Error(t, err)
}

// header8 builds one 8-byte TPX3 batch header.
func header8(chipID byte, packetCount int) []byte {
	length := packetCount * 8
	return []byte{'T', 'P', 'X', '3', chipID, 0, byte(length & 0xFF), byte(length >> 8)}
}

// pixelPacket returns a packet tagged as pixel-data (high nibble of byte 7
// is 0xB), with the same low seven bytes as spec.md's S1 worked example so
// the bit-extraction arithmetic is exercised end to end through the driver.
// Byte 7 differs from S1's, so the pixel address (and x) differ too.
func pixelPacket() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, 0xB007060504030201)
	return buf
}

func buildSingleBatchCapture(packetCount int) []byte {
	raw := header8(0, packetCount)
	for i := 0; i < packetCount; i++ {
		raw = append(raw, pixelPacket()...)
	}
	return raw
}

func TestRunSingleThreadedProducesOneClusterFromIdenticalHits(t *testing.T) {
	raw := buildSingleBatchCapture(3)

	cfg := DefaultConfig()
	cfg.Workers = 0
	d, err := New(cfg)
	require.NoError(t, err)

	result, err := d.Run(raw, 0)
	require.NoError(t, err)

	require.Equal(t, 3, result.Stats.Hits)
	require.Len(t, result.Events, 1, "all three hits are identical, one cluster")
	require.Equal(t, 3, result.Events[0].NHits)
}

func TestRunParallelMatchesSingleThreaded(t *testing.T) {
	// Three independent batches, each an identical single-hit-repeated-3x
	// capture, so the parallel and single-threaded paths should agree on
	// totals even though batch processing order is not guaranteed.
	var raw []byte
	for i := 0; i < 3; i++ {
		raw = append(raw, buildSingleBatchCapture(3)...)
	}

	cfgSeq := DefaultConfig()
	cfgSeq.Workers = 0
	dSeq, err := New(cfgSeq)
	require.NoError(t, err)
	seq, err := dSeq.Run(raw, 0)
	require.NoError(t, err)

	cfgPar := DefaultConfig()
	cfgPar.Workers = 4
	dPar, err := New(cfgPar)
	require.NoError(t, err)
	par, err := dPar.Run(raw, 0)
	require.NoError(t, err)

	require.Equal(t, seq.Stats.Hits, par.Stats.Hits)
	require.Len(t, par.Events, len(seq.Events))
	require.Equal(t, 3, seq.Stats.Batches)
	require.Equal(t, 3, par.Stats.Batches)
}

func TestRunReportsTruncatedBatch(t *testing.T) {
	raw := header8(0, 5) // claims 5 packets but the capture only has 2
	raw = append(raw, pixelPacket()...)
	raw = append(raw, pixelPacket()...)

	cfg := DefaultConfig()
	d, err := New(cfg)
	require.NoError(t, err)

	result, err := d.Run(raw, 0)
	require.NoError(t, err)
	require.Equal(t, 1, result.Stats.Truncated)
}
