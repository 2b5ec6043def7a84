package decode

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ornl-neutronimaging/tpx3reduce"
)

// packetS1 is spec's worked example: word = 0x0807060504030201, against
// tdc = 8_411_155, gdc = 2_000, chip_id = 0. Expected: spidertime = 8_411_156,
// tof = 1, x = 388, y = 56.
func packetS1() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, 0x0807060504030201)
	return buf
}

func TestDecodeHitS1(t *testing.T) {
	state := State{TDC: 8_411_155, GDC: 2_000}

	h := DecodeHit(packetS1(), state, tpx3.Chip0)

	require.Equal(t, 388, h.X)
	require.Equal(t, 56, h.Y)
	require.EqualValues(t, 8_411_156, h.SpiderTime)
	require.Equal(t, 210_278_900.0, h.SpiderTimeNs())
	require.EqualValues(t, 1, h.TOF)
	require.Equal(t, 25.0, h.TOFNs())
}

func TestLiftSpiderTimeRollover(t *testing.T) {
	// gdc's low 30 bits (100) larger than spiderTime32 (0) forces an msb18
	// carry: msb18 goes from 1 to 2.
	gdc := uint64(1)<<30 | 100
	got := liftSpiderTime(0, gdc)
	require.Equal(t, uint64(2)<<30, got)
}

func TestResolveTOFRollover(t *testing.T) {
	// spiderTime48 < tdc triggers the one-pulse-period wraparound.
	tof := resolveTOF(10, 20)
	want := int64(10) - 20 + onePulsePeriodTicks
	require.Equal(t, want, tof)
}
