package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ornl-neutronimaging/tpx3reduce"
)

func hitAt(x, y int, spiderTimeTicks uint64) tpx3.Hit {
	return tpx3.Hit{X: x, Y: y, SpiderTime: spiderTimeTicks}
}

func TestFitSeedsAndAdmitsASingleCluster(t *testing.T) {
	cfg := DefaultConfig()
	e := New(cfg)

	hits := []tpx3.Hit{
		hitAt(10, 10, 0),
		hitAt(11, 10, 1),
		hitAt(10, 11, 1),
	}

	groups := e.Fit(hits)

	require.Len(t, groups, 1)
	require.Len(t, groups[0], 3)
}

func TestFitSeparatesClustersBeyondRadius(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Radius = 2
	e := New(cfg)

	hits := []tpx3.Hit{
		hitAt(0, 0, 0),
		hitAt(1, 0, 0),
		hitAt(100, 100, 0),
		hitAt(101, 100, 0),
	}

	groups := e.Fit(hits)

	require.Len(t, groups, 2)
}

func TestFitSplitsOnTimeWindow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpiderTimeRangeNs = 10 // ns, so ticks beyond this (in T40 units) separate

	e := New(cfg)

	// 1000 ticks * 25ns/tick = 25000ns, far beyond the 10ns window.
	hits := []tpx3.Hit{
		hitAt(5, 5, 0),
		hitAt(5, 5, 1000),
	}

	groups := e.Fit(hits)

	require.Len(t, groups, 2, "time window should have split them")
}

func TestFitEvictsSmallestAnchorWhenPoolFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumSlots = 2
	cfg.Radius = 0
	cfg.SpiderTimeRangeNs = 1 << 62 // effectively unlimited, force bbox-only separation

	e := New(cfg)

	// Seed both slots, far apart spatially so neither admits the third hit.
	// The third hit must evict one slot; since both anchors are distinct,
	// the smaller one (slot 0, anchor 0) should be evicted.
	hits := []tpx3.Hit{
		hitAt(0, 0, 0),        // seeds slot 0, anchor 0
		hitAt(500, 500, 1000), // seeds slot 1, anchor 25_000ns
		hitAt(900, 900, 2000), // evicts slot 0 (smallest anchor)
	}

	groups := e.Fit(hits)
	labels := e.Labels()

	require.NotEqual(t, labels[0], labels[2], "hit 0's slot should have been evicted by hit 2")
	require.Equal(t, labels[2], e.slots[0].label, "slot 0 (smallest anchor) should now carry hit 2's label")
	require.NotEmpty(t, groups, "expected at least one surviving group")
}

func TestFitIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()

	hits := []tpx3.Hit{
		hitAt(1, 1, 0),
		hitAt(2, 2, 1),
		hitAt(50, 50, 2),
	}

	e1 := New(cfg)
	g1 := e1.Fit(hits)
	l1 := append([]int(nil), e1.Labels()...)

	e2 := New(cfg)
	g2 := e2.Fit(hits)
	l2 := e2.Labels()

	require.Len(t, g2, len(g1))
	require.Equal(t, l1, l2)
}

func TestMinClusterSizeDropsSingletons(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinClusterSize = 2
	cfg.Radius = 0
	cfg.SpiderTimeRangeNs = 0

	e := New(cfg)
	hits := []tpx3.Hit{
		hitAt(0, 0, 0),
		hitAt(500, 500, 0),
	}

	groups := e.Fit(hits)
	require.Empty(t, groups, "both are singletons")
}

func TestAbs64(t *testing.T) {
	require.EqualValues(t, 5, abs64(-5))
	require.EqualValues(t, 5, abs64(5))
	require.Zero(t, math.Abs(float64(abs64(0))))
}
