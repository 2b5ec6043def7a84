// Package cluster implements the Adaptive Box Search (ABS) online
// clustering algorithm: a single-pass labeler over a fixed, small pool of
// active cluster slots (spec.md §4.6).
package cluster

import (
	"github.com/samber/lo"

	"github.com/ornl-neutronimaging/tpx3reduce"
)

// DefaultSlots is the default size of the active-cluster pool.
const DefaultSlots = 8

// slot is one active cluster: a bounding box, the spidertime of the hit
// that seeded it, a monotonic label, and the hit count admitted so far.
//
// Per spec.md §9's open question, the anchor time is set once, at slot
// seed/eviction, and is never updated on admission — only the bounding box
// grows. A long-lived slot whose cluster is slowly drifting can therefore
// admit hits whose spidertime is far from the anchor but close to the most
// recently admitted hit; this is preserved exactly, not "fixed", since
// nothing in the reference decoder or spec.md calls it a bug.
type slot struct {
	xMin, xMax, yMin, yMax int
	anchor                 int64
	label                  int
	size                   int
}

func (s *slot) seed(h tpx3.Hit, label int) {
	s.xMin, s.xMax = h.X, h.X
	s.yMin, s.yMax = h.Y, h.Y
	s.anchor = int64(h.SpiderTimeNs())
	s.label = label
	s.size = 1
}

func (s *slot) admits(h tpx3.Hit, radius int, timeWindow int64) bool {
	if s.size == 0 {
		return false
	}
	if abs64(int64(h.SpiderTimeNs())-s.anchor) > timeWindow {
		return false
	}
	return h.X >= s.xMin-radius && h.X <= s.xMax+radius &&
		h.Y >= s.yMin-radius && h.Y <= s.yMax+radius
}

func (s *slot) admit(h tpx3.Hit) {
	s.size++
	s.xMin = min(s.xMin, h.X)
	s.xMax = max(s.xMax, h.X)
	s.yMin = min(s.yMin, h.Y)
	s.yMax = max(s.yMax, h.Y)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Config holds the ABS tuning parameters (spec.md §6): feather radius in
// pixels, the time window in nanoseconds, the minimum surviving cluster
// size, and the pool size.
type Config struct {
	Radius            int
	MinClusterSize    int
	SpiderTimeRangeNs int64
	NumSlots          int
}

// DefaultConfig returns the ABS defaults from spec.md §6.
func DefaultConfig() Config {
	return Config{
		Radius:            5,
		MinClusterSize:    1,
		SpiderTimeRangeNs: 75,
		NumSlots:          DefaultSlots,
	}
}

// Engine is one instance of the ABS clusterer. It owns a fixed-size pool
// of slots (stack-allocatable: a plain slice backing array sized once at
// construction, never grown) and is not safe for concurrent use — the
// pipeline driver gives each worker its own Engine (spec.md §5).
type Engine struct {
	cfg    Config
	slots  []slot
	labels []int
}

// New constructs an Engine with the given configuration. A zero-value
// Config is not valid; callers should start from DefaultConfig.
func New(cfg Config) *Engine {
	if cfg.NumSlots <= 0 {
		cfg.NumSlots = DefaultSlots
	}
	return &Engine{
		cfg:   cfg,
		slots: make([]slot, cfg.NumSlots),
	}
}

// Reset clears the engine's slot pool so it can be reused for the next
// batch without reallocating.
func (e *Engine) Reset() {
	for i := range e.slots {
		e.slots[i] = slot{}
	}
	e.labels = e.labels[:0]
}

// Labels returns the per-hit cluster label assigned by the most recent
// Fit call. A label of -1 never appears in practice: every hit is admitted
// to some slot (seeded, admitted, or evicted-and-reseeded); ABS has no
// concept of permanent noise, only of eviction.
func (e *Engine) Labels() []int {
	return e.labels
}

// Fit labels every hit in hits by running the ABS admission rule
// (spec.md §4.6) over the fixed slot pool, then returns the surviving
// cluster groups (label -> hit indices, in hit order) after dropping
// groups smaller than MinClusterSize.
//
// Fit is deterministic: for a fixed hit sequence and fixed Config, the
// labeling and the surviving groups are the same on every call.
func (e *Engine) Fit(hits []tpx3.Hit) [][]int {
	e.Reset()
	e.labels = make([]int, len(hits))

	maxLabel := len(e.slots)

	for i, h := range hits {
		label := -1

		admitted := false
		for s := range e.slots {
			if e.slots[s].admits(h, e.cfg.Radius, e.cfg.SpiderTimeRangeNs) {
				e.slots[s].admit(h)
				label = e.slots[s].label
				admitted = true
				break
			}
		}

		if !admitted {
			for s := range e.slots {
				if e.slots[s].size == 0 {
					e.slots[s].seed(h, s)
					label = e.slots[s].label
					admitted = true
					break
				}
			}
		}

		if !admitted {
			evict := e.smallestAnchor()
			e.slots[evict].seed(h, maxLabel)
			label = maxLabel
			maxLabel++
		}

		e.labels[i] = label
	}

	return e.groups(maxLabel)
}

// smallestAnchor returns the index of the occupied slot with the smallest
// anchor time, breaking ties by the smallest slot index (spec.md §4.6 /
// testable property 5). Every slot is occupied by the time eviction is
// reached — Fit only calls smallestAnchor once no slot has size == 0.
func (e *Engine) smallestAnchor() int {
	best := 0
	for s := 1; s < len(e.slots); s++ {
		if e.slots[s].anchor < e.slots[best].anchor {
			best = s
		}
	}
	return best
}

// groups builds, per label, the list of hit indices sharing that label
// (spec.md §9's clusterIndices_ sizing: maxLabel+1 slots, since a label
// may reach beyond the original pool size after evictions), then drops
// groups below the configured minimum size.
func (e *Engine) groups(maxLabel int) [][]int {
	// Sized maxLabel+1, not maxLabel: the reference decoder's
	// clusterIndices_ carries the same one-past-the-end slack (spec.md
	// §9), since maxLabel here is already "next free label" by the time
	// Fit's loop finishes. The trailing slot is always empty and is
	// dropped by the MinClusterSize filter below.
	byLabel := make([][]int, maxLabel+1)
	for i, label := range e.labels {
		byLabel[label] = append(byLabel[label], i)
	}

	return lo.Filter(byLabel, func(g []int, _ int) bool {
		return len(g) >= e.cfg.MinClusterSize
	})
}
