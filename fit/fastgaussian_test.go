package fit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ornl-neutronimaging/tpx3reduce"
)

func TestFastGaussianFailsBelowMinHits(t *testing.T) {
	// spec.md testable property 7: fewer than 8 hits -> failure sentinel.
	g := &FastGaussian{SuperResolutionFactor: 1}

	hits := make([]tpx3.Hit, 7)
	n := g.Fit(hits)

	require.True(t, n.FitFailed())
	require.Equal(t, -1.0, n.X)
	require.Equal(t, -1.0, n.Y)
}

func TestFastGaussianFitsASyntheticGaussianPeak(t *testing.T) {
	g := &FastGaussian{SuperResolutionFactor: 1}

	// A small symmetric ring of hits around (50, 50), with ToT peaking at
	// the center hit. The four arm hits carry distinct ToTs so the median
	// (550) leaves four hits above it: the center and three arms, enough
	// for the 4-parameter fit.
	hits := []tpx3.Hit{
		{X: 50, Y: 50, ToT: 800},
		{X: 48, Y: 50, ToT: 700},
		{X: 52, Y: 50, ToT: 650},
		{X: 50, Y: 48, ToT: 600},
		{X: 50, Y: 52, ToT: 550},
		{X: 49, Y: 49, ToT: 200},
		{X: 51, Y: 51, ToT: 200},
		{X: 49, Y: 51, ToT: 200},
		{X: 51, Y: 49, ToT: 200},
	}

	n := g.Fit(hits)

	require.False(t, n.FitFailed())
	require.Equal(t, len(hits), n.NHits, "pre-filter count")
}

func TestMedian(t *testing.T) {
	require.Equal(t, 2.0, median([]float64{1, 2, 3}))
	require.Equal(t, 2.5, median([]float64{1, 2, 3, 4}))
}

func TestNewFitterFactory(t *testing.T) {
	_, err := New(NameCentroid, 1, true)
	require.NoError(t, err)

	_, err = New(NameFastGaussian, 1, true)
	require.NoError(t, err)

	_, err = New("bogus", 1, true)
	require.Error(t, err)
}
