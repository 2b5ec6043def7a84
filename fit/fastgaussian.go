package fit

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ornl-neutronimaging/tpx3reduce"
)

// minHitsForFit is the minimum cluster size the fast-Gaussian fitter will
// attempt. Below it, FastGaussian's median-and-filter step would throw away
// more points than the 4-parameter fit below can usefully absorb.
const minHitsForFit = 8

// FastGaussian fits a cluster's charge distribution with a linearized
// Gaussian: it throws away the (ToT-median-subtracted) lower half of the
// cluster, then solves a least-squares problem for the peak center with
// gonum's Householder QR (mat.QR, which does no column pivoting), on the theory that a 2D Gaussian's log is a paraboloid
// (spec.md §4.7). It needs more hits than Centroid to be reliable and
// signals failure with a negative X/Y rather than an error, matching the
// reference decoder's sentinel convention (see Neutron.FitFailed).
type FastGaussian struct {
	SuperResolutionFactor float64
}

// Fit implements Fitter. Clusters smaller than minHitsForFit return
// Neutron{X: -1, Y: -1}; NHits still reports the pre-filter cluster size,
// not the post-filter one, matching the reference decoder.
func (g *FastGaussian) Fit(hits []tpx3.Hit) tpx3.Neutron {
	if len(hits) < minHitsForFit {
		return tpx3.Neutron{X: -1, Y: -1}
	}

	x := make([]float64, len(hits))
	y := make([]float64, len(hits))
	tofTicks := make([]float64, len(hits))
	tot := make([]float64, len(hits))

	for i, h := range hits {
		x[i] = g.SuperResolutionFactor * float64(h.X)
		y[i] = g.SuperResolutionFactor * float64(h.Y)
		tofTicks[i] = float64(h.TOF)
		tot[i] = float64(h.ToT)
	}

	medianToT := median(tot)

	var xf, yf, toff, totf []float64
	for i := range tot {
		t := tot[i] - medianToT
		if t > 0 {
			xf = append(xf, x[i])
			yf = append(yf, y[i])
			toff = append(toff, tofTicks[i])
			totf = append(totf, t)
		}
	}

	n := len(xf)
	if n < 4 {
		return tpx3.Neutron{X: -1, Y: -1}
	}

	b := mat.NewVecDense(n, nil)
	a := mat.NewDense(n, 4, nil)
	for i := 0; i < n; i++ {
		b.SetVec(i, xf[i]*xf[i]+yf[i]*yf[i])
		a.Set(i, 0, xf[i])
		a.Set(i, 1, yf[i])
		a.Set(i, 2, math.Log(totf[i]))
		a.Set(i, 3, 1.0)
	}

	var qr mat.QR
	qr.Factorize(a)

	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, b); err != nil {
		return tpx3.Neutron{X: -1, Y: -1}
	}

	xEvent := sol.At(0, 0) / 2.0
	yEvent := sol.At(1, 0) / 2.0

	var tofSum, totSum float64
	for i := range toff {
		tofSum += toff[i]
		totSum += totf[i]
	}

	return tpx3.Neutron{
		X:     xEvent,
		Y:     yEvent,
		TOF:   tofSum / float64(len(toff)),
		ToT:   totSum,
		NHits: len(hits),
	}
}

// median returns the median of data. It sorts a copy; data is not modified.
func median(data []float64) float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
