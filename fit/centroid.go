package fit

import "github.com/ornl-neutronimaging/tpx3reduce"

// Centroid fits a cluster by averaging hit positions, either unweighted or
// weighted by ToT, and scaling by SuperResolutionFactor to place the result
// on a finer sub-pixel grid (spec.md §4.7).
type Centroid struct {
	SuperResolutionFactor float64
	WeightedByToT         bool
}

// Fit implements Fitter. An empty cluster returns the zero Neutron, matching
// the reference decoder rather than panicking on a division by zero.
func (c *Centroid) Fit(hits []tpx3.Hit) tpx3.Neutron {
	if len(hits) == 0 {
		return tpx3.Neutron{}
	}

	var x, y, tof, tot float64

	if c.WeightedByToT {
		for _, h := range hits {
			w := float64(h.ToT)
			x += c.SuperResolutionFactor * float64(h.X) * w
			y += c.SuperResolutionFactor * float64(h.Y) * w
			tof += float64(h.TOF)
			tot += w
		}
		totInv := 1.0 / tot
		x *= totInv
		y *= totInv
	} else {
		for _, h := range hits {
			x += c.SuperResolutionFactor * float64(h.X)
			y += c.SuperResolutionFactor * float64(h.Y)
			tof += float64(h.TOF)
			tot += float64(h.ToT)
		}
		n := 1.0 / float64(len(hits))
		x *= n
		y *= n
	}

	tof /= float64(len(hits))

	return tpx3.Neutron{X: x, Y: y, TOF: tof, ToT: tot, NHits: len(hits)}
}
