// Package fit implements the two peak-fitting strategies that turn a
// cluster of hits into a single Neutron event (spec.md §4.7): a ToT-weighted
// centroid, and a fast-Gaussian least-squares fit.
package fit

import (
	"fmt"

	"github.com/ornl-neutronimaging/tpx3reduce"
)

// Fitter turns one cluster of hits (already grouped by the ABS engine) into
// a Neutron. Implementations must not mutate hits.
type Fitter interface {
	Fit(hits []tpx3.Hit) tpx3.Neutron
}

// Name identifies a configured Fitter (spec.md §6's peak_fitter setting).
type Name string

const (
	NameCentroid     Name = "centroid"
	NameFastGaussian Name = "fast_gaussian"
)

// New constructs the Fitter named by name with the given super-resolution
// factor, mirroring the reference decoder's factory of peak-fitting
// strategies (spec.md §9 design note: a tagged variant in place of the
// original class hierarchy). An unrecognized name is a configuration error
// the caller should surface at startup, not per-batch.
func New(name Name, superResolutionFactor float64, weightedByToT bool) (Fitter, error) {
	switch name {
	case NameCentroid:
		return &Centroid{SuperResolutionFactor: superResolutionFactor, WeightedByToT: weightedByToT}, nil
	case NameFastGaussian:
		return &FastGaussian{SuperResolutionFactor: superResolutionFactor}, nil
	default:
		return nil, fmt.Errorf("fit: unknown peak fitter %q", name)
	}
}

var (
	_ Fitter = (*Centroid)(nil)
	_ Fitter = (*FastGaussian)(nil)
)
