package tpx3

// Neutron is one recovered neutron event: a sub-pixel centroid position,
// time-of-flight, summed charge, and the size of the cluster it was fitted
// from. It is owned by whatever called the peak fitter; nothing downstream
// mutates it.
type Neutron struct {
	X, Y  float64
	TOF   float64
	ToT   float64
	NHits int
}

var _ PositionTOF = Neutron{}

// XNs returns the sub-pixel X coordinate.
func (n Neutron) XNs() float64 { return n.X }

// YNs returns the sub-pixel Y coordinate.
func (n Neutron) YNs() float64 { return n.Y }

// TOFNs returns the time-of-flight in nanoseconds. A Neutron's TOF field
// itself is kept in the same 25 ns tick units as Hit.TOF (spec.md §3: "tof
// (double, 25 ns units)"), just widened to float64 so the fitters can
// average across a cluster without truncation; TOFNs applies the T40
// conversion on read, same as Hit.
func (n Neutron) TOFNs() float64 { return n.TOF * T40 }

// FitFailed reports whether this event represents a failed fit. By
// convention a negative X or Y coordinate is the sentinel for "drop this
// event" (spec.md's fast-Gaussian fitter returns Neutron{-1,-1,...} when it
// can't fit a cluster).
func (n Neutron) FitFailed() bool {
	return n.X < 0 || n.Y < 0
}
