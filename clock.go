// Package tpx3 defines the immutable value types produced by the Timepix3
// reduction pipeline: pixel hits recovered from the raw packet stream, and
// the neutron events clustered and fitted from them.
package tpx3

// Clock constants for the two on-chip oscillators. Every raw time field in
// the packet stream is an integer tick count in one of these two units;
// converting to nanoseconds is just a multiply.
const (
	// T40 is the period, in nanoseconds, of the 40 MHz pixel clock. Spider
	// time, TDC, and GDC timestamps, and time-of-flight, are all counted in
	// this unit.
	T40 float64 = 25.0
	// T640 is the period, in nanoseconds, of the 640 MHz fine-timing clock
	// used for fToA.
	T640 float64 = 25.0 / 16.0
)

// PositionTOF is the common capability shared by Hit and Neutron so that a
// downstream image binner can consume either uniformly without caring
// whether it is looking at a raw pixel firing or a fitted neutron event.
type PositionTOF interface {
	XNs() float64
	YNs() float64
	TOFNs() float64
}
