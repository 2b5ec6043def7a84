package tpx3

// Hit is one pixel firing, decoded from a single 8-byte Timepix3 data
// packet. A Hit is immutable once constructed and is owned by the batch
// that produced it; it is never mutated after decode and is discarded with
// its containing batch.
type Hit struct {
	// X, Y are the pixel coordinates in the 517x517 quad frame (0..516),
	// after the chip-layout remap.
	X, Y int
	// ToT is the 10-bit time-over-threshold, in units of T40 (25 ns).
	ToT uint16
	// ToA is the 14-bit coarse time-of-arrival, in units of T40.
	ToA uint16
	// FToA is the 4-bit fine time-of-arrival, in units of T640 (25/16 ns).
	FToA uint8
	// TOF is the time-of-flight against the most recent TDC, in units of
	// T40, wrapped to one pulse period. Stored as a signed value: the
	// decoder's 2^30 unwrap correction can leave a negative tick count, and
	// TOFNs carries the same sign.
	TOF int64
	// SpiderTime is the 48-bit absolute spider time, in units of T40.
	SpiderTime uint64
}

var _ PositionTOF = Hit{}

// XNs returns the X pixel coordinate as a float64; it carries no physical
// time unit but implements PositionTOF so a Hit and a Neutron can be binned
// uniformly.
func (h Hit) XNs() float64 { return float64(h.X) }

// YNs returns the Y pixel coordinate as a float64.
func (h Hit) YNs() float64 { return float64(h.Y) }

// TOFNs returns the time-of-flight in nanoseconds.
func (h Hit) TOFNs() float64 { return float64(h.TOF) * T40 }

// ToTNs returns the time-over-threshold in nanoseconds.
func (h Hit) ToTNs() float64 { return float64(h.ToT) * T40 }

// ToANs returns the coarse time-of-arrival in nanoseconds.
func (h Hit) ToANs() float64 { return float64(h.ToA) * T40 }

// FToANs returns the fine time-of-arrival in nanoseconds.
func (h Hit) FToANs() float64 { return float64(h.FToA) * T640 }

// SpiderTimeNs returns the absolute spider time in nanoseconds.
func (h Hit) SpiderTimeNs() float64 { return float64(h.SpiderTime) * T40 }

// BadTOF reports whether this hit's time-of-flight exceeds one pulse
// period at the given pulse rate, i.e. it did not resolve to a sane
// single-pulse TOF. A pulseRateHz of 0 disables the check (always false),
// matching the "off by default" behavior of the pulse_rate_hz config key.
func (h Hit) BadTOF(pulseRateHz float64) bool {
	if pulseRateHz <= 0 {
		return false
	}
	periodMs := 1000.0 / pulseRateHz
	tofMs := h.TOFNs() / 1e6
	return tofMs > periodMs
}
