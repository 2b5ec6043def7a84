package decode

import (
	"github.com/ornl-neutronimaging/tpx3reduce"
)

// onePulsePeriodTicks is one 60 Hz pulse period (16.667 ms), in T40 (25 ns)
// ticks: 16.667ms / 25ns = 666_667 ticks.
//
// spec.md §9 flags that an older copy of the decoder used 16_666_667 here
// (off by a factor of 25, i.e. it used nanoseconds where it meant ticks).
// The correct constant, confirmed against the reference decoder
// (original_source/.../tpx3_fast.cpp), is 666_667; that is the only value
// used below.
const onePulsePeriodTicks = 666_667

// tofUnwrapTicks is the 2^30 correction spec.md §4.5 applies when a
// resolved TOF still exceeds one pulse period after the rollover
// correction above — a residual 30-bit anomaly in spidertime.
const tofUnwrapTicks = 1 << 30

// DecodeHit converts one 8-byte pixel-data packet into a tpx3.Hit,
// resolving its spider time against the decoder state captured at the
// packet's batch (spec.md §4.5). state is read, never mutated — pixel
// packets do not affect the TDC/GDC state machine.
func DecodeHit(packet []byte, state State, chipID tpx3.ChipID) tpx3.Hit {
	word := littleEndian64(packet)

	spiderTime16 := uint32(word & 0xFFFF)
	ftoa := uint8(word>>16) & 0xF
	tot := uint16(word>>20) & 0x3FF
	toa := uint16(word>>30) & 0x3FFF
	pixaddr := uint16(word>>44) & 0xFFFF

	dcol := (pixaddr & 0xFE00) >> 8
	spix := (pixaddr & 0x1F8) >> 1
	pix := pixaddr & 0x7

	xLocal := int(dcol) + int(pix>>2)
	yLocal := int(spix) + int(pix&0x3)
	x, y := tpx3.MapToQuad(xLocal, yLocal, chipID)

	spiderTime32 := uint32(spiderTime16)<<14 | uint32(toa)

	spiderTime48 := liftSpiderTime(spiderTime32, state.GDC)

	tof := resolveTOF(spiderTime48, state.TDC)

	return tpx3.Hit{
		X:          x,
		Y:          y,
		ToT:        tot,
		ToA:        toa,
		FToA:       ftoa,
		TOF:        tof,
		SpiderTime: spiderTime48,
	}
}

// liftSpiderTime lifts a 32-bit spider time to the 48-bit absolute frame,
// anchored against the current GDC (spec.md §4.5).
func liftSpiderTime(spiderTime32 uint32, gdc uint64) uint64 {
	lsb30 := uint32(gdc & 0x3FFFFFFF)
	msb18 := uint32((gdc >> 30) & 0x3FFFF)

	if spiderTime32 < lsb30 {
		msb18++
	}

	return (uint64(msb18)<<30)&0xFFFFC0000000 | uint64(spiderTime32)
}

// resolveTOF computes time-of-flight against the last TDC, wrapping to one
// pulse period and unwrapping the residual 30-bit anomaly (spec.md §4.5).
// The intermediate arithmetic is carried in a signed accumulator so that
// the rollover and unwrap corrections, which can each legitimately push
// the value negative before the next correction brings it back in range,
// behave the same as the reference decoder's unsigned-wraparound C++
// arithmetic for in-range inputs, without risking an actual Go integer
// overflow panic on pathological ones.
func resolveTOF(spiderTime48, tdc uint64) int64 {
	tof := int64(spiderTime48) - int64(tdc)
	if tof < 0 {
		tof += onePulsePeriodTicks
	}

	if tof > onePulsePeriodTicks {
		tof -= tofUnwrapTicks
	}

	return tof
}
