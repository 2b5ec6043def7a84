// Package decode implements the stateful Timepix3 packet decoder: locating
// packet batches in a raw byte region (the batch locator), reassembling
// 48-bit global timestamps across batches (the timestamp reconstructor),
// and turning individual pixel packets into tpx3.Hit values (the hit
// decoder).
package decode

import (
	"github.com/ornl-neutronimaging/tpx3reduce"
)

// batchWordSize is the fixed stride the locator walks the raw region in:
// every packet, header or data, is 8 bytes.
const batchWordSize = 8

// Batch describes one sub-chip packet batch located in the raw byte
// region. ByteOffset points at the batch header (the "TPX3" word); the
// batch's PacketCount data packets immediately follow it.
//
// TDCStart, GDCStart, and TimerLSB32Start are populated by Sweep (the
// timestamp reconstructor) and capture the decoder state as of this
// batch's start, so that DecodeHit can re-enter the decoder on this batch
// alone, independent of any other batch — this is what makes stage 3 of
// the pipeline driver (spec.md C8) embarrassingly parallel per batch.
type Batch struct {
	ByteOffset  int64
	PacketCount int
	ChipID      tpx3.ChipID

	TDCStart        uint64
	GDCStart        uint64
	TimerLSB32Start uint32
}

// Byte offsets within a batch header word: the "TPX" tag length, the chip
// id byte, and the payload length field (little-endian uint16, packet
// count = length/8).
const (
	headerTagLen   = 3 // "TPX"
	headerChipByte = 4
	headerLenLo    = 6
	headerLenHi    = 7
)

// Scan walks raw in fixed 8-byte strides starting at offset, looking for
// "TPX3" batch headers (spec.md §4.3 / §6). It returns the batches found,
// in stream order, and consumed: the byte offset, relative to the start of
// raw, just past the last word the scan fully inspected. A final truncated header
// (fewer than 8 bytes remaining) ends the scan cleanly rather than erroring
// — the caller can resume later from consumed if more bytes arrive.
//
// Scan does not walk into a batch's payload: each stride after a header is
// the immediately following 8-byte word, not the first word past the
// payload. This mirrors the reference decoder, which treats the raw region
// as a flat sequence of 8-byte slots and classifies each one independently;
// a header slot is simply one whose first three bytes happen to spell TPX.
func Scan(raw []byte, offset int) ([]Batch, int) {
	var batches []Batch

	pos := offset
	consumed := offset

	for len(raw)-pos >= batchWordSize {
		word := raw[pos : pos+batchWordSize]

		if word[0] == 'T' && word[1] == 'P' && word[2] == 'X' {
			length := int(word[headerLenHi])<<8 | int(word[headerLenLo])
			batches = append(batches, Batch{
				ByteOffset:  int64(pos),
				PacketCount: length / batchWordSize,
				ChipID:      tpx3.ChipID(word[headerChipByte]),
			})
		}

		consumed = pos + batchWordSize
		pos += batchWordSize
	}

	return batches, consumed
}
