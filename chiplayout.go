package tpx3

// ChipID identifies one sub-chip (quadrant) in the 2x2 quad arrangement.
type ChipID uint8

const (
	Chip0 ChipID = 0
	Chip1 ChipID = 1
	Chip2 ChipID = 2
	Chip3 ChipID = 3
)

// quadSpan is the local sub-chip's pixel span (256x256). It is not
// referenced by the remap below, which inlines the constants the way the
// original decoder does.
const quadSpan = 256

// MapToQuad remaps a decoder-local (xLocal, yLocal) pixel pair, as read off
// one sub-chip, into the quad's shared 517x517 global frame. Pure function;
// chipID outside {0,1,2,3} returns the input unchanged (chip 3's identity
// mapping), matching the original decoder which only special-cases 0, 1, 2.
func MapToQuad(xLocal, yLocal int, chipID ChipID) (x, y int) {
	switch chipID {
	case Chip0:
		return xLocal + 260, yLocal
	case Chip1:
		return 255 - xLocal + 260, 255 - yLocal + 260
	case Chip2:
		return 255 - xLocal, 255 - yLocal + 260
	default: // Chip3
		return xLocal, yLocal
	}
}
