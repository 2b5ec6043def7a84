//go:build nobuild

package source

import (
	"github.com/valyala/gozstd"
)

// Compress compresses the input data using Zstandard compression via cgo.
// Excluded from normal builds (see the nobuild tag): the pure-Go path in
// zstd_pure.go is what actually ships, to avoid requiring a C toolchain on
// every build target a detector back-end might run on.
func (ZstdCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.CompressLevel(nil, data, 3), nil
}

func (ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return gozstd.Decompress(nil, data)
}
