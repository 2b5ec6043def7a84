package source

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// CompressionType names how a TPX3 capture is stored at rest. Most captures
// are raw; the compressed variants exist for archival transport.
type CompressionType uint8

const (
	CompressionNone CompressionType = iota
	CompressionZstd
	CompressionLZ4
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Codec compresses and decompresses a whole capture. The pipeline only ever
// decompresses; Compress exists for completeness and for round-trip tests.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// NewCodec constructs the Codec for the given CompressionType.
func NewCodec(t CompressionType) (Codec, error) {
	switch t {
	case CompressionNone:
		return NoOpCodec{}, nil
	case CompressionZstd:
		return ZstdCodec{}, nil
	case CompressionLZ4:
		return LZ4Codec{}, nil
	default:
		return nil, errors.New("source: unsupported compression type")
	}
}

// NoOpCodec passes data through unchanged.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

func (NoOpCodec) Compress(data []byte) ([]byte, error)   { return data, nil }
func (NoOpCodec) Decompress(data []byte) ([]byte, error) { return data, nil }

// lz4CompressorPool pools lz4.Compressor instances: it carries internal
// state that benefits from reuse across captures.
var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

// LZ4Codec compresses/decompresses with LZ4, the faster/lighter of the two
// supported at-rest formats.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

func (LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses data, growing its scratch buffer until it's large
// enough to hold the full capture (the decompressed size isn't stored
// alongside an LZ4 block, unlike zstd's frame format).
func (LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bufSize := len(data) * 4
	const maxSize = 1 << 30 // 1GB safety limit; captures run tens of MB

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}
			return nil, err
		}
		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}
