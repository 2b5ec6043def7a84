// Package source provides the raw-byte-region adapters the pipeline driver
// consumes: an opened TPX3 capture (on local disk, object store, or as an
// in-memory byte slice via TileDB's VFS abstraction) and an optional
// transparent-decompression codec (spec.md §6's "two source shapes").
package source

import (
	"bytes"
	"encoding/binary"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// Stream is the minimal capability ReadAll needs from a byte source: a
// *tiledb.VFSfh (file or object-store handle) and a *bytes.Reader (an
// in-memory region) both implement it.
type Stream interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
}

// GenericStream wraps a VFS file handle, optionally slurping it fully into
// memory. A memory-mapped or object-store-backed capture is usually read
// in-memory once (inMem=true) so the batch locator and hit decoder can run
// over a plain []byte; a very large capture can instead be streamed
// directly off of handle (inMem=false) at the cost of per-seek I/O.
func GenericStream(handle *tiledb.VFSfh, size uint64, inMem bool) (Stream, error) {
	if !inMem {
		return handle, nil
	}

	buffer := make([]byte, size)
	if err := binary.Read(handle, binary.BigEndian, &buffer); err != nil {
		return nil, err
	}

	return bytes.NewReader(buffer), nil
}

// Tell reports the stream's current position.
func Tell(stream Stream) (int64, error) {
	return stream.Seek(0, 1)
}
