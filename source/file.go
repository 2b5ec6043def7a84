package source

import (
	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// File is an opened TPX3 capture backed by TileDB's VFS: a local file, an
// object-store URI, or anything else a tiledb.Config points at. It embeds
// Stream so it can be read directly (see ReadAll).
type File struct {
	URI      string
	FileSize uint64

	config *tiledb.Config
	ctx    *tiledb.Context
	vfs    *tiledb.VFS
	handle *tiledb.VFSfh

	Stream
}

// Open opens uri for streamed reading. When configURI is empty, a default
// TileDB config is used. inMem controls whether the capture is slurped
// fully into memory (see GenericStream) or streamed from the VFS handle.
func Open(uri, configURI string, inMem bool) (*File, error) {
	f := &File{URI: uri}

	var (
		cfg *tiledb.Config
		err error
	)
	if configURI == "" {
		cfg, err = tiledb.NewConfig()
	} else {
		cfg, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return nil, err
	}
	f.config = cfg

	ctx, err := tiledb.NewContext(cfg)
	if err != nil {
		return nil, err
	}
	f.ctx = ctx

	vfs, err := tiledb.NewVFS(ctx, cfg)
	if err != nil {
		return nil, err
	}
	f.vfs = vfs

	handle, err := vfs.Open(uri, tiledb.TILEDB_VFS_READ)
	if err != nil {
		return nil, err
	}
	f.handle = handle

	size, err := vfs.FileSize(uri)
	if err != nil {
		return nil, err
	}
	f.FileSize = size

	stream, err := GenericStream(handle, size, inMem)
	if err != nil {
		return nil, err
	}
	f.Stream = stream

	return f, nil
}

// Close releases the underlying TileDB VFS resources. Safe to call once;
// not safe to call concurrently with a Read/Seek in flight.
func (f *File) Close() error {
	if f.handle != nil {
		if err := f.handle.Close(); err != nil {
			return err
		}
	}
	f.vfs.Free()
	f.ctx.Free()
	f.config.Free()
	return nil
}

// ReadAll reads the entire capture into memory, applying codec if the
// capture is compressed on disk (codec may be NoOp).
func ReadAll(f *File, codec Codec) ([]byte, error) {
	raw := make([]byte, f.FileSize)
	if _, err := f.Stream.Read(raw); err != nil {
		return nil, err
	}

	return codec.Decompress(raw)
}
