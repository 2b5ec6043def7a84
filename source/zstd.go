package source

// ZstdCodec compresses/decompresses with Zstandard, for archival captures
// that were compacted before being written to object storage or transported
// off of the acquisition host.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}
