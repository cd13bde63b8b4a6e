package dynamic

import (
	"github.com/golang/snappy"

	"github.com/urlofmar/cradle-sub001/internal/cerr"
)

// Compress returns a snappy-compressed copy of b (spec §6 "blobs may be
// transparently compressed for storage/transfer"; substitutes for the
// source's LZ4 framing — no LZ4 library exists anywhere in the retrieved
// example pack, so snappy is the grounded substitute, see DESIGN.md).
func Compress(b []byte) []byte {
	return snappy.Encode(nil, b)
}

// Decompress reverses Compress. Testable property 7: Decompress(Compress(b))
// == b for arbitrary b.
func Decompress(b []byte) ([]byte, error) {
	out, err := snappy.Decode(nil, b)
	if err != nil {
		return nil, cerr.Wrap(cerr.CompressionError, err, "decompressing snappy blob")
	}
	return out, nil
}
