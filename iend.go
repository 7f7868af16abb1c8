package dmi

import "fmt"

// iendType is the fixed-shape terminator chunk marking the end of a PNG
// datastream (spec.md §3 "IEND chunk"). Its CRC is constant because its
// type and (empty) data never vary.
var iendType = [4]byte{'I', 'E', 'N', 'D'}

const iendCrc uint32 = 0xAE426082

func newIendChunk() *genericChunk {
	return &genericChunk{
		dataLength: 0,
		chunkType:  iendType,
		data:       nil,
		crc:        iendCrc,
	}
}

// asIend validates that c is a well-formed IEND chunk: empty data, the
// fixed type, and the fixed CRC.
func asIend(c *genericChunk) (*genericChunk, error) {
	if c.chunkType != iendType {
		return nil, newErr(KindGeneric, fmt.Sprintf("expected IEND chunk, got %q", c.typeName()))
	}
	if len(c.data) != 0 {
		return nil, newErr(KindGeneric, "IEND chunk has non-empty data")
	}
	if c.crc != iendCrc {
		return nil, newErr(KindGeneric, "IEND chunk has an unexpected CRC")
	}
	return newIendChunk(), nil
}
