package dmi

import (
	"encoding/binary"
	"fmt"
	"io"
)

// byteOrder is the endianness every length/CRC field in a PNG chunk uses.
var byteOrder = binary.BigEndian

// genericChunk is the length/type/data/CRC framing shared by every PNG
// chunk (spec.md §3 "Chunk (generic)"). Its crc field always matches a
// freshly computed checksum over chunkType‖data; any mutation that changes
// data must go through setData so that invariant holds.
type genericChunk struct {
	dataLength uint32
	chunkType  [4]byte
	data       []byte
	crc        uint32
}

func isChunkTypeByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func newGenericChunk(chunkType [4]byte, data []byte) *genericChunk {
	c := &genericChunk{
		dataLength: uint32(len(data)),
		chunkType:  chunkType,
		data:       data,
	}
	c.crc = chunkCrc(c.chunkType, c.data)
	return c
}

// setData replaces a chunk's data and recomputes its CRC, preserving the
// crc-always-matches invariant from spec.md §3.
func (c *genericChunk) setData(data []byte) {
	c.data = data
	c.dataLength = uint32(len(data))
	c.crc = chunkCrc(c.chunkType, c.data)
}

func (c *genericChunk) typeName() string {
	return string(c.chunkType[:])
}

// decodeGenericChunk decodes exactly one chunk from buf, which must contain
// the full length+type+data+crc framing (no more, no less). It fails with
// KindTruncated if buf is under 12 bytes, KindInvalidChunkType if any
// chunkType byte falls outside A-Za-z, and KindCrcMismatch if the trailing
// CRC does not match a freshly computed checksum over chunkType‖data.
func decodeGenericChunk(buf []byte) (*genericChunk, error) {
	if len(buf) < 12 {
		return nil, newErr(KindTruncated, fmt.Sprintf("chunk buffer has %d bytes, minimum is 12", len(buf)))
	}

	dataLength := byteOrder.Uint32(buf[0:4])
	var chunkType [4]byte
	copy(chunkType[:], buf[4:8])

	for _, b := range chunkType {
		if !isChunkTypeByte(b) {
			return nil, newErr(KindInvalidChunkType, fmt.Sprintf("chunk type %q contains a byte outside A-Za-z", chunkType))
		}
	}

	expectedLen := 12 + int(dataLength)
	if len(buf) != expectedLen {
		return nil, newErr(KindTruncated, fmt.Sprintf("chunk %q declares data_length %d (total %d bytes) but buffer has %d bytes", chunkType, dataLength, expectedLen, len(buf)))
	}

	data := buf[8 : 8+dataLength]
	stated := byteOrder.Uint32(buf[8+dataLength : 12+dataLength])
	calculated := chunkCrc(chunkType, data)
	if stated != calculated {
		return nil, newErr(KindCrcMismatch, fmt.Sprintf("chunk %q: stated CRC %#08x does not match calculated %#08x", chunkType, stated, calculated))
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	return &genericChunk{
		dataLength: dataLength,
		chunkType:  chunkType,
		data:       dataCopy,
		crc:        stated,
	}, nil
}

// encodeGenericChunk writes data_length, chunk_type, data, and crc in order.
// Any short write is treated as fatal (KindShortWrite), matching the
// teacher's per-field write-count checks.
func encodeGenericChunk(w io.Writer, c *genericChunk) error {
	if err := writeAllChecked(w, u32Bytes(c.dataLength)); err != nil {
		return err
	}
	if err := writeAllChecked(w, c.chunkType[:]); err != nil {
		return err
	}
	if err := writeAllChecked(w, c.data); err != nil {
		return err
	}
	if err := writeAllChecked(w, u32Bytes(c.crc)); err != nil {
		return err
	}
	return nil
}

func u32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	byteOrder.PutUint32(b, v)
	return b
}

// writeAllChecked writes buf to w in full, returning a KindIo error for an
// underlying write failure and a KindShortWrite error if w.Write reports
// fewer bytes written than requested without an error.
func writeAllChecked(w io.Writer, buf []byte) error {
	n, err := w.Write(buf)
	if err != nil {
		return wrapErr(KindIo, "short write while encoding chunk", err)
	}
	if n < len(buf) {
		return newErr(KindShortWrite, fmt.Sprintf("wrote %d of %d bytes", n, len(buf)))
	}
	return nil
}

// encodedSize is the number of bytes encodeGenericChunk emits for c: 12 framing bytes
// plus its data, used by RawDmi.OutputBufferSize (spec.md §4.5).
func (c *genericChunk) encodedSize() int {
	return 12 + len(c.data)
}
