package dmi

import "hash/crc32"

// ieeeTable is the CRC-32/ISO-HDLC table PNG chunks checksum against:
// polynomial 0xEDB88320, initial register 0xFFFFFFFF, final XOR 0xFFFFFFFF.
// This is the exact algorithm spec.md §4.1 describes by hand; hash/crc32's
// IEEE table is the same construction, so it is used directly rather than
// reimplemented bit-by-bit.
var ieeeTable = crc32.MakeTable(crc32.IEEE)

// chunkCrc computes the CRC-32 a chunk's trailing checksum field must equal:
// crc(chunkType ‖ data).
func chunkCrc(chunkType [4]byte, data []byte) uint32 {
	h := crc32.New(ieeeTable)
	h.Write(chunkType[:])
	h.Write(data)
	return h.Sum32()
}
