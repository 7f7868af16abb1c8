package dmi

import (
	"fmt"
	"io"
)

// pngSignature is the 8-byte PNG magic every DMI file begins with.
var pngSignature = [8]byte{137, 80, 78, 71, 13, 10, 26, 10}

// RawDmi is an ordered decomposition of a PNG byte stream into the chunk
// slots a DMI file cares about (spec.md §3 "RawDmi container"). Loading a
// RawDmi and writing it back out reproduces the input byte-for-byte,
// provided no field was modified and OtherChunks order is preserved.
type RawDmi struct {
	header      [8]byte
	Ihdr        *genericChunk
	Ztxt        *genericChunk // optional in raw form, required for a valid DMI
	Plte        *genericChunk // optional
	OtherChunks []*genericChunk
	IdatChunks  []*genericChunk // ordered, non-empty
	Iend        *genericChunk
}

// IhdrWidth reads the image width out of an already-validated IHDR chunk
// (bytes 0..4, big-endian, spec.md §3).
func (d *RawDmi) IhdrWidth() uint32 {
	return byteOrder.Uint32(d.Ihdr.data[0:4])
}

// IhdrHeight reads the image height out of an already-validated IHDR chunk
// (bytes 4..8, big-endian, spec.md §3).
func (d *RawDmi) IhdrHeight() uint32 {
	return byteOrder.Uint32(d.Ihdr.data[4:8])
}

// LoadRawDmi performs a full load: it reads the entire stream, verifies the
// PNG signature, and walks every chunk in order, classifying each into its
// named slot (spec.md §4.5 "Full load").
func LoadRawDmi(r io.Reader) (*RawDmi, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapErr(KindIo, "reading dmi bytes", err)
	}
	return decodeRawDmi(buf)
}

func decodeRawDmi(buf []byte) (*RawDmi, error) {
	if len(buf) < 8 {
		return nil, newErr(KindTruncated, "buffer shorter than the 8-byte PNG signature")
	}

	var header [8]byte
	copy(header[:], buf[:8])
	if header != pngSignature {
		return nil, newErr(KindInvalidSignature, fmt.Sprintf("expected %v, found %v", pngSignature, header))
	}

	dmi := &RawDmi{header: header}
	idx := 8

chunks:
	for {
		if idx+12 > len(buf) {
			return nil, newErr(KindMissingIend, "buffer ended without an IEND chunk")
		}

		dataLength := int(byteOrder.Uint32(buf[idx : idx+4]))
		end := idx + 12 + dataLength
		if end > len(buf) || dataLength < 0 {
			return nil, newErr(KindTruncated, fmt.Sprintf("chunk at offset %d declares %d data bytes past the end of the buffer", idx, dataLength))
		}

		chunk, err := decodeGenericChunk(buf[idx:end])
		if err != nil {
			return nil, err
		}
		idx = end

		switch chunk.typeName() {
		case "IHDR":
			dmi.Ihdr = chunk
		case "zTXt":
			dmi.Ztxt = chunk
		case "PLTE":
			dmi.Plte = chunk
		case "IDAT":
			dmi.IdatChunks = append(dmi.IdatChunks, chunk)
		case "IEND":
			iend, err := asIend(chunk)
			if err != nil {
				return nil, err
			}
			dmi.Iend = iend
			break chunks
		default:
			dmi.OtherChunks = append(dmi.OtherChunks, chunk)
		}
	}

	if dmi.Ihdr == nil {
		return nil, newErr(KindMissingIhdr, "buffer ended without finding an IHDR chunk")
	}
	if len(dmi.Ihdr.data) != 13 {
		return nil, newErr(KindMissingIhdr, fmt.Sprintf("IHDR data is %d bytes, expected 13", len(dmi.Ihdr.data)))
	}
	if len(dmi.IdatChunks) == 0 {
		return nil, newErr(KindMissingIdat, "buffer ended without finding an IDAT chunk")
	}

	return dmi, nil
}

// LoadRawDmiMeta performs the metadata-only fast path: it reads just enough
// of r to recover {chunk_ihdr, chunk_ztxt}, seeking past everything else
// (spec.md §4.5 "Metadata-only load"). zTXt is required to appear before
// any IDAT; if it doesn't, a KindMissingZtxt error is returned rather than
// scanning the whole file.
func LoadRawDmiMeta(r io.Reader) (*RawDmi, error) {
	const prefetch = 500
	w, err := newMetaWindow(r, prefetch)
	if err != nil {
		return nil, err
	}

	sig, err := w.take(8)
	if err != nil {
		return nil, wrapErr(KindTruncated, "reading png signature", err)
	}
	var header [8]byte
	copy(header[:], sig)
	if header != pngSignature {
		return nil, newErr(KindInvalidSignature, fmt.Sprintf("expected %v, found %v", pngSignature, header))
	}

	ihdrHeader, err := w.take(8)
	if err != nil {
		return nil, wrapErr(KindMissingIhdr, "reading IHDR header", err)
	}
	ihdrLength := int(byteOrder.Uint32(ihdrHeader[0:4]))
	var ihdrType [4]byte
	copy(ihdrType[:], ihdrHeader[4:8])
	if string(ihdrType[:]) != "IHDR" || ihdrLength != 13 {
		return nil, newErr(KindMissingIhdr, fmt.Sprintf("first chunk is %q (%d bytes), expected IHDR with 13 bytes", ihdrType, ihdrLength))
	}
	ihdrRest, err := w.take(ihdrLength + 4)
	if err != nil {
		return nil, wrapErr(KindMissingIhdr, "reading IHDR data/crc", err)
	}
	ihdrBuf := make([]byte, 0, len(ihdrHeader)+len(ihdrRest))
	ihdrBuf = append(ihdrBuf, ihdrHeader...)
	ihdrBuf = append(ihdrBuf, ihdrRest...)
	ihdrChunk, err := decodeGenericChunk(ihdrBuf)
	if err != nil {
		return nil, err
	}

	for {
		chunkHeader, err := w.take(8)
		if err != nil {
			return nil, newErr(KindMissingZtxt, "no zTXt chunk found before the data stream ended")
		}
		length := int(byteOrder.Uint32(chunkHeader[0:4]))
		var chunkType [4]byte
		copy(chunkType[:], chunkHeader[4:8])
		name := string(chunkType[:])

		if name == "IDAT" || name == "IEND" {
			return nil, newErr(KindMissingZtxt, fmt.Sprintf("encountered %q before any zTXt chunk", name))
		}

		if name != "zTXt" {
			if err := w.skip(length + 4); err != nil {
				return nil, err
			}
			continue
		}

		rest, err := w.take(length + 4)
		if err != nil {
			return nil, wrapErr(KindTruncated, "reading zTXt data/crc", err)
		}
		buf := make([]byte, 0, len(chunkHeader)+len(rest))
		buf = append(buf, chunkHeader...)
		buf = append(buf, rest...)
		ztxtChunk, err := decodeGenericChunk(buf)
		if err != nil {
			return nil, err
		}

		return &RawDmi{header: header, Ihdr: ihdrChunk, Ztxt: ztxtChunk}, nil
	}
}

// Save emits the PNG signature followed by IHDR, zTXt (when includeZtxt is
// true and present), PLTE (when present), every OtherChunks entry in
// order, every IdatChunks entry in order, and finally IEND, per spec.md
// §4.5 "Save". It returns the number of bytes written.
func (d *RawDmi) Save(w io.Writer, includeZtxt bool) (int, error) {
	if err := writeAllChecked(w, d.header[:]); err != nil {
		return 0, err
	}
	total := len(d.header)

	if err := encodeGenericChunk(w, d.Ihdr); err != nil {
		return total, err
	}
	total += d.Ihdr.encodedSize()

	if includeZtxt && d.Ztxt != nil {
		if err := encodeGenericChunk(w, d.Ztxt); err != nil {
			return total, err
		}
		total += d.Ztxt.encodedSize()
	}

	if d.Plte != nil {
		if err := encodeGenericChunk(w, d.Plte); err != nil {
			return total, err
		}
		total += d.Plte.encodedSize()
	}

	for _, c := range d.OtherChunks {
		if err := encodeGenericChunk(w, c); err != nil {
			return total, err
		}
		total += c.encodedSize()
	}

	for _, c := range d.IdatChunks {
		if err := encodeGenericChunk(w, c); err != nil {
			return total, err
		}
		total += c.encodedSize()
	}

	iend := d.Iend
	if iend == nil {
		iend = newIendChunk()
	}
	if err := encodeGenericChunk(w, iend); err != nil {
		return total, err
	}
	total += iend.encodedSize()

	return total, nil
}

// OutputBufferSize returns the upper bound on the number of bytes Save
// would emit for the given includeZtxt setting, per spec.md §4.5's emission
// byte budget: 8 (signature) + 25 (IHDR) + 12 (IEND) + the encoded size of
// every other included chunk.
func (d *RawDmi) OutputBufferSize(includeZtxt bool) int {
	size := len(d.header) + d.Ihdr.encodedSize() + 12
	if includeZtxt && d.Ztxt != nil {
		size += d.Ztxt.encodedSize()
	}
	if d.Plte != nil {
		size += d.Plte.encodedSize()
	}
	for _, c := range d.OtherChunks {
		size += c.encodedSize()
	}
	for _, c := range d.IdatChunks {
		size += c.encodedSize()
	}
	return size
}
