package dmi

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

var ztxtType = [4]byte{'z', 'T', 'X', 't'}

// defaultKeyword is the zTXt keyword this library writes on save. Readers
// accept any keyword (spec.md §3 "zTXt chunk" invariant).
const defaultKeyword = "Description"

const zlibCompressionMethod = 0

// ztxtData is the sub-structure carried in a zTXt chunk's data field:
// keyword, a NUL separator, a one-byte compression method, and the
// compressed payload (spec.md §3).
type ztxtData struct {
	keyword           []byte
	compressionMethod byte
	compressedText    []byte
}

// decodeZtxtData splits a zTXt chunk's raw data at the first NUL into
// keyword and remainder, peels the compression-method byte, and keeps the
// rest as the compressed payload. If strict is true, a non-zero compression
// method is rejected (spec.md §9: the original implementation accepts any
// value on read, which this library treats as a latent bug guarded behind
// strict mode).
func decodeZtxtData(data []byte, strict bool) (*ztxtData, error) {
	sep := bytes.IndexByte(data, 0)
	if sep < 0 {
		return nil, newErr(KindManifestSyntax, "zTXt data has no NUL separator after the keyword")
	}
	keyword := data[:sep]
	if len(keyword) < 1 || len(keyword) > 79 {
		return nil, newErr(KindManifestSyntax, fmt.Sprintf("zTXt keyword length %d outside 1..=79", len(keyword)))
	}
	rest := data[sep+1:]
	if len(rest) < 1 {
		return nil, newErr(KindTruncated, "zTXt data ends before a compression method byte")
	}
	method := rest[0]
	if strict && method != zlibCompressionMethod {
		return nil, newErr(KindUnsupportedCompression, fmt.Sprintf("zTXt compression method %d is not 0 (zlib-DEFLATE)", method))
	}

	keywordCopy := make([]byte, len(keyword))
	copy(keywordCopy, keyword)
	compressed := make([]byte, len(rest)-1)
	copy(compressed, rest[1:])

	return &ztxtData{
		keyword:           keywordCopy,
		compressionMethod: method,
		compressedText:    compressed,
	}, nil
}

// encode serializes keyword ‖ 0x00 ‖ compressionMethod ‖ compressedText.
func (d *ztxtData) encode() []byte {
	out := make([]byte, 0, len(d.keyword)+2+len(d.compressedText))
	out = append(out, d.keyword...)
	out = append(out, 0)
	out = append(out, d.compressionMethod)
	out = append(out, d.compressedText...)
	return out
}

// inflate decompresses compressedText via zlib (RFC 1950) into the plain
// manifest bytes.
func (d *ztxtData) inflate() ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(d.compressedText))
	if err != nil {
		return nil, wrapErr(KindInflate, "failed to open zlib stream", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, wrapErr(KindInflate, "failed to inflate zTXt payload", err)
	}
	return out, nil
}

// deflateZtxt compresses plaintext via zlib for storage in a fresh zTXt
// chunk's compressed_text field.
func deflateZtxt(plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(plaintext); err != nil {
		return nil, wrapErr(KindDeflate, "failed to write to zlib stream", err)
	}
	if err := w.Close(); err != nil {
		return nil, wrapErr(KindDeflate, "failed to close zlib stream", err)
	}
	return buf.Bytes(), nil
}

// decodeZtxtChunk converts an already length/CRC-validated generic chunk of
// type zTXt into its structured form.
func decodeZtxtChunk(c *genericChunk, strict bool) (*genericChunk, *ztxtData, error) {
	if c.typeName() != string(ztxtType[:]) {
		return nil, nil, newErr(KindGeneric, fmt.Sprintf("expected zTXt chunk, got %q", c.typeName()))
	}
	data, err := decodeZtxtData(c.data, strict)
	if err != nil {
		return nil, nil, err
	}
	return c, data, nil
}

// newZtxtChunk builds a complete zTXt chunk from a plaintext manifest,
// deflating it and setting keyword="Description", compression_method=0,
// per spec.md §4.4 "Construct from a plaintext manifest".
func newZtxtChunk(manifest []byte) (*genericChunk, error) {
	compressed, err := deflateZtxt(manifest)
	if err != nil {
		return nil, err
	}
	data := &ztxtData{
		keyword:           []byte(defaultKeyword),
		compressionMethod: zlibCompressionMethod,
		compressedText:    compressed,
	}
	return newGenericChunk(ztxtType, data.encode()), nil
}
