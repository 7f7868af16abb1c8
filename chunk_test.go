package dmi

import (
	"bytes"
	"testing"
)

func encodedTestChunk(t *testing.T, chunkType [4]byte, data []byte) []byte {
	t.Helper()
	c := newGenericChunk(chunkType, data)
	var buf bytes.Buffer
	if err := encodeGenericChunk(&buf, c); err != nil {
		t.Fatalf("encodeGenericChunk: %v", err)
	}
	return buf.Bytes()
}

func TestGenericChunkRoundTrip(t *testing.T) {
	buf := encodedTestChunk(t, [4]byte{'t', 'E', 'S', 't'}, []byte("payload"))

	decoded, err := decodeGenericChunk(buf)
	if err != nil {
		t.Fatalf("decodeGenericChunk: %v", err)
	}
	if decoded.typeName() != "tESt" {
		t.Errorf("typeName() = %q, want tESt", decoded.typeName())
	}
	if !bytes.Equal(decoded.data, []byte("payload")) {
		t.Errorf("data = %q, want payload", decoded.data)
	}

	var reencoded bytes.Buffer
	if err := encodeGenericChunk(&reencoded, decoded); err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(buf, reencoded.Bytes()) {
		t.Error("decode then re-encode did not reproduce the original bytes")
	}
}

func TestDecodeGenericChunkTooShort(t *testing.T) {
	_, err := decodeGenericChunk([]byte{0, 0, 0, 0, 't', 'E', 'S'})
	assertKind(t, err, KindTruncated)
}

func TestDecodeGenericChunkInvalidType(t *testing.T) {
	buf := encodedTestChunk(t, [4]byte{'t', 'E', 'S', 't'}, nil)
	buf[4] = '1' // corrupt first type byte to a digit
	newCrc := chunkCrc([4]byte{'1', 'E', 'S', 't'}, nil)
	byteOrder.PutUint32(buf[len(buf)-4:], newCrc)
	_, err := decodeGenericChunk(buf)
	assertKind(t, err, KindInvalidChunkType)
}

func TestDecodeGenericChunkCrcMismatch(t *testing.T) {
	buf := encodedTestChunk(t, [4]byte{'t', 'E', 'S', 't'}, []byte("payload"))
	buf[len(buf)-1] ^= 0xFF // flip a CRC byte
	_, err := decodeGenericChunk(buf)
	assertKind(t, err, KindCrcMismatch)
}

func TestSetDataRecomputesCrc(t *testing.T) {
	c := newGenericChunk([4]byte{'t', 'E', 'S', 't'}, []byte("a"))
	before := c.crc
	c.setData([]byte("bb"))
	if c.crc == before {
		t.Error("setData did not change the CRC")
	}
	if c.crc != chunkCrc(c.chunkType, c.data) {
		t.Error("crc no longer matches chunkType ‖ data after setData")
	}
	if c.dataLength != 2 {
		t.Errorf("dataLength = %d, want 2", c.dataLength)
	}
}

// assertKind fails the test unless err is a *DmiError with the given Kind.
func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error of kind %s, got nil", want)
	}
	if !Sentinel(want).Is(unwrapDmiError(err)) {
		t.Fatalf("expected error kind %s, got %v", want, err)
	}
}

// unwrapDmiError digs through pkg/errors.WithStack wrapping to find the
// underlying *DmiError for kind comparisons in tests.
func unwrapDmiError(err error) error {
	type causer interface{ Cause() error }
	for err != nil {
		if _, ok := err.(*DmiError); ok {
			return err
		}
		c, ok := err.(causer)
		if !ok {
			return err
		}
		err = c.Cause()
	}
	return err
}
