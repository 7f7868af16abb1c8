package dmi

import (
	"errors"
	"io"
	"testing"
)

func TestDmiErrorIsMatchesByKindOnly(t *testing.T) {
	a := &DmiError{Kind: KindCrcMismatch, Context: "chunk A"}
	b := &DmiError{Kind: KindCrcMismatch, Context: "chunk B"}
	if !a.Is(b) {
		t.Error("expected two DmiErrors with the same Kind to match via Is")
	}
	c := &DmiError{Kind: KindTruncated}
	if a.Is(c) {
		t.Error("expected DmiErrors with different Kinds not to match")
	}
}

func TestWrapErrUnwrapsToCause(t *testing.T) {
	err := wrapErr(KindIo, "reading stream", io.ErrUnexpectedEOF)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestKindStringCoversAllConstants(t *testing.T) {
	kinds := []Kind{
		KindGeneric, KindIo, KindShortWrite, KindTruncated, KindInvalidSignature,
		KindInvalidChunkType, KindCrcMismatch, KindMissingIhdr, KindMissingIdat,
		KindMissingIend, KindMissingZtxt, KindUnsupportedColorType,
		KindUnsupportedCompression, KindGeometryMismatch, KindManifestSyntax,
		KindBlockEntry, KindParseInt, KindParseFloat, KindUtf8, KindDeflate,
		KindInflate, KindIconState, KindEncoding, KindConversion,
	}
	seen := map[string]bool{}
	for _, k := range kinds {
		s := k.String()
		if s == "" {
			t.Errorf("Kind(%d).String() is empty", k)
		}
		if seen[s] {
			t.Errorf("Kind %d shares String() %q with another kind", k, s)
		}
		seen[s] = true
	}
}
