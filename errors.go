// Package dmi reads and writes DMI files: PNG sprite sheets whose zTXt
// chunk carries a plain-text manifest describing icon states, directions,
// animation frames, and cursor hotspots.
package dmi

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind distinguishes the flat error taxonomy surfaced by this package.
type Kind int

const (
	// KindGeneric is the free-form fallback for conditions not covered by a
	// more specific Kind.
	KindGeneric Kind = iota
	KindIo
	KindShortWrite
	KindTruncated
	KindInvalidSignature
	KindInvalidChunkType
	KindCrcMismatch
	KindMissingIhdr
	KindMissingIdat
	KindMissingIend
	KindMissingZtxt
	KindUnsupportedColorType
	KindUnsupportedCompression
	KindGeometryMismatch
	KindManifestSyntax
	KindBlockEntry
	KindParseInt
	KindParseFloat
	KindUtf8
	KindDeflate
	KindInflate
	KindIconState
	KindEncoding
	KindConversion
)

func (k Kind) String() string {
	switch k {
	case KindIo:
		return "Io"
	case KindShortWrite:
		return "ShortWrite"
	case KindTruncated:
		return "Truncated"
	case KindInvalidSignature:
		return "InvalidSignature"
	case KindInvalidChunkType:
		return "InvalidChunkType"
	case KindCrcMismatch:
		return "CrcMismatch"
	case KindMissingIhdr:
		return "MissingIhdr"
	case KindMissingIdat:
		return "MissingIdat"
	case KindMissingIend:
		return "MissingIend"
	case KindMissingZtxt:
		return "MissingZtxt"
	case KindUnsupportedColorType:
		return "UnsupportedColorType"
	case KindUnsupportedCompression:
		return "UnsupportedCompression"
	case KindGeometryMismatch:
		return "GeometryMismatch"
	case KindManifestSyntax:
		return "ManifestSyntax"
	case KindBlockEntry:
		return "BlockEntry"
	case KindParseInt:
		return "ParseInt"
	case KindParseFloat:
		return "ParseFloat"
	case KindUtf8:
		return "Utf8"
	case KindDeflate:
		return "Deflate"
	case KindInflate:
		return "Inflate"
	case KindIconState:
		return "IconState"
	case KindEncoding:
		return "Encoding"
	case KindConversion:
		return "Conversion"
	default:
		return "Generic"
	}
}

// DmiError is the single error type returned by every exported operation in
// this package. Kind classifies the failure per spec.md §7; Context carries
// enough to locate the faulty chunk or manifest line (offsets, expected vs.
// actual values); Cause, if non-nil, is the underlying error (I/O failure,
// inflate/deflate failure, strconv failure, ...).
type DmiError struct {
	Kind    Kind
	Context string
	Cause   error
}

func (e *DmiError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dmi: %s: %s: %v", e.Kind, e.Context, e.Cause)
	}
	return fmt.Sprintf("dmi: %s: %s", e.Kind, e.Context)
}

func (e *DmiError) Unwrap() error {
	return e.Cause
}

// Is reports whether err is a *DmiError with the same Kind, so callers can
// write errors.Is(err, dmi.Sentinel(dmi.KindCrcMismatch)).
func (e *DmiError) Is(target error) bool {
	other, ok := target.(*DmiError)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Sentinel returns a bare *DmiError of the given Kind, suitable as the
// target of errors.Is(err, dmi.Sentinel(dmi.KindMissingZtxt)).
func Sentinel(k Kind) *DmiError {
	return &DmiError{Kind: k}
}

func newErr(k Kind, context string) error {
	return errors.WithStack(&DmiError{Kind: k, Context: context})
}

func wrapErr(k Kind, context string, cause error) error {
	if cause == nil {
		return newErr(k, context)
	}
	return errors.WithStack(&DmiError{Kind: k, Context: context, Cause: cause})
}
