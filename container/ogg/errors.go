package ogg

import (
	"errors"
	"fmt"
	"io"
)

// Package-level errors for Ogg parsing and encoding.
var (
	// ErrMalformedData indicates a structural violation: wrong magic
	// signature, checksum mismatch, unknown header type or a segment table
	// that breaks the 255x255 bound. The wrapping error carries the
	// observed and expected values.
	ErrMalformedData = errors.New("ogg: malformed data")

	// ErrBadCRC indicates the page CRC checksum does not match the computed value.
	// This typically indicates data corruption. It matches ErrMalformedData.
	ErrBadCRC = fmt.Errorf("%w: CRC mismatch", ErrMalformedData)

	// ErrUnexpectedEOS indicates the stream ended unexpectedly.
	// This occurs when a page is truncated or data ends mid-field.
	// It matches io.ErrUnexpectedEOF.
	ErrUnexpectedEOS = fmt.Errorf("ogg: unexpected end of stream: %w", io.ErrUnexpectedEOF)

	// ErrNoMoreData indicates the stream ended exactly on a page boundary.
	// This is the clean termination of a stream. It matches io.EOF.
	ErrNoMoreData = fmt.Errorf("ogg: no more data: %w", io.EOF)
)

// UnsupportedVersionError reports a version field outside the supported range.
type UnsupportedVersionError struct {
	// Field names the structure carrying the version ("ogg", "OpusHead").
	Field string

	// Version is the value found in the stream.
	Version uint8
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("ogg: unsupported %s version %d", e.Field, e.Version)
}

// SegmentError reports a segment table that exceeds the page bounds:
// at most 255 segments of at most 255 bytes each.
// It matches ErrMalformedData.
type SegmentError struct {
	// Count is the number of segments the table would hold.
	Count int

	// Index is the offending segment, or -1 when Count is the problem.
	Index int

	// Size is the length of the offending segment.
	Size int
}

func (e *SegmentError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("ogg: %d segments are too many, only %d allowed", e.Count, maxSegments)
	}
	return fmt.Sprintf("ogg: segment[%d] of %d bytes is too long, only %d allowed", e.Index, e.Size, maxSegmentSize)
}

func (e *SegmentError) Unwrap() error {
	return ErrMalformedData
}

// malformed returns an error matching ErrMalformedData with a formatted reason.
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedData, fmt.Sprintf(format, args...))
}

// Malformed is the exported form of malformed for codecs layered on top of
// Ogg pages, so their errors share one taxonomy.
func Malformed(format string, args ...any) error {
	return malformed(format, args...)
}

// ExpectMagic checks that data starts with magic. On mismatch it returns an
// ErrMalformedData error naming the expected and found signatures.
func ExpectMagic(data []byte, magic string) error {
	n := min(len(data), len(magic))
	if len(data) >= len(magic) && string(data[:len(magic)]) == magic {
		return nil
	}
	return malformed("expected magic %q but got %q", magic, data[:n])
}

// eosError maps short reads onto the package taxonomy.
// io.EOF becomes ErrNoMoreData only when atBoundary is set; every other
// short read is ErrUnexpectedEOS. Other errors pass through wrapped.
func eosError(err error, atBoundary bool) error {
	switch {
	case errors.Is(err, io.EOF) && atBoundary:
		return ErrNoMoreData
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return ErrUnexpectedEOS
	default:
		return fmt.Errorf("ogg: read: %w", err)
	}
}
