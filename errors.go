// errors.go defines public error types for the opusmeta package.

package opusmeta

import (
	"errors"

	"github.com/thesyncim/opusmeta/container/ogg"
)

// Public error types for reading and rewriting Opus metadata.
// The container errors are re-exported so callers need a single import.
var (
	// ErrMalformedData indicates a structural violation in a page or header.
	ErrMalformedData = ogg.ErrMalformedData

	// ErrUnexpectedEOS indicates the stream ended inside a page or header.
	ErrUnexpectedEOS = ogg.ErrUnexpectedEOS

	// ErrNoMoreData indicates the stream ended on a page boundary.
	ErrNoMoreData = ogg.ErrNoMoreData

	// ErrInvalidUTF8 indicates a vendor or comment string is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("opusmeta: invalid UTF-8 string")

	// ErrTagsTooLarge indicates an encoded comment block doesn't fit into
	// the 255 segments of a single page.
	ErrTagsTooLarge = errors.New("opusmeta: comment header does not fit into one page")
)

// UnsupportedVersionError reports a version field outside the supported range.
type UnsupportedVersionError = ogg.UnsupportedVersionError
