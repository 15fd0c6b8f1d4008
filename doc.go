// Package opusmeta reads and rewrites the metadata of Ogg Opus files.
//
// An Ogg Opus stream starts with two header packets, each on its own page:
//   - OpusHead: identification header with channel count, pre-skip,
//     sample rate, output gain and channel mapping family
//   - OpusTags: comment header with a vendor string and user comments
//
// ReadMeta returns both headers. RewriteTags and WriteTagsFile replace the
// comment header and copy every other page byte for byte, so the audio is
// never touched. The Ogg page layer lives in the container/ogg package.
//
// # OpusHead Format (RFC 7845 Section 5.1)
//
//	Bytes 0-7:   "OpusHead" magic signature
//	Byte 8:      Version (0-15 readable)
//	Byte 9:      Output channel count
//	Bytes 10-11: Pre-skip (samples to discard at start)
//	Bytes 12-15: Input sample rate (8000, 12000, 16000, 24000 or 48000)
//	Bytes 16-17: Output gain (Q7.8)
//	Byte 18:     Channel mapping family
//
// Headers carrying a channel mapping table (longer than 19 bytes) are not
// supported.
//
// # OpusTags Format (RFC 7845 Section 5.2)
//
//	Bytes 0-7:   "OpusTags" magic signature
//	Bytes 8-11:  Vendor string length
//	Bytes 12+:   Vendor string (e.g., "Lavf60.3.100")
//	Next 4:      User comment count
//	For each comment:
//	  4 bytes:   Comment length
//	  N bytes:   Comment string ("FIELD=value")
//
// All strings are UTF-8 and all lengths little-endian. Comments keep their
// order; field names compare case-insensitively.
//
// # References
//
//   - RFC 7845: Ogg Encapsulation for the Opus Audio Codec
//   - RFC 3533: The Ogg Encapsulation Format Version 0
package opusmeta
