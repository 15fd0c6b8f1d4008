// Package ogg implements the page layer of the Ogg container format.
//
// This package provides low-level primitives for reading and writing Ogg
// pages as specified in RFC 3533 (The Ogg Encapsulation Format). It knows
// nothing about the codec carried in the pages; Opus headers live in the
// parent package.
//
// The Ogg format uses pages as atomic units of data, where each page contains:
//   - A 27-byte header with magic signature "OggS"
//   - A segment table describing packet boundaries
//   - Payload data containing one or more packets
//   - CRC-32 checksum for data integrity verification
//
// # Page Structure
//
// An Ogg page has the following structure:
//
//	Bytes 0-3:   "OggS" capture pattern (magic signature)
//	Byte 4:      Stream structure version (always 0)
//	Byte 5:      Header type (simple, continuation, BOS, EOS)
//	Bytes 6-13:  Granule position (codec defined)
//	Bytes 14-17: Bitstream serial number
//	Bytes 18-21: Page sequence number
//	Bytes 22-25: CRC checksum
//	Byte 26:     Number of segments
//	Bytes 27+:   Segment table (one byte per segment)
//	Remaining:   Page payload data
//
// All multi-byte fields are little-endian.
//
// # Segment Table
//
// Packets are split into segments of up to 255 bytes each. A segment value
// of 255 indicates the packet continues in the next segment. A value less
// than 255 marks the end of a packet. A page holds at most 255 segments;
// Page enforces both bounds on every change to its table.
//
// Example: A 600-byte packet uses segments [255, 255, 90] (255+255+90=600)
//
// # CRC Calculation
//
// Ogg uses CRC-32 with polynomial 0x04C11DB7 (NOT the IEEE polynomial used
// by hash/crc32). The CRC is computed over the entire page with the CRC
// field set to zero.
//
// # Errors
//
// Decoding distinguishes a stream that ended on a page boundary
// (ErrNoMoreData, matching io.EOF) from a truncated one (ErrUnexpectedEOS,
// matching io.ErrUnexpectedEOF). Structural problems match ErrMalformedData.
//
// # References
//
//   - RFC 3533: The Ogg Encapsulation Format Version 0
//   - RFC 7845: Ogg Encapsulation for the Opus Audio Codec
package ogg
