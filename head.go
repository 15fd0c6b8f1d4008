package opusmeta

import (
	"encoding/binary"
	"fmt"

	"github.com/thesyncim/opusmeta/container/ogg"
)

// Opus header constants per RFC 7845.
const (
	// DefaultPreSkip is the standard Opus encoder lookahead at 48kHz.
	// This is the number of samples to discard at the beginning of decode.
	DefaultPreSkip = 312

	// opusHeadMagic is the magic signature for the OpusHead header.
	opusHeadMagic = "OpusHead"

	// opusHeadSize is the size of an OpusHead packet without a channel
	// mapping table. Longer headers are not supported.
	opusHeadSize = 19

	// opusHeadVersion is the version written by DefaultOpusHead.
	opusHeadVersion = 1

	// maxOpusHeadVersion is the highest version this package can read.
	// Versions 0-15 share the same layout of the fields parsed here.
	maxOpusHeadVersion = 15
)

// SampleRate is the original input sample rate stored in OpusHead.
type SampleRate uint32

// Sample rates an Opus encoder accepts.
const (
	SampleRate8k  SampleRate = 8000
	SampleRate12k SampleRate = 12000
	SampleRate16k SampleRate = 16000
	SampleRate24k SampleRate = 24000
	SampleRate48k SampleRate = 48000
)

// ParseSampleRate returns v as a SampleRate.
// Returns ErrMalformedData if v is not 8000, 12000, 16000, 24000 or 48000.
func ParseSampleRate(v uint32) (SampleRate, error) {
	switch sr := SampleRate(v); sr {
	case SampleRate8k, SampleRate12k, SampleRate16k, SampleRate24k, SampleRate48k:
		return sr, nil
	default:
		return 0, ogg.Malformed("unsupported sample rate %d Hz", v)
	}
}

// Gain is the output gain in Q7.8 format, stored as its two header bytes.
type Gain struct {
	// Mantissa is the signed integer part (byte 16 of OpusHead).
	Mantissa int8

	// Fraction is the fractional part in 1/256 steps (byte 17 of OpusHead).
	Fraction uint8
}

// Float64 returns the gain as a number.
func (g Gain) Float64() float64 {
	return float64(g.Mantissa) + float64(g.Fraction)/256
}

func (g Gain) String() string {
	return fmt.Sprintf("%d+%d/256", g.Mantissa, g.Fraction)
}

// MappingFamily specifies the channel mapping of an Opus stream.
// Values other than the named ones are preserved as read.
type MappingFamily uint8

// MappingFamily values per RFC 7845.
const (
	// MappingFamilyRTP is for mono/stereo with implicit channel order (RTP).
	MappingFamilyRTP MappingFamily = 0

	// MappingFamilyVorbis is for 1-8 channels with Vorbis channel order.
	MappingFamilyVorbis MappingFamily = 1
)

func (f MappingFamily) String() string {
	switch f {
	case MappingFamilyRTP:
		return "rtp"
	case MappingFamilyVorbis:
		return "vorbis"
	default:
		return fmt.Sprintf("MappingFamily(%d)", uint8(f))
	}
}

// OpusHead is the identification header for Opus in Ogg.
// This appears in the first Ogg page (BOS) and describes the stream format.
type OpusHead struct {
	// Version is the format version (0-15 are readable).
	Version uint8

	// Channels is the output channel count.
	Channels uint8

	// PreSkip is the number of samples to discard at the start (at 48kHz).
	// Typically 312 for standard Opus encoder lookahead.
	PreSkip uint16

	// SampleRate is the original input sample rate (informational only).
	// Opus always operates at 48kHz internally.
	SampleRate SampleRate

	// Gain is the gain to apply to the decoded output.
	Gain Gain

	// MappingFamily specifies the channel mapping.
	MappingFamily MappingFamily
}

// Encode serializes the OpusHead to its 19-byte form.
// A channel mapping table is never written.
func (h *OpusHead) Encode() []byte {
	data := make([]byte, opusHeadSize)
	copy(data[0:8], opusHeadMagic)
	data[8] = h.Version
	data[9] = h.Channels
	binary.LittleEndian.PutUint16(data[10:12], h.PreSkip)
	binary.LittleEndian.PutUint32(data[12:16], uint32(h.SampleRate))
	data[16] = byte(h.Gain.Mantissa)
	data[17] = h.Gain.Fraction
	data[18] = byte(h.MappingFamily)
	return data
}

// Page returns the BOS page carrying the header as its only segment.
func (h *OpusHead) Page(serial uint32) *ogg.Page {
	// One 19-byte segment is always within the page bounds.
	p, _ := ogg.NewPage(ogg.HeaderBOS, 0, serial, 0, [][]byte{h.Encode()})
	return p
}

// DecodeOpusHead parses an OpusHead packet.
// The packet must be exactly 19 bytes; mapping tables are not supported.
func DecodeOpusHead(data []byte) (*OpusHead, error) {
	if len(data) != opusHeadSize {
		return nil, ogg.Malformed("OpusHead needs to be %d bytes, but was %d", opusHeadSize, len(data))
	}
	if err := ogg.ExpectMagic(data, opusHeadMagic); err != nil {
		return nil, err
	}

	version := data[8]
	if version > maxOpusHeadVersion {
		return nil, &UnsupportedVersionError{Field: "OpusHead", Version: version}
	}
	rate, err := ParseSampleRate(binary.LittleEndian.Uint32(data[12:16]))
	if err != nil {
		return nil, err
	}

	return &OpusHead{
		Version:       version,
		Channels:      data[9],
		PreSkip:       binary.LittleEndian.Uint16(data[10:12]),
		SampleRate:    rate,
		Gain:          Gain{Mantissa: int8(data[16]), Fraction: data[17]},
		MappingFamily: MappingFamily(data[18]),
	}, nil
}

// ParseOpusHead parses the OpusHead carried by the first page of a stream.
// The page must have granule position 0 and exactly one 19-byte segment.
func ParseOpusHead(page *ogg.Page) (*OpusHead, error) {
	if page.GranulePos != 0 {
		return nil, ogg.Malformed("OpusHead page needs granule position 0, but has %d", page.GranulePos)
	}
	segments := page.Segments()
	if len(segments) != 1 {
		return nil, ogg.Malformed("OpusHead page needs exactly one segment, got sizes %v", page.LacingValues())
	}
	return DecodeOpusHead(segments[0])
}

// DefaultOpusHead returns an OpusHead with standard settings.
// sampleRate is the original input sample rate (informational).
// channels is 1 for mono, 2 for stereo.
func DefaultOpusHead(sampleRate SampleRate, channels uint8) *OpusHead {
	return &OpusHead{
		Version:       opusHeadVersion,
		Channels:      channels,
		PreSkip:       DefaultPreSkip,
		SampleRate:    sampleRate,
		MappingFamily: MappingFamilyRTP,
	}
}
