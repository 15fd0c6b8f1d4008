package opusmeta

import (
	"io"

	"github.com/thesyncim/opusmeta/container/ogg"
)

// Reader reads Opus packets from an Ogg container.
// The headers are parsed by NewReader; ReadPacket then returns the audio
// packets as stored, without decoding them.
type Reader struct {
	meta    OpusMeta
	serial  uint32
	packets *ogg.PacketReader
}

// NewReader creates a Reader and parses the Ogg Opus headers.
// It reads the ID header (OpusHead) and comment header (OpusTags) immediately.
// Returns an error if the stream is not a valid Ogg Opus stream.
func NewReader(r io.Reader) (*Reader, error) {
	pr := ogg.NewPageReader(r)

	headPage, err := nextHeaderPage(pr, "first")
	if err != nil {
		return nil, err
	}
	if !headPage.IsBOS() {
		return nil, ogg.Malformed("first page has header type %s, want %s", headPage.HeaderType, ogg.HeaderBOS)
	}
	head, err := ParseOpusHead(headPage)
	if err != nil {
		return nil, err
	}
	serial := headPage.SerialNumber

	// OpusTags may span multiple pages if there are many comments.
	var tagPages []*ogg.Page
	for {
		page, err := nextHeaderPage(pr, "comment")
		if err != nil {
			return nil, err
		}
		if page.SerialNumber != serial {
			return nil, ogg.Malformed("comment page has serial 0x%08x, want 0x%08x", page.SerialNumber, serial)
		}
		if page.IsContinuation() != (len(tagPages) > 0) {
			return nil, ogg.Malformed("comment page %d has header type %s", page.PageSequence, page.HeaderType)
		}
		tagPages = append(tagPages, page)
		if page.Complete() {
			break
		}
	}
	tags, err := ParseOpusTags(tagPages...)
	if err != nil {
		return nil, err
	}

	return &Reader{
		meta:    OpusMeta{Head: *head, Tags: *tags},
		serial:  serial,
		packets: ogg.NewStreamPacketReader(pr, serial),
	}, nil
}

// ReadPacket reads the next Opus packet from the stream.
// Returns the packet data, granule position, and any error.
// Returns io.EOF when the end of stream is reached.
func (or *Reader) ReadPacket() (packet []byte, granulePos uint64, err error) {
	return or.packets.ReadPacket()
}

// Meta returns the parsed headers.
func (or *Reader) Meta() *OpusMeta {
	return &or.meta
}

// PreSkip returns the pre-skip value from the OpusHead header.
// This is the number of samples to discard at the start of decode.
func (or *Reader) PreSkip() uint16 {
	return or.meta.Head.PreSkip
}

// Channels returns the channel count from the OpusHead header.
func (or *Reader) Channels() uint8 {
	return or.meta.Head.Channels
}

// SampleRate returns the original sample rate from the OpusHead header.
// Note: Opus always operates at 48kHz internally; this is informational only.
func (or *Reader) SampleRate() SampleRate {
	return or.meta.Head.SampleRate
}

// GranulePos returns the granule position of the last read packet.
func (or *Reader) GranulePos() uint64 {
	return or.packets.GranulePos()
}

// Serial returns the stream serial number.
func (or *Reader) Serial() uint32 {
	return or.serial
}
