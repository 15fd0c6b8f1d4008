package opusmeta

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/thesyncim/opusmeta/container/ogg"
)

// ErrWriterClosed is returned when writing to a closed Writer.
var ErrWriterClosed = errors.New("opusmeta: writer closed")

// WriterConfig configures the Writer.
type WriterConfig struct {
	// Head is the identification header written to the first page.
	// Nil means DefaultOpusHead(SampleRate48k, 2).
	Head *OpusHead

	// Tags is the comment header written to the second page.
	// Nil means an empty comment block with vendor "opusmeta".
	Tags *VorbisComment

	// Serial is the bitstream serial number. Zero picks a random serial.
	Serial uint32

	// Lacing selects the segment layout of the comment header page.
	Lacing Lacing
}

// Writer writes already encoded Opus packets to an Ogg container.
// The headers are written by NewWriter; each packet gets its own page.
type Writer struct {
	w          io.Writer
	serial     uint32 // Bitstream serial number
	pageSeq    uint32 // Page sequence counter
	granulePos uint64 // Sample position (at 48kHz)
	closed     bool   // Stream closed?
}

// NewWriter creates a Writer and writes the OpusHead and OpusTags pages.
func NewWriter(w io.Writer, head *OpusHead, tags *VorbisComment) (*Writer, error) {
	return NewWriterWithConfig(w, WriterConfig{Head: head, Tags: tags})
}

// NewWriterWithConfig creates a Writer with explicit configuration and
// writes the header pages.
func NewWriterWithConfig(w io.Writer, config WriterConfig) (*Writer, error) {
	head := config.Head
	if head == nil {
		head = DefaultOpusHead(SampleRate48k, 2)
	}
	tags := config.Tags
	if tags == nil {
		tags = NewVorbisComment("opusmeta")
	}
	serial := config.Serial
	if serial == 0 {
		serial = rand.Uint32()
	}

	ow := &Writer{w: w, serial: serial}

	// Header pages MUST have granulePos = 0.
	headPage := head.Page(serial)
	if _, err := headPage.WriteTo(w); err != nil {
		return nil, err
	}
	ow.pageSeq++

	segments := ogg.SplitSegments(tags.Encode(), config.Lacing == LacingTerminated)
	tagsPage, err := ogg.NewPage(ogg.HeaderSimple, 0, serial, ow.pageSeq, segments)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTagsTooLarge, err)
	}
	if _, err := tagsPage.WriteTo(w); err != nil {
		return nil, err
	}
	ow.pageSeq++

	return ow, nil
}

// writePage writes a single Ogg page with the given segments.
func (ow *Writer) writePage(segments [][]byte, headerType ogg.HeaderType) error {
	page, err := ogg.NewPage(headerType, ow.granulePos, ow.serial, ow.pageSeq, segments)
	if err != nil {
		return err
	}
	if _, err := page.WriteTo(ow.w); err != nil {
		return err
	}
	ow.pageSeq++
	return nil
}

// WritePacket writes an Opus packet to the stream.
// samples is the number of PCM samples at 48kHz represented by this packet
// (typically 960 for 20ms frames).
// Updates the granule position accordingly.
func (ow *Writer) WritePacket(packet []byte, samples int) error {
	if ow.closed {
		return ErrWriterClosed
	}

	// RFC 7845: The granule position represents the total number of samples
	// that could be decoded from all packets completed on this page.
	// It only advances once the page is written.
	prev := ow.granulePos
	ow.granulePos += uint64(samples)

	// One packet per page (simple approach per RFC 7845 recommendation).
	if err := ow.writePage(ogg.SplitSegments(packet, true), ogg.HeaderSimple); err != nil {
		ow.granulePos = prev
		return err
	}
	return nil
}

// Close writes the EOS page and marks the stream as closed.
// The writer should not be used after Close.
func (ow *Writer) Close() error {
	if ow.closed {
		return nil
	}

	// The EOS page carries no packet, only the final granule position.
	if err := ow.writePage(nil, ogg.HeaderEOS); err != nil {
		return err
	}

	ow.closed = true
	return nil
}

// Serial returns the bitstream serial number.
func (ow *Writer) Serial() uint32 {
	return ow.serial
}

// GranulePos returns the current granule position (samples at 48kHz).
func (ow *Writer) GranulePos() uint64 {
	return ow.granulePos
}

// PageCount returns the number of pages written so far.
func (ow *Writer) PageCount() uint32 {
	return ow.pageSeq
}
