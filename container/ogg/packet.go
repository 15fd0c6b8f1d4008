package ogg

import (
	"errors"
	"io"
)

// PacketReader reassembles packets from the pages of one logical bitstream.
//
// Segments are joined across lacing values of 255 and across continuation
// pages. Pages of other bitstreams are skipped.
type PacketReader struct {
	pages      *PageReader
	serial     uint32
	locked     bool
	queue      [][]byte // packets completed on the current page
	partial    []byte   // packet continuing on the next page
	inPacket   bool
	granulePos uint64
	eos        bool
}

// NewPacketReader returns a PacketReader that locks onto the serial number
// of the first page it reads.
func NewPacketReader(r io.Reader) *PacketReader {
	return &PacketReader{pages: NewPageReader(r)}
}

// NewStreamPacketReader returns a PacketReader for the bitstream with the
// given serial number, continuing from pr.
func NewStreamPacketReader(pr *PageReader, serial uint32) *PacketReader {
	return &PacketReader{pages: pr, serial: serial, locked: true}
}

// ReadPacket reads the next packet from the stream.
// Returns the packet data, the granule position of the page that completed
// it, and any error. Returns io.EOF when the end of stream is reached, or
// ErrUnexpectedEOS if the stream ends inside a packet.
func (r *PacketReader) ReadPacket() (packet []byte, granulePos uint64, err error) {
	for len(r.queue) == 0 {
		if r.eos {
			return nil, 0, io.EOF
		}
		if err := r.readPage(); err != nil {
			return nil, 0, err
		}
	}
	packet = r.queue[0]
	r.queue = r.queue[1:]
	return packet, r.granulePos, nil
}

// GranulePos returns the granule position of the last page read.
func (r *PacketReader) GranulePos() uint64 {
	return r.granulePos
}

// Serial returns the serial number of the bitstream being read.
func (r *PacketReader) Serial() uint32 {
	return r.serial
}

func (r *PacketReader) readPage() error {
	var page *Page
	for {
		p, err := r.pages.Next()
		if err != nil {
			if errors.Is(err, io.EOF) && r.inPacket {
				return ErrUnexpectedEOS
			}
			return err
		}
		if !r.locked {
			r.serial = p.SerialNumber
			r.locked = true
		}
		if p.SerialNumber == r.serial {
			page = p
			break
		}
	}

	segments := page.Segments()
	switch {
	case r.inPacket && !page.IsContinuation():
		return malformed("page %d of stream 0x%08x should continue a packet but has header type %s",
			page.PageSequence, page.SerialNumber, page.HeaderType)
	case !r.inPacket && page.IsContinuation():
		// The start of this packet was never seen; drop its tail.
		for len(segments) > 0 {
			last := len(segments[0]) < maxSegmentSize
			segments = segments[1:]
			if last {
				break
			}
		}
	}

	for _, seg := range segments {
		r.partial = append(r.partial, seg...)
		r.inPacket = true
		if len(seg) < maxSegmentSize {
			if r.partial == nil {
				r.partial = []byte{}
			}
			r.queue = append(r.queue, r.partial)
			r.partial = nil
			r.inPacket = false
		}
	}
	r.granulePos = page.GranulePos
	if page.IsEOS() {
		r.eos = true
	}
	return nil
}
