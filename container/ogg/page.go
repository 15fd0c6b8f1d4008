package ogg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"slices"
)

// HeaderType is the page header type byte.
// Ogg Opus streams use exactly one of these values per page.
type HeaderType byte

// Header type values.
const (
	// HeaderSimple marks a page that starts with a fresh packet.
	HeaderSimple HeaderType = 0x00

	// HeaderContinuation indicates this page contains data from a packet
	// that began on a previous page.
	HeaderContinuation HeaderType = 0x01

	// HeaderBOS (Beginning of Stream) indicates this is the first page
	// of a logical bitstream.
	HeaderBOS HeaderType = 0x02

	// HeaderEOS (End of Stream) indicates this is the last page of a
	// logical bitstream.
	HeaderEOS HeaderType = 0x04
)

func parseHeaderType(b byte) (HeaderType, error) {
	switch t := HeaderType(b); t {
	case HeaderSimple, HeaderContinuation, HeaderBOS, HeaderEOS:
		return t, nil
	default:
		return 0, malformed("unknown header type 0x%02x", b)
	}
}

func (t HeaderType) String() string {
	switch t {
	case HeaderSimple:
		return "simple"
	case HeaderContinuation:
		return "continuation"
	case HeaderBOS:
		return "bos"
	case HeaderEOS:
		return "eos"
	default:
		return fmt.Sprintf("HeaderType(0x%02x)", byte(t))
	}
}

// Page header size constants.
const (
	// pageHeaderSize is the fixed portion of the page header (before segment table).
	pageHeaderSize = 27

	// oggMagic is the capture pattern that identifies an Ogg page.
	oggMagic = "OggS"

	// streamVersion is the only stream structure version defined.
	streamVersion = 0

	maxSegments    = 255
	maxSegmentSize = 255
)

// Page represents a single Ogg page.
//
// The segment table is kept private so that its bounds always hold: at most
// 255 segments, each at most 255 bytes. Use NewPage, SetSegments and
// AddSegment to change it.
type Page struct {
	// HeaderType is the page type (simple, continuation, BOS, EOS).
	HeaderType HeaderType

	// GranulePos is the codec-defined position at the end of the page.
	// For Opus, this is the sample count at 48kHz; header pages carry 0.
	GranulePos uint64

	// SerialNumber identifies the logical bitstream.
	SerialNumber uint32

	// PageSequence is the page sequence number within the bitstream.
	// It is surfaced as read and never checked.
	PageSequence uint32

	segments [][]byte
}

// NewPage creates a page with the given segment table.
// The table is validated; a *SegmentError is returned if it holds more than
// 255 segments or any segment longer than 255 bytes. The page keeps its own
// copy of the table, so later changes to segments don't affect it.
func NewPage(headerType HeaderType, granulePos uint64, serial, sequence uint32, segments [][]byte) (*Page, error) {
	if err := validateSegments(segments); err != nil {
		return nil, err
	}
	return &Page{
		HeaderType:   headerType,
		GranulePos:   granulePos,
		SerialNumber: serial,
		PageSequence: sequence,
		segments:     slices.Clone(segments),
	}, nil
}

func validateSegments(segments [][]byte) error {
	if len(segments) > maxSegments {
		return &SegmentError{Count: len(segments), Index: -1}
	}
	for i, seg := range segments {
		if len(seg) > maxSegmentSize {
			return &SegmentError{Count: len(segments), Index: i, Size: len(seg)}
		}
	}
	return nil
}

// Segments returns a copy of the segment table.
// The segment contents still alias the page.
func (p *Page) Segments() [][]byte {
	return slices.Clone(p.segments)
}

// SetSegments replaces the segment table.
// On a bound violation the page is left unchanged.
func (p *Page) SetSegments(segments [][]byte) error {
	if err := validateSegments(segments); err != nil {
		return err
	}
	p.segments = slices.Clone(segments)
	return nil
}

// AddSegment appends one segment to the table.
// On a bound violation the page is left unchanged.
func (p *Page) AddSegment(segment []byte) error {
	n := len(p.segments) + 1
	if n > maxSegments {
		return &SegmentError{Count: n, Index: -1}
	}
	if len(segment) > maxSegmentSize {
		return &SegmentError{Count: n, Index: n - 1, Size: len(segment)}
	}
	p.segments = append(p.segments, segment)
	return nil
}

// Equal reports whether p and q have the same header fields and the same
// segment table.
func (p *Page) Equal(q *Page) bool {
	if p.HeaderType != q.HeaderType || p.GranulePos != q.GranulePos ||
		p.SerialNumber != q.SerialNumber || p.PageSequence != q.PageSequence ||
		len(p.segments) != len(q.segments) {
		return false
	}
	for i := range p.segments {
		if !bytes.Equal(p.segments[i], q.segments[i]) {
			return false
		}
	}
	return true
}

// LacingValues returns the segment lengths as stored on the wire.
func (p *Page) LacingValues() []byte {
	lacing := make([]byte, len(p.segments))
	for i, seg := range p.segments {
		lacing[i] = byte(len(seg))
	}
	return lacing
}

// PayloadSize returns the total number of segment bytes.
func (p *Page) PayloadSize() int {
	n := 0
	for _, seg := range p.segments {
		n += len(seg)
	}
	return n
}

// Payload returns a copy of the concatenated segment data.
func (p *Page) Payload() []byte {
	return bytes.Join(p.segments, nil)
}

// EncodedSize returns the size of the page on the wire.
func (p *Page) EncodedSize() int {
	return pageHeaderSize + len(p.segments) + p.PayloadSize()
}

// IsBOS returns true if this is a Beginning of Stream page.
func (p *Page) IsBOS() bool {
	return p.HeaderType == HeaderBOS
}

// IsEOS returns true if this is an End of Stream page.
func (p *Page) IsEOS() bool {
	return p.HeaderType == HeaderEOS
}

// IsContinuation returns true if this page continues a packet from a previous page.
func (p *Page) IsContinuation() bool {
	return p.HeaderType == HeaderContinuation
}

// Complete reports whether the last packet on the page ends on this page,
// i.e. the last lacing value is less than 255. A page without segments is
// complete.
func (p *Page) Complete() bool {
	if len(p.segments) == 0 {
		return true
	}
	return len(p.segments[len(p.segments)-1]) < maxSegmentSize
}

// PacketLengths extracts packet lengths from the segment table.
// This is equivalent to ParseSegmentTable(p.LacingValues()).
func (p *Page) PacketLengths() []int {
	return ParseSegmentTable(p.LacingValues())
}

// Packets extracts the packets completed on this page.
// A trailing packet that continues on the next page is not included.
func (p *Page) Packets() [][]byte {
	var packets [][]byte
	var current []byte
	for _, seg := range p.segments {
		current = append(current, seg...)
		if len(seg) < maxSegmentSize {
			if current == nil {
				current = []byte{}
			}
			packets = append(packets, current)
			current = nil
		}
	}
	return packets
}

// PacketReader returns a reader over all segments of the page, in order,
// as one contiguous stream. It holds no resources; Close is optional.
func (p *Page) PacketReader() *ChainReader {
	return ChainBytes(p.segments...)
}

// SplitSegments splits data into consecutive segments of at most 255 bytes.
// With terminate set, a zero-length segment is appended when len(data) is a
// multiple of 255 (including zero), so the packet ends on this page under
// the Ogg lacing rule.
func SplitSegments(data []byte, terminate bool) [][]byte {
	table := BuildSegmentTable(len(data))
	if !terminate && table[len(table)-1] == 0 {
		table = table[:len(table)-1]
	}
	segments := make([][]byte, len(table))
	for i, l := range table {
		n := int(l)
		segments[i] = data[:n:n]
		data = data[n:]
	}
	return segments
}

// BuildSegmentTable creates a segment table for a packet of the given length.
// Packets larger than 255 bytes span multiple segments (each 255 bytes except
// the final segment which contains the remainder). An exact multiple of 255
// gets a terminating zero.
func BuildSegmentTable(packetLen int) []byte {
	numSegments := packetLen/maxSegmentSize + 1
	segments := make([]byte, numSegments)
	for i := 0; i < numSegments-1; i++ {
		segments[i] = maxSegmentSize
	}
	segments[numSegments-1] = byte(packetLen % maxSegmentSize)
	return segments
}

// ParseSegmentTable extracts packet lengths from a segment table.
// Returns a slice of packet lengths. A segment value of 255 indicates
// the packet continues; a value less than 255 ends the packet.
func ParseSegmentTable(segments []byte) []int {
	if len(segments) == 0 {
		return nil
	}

	var lengths []int
	currentLen := 0

	for _, seg := range segments {
		currentLen += int(seg)
		if seg < maxSegmentSize {
			lengths = append(lengths, currentLen)
			currentLen = 0
		}
	}

	// If the last segment was 255, the packet continues on the next page.
	return lengths
}

// Encode serializes the page to bytes with proper CRC.
// The output format is:
//   - 27-byte header
//   - Segment table
//   - Payload
//
// The CRC is computed over the entire page (with CRC field zeroed).
func (p *Page) Encode() []byte {
	headerSize := pageHeaderSize + len(p.segments)
	data := make([]byte, headerSize, p.EncodedSize())

	copy(data[0:4], oggMagic)
	data[4] = streamVersion
	data[5] = byte(p.HeaderType)
	binary.LittleEndian.PutUint64(data[6:14], p.GranulePos)
	binary.LittleEndian.PutUint32(data[14:18], p.SerialNumber)
	binary.LittleEndian.PutUint32(data[18:22], p.PageSequence)
	// CRC at bytes 22-25 stays zero until the whole page is assembled.
	data[26] = byte(len(p.segments))

	for i, seg := range p.segments {
		data[pageHeaderSize+i] = byte(len(seg))
		data = append(data, seg...)
	}

	binary.LittleEndian.PutUint32(data[22:26], oggCRC(data))
	return data
}

// WriteTo writes the encoded page to w. It implements io.WriterTo.
func (p *Page) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.Encode())
	return int64(n), err
}

// ReadPage reads exactly one page from r.
//
// It returns ErrNoMoreData if r is already at its end, ErrUnexpectedEOS if
// r ends inside the page, ErrMalformedData (or ErrBadCRC) for a corrupt
// page and *UnsupportedVersionError for a non-zero stream version.
// ReadPage never reads past the end of the page.
func ReadPage(r io.Reader) (*Page, error) {
	var header [pageHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, eosError(err, true)
	}
	if err := ExpectMagic(header[:], oggMagic); err != nil {
		return nil, err
	}

	lacing := make([]byte, header[26])
	if _, err := io.ReadFull(r, lacing); err != nil {
		return nil, eosError(err, false)
	}
	payloadSize := 0
	for _, l := range lacing {
		payloadSize += int(l)
	}
	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, eosError(err, false)
	}

	stored := binary.LittleEndian.Uint32(header[22:26])
	clear(header[22:26])
	crc := oggCRCUpdate(oggCRC(header[:]), lacing)
	crc = oggCRCUpdate(crc, payload)
	if crc != stored {
		return nil, fmt.Errorf("%w: stored 0x%08x, computed 0x%08x", ErrBadCRC, stored, crc)
	}

	if header[4] != streamVersion {
		return nil, &UnsupportedVersionError{Field: "ogg", Version: header[4]}
	}
	headerType, err := parseHeaderType(header[5])
	if err != nil {
		return nil, err
	}

	segments := make([][]byte, len(lacing))
	offset := 0
	for i, l := range lacing {
		segments[i] = payload[offset : offset+int(l) : offset+int(l)]
		offset += int(l)
	}

	return &Page{
		HeaderType:   headerType,
		GranulePos:   binary.LittleEndian.Uint64(header[6:14]),
		SerialNumber: binary.LittleEndian.Uint32(header[14:18]),
		PageSequence: binary.LittleEndian.Uint32(header[18:22]),
		segments:     segments,
	}, nil
}

// ParsePage parses an Ogg page from bytes.
// Returns the parsed page, number of bytes consumed, and any error.
// Errors are the same as for ReadPage.
func ParsePage(data []byte) (*Page, int, error) {
	r := bytes.NewReader(data)
	p, err := ReadPage(r)
	if err != nil {
		return nil, 0, err
	}
	return p, len(data) - r.Len(), nil
}
