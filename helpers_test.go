package opusmeta

import (
	"bytes"
	"testing"

	"github.com/thesyncim/opusmeta/container/ogg"
)

const testSerial = 0x0EA7BEEF

func minimalHead() *OpusHead {
	return &OpusHead{
		Version:       1,
		Channels:      2,
		PreSkip:       312,
		SampleRate:    SampleRate48k,
		Gain:          Gain{},
		MappingFamily: MappingFamilyRTP,
	}
}

func minimalTags() *VorbisComment {
	return NewVorbisComment("Lavf60.3.100",
		Comment{Key: "TITLE", Value: "X"},
		Comment{Key: "ARTIST", Value: "Y"},
	)
}

// testPacket returns a fake audio packet; its content is never decoded.
func testPacket(i int) []byte {
	packet := make([]byte, 40+i*37)
	packet[0] = 0xFC
	for j := 1; j < len(packet); j++ {
		packet[j] = byte(i + j)
	}
	return packet
}

// buildStream writes an Ogg Opus stream with the given headers and audio
// packets and returns its bytes.
func buildStream(t *testing.T, head *OpusHead, tags *VorbisComment, packets int) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriterWithConfig(&buf, WriterConfig{Head: head, Tags: tags, Serial: testSerial})
	if err != nil {
		t.Fatalf("NewWriterWithConfig failed: %v", err)
	}
	for i := 0; i < packets; i++ {
		if err := w.WritePacket(testPacket(i), 960); err != nil {
			t.Fatalf("WritePacket failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return buf.Bytes()
}

// splitPages returns the encoded bytes of every page in data.
func splitPages(t *testing.T, data []byte) [][]byte {
	t.Helper()
	var pages [][]byte
	for len(data) > 0 {
		_, n, err := ogg.ParsePage(data)
		if err != nil {
			t.Fatalf("ParsePage failed after %d pages: %v", len(pages), err)
		}
		pages = append(pages, data[:n])
		data = data[n:]
	}
	return pages
}

func rawPage(t *testing.T, headerType ogg.HeaderType, granule uint64, seq uint32, segments ...[]byte) []byte {
	t.Helper()
	p, err := ogg.NewPage(headerType, granule, testSerial, seq, segments)
	if err != nil {
		t.Fatalf("NewPage failed: %v", err)
	}
	return p.Encode()
}
