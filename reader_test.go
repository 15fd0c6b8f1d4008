package opusmeta

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/thesyncim/opusmeta/container/ogg"
)

// TestNewReader_Valid tests reading the headers of a written stream.
func TestNewReader_Valid(t *testing.T) {
	r, err := NewReader(bytes.NewReader(buildStream(t, minimalHead(), minimalTags(), 3)))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if r.Channels() != 2 {
		t.Errorf("Channels = %d, want 2", r.Channels())
	}
	if r.PreSkip() != DefaultPreSkip {
		t.Errorf("PreSkip = %d, want %d", r.PreSkip(), DefaultPreSkip)
	}
	if r.SampleRate() != SampleRate48k {
		t.Errorf("SampleRate = %d, want 48000", r.SampleRate())
	}
	if r.Serial() != testSerial {
		t.Errorf("Serial = 0x%08x, want 0x%08x", r.Serial(), uint32(testSerial))
	}
	if !r.Meta().Tags.Equal(minimalTags()) {
		t.Errorf("Tags = %v, want %v", r.Meta().Tags.Comments(), minimalTags().Comments())
	}
}

// TestReader_WriterRoundTrip tests that packets come back in order.
func TestReader_WriterRoundTrip(t *testing.T) {
	const packets = 6
	r, err := NewReader(bytes.NewReader(buildStream(t, minimalHead(), minimalTags(), packets)))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < packets; i++ {
		packet, granule, err := r.ReadPacket()
		if err != nil {
			t.Fatalf("ReadPacket %d failed: %v", i, err)
		}
		if !bytes.Equal(packet, testPacket(i)) {
			t.Errorf("packet %d differs", i)
		}
		if want := uint64(960 * (i + 1)); granule != want || r.GranulePos() != want {
			t.Errorf("packet %d granule = %d/%d, want %d", i, granule, r.GranulePos(), want)
		}
	}

	// The empty EOS page ends the stream.
	if _, _, err := r.ReadPacket(); err != io.EOF {
		t.Errorf("ReadPacket at end = %v, want io.EOF", err)
	}
}

// TestNewReader_MultiPageTags tests a comment header spanning two pages.
func TestNewReader_MultiPageTags(t *testing.T) {
	tags := NewVorbisComment("v", Comment{"LYRICS", strings.Repeat("la ", 300)})
	segs := ogg.SplitSegments(tags.Encode(), true)
	data := bytes.Join([][]byte{
		rawPage(t, ogg.HeaderBOS, 0, 0, minimalHead().Encode()),
		rawPage(t, ogg.HeaderSimple, 0, 1, segs[:3]...),
		rawPage(t, ogg.HeaderContinuation, 0, 2, segs[3:]...),
		rawPage(t, ogg.HeaderEOS, 960, 3, testPacket(0)),
	}, nil)

	r, err := NewReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if !r.Meta().Tags.Equal(tags) {
		t.Error("multi-page tags differ")
	}
	packet, _, err := r.ReadPacket()
	if err != nil || !bytes.Equal(packet, testPacket(0)) {
		t.Errorf("ReadPacket = %v, %v", len(packet), err)
	}
}

// TestNewReader_Invalid tests streams that are not Ogg Opus.
func TestNewReader_Invalid(t *testing.T) {
	head := rawPage(t, ogg.HeaderBOS, 0, 0, minimalHead().Encode())
	tags := rawPage(t, ogg.HeaderSimple, 0, 1, minimalTags().Encode())
	p, _ := ogg.NewPage(ogg.HeaderSimple, 0, testSerial+1, 1, [][]byte{minimalTags().Encode()})
	otherSerial := p.Encode()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrMalformedData},
		{"not ogg", []byte(strings.Repeat("RIFF....WAVEfmt ", 4)), ErrMalformedData},
		{"no BOS", bytes.Join([][]byte{rawPage(t, ogg.HeaderSimple, 0, 0, minimalHead().Encode()), tags}, nil), ErrMalformedData},
		{"missing tags", head, ErrMalformedData},
		{"tags serial", bytes.Join([][]byte{head, otherSerial}, nil), ErrMalformedData},
		{"tags continuation", bytes.Join([][]byte{head, rawPage(t, ogg.HeaderContinuation, 0, 1, minimalTags().Encode())}, nil), ErrMalformedData},
		{"truncated", bytes.Join([][]byte{head, tags[:30]}, nil), ErrUnexpectedEOS},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewReader(bytes.NewReader(tc.data)); !errors.Is(err, tc.want) {
				t.Errorf("NewReader = %v, want %v", err, tc.want)
			}
		})
	}
}

// TestReader_Truncated tests a stream cut inside an audio page.
func TestReader_Truncated(t *testing.T) {
	data := buildStream(t, minimalHead(), minimalTags(), 2)
	pages := splitPages(t, data)
	cut := len(pages[0]) + len(pages[1]) + len(pages[2]) + 10

	r, err := NewReader(bytes.NewReader(data[:cut]))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := r.ReadPacket(); err != nil {
		t.Fatalf("first ReadPacket failed: %v", err)
	}
	if _, _, err := r.ReadPacket(); !errors.Is(err, ErrUnexpectedEOS) {
		t.Errorf("ReadPacket = %v, want ErrUnexpectedEOS", err)
	}
}
