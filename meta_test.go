package opusmeta

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/thesyncim/opusmeta/container/ogg"
)

func TestReadMeta(t *testing.T) {
	data := buildStream(t, minimalHead(), minimalTags(), 3)

	meta, err := ReadMeta(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadMeta failed: %v", err)
	}
	if meta.Head != *minimalHead() {
		t.Errorf("Head = %+v, want %+v", meta.Head, *minimalHead())
	}
	if meta.Tags.Vendor != "Lavf60.3.100" {
		t.Errorf("Vendor = %q, want %q", meta.Tags.Vendor, "Lavf60.3.100")
	}
	want := []Comment{{"TITLE", "X"}, {"ARTIST", "Y"}}
	if !slices.Equal(meta.Tags.Comments(), want) {
		t.Errorf("Comments = %v, want %v", meta.Tags.Comments(), want)
	}
}

func TestReadMeta_StopsAfterHeaders(t *testing.T) {
	data := buildStream(t, minimalHead(), minimalTags(), 3)
	pages := splitPages(t, data)

	r := bytes.NewReader(data)
	if _, err := ReadMeta(r); err != nil {
		t.Fatalf("ReadMeta failed: %v", err)
	}
	consumed := len(data) - r.Len()
	if want := len(pages[0]) + len(pages[1]); consumed != want {
		t.Errorf("ReadMeta consumed %d bytes, want %d", consumed, want)
	}
}

func TestReadMeta_MultiPageTags(t *testing.T) {
	tags := NewVorbisComment("vendor", Comment{"DESCRIPTION", strings.Repeat("d", 700)})
	segs := ogg.SplitSegments(tags.Encode(), true)

	var data []byte
	data = append(data, rawPage(t, ogg.HeaderBOS, 0, 0, minimalHead().Encode())...)
	data = append(data, rawPage(t, ogg.HeaderSimple, 0, 1, segs[:2]...)...)
	data = append(data, rawPage(t, ogg.HeaderContinuation, 0, 2, segs[2:]...)...)
	data = append(data, rawPage(t, ogg.HeaderEOS, 960, 3, testPacket(0))...)

	meta, err := ReadMeta(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadMeta failed: %v", err)
	}
	if !meta.Tags.Equal(tags) {
		t.Errorf("Tags = %v, want %v", meta.Tags.Comments(), tags.Comments())
	}
}

func TestReadMeta_Errors(t *testing.T) {
	head := rawPage(t, ogg.HeaderBOS, 0, 0, minimalHead().Encode())
	tags := rawPage(t, ogg.HeaderSimple, 0, 1, minimalTags().Encode())
	badHead := minimalHead().Encode()
	badHead[7] = 'X'

	cat := func(pages ...[]byte) []byte { return bytes.Join(pages, nil) }

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrMalformedData},
		{"missing tags page", head, ErrMalformedData},
		{"truncated head page", head[:20], ErrUnexpectedEOS},
		{"truncated tags page", cat(head, tags[:len(tags)-1]), ErrUnexpectedEOS},
		{"bad head magic", cat(rawPage(t, ogg.HeaderBOS, 0, 0, badHead), tags), ErrMalformedData},
		{"head granule", cat(rawPage(t, ogg.HeaderBOS, 1, 0, minimalHead().Encode()), tags), ErrMalformedData},
		{"tags granule", cat(head, rawPage(t, ogg.HeaderSimple, 7, 1, minimalTags().Encode())), ErrMalformedData},
		{"tags swapped", cat(tags, head), ErrMalformedData},
		{"bad crc", cat(head, corruptCRC(tags)), ogg.ErrBadCRC},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			meta, err := ReadMeta(bytes.NewReader(tc.data))
			if !errors.Is(err, tc.want) {
				t.Errorf("ReadMeta = %v, want %v", err, tc.want)
			}
			if meta != nil {
				t.Errorf("ReadMeta returned metadata with error: %+v", meta)
			}
		})
	}
}

func corruptCRC(page []byte) []byte {
	page = bytes.Clone(page)
	page[22] ^= 0xFF
	return page
}

func TestReadMetaFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.opus")
	if err := os.WriteFile(path, buildStream(t, minimalHead(), minimalTags(), 2), 0o644); err != nil {
		t.Fatal(err)
	}

	meta, err := ReadMetaFile(path)
	if err != nil {
		t.Fatalf("ReadMetaFile failed: %v", err)
	}
	if !meta.Tags.Equal(minimalTags()) {
		t.Errorf("Tags = %v, want %v", meta.Tags.Comments(), minimalTags().Comments())
	}

	if _, err := ReadMetaFile(filepath.Join(dir, "missing.opus")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadMetaFile(missing) = %v, want os.ErrNotExist", err)
	}

	bad := filepath.Join(dir, "bad.opus")
	if err := os.WriteFile(bad, []byte("not an ogg file at all, just text"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = ReadMetaFile(bad)
	if !errors.Is(err, ErrMalformedData) {
		t.Errorf("ReadMetaFile(bad) = %v, want ErrMalformedData", err)
	}
	if err != nil && !strings.Contains(err.Error(), bad) {
		t.Errorf("error %q does not name the file", err)
	}
}
