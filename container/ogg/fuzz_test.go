package ogg

import (
	"bytes"
	"testing"
)

// FuzzReadPage checks that the page decoder never panics and that every
// accepted page re-encodes to the bytes it was read from.
func FuzzReadPage(f *testing.F) {
	seeds := [][][]byte{
		{[]byte("OpusHead")},
		{bytes.Repeat([]byte{1}, 255), []byte("x")},
		{},
	}
	for _, segs := range seeds {
		p, err := NewPage(HeaderSimple, 1, 2, 3, segs)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(p.Encode())
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		p, n, err := ParsePage(data)
		if err != nil {
			return
		}
		if !bytes.Equal(p.Encode(), data[:n]) {
			t.Fatalf("re-encoded page differs from input")
		}
	})
}
