package opusmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/thesyncim/opusmeta/container/ogg"
)

const (
	// opusTagsMagic is the magic signature for the OpusTags header.
	opusTagsMagic = "OpusTags"

	// minCommentHeaderSize is the smallest comment packet accepted before
	// decoding starts.
	minCommentHeaderSize = 12
)

// Comment is one user comment of a VorbisComment block.
type Comment struct {
	Key   string
	Value string
}

func (c Comment) String() string {
	return c.Key + "=" + c.Value
}

// VorbisComment is the comment header of Opus in Ogg (OpusTags).
//
// Comments keep their insertion order, which is also the order they are
// written in. Keys are matched case-insensitively, values exactly.
type VorbisComment struct {
	// Vendor is the encoder name (e.g., "Lavf60.3.100").
	Vendor string

	comments []Comment
}

// NewVorbisComment returns a comment block with the given vendor and comments.
func NewVorbisComment(vendor string, comments ...Comment) *VorbisComment {
	return &VorbisComment{Vendor: vendor, comments: append([]Comment(nil), comments...)}
}

// Comments returns a copy of all comments in order.
func (c *VorbisComment) Comments() []Comment {
	return append([]Comment(nil), c.comments...)
}

// All returns an iterator over all comments in order.
func (c *VorbisComment) All() iter.Seq[Comment] {
	return func(yield func(Comment) bool) {
		for _, cm := range c.comments {
			if !yield(cm) {
				return
			}
		}
	}
}

// Len returns the number of comments.
func (c *VorbisComment) Len() int {
	return len(c.comments)
}

// Add appends a comment. Existing comments with the same key are kept.
func (c *VorbisComment) Add(key, value string) {
	c.comments = append(c.comments, Comment{Key: key, Value: value})
}

// Find returns all comments whose key matches key, ignoring case, in order.
func (c *VorbisComment) Find(key string) []Comment {
	var found []Comment
	for _, cm := range c.comments {
		if strings.EqualFold(cm.Key, key) {
			found = append(found, cm)
		}
	}
	return found
}

// Get returns the value of the first comment matching key.
func (c *VorbisComment) Get(key string) (string, bool) {
	for _, cm := range c.comments {
		if strings.EqualFold(cm.Key, key) {
			return cm.Value, true
		}
	}
	return "", false
}

// RemoveFirst removes the first comment matching key and returns it.
// Later comments with the same key are kept.
func (c *VorbisComment) RemoveFirst(key string) (Comment, bool) {
	for i, cm := range c.comments {
		if strings.EqualFold(cm.Key, key) {
			c.comments = append(c.comments[:i:i], c.comments[i+1:]...)
			return cm, true
		}
	}
	return Comment{}, false
}

// RemoveAll removes every comment matching key.
func (c *VorbisComment) RemoveAll(key string) {
	kept := c.comments[:0:0]
	for _, cm := range c.comments {
		if !strings.EqualFold(cm.Key, key) {
			kept = append(kept, cm)
		}
	}
	c.comments = kept
}

// Equal reports whether c and o have the same vendor and comments in the
// same order.
func (c *VorbisComment) Equal(o *VorbisComment) bool {
	if c.Vendor != o.Vendor || len(c.comments) != len(o.comments) {
		return false
	}
	for i := range c.comments {
		if c.comments[i] != o.comments[i] {
			return false
		}
	}
	return true
}

// Encode serializes the comment block with the OpusTags magic.
func (c *VorbisComment) Encode() []byte {
	return c.EncodeWithMagic(opusTagsMagic)
}

// EncodeWithMagic serializes the comment block after the given magic:
//
//	magic
//	4 bytes:   vendor string length
//	N bytes:   vendor string
//	4 bytes:   user comment count
//	For each comment:
//	  4 bytes: comment length
//	  N bytes: comment string ("KEY=value")
func (c *VorbisComment) EncodeWithMagic(magic string) []byte {
	size := len(magic) + 4 + len(c.Vendor) + 4
	for _, cm := range c.comments {
		size += 4 + len(cm.Key) + 1 + len(cm.Value)
	}

	data := make([]byte, 0, size)
	data = append(data, magic...)
	data = appendString(data, c.Vendor)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(c.comments)))
	for _, cm := range c.comments {
		data = binary.LittleEndian.AppendUint32(data, uint32(len(cm.Key)+1+len(cm.Value)))
		data = append(data, cm.Key...)
		data = append(data, '=')
		data = append(data, cm.Value...)
	}
	return data
}

func appendString(data []byte, s string) []byte {
	data = binary.LittleEndian.AppendUint32(data, uint32(len(s)))
	return append(data, s...)
}

// DecodeVorbisComment reads a comment block that starts with magic from r.
// Bytes after the last comment are not read.
func DecodeVorbisComment(r io.Reader, magic string) (*VorbisComment, error) {
	sig := make([]byte, len(magic))
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, readError(err)
	}
	if err := ogg.ExpectMagic(sig, magic); err != nil {
		return nil, err
	}

	vendor, err := readString(r)
	if err != nil {
		return nil, fmt.Errorf("vendor: %w", err)
	}
	count, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("comment count: %w", err)
	}

	c := &VorbisComment{Vendor: vendor, comments: make([]Comment, 0, min(count, 1024))}
	for i := uint32(0); i < count; i++ {
		s, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("comment %d: %w", i, err)
		}
		key, value, ok := strings.Cut(s, "=")
		if !ok {
			return nil, ogg.Malformed("missing separator '=' in %q", s)
		}
		c.comments = append(c.comments, Comment{Key: key, Value: value})
	}
	return c, nil
}

// ParseOpusTags parses the OpusTags header carried by the given pages.
// Usually this is the second page of a stream; a header that continues on
// further pages is passed as all of its pages, in order.
func ParseOpusTags(pages ...*ogg.Page) (*VorbisComment, error) {
	size := 0
	for _, p := range pages {
		if p.GranulePos != 0 {
			return nil, ogg.Malformed("OpusTags page needs granule position 0, but has %d", p.GranulePos)
		}
		size += p.PayloadSize()
	}
	if size < minCommentHeaderSize {
		return nil, ogg.Malformed("comment packet needs a length of at least %d, but got %d", minCommentHeaderSize, size)
	}

	r := ogg.NewChainReader(func(yield func(io.Reader) bool) {
		for _, p := range pages {
			for _, seg := range p.Segments() {
				if !yield(bytes.NewReader(seg)) {
					return
				}
			}
		}
	})
	defer r.Close()
	return DecodeVorbisComment(r, opusTagsMagic)
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, readError(err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// readString reads a length-prefixed UTF-8 string.
func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	// Grow with the data actually present instead of trusting n.
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, int64(n)); err != nil {
		return "", readError(err)
	}
	if !utf8.Valid(buf.Bytes()) {
		return "", ErrInvalidUTF8
	}
	return buf.String(), nil
}

func readError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEOS
	}
	return err
}
