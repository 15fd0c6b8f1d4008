package opusmeta

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/thesyncim/opusmeta/container/ogg"
	"github.com/thesyncim/opusmeta/internal/atomicfile"
)

// Lacing selects how a rewritten comment header is laced into segments.
type Lacing int

const (
	// LacingTerminated ends the segment table with a zero-length segment
	// when the header size is a multiple of 255, so the header packet ends
	// on its page as the Ogg lacing rule requires.
	LacingTerminated Lacing = iota

	// LacingCompat splits the header into 255-byte chunks and nothing
	// else. The output is byte-compatible with older tagging tools, but a
	// header whose size is a multiple of 255 appears to continue on the
	// next page to strict readers.
	LacingCompat
)

// RewriteConfig configures RewriteTagsWithConfig.
// The zero value is the default configuration.
type RewriteConfig struct {
	// Lacing selects the segment layout of the new comment header.
	Lacing Lacing
}

// RewriteTags copies the Opus stream src to dst with its comment header
// replaced by tags. See RewriteTagsWithConfig.
//
// RewriteTags uses LacingTerminated: a header whose size is a multiple of
// 255 gets a trailing zero-length segment (510 bytes are laced as
// [255 255 0]). Older tagging tools write [255 255] instead; use
// RewriteTagsWithConfig with LacingCompat for byte-identical output.
func RewriteTags(dst io.Writer, src io.Reader, tags *VorbisComment) error {
	return RewriteTagsWithConfig(dst, src, tags, RewriteConfig{})
}

// RewriteTagsWithConfig copies the Opus stream src to dst with its comment
// header replaced by tags.
//
// The first two pages of src are read and validated as OpusHead and
// OpusTags. The second page gets the encoded tags as its new segment table
// and both pages are written to dst; everything after them is copied
// unchanged. Only the comment header's page is re-encoded, so the pages
// that follow keep their bytes even when the header changes size.
//
// Nothing is written to dst unless both headers are valid and the new
// header fits into one page. A comment header that spans several pages in
// src is rejected, since the pages after it would need renumbering.
func RewriteTagsWithConfig(dst io.Writer, src io.Reader, tags *VorbisComment, config RewriteConfig) error {
	pr := ogg.NewPageReader(src)
	headPage, err := nextHeaderPage(pr, "first")
	if err != nil {
		return err
	}
	if _, err := ParseOpusHead(headPage); err != nil {
		return err
	}
	tagsPage, err := nextHeaderPage(pr, "second")
	if err != nil {
		return err
	}

	// An unterminated header page is either followed by its continuation,
	// which can't be kept, or was written with LacingCompat. The page read
	// to tell them apart is written back unchanged.
	var lookahead *ogg.Page
	if !tagsPage.Complete() {
		lookahead, err = pr.Next()
		switch {
		case err == io.EOF:
			lookahead = nil
		case err != nil:
			return err
		case lookahead.IsContinuation() && lookahead.SerialNumber == tagsPage.SerialNumber:
			return ogg.Malformed("comment header continues on page %d, multi-page headers can't be rewritten",
				lookahead.PageSequence)
		}
	}
	if _, err := ParseOpusTags(tagsPage); err != nil {
		return err
	}

	segments := ogg.SplitSegments(tags.Encode(), config.Lacing == LacingTerminated)
	if err := tagsPage.SetSegments(segments); err != nil {
		return fmt.Errorf("%w: %w", ErrTagsTooLarge, err)
	}

	for _, p := range []*ogg.Page{headPage, tagsPage, lookahead} {
		if p == nil {
			continue
		}
		if _, err := p.WriteTo(dst); err != nil {
			return err
		}
	}
	_, err = io.Copy(dst, src)
	return err
}

// WriteTagsFile replaces the comment header of the Opus file at path.
// See WriteTagsFileWithConfig.
func WriteTagsFile(path string, tags *VorbisComment) error {
	return WriteTagsFileWithConfig(path, tags, RewriteConfig{})
}

// WriteTagsFileWithConfig replaces the comment header of the Opus file at
// path. The new stream is written to a temporary file next to path, which
// replaces the original only after the whole stream was written. On any
// error the original file is left untouched.
func WriteTagsFileWithConfig(path string, tags *VorbisComment, config RewriteConfig) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	err = atomicfile.Replace(path, func(w io.Writer) error {
		return RewriteTagsWithConfig(w, src, tags, config)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// UpdateTagsFile reads the comment header of the Opus file at path, passes
// it to update and writes the result back. If update returns an error the
// file is not touched and the error is returned.
func UpdateTagsFile(path string, update func(tags *VorbisComment) error) error {
	if update == nil {
		return errors.New("opusmeta: nil update function")
	}
	meta, err := ReadMetaFile(path)
	if err != nil {
		return err
	}
	tags := meta.Tags
	if err := update(&tags); err != nil {
		return err
	}
	return WriteTagsFile(path, &tags)
}
