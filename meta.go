package opusmeta

import (
	"fmt"
	"io"
	"os"

	"github.com/thesyncim/opusmeta/container/ogg"
)

// OpusMeta is the metadata read from the first pages of an Opus stream.
type OpusMeta struct {
	Head OpusHead
	Tags VorbisComment
}

// ReadMeta reads the OpusHead and OpusTags headers from the start of r.
//
// r is read page by page without buffering. If the comment header does not
// end on its first page, the continuation pages that follow are read too.
func ReadMeta(r io.Reader) (*OpusMeta, error) {
	pr := ogg.NewPageReader(r)
	head, err := readHeadPage(pr)
	if err != nil {
		return nil, err
	}
	tagsPage, err := nextHeaderPage(pr, "second")
	if err != nil {
		return nil, err
	}

	pages := []*ogg.Page{tagsPage}
	for !pages[len(pages)-1].Complete() {
		p, err := pr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if !p.IsContinuation() || p.SerialNumber != tagsPage.SerialNumber {
			break
		}
		pages = append(pages, p)
	}

	tags, err := ParseOpusTags(pages...)
	if err != nil {
		return nil, err
	}
	return &OpusMeta{Head: *head, Tags: *tags}, nil
}

// ReadMetaFile reads the metadata of the Opus file at path.
func ReadMetaFile(path string) (*OpusMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta, err := ReadMeta(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return meta, nil
}

func readHeadPage(pr *ogg.PageReader) (*OpusHead, error) {
	p, err := nextHeaderPage(pr, "first")
	if err != nil {
		return nil, err
	}
	return ParseOpusHead(p)
}

// nextHeaderPage reads a page that must exist; a clean end of the stream
// is reported as malformed data.
func nextHeaderPage(pr *ogg.PageReader, which string) (*ogg.Page, error) {
	p, err := pr.Next()
	if err == io.EOF {
		return nil, ogg.Malformed("missing %s ogg page", which)
	}
	return p, err
}
