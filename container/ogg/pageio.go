package ogg

import (
	"errors"
	"io"
	"iter"
)

// PageReader reads consecutive pages from a stream.
//
// It is a two-state machine: active until the first clean end or error,
// exhausted afterwards. Once exhausted it never reads from the underlying
// stream again, so a partially consumed page can't desynchronize later reads.
type PageReader struct {
	r    io.Reader
	done bool
	err  error
}

// NewPageReader returns a PageReader reading from r.
// r is read unbuffered: after Next returns a page, r is positioned exactly
// after it.
func NewPageReader(r io.Reader) *PageReader {
	return &PageReader{r: r}
}

// Next returns the next page.
// It returns io.EOF when the stream ended on a page boundary. Any other
// error is returned once; later calls return io.EOF.
func (pr *PageReader) Next() (*Page, error) {
	if pr.done {
		return nil, io.EOF
	}
	p, err := ReadPage(pr.r)
	if err != nil {
		pr.done = true
		if errors.Is(err, ErrNoMoreData) {
			return nil, io.EOF
		}
		pr.err = err
		return nil, err
	}
	return p, nil
}

// Err returns the error that ended the iteration, or nil after a clean end.
func (pr *PageReader) Err() error {
	return pr.err
}

// Pages returns an iterator over the pages of r.
// The sequence stops cleanly at the end of the stream; a decode error is
// yielded once and ends the sequence.
func Pages(r io.Reader) iter.Seq2[*Page, error] {
	return func(yield func(*Page, error) bool) {
		pr := NewPageReader(r)
		for {
			p, err := pr.Next()
			if err == io.EOF {
				return
			}
			if !yield(p, err) || err != nil {
				return
			}
		}
	}
}
