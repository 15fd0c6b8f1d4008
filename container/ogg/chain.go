package ogg

import (
	"bytes"
	"io"
	"iter"
	"slices"
)

// ChainReader presents a sequence of readers as one stream.
//
// Reads are served from the current source until it reports io.EOF, then
// the next source takes over. An empty sequence reads as an exhausted
// stream. A ChainReader starts no goroutines; abandoning it before io.EOF
// leaks nothing.
type ChainReader struct {
	sources []io.Reader
}

// NewChainReader returns a ChainReader over sources.
// The sequence is collected up front; the readers themselves are not read
// until needed.
func NewChainReader(sources iter.Seq[io.Reader]) *ChainReader {
	return &ChainReader{sources: slices.Collect(sources)}
}

// ChainBytes returns a ChainReader over byte slices.
func ChainBytes(bufs ...[]byte) *ChainReader {
	sources := make([]io.Reader, len(bufs))
	for i, b := range bufs {
		sources[i] = bytes.NewReader(b)
	}
	return &ChainReader{sources: sources}
}

// Read implements io.Reader.
func (c *ChainReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(c.sources) > 0 {
		n, err := c.sources[0].Read(p)
		if err == io.EOF {
			c.sources[0] = nil
			c.sources = c.sources[1:]
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
	return 0, io.EOF
}

// Close drops the remaining sources. Later reads return io.EOF.
// Close is optional.
func (c *ChainReader) Close() error {
	clear(c.sources)
	c.sources = nil
	return nil
}
