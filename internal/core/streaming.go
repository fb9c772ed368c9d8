package core

// streaming.go provides reader wrappers used while parsing uploads:
//
//   - NewBOMSkippingReader: removes the UTF-8 BOM (0xEF 0xBB 0xBF) that
//     Windows programs commonly prepend
//   - CountingReader: tracks bytes read for logging
//
// Invalid UTF-8 is not sanitized: an upload that does not decode is rejected
// as a whole (see validateUTF8).

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewBOMSkippingReader returns a reader over r without a leading UTF-8 BOM.
// Content that merely starts with a partial BOM is passed through untouched.
func NewBOMSkippingReader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// validateUTF8 checks every field of a record read from the given line.
func validateUTF8(record []string, line int) error {
	for _, field := range record {
		if !utf8.ValidString(field) {
			return fmt.Errorf("%w (line %d)", ErrInvalidEncoding, line)
		}
	}
	return nil
}
