package ustring

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dshills/ustring/internal/engine/boundary"
	"github.com/dshills/ustring/pkg/alloc"
)

// FromBytesLossy builds a String from b, replacing each invalid byte with
// U+FFFD. Valid input is adopted without copying, as in FromBytes.
func FromBytesLossy(b []byte, a alloc.Allocator) *String {
	if boundary.Validate(b) < 0 {
		return FromBytesUnchecked(b, a)
	}

	out, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), b)
	if err != nil {
		// The UTF-8 decoder never fails on complete input.
		return FromString(string(b), a)
	}
	s := WithCapacity(len(out), a)
	must(s.buf.Append(out))
	return s
}

// FromReaderLossy reads r to EOF and builds a String, replacing invalid bytes
// with U+FFFD. Sequences split across reads are reassembled before they are
// judged.
func FromReaderLossy(r io.Reader, a alloc.Allocator) (*String, error) {
	out, err := io.ReadAll(transform.NewReader(r, unicode.UTF8.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	s := WithCapacity(len(out), a)
	if err := s.PushBytes(out); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}
