package ustring

import (
	"unicode/utf8"

	"github.com/dshills/ustring/internal/engine/boundary"
	"github.com/dshills/ustring/internal/engine/bytebuf"
	"github.com/dshills/ustring/pkg/alloc"
)

// String is a growable UTF-8 string whose storage comes from an
// alloc.Allocator. The zero value is an empty String using the default
// allocator. A String must not be copied after first use; pass *String.
type String struct {
	buf bytebuf.Buffer
}

// New creates an empty String bound to a. A nil allocator means
// alloc.Default().
func New(a alloc.Allocator) *String {
	return &String{buf: bytebuf.New(a)}
}

// WithCapacity creates an empty String with room for at least n bytes.
func WithCapacity(n int, a alloc.Allocator) *String {
	buf, err := bytebuf.WithCapacity(n, a)
	must(err)
	return &String{buf: buf}
}

// FromString creates a String holding a copy of s. Invalid bytes in s are
// replaced with U+FFFD.
func FromString(s string, a alloc.Allocator) *String {
	str := WithCapacity(len(s), a)
	str.PushStr(s)
	return str
}

// FromBytes validates b and, if it is well-formed UTF-8, takes ownership of
// it as the String's storage. The caller must not use b afterwards. On failure
// the returned error is a *Utf8Error with the offset of the first invalid
// sequence.
func FromBytes(b []byte, a alloc.Allocator) (*String, error) {
	if off := boundary.Validate(b); off >= 0 {
		return nil, &Utf8Error{Offset: off}
	}
	return &String{buf: bytebuf.Adopt(b, a)}, nil
}

// FromBytesUnchecked takes ownership of b as the String's storage WITHOUT
// checking that it is valid UTF-8.
//
// UNSAFE: the caller must guarantee that b is well-formed UTF-8. Every other
// method trusts that guarantee; breaking it leads to wrong results and
// panics far from the cause. Use FromBytes unless b was produced by code that
// already proved validity.
func FromBytesUnchecked(b []byte, a alloc.Allocator) *String {
	return &String{buf: bytebuf.Adopt(b, a)}
}

// IntoBytes hands the String's storage to the caller and leaves the String
// empty. The region is never returned to the allocator: with an
// alloc.Limited its capacity stays counted against the budget for good, so
// copy out and Release instead when the budget must be recovered.
func (s *String) IntoBytes() []byte {
	return s.buf.Detach()
}

// PushStr appends t. Invalid bytes in t are replaced with U+FFFD.
func (s *String) PushStr(t string) {
	if boundary.ValidateString(t) < 0 {
		must(s.buf.AppendString(t))
		return
	}
	must(s.buf.Append(sanitize(t)))
}

// PushBytes appends p if it is valid UTF-8. Otherwise it returns a
// *Utf8Error with an offset relative to p and leaves s unchanged.
func (s *String) PushBytes(p []byte) error {
	if off := boundary.Validate(p); off >= 0 {
		return &Utf8Error{Offset: off}
	}
	return s.buf.Append(p)
}

// Push appends the UTF-8 encoding of r. Like strings.Builder, a rune that is
// not a valid Unicode scalar value is stored as U+FFFD.
func (s *String) Push(r rune) {
	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], r)
	must(s.buf.Append(enc[:n]))
}

// Append appends the contents of other. other may be s itself.
func (s *String) Append(other *String) {
	must(s.buf.Append(other.bytes()))
}

// Pop removes and returns the last character. It returns false if s is empty.
func (s *String) Pop() (rune, bool) {
	p := s.buf.Bytes()
	start := boundary.LastCharStart(p)
	if start < 0 {
		return 0, false
	}
	r, _ := utf8.DecodeRune(p[start:])
	s.buf.Truncate(start)
	return r, true
}

// Insert inserts r before the character at index i. i equal to CharCount
// appends. It panics with an *IndexError if i is out of [0, CharCount].
func (s *String) Insert(i int, r rune) {
	p := s.buf.Bytes()
	off, ok := boundary.ByteOffset(p, i)
	if !ok {
		panic(&IndexError{Op: "insertion", Index: i, Len: boundary.Count(p), Inclusive: true})
	}

	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], r)
	must(s.buf.Splice(off, off, enc[:n]))
}

// InsertStr inserts t before the character at index i, with the same bounds
// as Insert. Invalid bytes in t are replaced with U+FFFD.
func (s *String) InsertStr(i int, t string) {
	p := s.buf.Bytes()
	off, ok := boundary.ByteOffset(p, i)
	if !ok {
		panic(&IndexError{Op: "insertion", Index: i, Len: boundary.Count(p), Inclusive: true})
	}

	var repl []byte
	if boundary.ValidateString(t) < 0 {
		repl = []byte(t)
	} else {
		repl = sanitize(t)
	}
	must(s.buf.Splice(off, off, repl))
}

// Remove removes and returns the character at index i. It panics with an
// *IndexError if i is out of [0, CharCount).
func (s *String) Remove(i int) rune {
	p := s.buf.Bytes()
	off, ok := boundary.ByteOffset(p, i)
	if !ok || off == len(p) {
		panic(&IndexError{Op: "removal", Index: i, Len: boundary.Count(p)})
	}

	r, size := utf8.DecodeRune(p[off:])
	s.buf.Drain(off, off+size)
	return r
}

// SplitOff splits s at character index i. s keeps [0, i) and the returned
// String owns [i, CharCount) in new storage from a clone of s's allocator.
// It panics with an *IndexError if i is out of [0, CharCount].
func (s *String) SplitOff(i int) *String {
	p := s.buf.Bytes()
	off, ok := boundary.ByteOffset(p, i)
	if !ok {
		panic(&IndexError{Op: "split", Index: i, Len: boundary.Count(p), Inclusive: true})
	}

	tail, err := s.buf.SplitAt(off)
	must(err)
	return &String{buf: tail}
}

// Retain keeps only the characters for which keep returns true, preserving
// their order. It runs in a single pass and compacts in place. keep must not
// modify s. If keep panics, s holds the characters kept so far followed by
// the unvisited rest.
func (s *String) Retain(keep func(rune) bool) {
	p := s.buf.Bytes()
	read, write := 0, 0
	defer func() {
		s.buf.Drain(write, read)
	}()

	for read < len(p) {
		r, size := utf8.DecodeRune(p[read:])
		if keep(r) {
			if write != read {
				copy(p[write:], p[read:read+size])
			}
			write += size
		}
		read += size
	}
}

// Truncate shortens s to its first n characters. Capacity is unchanged.
// It panics with an *IndexError if n is out of [0, CharCount].
func (s *String) Truncate(n int) {
	p := s.buf.Bytes()
	off, ok := boundary.ByteOffset(p, n)
	if !ok {
		panic(&IndexError{Op: "truncate", Index: n, Len: boundary.Count(p), Inclusive: true})
	}
	s.buf.Truncate(off)
}

// Clear removes all contents, keeping the capacity.
func (s *String) Clear() {
	s.buf.Truncate(0)
}

// Reserve ensures capacity for at least additional more bytes, possibly more
// to keep appends amortized.
func (s *String) Reserve(additional int) {
	s.buf.Reserve(additional)
}

// ReserveExact ensures capacity for at least additional more bytes without
// deliberate slack.
func (s *String) ReserveExact(additional int) {
	s.buf.ReserveExact(additional)
}

// TryReserve is Reserve that returns allocation failures.
func (s *String) TryReserve(additional int) error {
	return s.buf.TryReserve(additional)
}

// TryReserveExact is ReserveExact that returns allocation failures.
func (s *String) TryReserveExact(additional int) error {
	return s.buf.TryReserveExact(additional)
}

// ShrinkToFit reduces capacity toward the length as far as the allocator
// allows.
func (s *String) ShrinkToFit() {
	s.buf.ShrinkToFit()
}

// Len returns the length in bytes.
func (s *String) Len() int {
	return len(s.bytes())
}

// Cap returns the capacity in bytes.
func (s *String) Cap() int {
	if s == nil {
		return 0
	}
	return s.buf.Cap()
}

// CharCount returns the number of characters. It scans the whole string.
func (s *String) CharCount() int {
	return boundary.Count(s.bytes())
}

// ByteOffset returns the byte offset where character i starts. i == CharCount
// maps to Len. ok is false when i is out of range.
func (s *String) ByteOffset(i int) (off int, ok bool) {
	return boundary.ByteOffset(s.bytes(), i)
}

// CharIndex returns the ordinal of the character starting at byte offset off.
// off == Len maps to CharCount. ok is false when off is out of range or falls
// inside a character.
func (s *String) CharIndex(off int) (i int, ok bool) {
	p := s.bytes()
	if off < 0 || off > len(p) || off < len(p) && !boundary.IsCharStart(p[off]) {
		return 0, false
	}
	return boundary.CharIndex(p, off), true
}

// IsEmpty returns true if s holds no text.
func (s *String) IsEmpty() bool {
	return s.Len() == 0
}

// Allocator returns the allocator bound to s.
func (s *String) Allocator() alloc.Allocator {
	return s.buf.Allocator()
}

// Clone returns a copy of s bound to a clone of its allocator.
func (s *String) Clone() *String {
	return s.CloneIn(s.buf.Allocator().Clone())
}

// CloneIn returns a copy of s whose storage comes from a.
func (s *String) CloneIn(a alloc.Allocator) *String {
	c := WithCapacity(s.Len(), a)
	must(c.buf.Append(s.bytes()))
	return c
}

// Release returns the storage to the allocator and leaves s empty.
// Views obtained earlier must not be used afterwards.
func (s *String) Release() {
	s.buf.Release()
}

// String returns a copy of the contents.
func (s *String) String() string {
	return string(s.bytes())
}

func (s *String) bytes() []byte {
	if s == nil {
		return nil
	}
	return s.buf.Bytes()
}

// sanitize re-encodes t with every invalid byte replaced by U+FFFD.
func sanitize(t string) []byte {
	out := make([]byte, 0, len(t)+len(t)/2)
	for _, r := range t {
		out = utf8.AppendRune(out, r)
	}
	return out
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
