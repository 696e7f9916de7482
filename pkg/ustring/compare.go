package ustring

import (
	"bytes"
	"hash/maphash"
)

// Comparison and hashing look only at the text. Two Strings with the same
// contents are equal and hash alike whatever allocators back them. A nil
// *String compares as empty.

// Equal reports whether s and other hold the same text.
func (s *String) Equal(other *String) bool {
	return bytes.Equal(s.bytes(), other.bytes())
}

// EqualString reports whether s holds exactly t.
func (s *String) EqualString(t string) bool {
	return string(s.bytes()) == t
}

// Compare returns -1, 0 or 1 as s sorts before, equal to or after other.
// Byte order of UTF-8 matches code point order.
func (s *String) Compare(other *String) int {
	return bytes.Compare(s.bytes(), other.bytes())
}

// Less reports whether s sorts before other.
func (s *String) Less(other *String) bool {
	return s.Compare(other) < 0
}

// Hash returns the hash of the text under seed.
func (s *String) Hash(seed maphash.Seed) uint64 {
	return maphash.Bytes(seed, s.bytes())
}

// WriteHash feeds the text into h.
func (s *String) WriteHash(h *maphash.Hash) {
	_, _ = h.Write(s.bytes())
}
