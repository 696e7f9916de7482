package ustring

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"
	"unsafe"
)

// View is a read-only window onto a String's bytes. It shares memory with the
// String and performs no validation: its contents are trusted because the
// String keeps them well-formed. A View is valid only until the next
// mutation or Release of the String it came from; after that its contents are
// undefined. The zero View is empty.
type View struct {
	s string
}

// View returns a view of the current contents without copying.
func (s *String) View() View {
	return View{s: borrow(s.bytes())}
}

// borrow reinterprets p as a string sharing its memory.
func borrow(p []byte) string {
	if len(p) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(p), len(p))
}

// String returns an independent copy of the viewed text.
func (v View) String() string {
	return strings.Clone(v.s)
}

// Borrow returns the viewed text as a Go string WITHOUT copying. The result
// shares memory with the String and carries the same lifetime restriction as
// the View: it must not be used, stored or compared after the String changes.
func (v View) Borrow() string {
	return v.s
}

// Len returns the length in bytes.
func (v View) Len() int {
	return len(v.s)
}

// CharCount returns the number of characters.
func (v View) CharCount() int {
	return utf8.RuneCountInString(v.s)
}

// IsEmpty returns true if the view holds no text.
func (v View) IsEmpty() bool {
	return len(v.s) == 0
}

// Chars returns an iterator over the characters.
func (v View) Chars() iter.Seq[rune] {
	return func(yield func(rune) bool) {
		for _, r := range v.s {
			if !yield(r) {
				return
			}
		}
	}
}

// CharIndices returns an iterator over (byte offset, character) pairs.
func (v View) CharIndices() iter.Seq2[int, rune] {
	return func(yield func(int, rune) bool) {
		for i, r := range v.s {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Bytes returns an iterator over the raw bytes.
func (v View) Bytes() iter.Seq[byte] {
	return func(yield func(byte) bool) {
		for i := 0; i < len(v.s); i++ {
			if !yield(v.s[i]) {
				return
			}
		}
	}
}

// Contains reports whether substr is within the view.
func (v View) Contains(substr string) bool {
	return strings.Contains(v.s, substr)
}

// ContainsRune reports whether r is within the view.
func (v View) ContainsRune(r rune) bool {
	return strings.ContainsRune(v.s, r)
}

// HasPrefix reports whether the view begins with prefix.
func (v View) HasPrefix(prefix string) bool {
	return strings.HasPrefix(v.s, prefix)
}

// HasSuffix reports whether the view ends with suffix.
func (v View) HasSuffix(suffix string) bool {
	return strings.HasSuffix(v.s, suffix)
}

// Index returns the byte offset of the first instance of substr, or -1.
func (v View) Index(substr string) int {
	return strings.Index(v.s, substr)
}

// IndexRune returns the byte offset of the first instance of r, or -1.
func (v View) IndexRune(r rune) int {
	return strings.IndexRune(v.s, r)
}

// Equal reports whether the view holds exactly t.
func (v View) Equal(t string) bool {
	return v.s == t
}

// IsCharBoundary reports whether byte offset i starts a character or is the
// end of the view.
func (v View) IsCharBoundary(i int) bool {
	if i == 0 || i == len(v.s) {
		return true
	}
	if i < 0 || i > len(v.s) {
		return false
	}
	return utf8.RuneStart(v.s[i])
}

// Slice returns the sub-view between byte offsets start and end. It panics if
// either offset is out of range or not on a character boundary.
func (v View) Slice(start, end int) View {
	if start < 0 || start > end || end > len(v.s) {
		panic(fmt.Sprintf("ustring: byte range [%d, %d) out of range [0, %d]", start, end, len(v.s)))
	}
	v.checkBoundary(start)
	v.checkBoundary(end)
	return View{s: v.s[start:end]}
}

// SplitAt divides the view at byte offset mid into [0, mid) and [mid, Len).
// It panics if mid is out of range or not on a character boundary.
func (v View) SplitAt(mid int) (View, View) {
	if mid < 0 || mid > len(v.s) {
		panic(fmt.Sprintf("ustring: byte index %d out of range [0, %d]", mid, len(v.s)))
	}
	v.checkBoundary(mid)
	return View{s: v.s[:mid]}, View{s: v.s[mid:]}
}

func (v View) checkBoundary(i int) {
	if !v.IsCharBoundary(i) {
		panic(fmt.Sprintf("ustring: byte index %d is not a char boundary", i))
	}
}
