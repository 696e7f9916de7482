// Package boundary maps between character ordinals and byte offsets in
// UTF-8 text.
//
// All functions scan from the start of the slice (or backwards from its end
// for LastCharStart) and keep no state between calls, so indexed access costs
// time proportional to the distance scanned. Apart from Validate, the
// functions assume their input is already valid UTF-8.
package boundary

import "unicode/utf8"

// IsCharStart returns true if the byte is the start of a UTF-8 sequence.
func IsCharStart(b byte) bool {
	// Continuation bytes are 10xxxxxx.
	return b&0xC0 != 0x80
}

// SequenceLen returns the encoded length announced by a lead byte.
// It returns 0 for continuation bytes and bytes that never start a sequence.
func SequenceLen(lead byte) int {
	switch {
	case lead < 0x80:
		return 1
	case lead&0xE0 == 0xC0:
		return 2
	case lead&0xF0 == 0xE0:
		return 3
	case lead&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}

// ByteOffset returns the byte offset of the n-th character of p.
// n equal to the character count maps to len(p). It returns false when n is
// negative or greater than the character count.
func ByteOffset(p []byte, n int) (int, bool) {
	if n < 0 {
		return 0, false
	}

	off := 0
	for i := 0; i < n; i++ {
		if off >= len(p) {
			return len(p), false
		}
		off += step(p[off])
	}
	if off > len(p) {
		off = len(p)
	}
	return off, true
}

// CharIndex returns the number of characters that start before byte offset
// off. An offset inside a sequence counts that sequence.
func CharIndex(p []byte, off int) int {
	if off <= 0 {
		return 0
	}
	if off > len(p) {
		off = len(p)
	}

	n := 0
	for i := 0; i < off; i++ {
		if IsCharStart(p[i]) {
			n++
		}
	}
	return n
}

// Count returns the number of characters in p.
func Count(p []byte) int {
	return utf8.RuneCount(p)
}

// LastCharStart returns the offset of the final character of p, found by
// stepping back over continuation bytes. It returns -1 for an empty slice.
func LastCharStart(p []byte) int {
	if len(p) == 0 {
		return -1
	}

	i := len(p) - 1
	limit := max(len(p)-utf8.UTFMax, 0)
	for i > limit && !IsCharStart(p[i]) {
		i--
	}
	return i
}

// Validate checks p for well-formed UTF-8 and returns the offset of the first
// invalid sequence, or -1 if p is valid. Overlong encodings, surrogate halves,
// values above U+10FFFF and truncated sequences are all rejected.
func Validate(p []byte) int {
	for i := 0; i < len(p); {
		if p[i] < utf8.RuneSelf {
			i++
			continue
		}

		r, size := utf8.DecodeRune(p[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// ValidateString is Validate for strings.
func ValidateString(s string) int {
	for i := 0; i < len(s); {
		if s[i] < utf8.RuneSelf {
			i++
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// step is SequenceLen with a floor of one byte so scans always advance.
func step(b byte) int {
	if n := SequenceLen(b); n > 0 {
		return n
	}
	return 1
}
