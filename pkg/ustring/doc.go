// Package ustring provides String, a growable byte buffer that always holds
// valid UTF-8 and draws its storage from a pluggable alloc.Allocator.
//
// Mutating methods work at character granularity: Insert, Remove, SplitOff
// and Truncate take character ordinals (0-based counts of decoded code
// points), not byte offsets, and translate them by scanning the text. No
// position cache is kept, so each indexed call costs time proportional to the
// distance from the start of the string.
//
// Basic usage:
//
//	s := ustring.FromString("hello", nil) // nil means alloc.Default()
//	s.PushStr(", world")
//	s.Push('!')                           // "hello, world!"
//	s.Insert(5, '-')                      // "hello-, world!"
//	r := s.Remove(5)                      // '-'
//	tail := s.SplitOff(5)                 // s = "hello", tail = ", world!"
//
// Validity:
//
// Every exported operation leaves the contents well-formed. Byte input is
// checked by FromBytes, PushBytes and the io.Writer methods, which report a
// *Utf8Error carrying the offset of the first bad sequence. Go strings are not
// guaranteed to be UTF-8 either, so FromString and PushStr replace any invalid
// byte with U+FFFD, exactly as ranging over the string would. The only way to
// bypass validation is FromBytesUnchecked.
//
// Errors and panics:
//
// Character indices outside their documented bounds are programmer errors and
// panic with an *IndexError. Allocation failures from the bound allocator
// panic with an *alloc.Error before any byte is modified; the Try* methods
// and the io.Writer methods return that error instead.
//
// Reading:
//
// View returns a read-only window onto the current bytes without copying or
// revalidating them. A View is valid only until the next mutation of its
// String. Use String() for an independent copy.
//
// A String must not be mutated concurrently. Distinct Strings may be used
// from different goroutines, including Strings that share an allocator.
package ustring
