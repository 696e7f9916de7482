package ustring

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dshills/ustring/internal/engine/boundary"
	"github.com/dshills/ustring/pkg/alloc"
)

var (
	_ io.Writer       = (*String)(nil)
	_ io.StringWriter = (*String)(nil)
	_ io.ByteWriter   = (*String)(nil)
	_ fmt.Stringer    = (*String)(nil)
)

// Write implements io.Writer. p must be complete, valid UTF-8; otherwise
// nothing is written and the error is a *Utf8Error. Allocation failures are
// returned as *alloc.Error. Either way s is unchanged on error.
func (s *String) Write(p []byte) (int, error) {
	if err := s.PushBytes(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteString implements io.StringWriter with the same rules as Write.
func (s *String) WriteString(t string) (int, error) {
	if off := boundary.ValidateString(t); off >= 0 {
		return 0, &Utf8Error{Offset: off}
	}
	if err := s.buf.AppendString(t); err != nil {
		return 0, err
	}
	return len(t), nil
}

// WriteByte implements io.ByteWriter. Only ASCII bytes are accepted, since
// any other single byte would leave a partial sequence behind.
func (s *String) WriteByte(c byte) error {
	if c >= utf8.RuneSelf {
		return &Utf8Error{Offset: 0}
	}
	return s.buf.AppendByte(c)
}

// WriteRune appends r and returns the number of bytes written. Invalid runes
// are stored as U+FFFD.
func (s *String) WriteRune(r rune) (int, error) {
	var enc [utf8.UTFMax]byte
	n := utf8.EncodeRune(enc[:], r)
	if err := s.buf.Append(enc[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

// Format builds a new String from a fmt template, drawing storage from a.
func Format(a alloc.Allocator, format string, args ...any) (*String, error) {
	s := New(a)
	if err := s.AppendFormat(format, args...); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

// AppendFormat appends the result of formatting args with format. Capacity
// for the template's literal text is reserved before any argument is
// rendered. On error s is unchanged apart from possibly larger capacity.
func (s *String) AppendFormat(format string, args ...any) error {
	if err := s.TryReserve(literalLen(format)); err != nil {
		return err
	}
	w := sink{dst: s}
	_, err := fmt.Fprintf(&w, format, args...)
	return err
}

// sink is the writer handed to fmt during AppendFormat. It is scoped to one
// call and never escapes it.
type sink struct {
	dst *String
}

func (w *sink) Write(p []byte) (int, error) {
	return w.dst.Write(p)
}

// literalLen returns the number of bytes the template contributes on its own:
// everything outside formatting verbs, with "%%" counted once.
func literalLen(format string) int {
	n := 0
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			n++
			continue
		}
		i++
		if i < len(format) && format[i] == '%' {
			n++
			continue
		}
		// Skip flags, width, precision and argument indexes up to the verb.
		for i < len(format) && !isVerbLetter(format[i]) {
			i++
		}
	}
	return n
}

func isVerbLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
