package ustring

import (
	"errors"
	"fmt"
)

// Errors returned by String operations.
var (
	// ErrInvalidUTF8 is matched by every *Utf8Error.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")

	// ErrIndexOutOfRange is matched by every *IndexError.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotString indicates a serialized value was not a string scalar.
	ErrNotString = errors.New("value is not a string")

	// ErrPathNotFound indicates a JSON path matched nothing.
	ErrPathNotFound = errors.New("path not found")
)

// Utf8Error reports bytes that are not well-formed UTF-8.
type Utf8Error struct {
	// Offset is the byte offset of the first invalid sequence.
	Offset int
}

// Error implements the error interface.
func (e *Utf8Error) Error() string {
	return fmt.Sprintf("invalid UTF-8 sequence at byte offset %d", e.Offset)
}

// Unwrap returns ErrInvalidUTF8.
func (e *Utf8Error) Unwrap() error {
	return ErrInvalidUTF8
}

// IndexError is the panic value for a character index outside its bound.
type IndexError struct {
	// Op names the operation: "insertion", "removal", "truncate" or "split".
	Op string
	// Index is the character index that was passed.
	Index int
	// Len is the character count at the time of the call.
	Len int
	// Inclusive is true when Index may equal Len.
	Inclusive bool
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	rel := "<"
	if e.Inclusive {
		rel = "<="
	}
	return fmt.Sprintf("%s index (is %d) should be %s len (is %d)", e.Op, e.Index, rel, e.Len)
}

// Unwrap returns ErrIndexOutOfRange.
func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}
