package ustring

import (
	"encoding"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"

	"github.com/dshills/ustring/internal/engine/boundary"
	"github.com/dshills/ustring/pkg/alloc"
)

// A String serializes as a plain text scalar in every format. Decoding always
// goes through validation; there is no unchecked path from serialized data.
// Struct fields should be declared as *String so encoders find the methods.

var (
	_ encoding.TextMarshaler   = (*String)(nil)
	_ encoding.TextUnmarshaler = (*String)(nil)
	_ yaml.Marshaler           = (*String)(nil)
	_ yaml.Unmarshaler         = (*String)(nil)
)

// MarshalText implements encoding.TextMarshaler. encoding/json and TOML
// encoders use it to write a String as a string value.
func (s *String) MarshalText() ([]byte, error) {
	return append([]byte{}, s.bytes()...), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. text is validated and
// copied; s keeps its allocator. On error s is unchanged.
func (s *String) UnmarshalText(text []byte) error {
	return s.replace(text)
}

// UnmarshalJSON decodes a JSON string. null leaves s unchanged; any other
// non-string value is an error wrapping ErrNotString.
func (s *String) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("ustring: malformed JSON: %q", truncateForError(data))
	}
	res := gjson.ParseBytes(data)
	switch res.Type {
	case gjson.Null:
		return nil
	case gjson.String:
		return s.replace([]byte(res.Str))
	default:
		return fmt.Errorf("%w: JSON %s", ErrNotString, res.Type)
	}
}

// FromJSONPath extracts the string at path (gjson syntax) from the JSON
// document doc. The value is validated like FromBytes.
func FromJSONPath(doc []byte, path string, a alloc.Allocator) (*String, error) {
	res := gjson.GetBytes(doc, path)
	if !res.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if res.Type != gjson.String {
		return nil, fmt.Errorf("%w: %s is JSON %s", ErrNotString, path, res.Type)
	}
	return FromBytes([]byte(res.Str), a)
}

// SetJSONPath returns a copy of doc with the value at path (sjson syntax) set
// to the text of s. Missing objects along the path are created.
func (s *String) SetJSONPath(doc []byte, path string) ([]byte, error) {
	out, err := sjson.SetBytes(doc, path, s.String())
	if err != nil {
		return nil, fmt.Errorf("set %s: %w", path, err)
	}
	return out, nil
}

// MarshalYAML implements yaml.Marshaler.
func (s *String) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Only scalar nodes are accepted.
func (s *String) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: YAML node at line %d", ErrNotString, node.Line)
	}
	return s.replace([]byte(node.Value))
}

// replace swaps the contents of s for text after validating it.
func (s *String) replace(text []byte) error {
	if off := boundary.Validate(text); off >= 0 {
		return &Utf8Error{Offset: off}
	}
	return s.buf.Splice(0, s.buf.Len(), text)
}

func truncateForError(data []byte) []byte {
	const limit = 32
	if len(data) > limit {
		return data[:limit]
	}
	return data
}
