package loader

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// DefaultIncludeDepth bounds "@include" nesting when TOMLFile.MaxDepth is unset.
const DefaultIncludeDepth = 8

// includeKey names the files a TOML file layers itself over.
const includeKey = "@include"

// ErrIncludeDepth indicates @include directives nested deeper than allowed.
var ErrIncludeDepth = errors.New("include depth exceeded")

// TOMLFile is a configuration layer read from a TOML file such as:
//
//	"@include" = ["base.toml"]
//
//	[allocator]
//	kind = "limited"
//	limit_bytes = 1048576
//
//	[growth]
//	min_capacity = 64
//
// Each include is read first, relative to the including file, and the file's
// own settings are merged over it. A missing file is an error matching
// fs.ErrNotExist.
type TOMLFile struct {
	FS       FileSystem // nil means the OS file system
	Path     string
	MaxDepth int // 0 means DefaultIncludeDepth
}

// Name returns the file path.
func (f TOMLFile) Name() string {
	return f.Path
}

// Load reads the file and its includes.
func (f TOMLFile) Load() (map[string]any, error) {
	fsys := f.FS
	if fsys == nil {
		fsys = DefaultFS()
	}
	depth := f.MaxDepth
	if depth <= 0 {
		depth = DefaultIncludeDepth
	}
	return readTOML(fsys, f.Path, depth)
}

func readTOML(fsys FileSystem, path string, depth int) (map[string]any, error) {
	if depth == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrIncludeDepth)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	settings, err := DecodeTOML(path, data)
	if err != nil {
		return nil, err
	}

	includes, err := includeList(settings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	delete(settings, includeKey)

	layered := make(map[string]any)
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		sub, err := readTOML(fsys, inc, depth-1)
		if err != nil {
			return nil, fmt.Errorf("including %s: %w", inc, err)
		}
		layered = DeepMerge(layered, sub)
	}
	return DeepMerge(layered, settings), nil
}

// includeList reads the @include value, which is one path or a list of them.
func includeList(settings map[string]any) ([]string, error) {
	switch v := settings[includeKey].(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		paths := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s entry %d is %T, want string", includeKey, i, item)
			}
			paths[i] = s
		}
		return paths, nil
	default:
		return nil, fmt.Errorf("%s is %T, want string or array of strings", includeKey, v)
	}
}

// DecodeTOML parses data into a settings map. source names the data in a
// *ParseError.
func DecodeTOML(source string, data []byte) (map[string]any, error) {
	settings := make(map[string]any)
	if err := toml.Unmarshal(data, &settings); err != nil {
		perr := &ParseError{Path: source, Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}
	return settings, nil
}

// ParseError reports malformed TOML with its position when known.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DeepMerge overlays src onto dst and returns dst, which is allocated when
// nil. Tables present on both sides merge key by key; any other src value
// replaces what dst holds.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, val := range src {
		srcTable, ok := val.(map[string]any)
		if dstTable, isTable := dst[key].(map[string]any); ok && isTable {
			dst[key] = DeepMerge(dstTable, srcTable)
			continue
		}
		dst[key] = val
	}
	return dst
}

// Clone returns a deep copy of a settings map.
func Clone(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, val := range src {
		dst[key] = cloneValue(val)
	}
	return dst
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return Clone(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
