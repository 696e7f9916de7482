// Package loader reads ustring configuration sources into generic maps.
//
// A TOML file and USTRING_* environment variables each produce a
// map[string]any keyed by section ("allocator", "growth"). The config package
// stacks those layers over its defaults with DeepMerge and decodes the result.
package loader

import (
	"io/fs"
	"os"
)

// Source is one configuration layer.
type Source interface {
	// Name identifies the layer in error messages.
	Name() string
	// Load returns the layer's settings. A layer with nothing to say returns
	// an empty or nil map.
	Load() (map[string]any, error)
}

var (
	_ Source = TOMLFile{}
	_ Source = (*EnvLoader)(nil)
)

// FileSystem abstracts file access so tests can use an in-memory tree.
// fstest.MapFS satisfies it.
type FileSystem interface {
	fs.FS
	ReadFile(path string) ([]byte, error)
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}
