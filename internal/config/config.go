package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/dshills/ustring/internal/config/loader"
	"github.com/dshills/ustring/pkg/alloc"
)

// Allocator kinds.
const (
	KindHeap    = "heap"
	KindPool    = "pool"
	KindLimited = "limited"
)

// DefaultLimitBytes is the budget of a "limited" allocator when none is set.
const DefaultLimitBytes = 64 << 20

// maxIncludeDepth bounds nested @include directives in config files.
const maxIncludeDepth = 8

// AllocatorConfig selects and tunes the allocation strategy.
type AllocatorConfig struct {
	Kind       string `toml:"kind"`
	LimitBytes int64  `toml:"limit_bytes"`
	MaxPooled  int    `toml:"max_pooled"`
}

// GrowthConfig tunes how strings are first sized.
type GrowthConfig struct {
	// MinCapacity is reserved up front for every string a tool creates.
	MinCapacity int `toml:"min_capacity"`
}

// Config is the decoded, merged configuration.
type Config struct {
	Allocator AllocatorConfig `toml:"allocator"`
	Growth    GrowthConfig    `toml:"growth"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Allocator: AllocatorConfig{
			Kind:       KindHeap,
			LimitBytes: DefaultLimitBytes,
			MaxPooled:  alloc.DefaultMaxPooled,
		},
	}
}

// defaults is the built-in layer in map form. Load clones it before merging.
var defaults = Default().Map()

// sections are the top-level tables a config source may set.
var sections = slices.Sorted(maps.Keys(defaults))

// Option configures Load.
type Option func(*options)

type options struct {
	fs        loader.FileSystem
	envPrefix string
	useEnv    bool
}

// WithFileSystem reads config files from fs instead of the OS.
func WithFileSystem(fs loader.FileSystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithEnvPrefix changes the environment variable prefix from USTRING_.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithoutEnv ignores environment variables.
func WithoutEnv() Option {
	return func(o *options) {
		o.useEnv = false
	}
}

// Load builds a Config from the defaults, the TOML file at path and the
// environment, in increasing priority. An empty path skips the file layer;
// a non-empty path that does not exist is an error.
func Load(path string, opts ...Option) (Config, error) {
	o := options{
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		useEnv:    true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var layers []loader.Source
	if path != "" {
		layers = append(layers, loader.TOMLFile{FS: o.fs, Path: path, MaxDepth: maxIncludeDepth})
	}
	if o.useEnv {
		layers = append(layers, loader.NewEnvLoader(o.envPrefix, sections...))
	}

	merged := loader.Clone(defaults)
	for _, layer := range layers {
		settings, err := layer.Load()
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		if err != nil {
			return Config{}, fmt.Errorf("loading %s: %w", layer.Name(), err)
		}
		merged = loader.DeepMerge(merged, settings)
	}

	cfg, err := FromMap(merged)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// knownSettings lists every accepted setting path.
var knownSettings = map[string]bool{
	"allocator.kind":        true,
	"allocator.limit_bytes": true,
	"allocator.max_pooled":  true,
	"growth.min_capacity":   true,
}

// FromMap decodes a settings map. Settings absent from m keep their default.
// Unknown settings and values of the wrong type are errors.
func FromMap(m map[string]any) (Config, error) {
	if unknown := unknownPaths(m, ""); len(unknown) > 0 {
		return Config{}, &ValidationError{
			Path:    unknown[0],
			Message: "unknown setting",
			Value:   getPathOrNil(m, unknown[0]),
		}
	}

	c := Default()
	maxPooled := int64(c.Allocator.MaxPooled)
	minCapacity := int64(c.Growth.MinCapacity)

	if err := decodeString(m, "allocator.kind", &c.Allocator.Kind); err != nil {
		return Config{}, err
	}
	if err := decodeInt(m, "allocator.limit_bytes", &c.Allocator.LimitBytes); err != nil {
		return Config{}, err
	}
	if err := decodeInt(m, "allocator.max_pooled", &maxPooled); err != nil {
		return Config{}, err
	}
	if err := decodeInt(m, "growth.min_capacity", &minCapacity); err != nil {
		return Config{}, err
	}

	c.Allocator.MaxPooled = int(maxPooled)
	c.Growth.MinCapacity = int(minCapacity)
	return c, nil
}

// Map returns c in the map form produced by the loaders.
func (c Config) Map() map[string]any {
	return map[string]any{
		"allocator": map[string]any{
			"kind":        c.Allocator.Kind,
			"limit_bytes": c.Allocator.LimitBytes,
			"max_pooled":  int64(c.Allocator.MaxPooled),
		},
		"growth": map[string]any{
			"min_capacity": int64(c.Growth.MinCapacity),
		},
	}
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	switch c.Allocator.Kind {
	case KindHeap, KindPool, KindLimited:
	default:
		return &ValidationError{
			Path:    "allocator.kind",
			Message: "must be one of heap, pool, limited",
			Value:   c.Allocator.Kind,
		}
	}
	if c.Allocator.LimitBytes <= 0 {
		return &ValidationError{Path: "allocator.limit_bytes", Message: "must be positive", Value: c.Allocator.LimitBytes}
	}
	if c.Allocator.MaxPooled < alloc.MinClass {
		return &ValidationError{
			Path:    "allocator.max_pooled",
			Message: fmt.Sprintf("must be at least %d", alloc.MinClass),
			Value:   c.Allocator.MaxPooled,
		}
	}
	if c.Growth.MinCapacity < 0 {
		return &ValidationError{Path: "growth.min_capacity", Message: "must not be negative", Value: c.Growth.MinCapacity}
	}
	return nil
}

// NewAllocator builds the allocation strategy c describes. c must be valid.
// A pool with the default size bound is the shared alloc.DefaultPool.
func (c Config) NewAllocator() alloc.Allocator {
	switch c.Allocator.Kind {
	case KindPool:
		if c.Allocator.MaxPooled == alloc.DefaultMaxPooled {
			return alloc.DefaultPool
		}
		return alloc.NewPool(alloc.WithMaxPooled(c.Allocator.MaxPooled))
	case KindLimited:
		return alloc.NewLimited(c.Allocator.LimitBytes, alloc.Heap{})
	default:
		return alloc.Heap{}
	}
}

func decodeString(m map[string]any, path string, dst *string) error {
	v, ok := getPath(m, path)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	*dst = s
	return nil
}

// decodeInt stores the integer at path in dst. Whole floats are accepted,
// since JSON-ish sources produce them.
func decodeInt(m map[string]any, path string, dst *int64) error {
	v, ok := getPath(m, path)
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case int:
		*dst = int64(val)
	case int64:
		*dst = val
	case float64:
		if val != math.Trunc(val) || math.Abs(val) > 1<<53 {
			return &TypeError{Path: path, Expected: "int", Actual: "float64"}
		}
		*dst = int64(val)
	default:
		return &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
	return nil
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	current := any(m)
	for _, part := range strings.Split(path, ".") {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = cm[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func getPathOrNil(m map[string]any, path string) any {
	v, _ := getPath(m, path)
	return v
}

// unknownPaths returns the sorted leaf paths of m that are not known settings.
func unknownPaths(m map[string]any, prefix string) []string {
	var out []string
	for key, val := range m {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if sub, ok := val.(map[string]any); ok && prefix == "" {
			out = append(out, unknownPaths(sub, path)...)
			continue
		}
		if !knownSettings[path] {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "table"
	default:
		return fmt.Sprintf("%T", v)
	}
}
