package loader

import (
	"os"
	"slices"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix of environment variables read by default.
const DefaultEnvPrefix = "USTRING_"

// envAliases are short names for common settings, keyed without the prefix.
var envAliases = map[string]string{
	"ALLOCATOR":  "allocator.kind",
	"LIMIT":      "allocator.limit_bytes",
	"MAX_POOLED": "allocator.max_pooled",
}

// EnvLoader loads configuration from prefixed environment variables.
//
// A variable is either a short alias (USTRING_LIMIT) or a section followed by
// a snake_case key: USTRING_ALLOCATOR_LIMIT_BYTES becomes
// allocator.limit_bytes. Only the sections the loader was created with are
// read, so unrelated USTRING_* variables such as USTRING_CONFIG pass through.
// Aliases take precedence over the long form.
type EnvLoader struct {
	prefix   string
	sections []string
}

// NewEnvLoader creates a loader for variables starting with prefix, which
// should include the trailing underscore. sections lists the lower-case
// section names to accept.
func NewEnvLoader(prefix string, sections ...string) *EnvLoader {
	return &EnvLoader{prefix: prefix, sections: sections}
}

// Name returns a label for error messages.
func (l *EnvLoader) Name() string {
	return "environment (" + l.prefix + "*)"
}

// Load reads the environment. Empty values are kept as empty strings.
func (l *EnvLoader) Load() (map[string]any, error) {
	settings := make(map[string]any)
	var aliased []string

	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		rest, ok := strings.CutPrefix(name, l.prefix)
		if !ok {
			continue
		}
		if _, isAlias := envAliases[rest]; isAlias {
			aliased = append(aliased, rest)
			continue
		}
		if path := l.envToPath(name); path != "" {
			setByPath(settings, path, parseValue(value))
		}
	}

	slices.Sort(aliased)
	for _, rest := range aliased {
		path := envAliases[rest]
		if l.accepts(path) {
			setByPath(settings, path, parseValue(os.Getenv(l.prefix+rest)))
		}
	}
	return settings, nil
}

// envToPath converts PREFIX_GROWTH_MIN_CAPACITY to growth.min_capacity. It
// returns "" for names without a key part or outside the accepted sections.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok || section == "" || key == "" {
		return ""
	}
	path := section + "." + key
	if !l.accepts(path) {
		return ""
	}
	return path
}

func (l *EnvLoader) accepts(path string) bool {
	section, _, _ := strings.Cut(path, ".")
	return slices.Contains(l.sections, section)
}

// parseValue converts an environment string into an int64, float64 or bool
// when it looks like one, and leaves it a string otherwise.
func parseValue(s string) any {
	if s == "" {
		return s
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	return s
}

// setByPath stores value at a dot-separated path, creating tables as needed.
func setByPath(settings map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	table := settings
	for _, part := range parts[:len(parts)-1] {
		next, ok := table[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			table[part] = next
		}
		table = next
	}
	table[parts[len(parts)-1]] = value
}

// GetEnvOrDefault returns the environment variable value or a default.
func GetEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}
