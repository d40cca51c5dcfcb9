package config

import (
	"fmt"
	"time"

	"github.com/dshills/bufferlab/internal/config/loader"
)

// Settings is a merged configuration map with typed accessors.
type Settings struct {
	data map[string]any
}

// NewSettings wraps a merged configuration map.
func NewSettings(data map[string]any) *Settings {
	if data == nil {
		data = make(map[string]any)
	}
	return &Settings{data: data}
}

// Get returns the raw value at a dot-separated path.
func (s *Settings) Get(path string) (any, bool) {
	return loader.Lookup(s.data, path)
}

// GetString returns a string value at the given path.
func (s *Settings) GetString(path string) (string, error) {
	v, ok := s.Get(path)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	str, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return str, nil
}

// GetInt returns an integer value at the given path.
func (s *Settings) GetInt(path string) (int, error) {
	v, ok := s.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val != float64(int(val)) {
			return 0, &TypeError{Path: path, Expected: "int", Actual: "fractional float"}
		}
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetFloat returns a float64 value at the given path. Integers convert.
func (s *Settings) GetFloat(path string) (float64, error) {
	v, ok := s.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case int:
		return float64(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "float", Actual: typeName(v)}
	}
}

// GetDuration returns a duration at the given path. Strings are parsed
// with time.ParseDuration.
func (s *Settings) GetDuration(path string) (time.Duration, error) {
	v, ok := s.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: fmt.Sprintf("%q", val)}
		}
		return d, nil
	default:
		return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
	}
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
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
