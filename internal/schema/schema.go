package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Type is a field's declared coercion target.
type Type string

const (
	TypeString     Type = "string"
	TypeFloat      Type = "float"
	TypeStringList Type = "list_of_string"
)

// Field describes one upstream column: the candidate key names it may
// appear under (checked in order, case-insensitively), the declared type,
// and the default applied when coercion yields nothing.
type Field struct {
	Keys    []string    `yaml:"keys"`
	Type    Type        `yaml:"type"`
	Default interface{} `yaml:"default"`
}

// Schema maps canonical field names to their specs.
type Schema map[string]Field

// Coerce normalizes a raw field value to the declared type. Failure is a
// value, not an error: the caller gets nil and applies the field default.
// Declared types outside the known set pass the value through unchanged.
func Coerce(value interface{}, t Type) interface{} {
	if value == nil {
		return nil
	}
	switch t {
	case TypeString:
		return stringify(value)
	case TypeFloat:
		if f, ok := toFloat(value); ok {
			return f
		}
		return nil
	case TypeStringList:
		return toStringList(value)
	default:
		return value
	}
}

// Lookup resolves a field by candidate key names against the row's field
// map. Each candidate is tried exactly first, then case-insensitively,
// and the first hit wins. Upstream column names vary in casing and
// naming across deployments, hence the indirection.
func Lookup(fields map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			return v
		}
		for kk, v := range fields {
			if strings.EqualFold(kk, k) {
				return v
			}
		}
	}
	return nil
}

// Resolve looks up and coerces the named field, falling back to the
// field's configured default when coercion yields nil. Unknown field
// names resolve to nil.
func (s Schema) Resolve(fields map[string]interface{}, name string) interface{} {
	spec, ok := s[name]
	if !ok {
		return nil
	}
	keys := spec.Keys
	if len(keys) == 0 {
		keys = []string{name}
	}
	coerced := Coerce(Lookup(fields, keys...), spec.Type)
	if coerced == nil {
		return spec.Default
	}
	return coerced
}

// String resolves the named field as a string.
func (s Schema) String(fields map[string]interface{}, name string) string {
	v, _ := s.Resolve(fields, name).(string)
	return v
}

// Float resolves the named field as a float pointer; nil means the value
// was absent or not numeric and the field has no numeric default.
func (s Schema) Float(fields map[string]interface{}, name string) *float64 {
	switch v := s.Resolve(fields, name).(type) {
	case float64:
		return &v
	case *float64:
		return v
	default:
		return nil
	}
}

// StringList resolves the named field as a list of strings.
func (s Schema) StringList(fields map[string]interface{}, name string) []string {
	switch v := s.Resolve(fields, name).(type) {
	case []string:
		return v
	default:
		return nil
	}
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toStringList(v interface{}) []string {
	switch t := v.(type) {
	case []string:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if e != "" {
				out = append(out, e)
			}
		}
		return out
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if isFalsy(e) {
				continue
			}
			out = append(out, stringify(e))
		}
		return out
	default:
		if isFalsy(v) {
			return []string{}
		}
		return []string{stringify(v)}
	}
}

func isFalsy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case int:
		return t == 0
	default:
		return false
	}
}
