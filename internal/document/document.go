package document

import (
	"strconv"
	"strings"
)

// Document is the normalized tree produced by the format parsers: nested
// string-keyed maps, slices and scalars, exactly as the JSON, YAML and HCL
// decoders emit them. The analysis engine never mutates it.
type Document map[string]any

// LineKey is the reserved key parsers use to attach a source line number to
// a block's configuration map. Formats without line tracking simply omit it.
const LineKey = "__line__"

// Map returns v as a string-keyed map, or an empty map when v is anything
// else. Several predicates rely on this "absence is an empty section"
// behavior.
func Map(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// GetMap looks up key in m and returns it as a map, defaulting to empty.
func GetMap(m map[string]any, key string) map[string]any {
	return Map(m[key])
}

// Seq returns v as a sequence. A scalar or mapping value is wrapped into a
// one-element sequence, matching how single HCL blocks are read where a
// repeated block is expected (e.g. a lone ingress rule). Nil yields nil.
func Seq(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

// GetSeq looks up key in m and returns it as a sequence, wrapping singular
// values per Seq.
func GetSeq(m map[string]any, key string) []any {
	return Seq(m[key])
}

// GetString looks up key in m and returns it as a string, or def when the
// key is absent or not a string.
func GetString(m map[string]any, key, def string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return def
}

// Truthy converts a scalar to a boolean the way the untyped source formats
// require: real booleans pass through, "true"/"false" strings (any case) are
// honored, numbers are true when non-zero, and anything absent falls back to
// def. Predicates depend on opposite defaults per rule, so def is explicit.
func Truthy(v any, def bool) bool {
	switch t := v.(type) {
	case nil:
		return def
	case bool:
		return t
	case string:
		switch strings.ToLower(t) {
		case "true":
			return true
		case "false", "":
			return false
		}
		return true
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return def
	}
}

// GetBool looks up key in m and interprets it per Truthy, with def applied
// when the key is absent.
func GetBool(m map[string]any, key string, def bool) bool {
	v, ok := m[key]
	if !ok {
		return def
	}
	return Truthy(v, def)
}

// ContainsString reports whether seq holds the exact string want.
func ContainsString(seq []any, want string) bool {
	for _, v := range seq {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}

// Line returns the source line recorded under LineKey, defaulting to 1 when
// the parser did not track lines for this block.
func Line(m map[string]any) int {
	switch t := m[LineKey].(type) {
	case int:
		if t > 0 {
			return t
		}
	case int64:
		if t > 0 {
			return int(t)
		}
	case float64:
		if t > 0 {
			return int(t)
		}
	case string:
		if n, err := strconv.Atoi(t); err == nil && n > 0 {
			return n
		}
	}
	return 1
}
