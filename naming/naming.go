// Package naming implements the identifier-casing translation between
// application casing (medial capitals, e.g. "firstName") and storage casing
// (lowercase words joined by underscores, e.g. "first_name").
//
// The transforms are pure and idempotent. Identifiers containing characters
// outside the recognized convention are passed through unchanged in both
// directions, so an already-translated or foreign identifier is never
// mangled.
package naming

import "strings"

// ToStorage converts a single application-cased identifier segment to
// storage casing. Each interior uppercase letter is replaced by an
// underscore followed by its lowercase form.
//
//	ToStorage("firstName") == "first_name"
//	ToStorage("first_name") == "first_name"
func ToStorage(name string) string {
	if !recognized(name) {
		return name
	}
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteByte(c - 'A' + 'a')
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ToApplication converts a single storage-cased identifier segment to
// application casing. Each underscore is removed and the following letter
// is capitalized.
//
//	ToApplication("first_name") == "firstName"
//	ToApplication("firstName") == "firstName"
func ToApplication(name string) string {
	if !recognized(name) || !strings.ContainsRune(name, '_') {
		return name
	}
	var b strings.Builder
	b.Grow(len(name))
	up := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_':
			up = true
		case up && c >= 'a' && c <= 'z':
			b.WriteByte(c - 'a' + 'A')
			up = false
		default:
			b.WriteByte(c)
			up = false
		}
	}
	return b.String()
}

// recognized reports whether the identifier consists only of letters,
// digits and underscores. Anything else (quotes, dots, spaces, unicode)
// cannot be round-tripped unambiguously and is passed through.
func recognized(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}

// Mapper holds a bidirectional identifier transform. The zero value is the
// identity mapper. Mappers are immutable and safe for concurrent use;
// independently configured connections hold independent mappers.
type Mapper struct {
	toStorage     func(string) string
	toApplication func(string) string
}

// SnakeCase returns the default mapper translating application casing to
// snake_case storage identifiers and back.
func SnakeCase() *Mapper {
	return &Mapper{toStorage: ToStorage, toApplication: ToApplication}
}

// Custom returns a mapper using the given transforms. Either function may
// be nil, in which case that direction is the identity.
func Custom(toStorage, toApplication func(string) string) *Mapper {
	return &Mapper{toStorage: toStorage, toApplication: toApplication}
}

// ToStorage applies the storage-direction transform to a single identifier.
func (m *Mapper) ToStorage(name string) string {
	if m == nil || m.toStorage == nil {
		return name
	}
	return m.toStorage(name)
}

// ToApplication applies the application-direction transform to a single
// identifier.
func (m *Mapper) ToApplication(name string) string {
	if m == nil || m.toApplication == nil {
		return name
	}
	return m.toApplication(name)
}

// RowToApplication rewrites the keys of a decoded result row to application
// casing. Values are never rewritten. The input map is not mutated.
func (m *Mapper) RowToApplication(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[m.ToApplication(k)] = v
	}
	return out
}

// KeysToStorage recursively rewrites every map key of a literal tree to
// storage casing. Nested maps and slices are descended into; scalar values
// are untouched. The input is not mutated.
func (m *Mapper) KeysToStorage(v any) any {
	return m.mapKeys(v, m.ToStorage)
}

// KeysToApplication recursively rewrites every map key of a literal tree to
// application casing. The input is not mutated.
func (m *Mapper) KeysToApplication(v any) any {
	return m.mapKeys(v, m.ToApplication)
}

func (m *Mapper) mapKeys(v any, f func(string) string) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[f(k)] = m.mapKeys(e, f)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = m.mapKeys(e, f)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(v))
		for i, e := range v {
			out[i] = m.mapKeys(e, f).(map[string]any)
		}
		return out
	default:
		return v
	}
}
