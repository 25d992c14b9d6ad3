// Package keys resolves the naming-convention variants used by the rig
// simulator into canonical lookups. The producer emits the same logical field
// under several spellings (camelCase, snake_case, legacy dashed aliases), and
// payloads arrive partially and unordered, so resolution must be deterministic:
// first variant found wins.
package keys

import (
	"sort"
	"strings"
)

// Resolve looks up logical in payload, trying camelCase, snake_case, the
// literal spelling, and finally a separator-insensitive fold. Returns the
// first value found. No side effects; safe to call repeatedly.
func Resolve(payload map[string]any, logical string) (any, bool) {
	if len(payload) == 0 || logical == "" {
		return nil, false
	}

	for _, candidate := range variants(logical) {
		if v, ok := payload[candidate]; ok {
			return v, true
		}
	}

	// Separator-insensitive pass: strip '-'/'_' and compare lowercased.
	// Keys are visited in sorted order so resolution stays order-stable
	// even when several spellings fold to the same canonical form.
	want := Fold(logical)
	folded := make([]string, 0, len(payload))
	for k := range payload {
		if Fold(k) == want {
			folded = append(folded, k)
		}
	}
	if len(folded) > 0 {
		sort.Strings(folded)
		return payload[folded[0]], true
	}

	return nil, false
}

// ResolvePath walks nested maps named by sections, then resolves the first
// present leaf candidate in the innermost map. Returns not-found if any
// section is absent or not map-shaped.
func ResolvePath(payload map[string]any, sections []string, leaves []string) (any, bool) {
	current := payload
	for _, section := range sections {
		raw, ok := Resolve(current, section)
		if !ok {
			return nil, false
		}
		nested, ok := asMap(raw)
		if !ok {
			return nil, false
		}
		current = nested
	}

	for _, leaf := range leaves {
		if v, ok := Resolve(current, leaf); ok {
			return v, true
		}
	}
	return nil, false
}

// Has reports whether any spelling of logical is present.
func Has(payload map[string]any, logical string) bool {
	_, ok := Resolve(payload, logical)
	return ok
}

// variants returns the ordered candidate spellings for a logical key.
// Order matters: tests rely on camelCase winning when aliases coexist.
func variants(logical string) []string {
	camel := ToCamel(logical)
	snake := ToSnake(logical)

	out := make([]string, 0, 3)
	out = append(out, camel)
	if snake != camel {
		out = append(out, snake)
	}
	if logical != camel && logical != snake {
		out = append(out, logical)
	}
	return out
}

// ToSnake converts a camelCase or dashed key to snake_case.
func ToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		switch {
		case r == '-' || r == ' ':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			if i > 0 && s[i-1] != '_' && s[i-1] != '-' {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToCamel converts a snake_case or dashed key to camelCase.
func ToCamel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upper := false
	for i, r := range s {
		switch {
		case r == '_' || r == '-' || r == ' ':
			upper = true
		case upper:
			if r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			b.WriteRune(r)
			upper = false
		case i == 0 && r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Fold strips '-' and '_' and lowercases, for separator-insensitive matching.
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '_' || r == '-' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
