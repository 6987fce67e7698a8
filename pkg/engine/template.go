package engine

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ADManagerLND/ADManagerAPI-sub003/pkg/mapping"
)

// placeholderPattern matches %column% and %column:modifier:modifier% tokens.
var placeholderPattern = regexp.MustCompile(`%([^%]+)%`)

// asciiFold strips combining marks after canonical decomposition, turning
// accented characters into their base form ("é" -> "e").
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ResolveTemplate substitutes every %column% or %column:modifier% token in
// tmpl with the row's value for that column, applying modifiers left to
// right. A missing column resolves to the empty string; an unknown modifier
// passes the value through unchanged. Literal text outside tokens is copied
// verbatim.
func ResolveTemplate(row Row, tmpl string) string {
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(token string) string {
		parts := strings.Split(token[1:len(token)-1], ":")
		value := row.Value(strings.TrimSpace(parts[0]))
		for _, modifier := range parts[1:] {
			value = applyModifier(value, strings.TrimSpace(modifier))
		}
		return value
	})
}

// applyModifier applies a single template modifier to a value.
func applyModifier(value, modifier string) string {
	switch strings.ToLower(modifier) {
	case "uppercase":
		return strings.ToUpper(value)
	case "lowercase":
		return strings.ToLower(value)
	case "username":
		return usernameSafe(value)
	case "first":
		for _, r := range value {
			return string(r)
		}
		return ""
	default:
		// Unknown modifiers are a no-op, never fatal.
		return value
	}
}

// usernameSafe converts a value to an ASCII login-safe form: diacritics are
// folded to their base letters, anything that is not a letter, digit, dot,
// dash or underscore is dropped, and the result is lowercased.
func usernameSafe(value string) string {
	folded, _, err := transform.String(asciiFold, value)
	if err != nil {
		folded = value
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// ResolveAttributes evaluates every attribute template of the mapping
// configuration against the row, producing the desired attribute set for
// the row's target identity.
func ResolveAttributes(row Row, cfg *mapping.Config) map[string]string {
	attrs := make(map[string]string, len(cfg.Attributes))
	for name, tmpl := range cfg.Attributes {
		attrs[name] = strings.TrimSpace(ResolveTemplate(row, tmpl))
	}
	return attrs
}
