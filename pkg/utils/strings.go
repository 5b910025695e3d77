package utils

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]+`)

// tsReserved lists words that cannot be used as TypeScript parameter names.
var tsReserved = map[string]struct{}{
	"break": {}, "case": {}, "catch": {}, "class": {}, "const": {}, "continue": {},
	"debugger": {}, "default": {}, "delete": {}, "do": {}, "else": {}, "enum": {},
	"export": {}, "extends": {}, "false": {}, "finally": {}, "for": {}, "function": {},
	"if": {}, "import": {}, "in": {}, "instanceof": {}, "new": {}, "null": {},
	"return": {}, "super": {}, "switch": {}, "this": {}, "throw": {}, "true": {},
	"try": {}, "typeof": {}, "var": {}, "void": {}, "while": {}, "with": {},
	"let": {}, "static": {}, "yield": {}, "await": {}, "implements": {},
	"interface": {}, "package": {}, "private": {}, "protected": {}, "public": {},
}

// RemoveAccents folds accented characters to their base forms.
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SplitWords breaks an identifier into words. Separators are any non
// alphanumeric runs; inside a run, lower-to-upper transitions and the
// last capital of an acronym ("XMLHttp" -> "XML", "Http") start new words.
func SplitWords(s string) []string {
	s = strings.TrimSpace(RemoveAccents(s))
	if s == "" {
		return nil
	}
	var words []string
	for _, chunk := range nonAlnum.Split(s, -1) {
		if chunk == "" {
			continue
		}
		words = append(words, splitCamel(chunk)...)
	}
	return words
}

func splitCamel(s string) []string {
	var parts []string
	var current strings.Builder
	rs := []rune(s)
	for i, r := range rs {
		boundary := false
		if i > 0 && isUpper(r) {
			prev := rs[i-1]
			switch {
			case !isUpper(prev):
				boundary = true
			case i < len(rs)-1 && !isUpper(rs[i+1]) && !isDigit(rs[i+1]):
				boundary = true
			}
		}
		if boundary && current.Len() > 0 {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// ToPascalCase converts a string to PascalCase.
func ToPascalCase(s string) string {
	var b strings.Builder
	for _, w := range SplitWords(s) {
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(strings.ToLower(w[1:]))
	}
	return b.String()
}

// ToCamelCase converts a string to camelCase.
func ToCamelCase(s string) string {
	p := ToPascalCase(s)
	if p == "" {
		return ""
	}
	return strings.ToLower(p[:1]) + p[1:]
}

// ToKebabCase converts a string to kebab-case.
func ToKebabCase(s string) string {
	words := SplitWords(s)
	for i := range words {
		words[i] = strings.ToLower(words[i])
	}
	return strings.Join(words, "-")
}

// SafeIdentifier turns an arbitrary parameter name into a usable TypeScript
// identifier. Names that are already valid are returned unchanged so that
// "id" stays "id" and "instanceId" stays "instanceId".
func SafeIdentifier(name string) string {
	id := name
	if !IsIdentifier(id) {
		id = ToCamelCase(name)
	}
	if id == "" {
		id = "param"
	}
	if isDigit(rune(id[0])) {
		id = "_" + id
	}
	if _, reserved := tsReserved[id]; reserved {
		id += "_"
	}
	return id
}

// IsIdentifier reports whether s is a plain ASCII identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || (r >= 'a' && r <= 'z') || isUpper(r):
		case isDigit(r) && i > 0:
		default:
			return false
		}
	}
	return true
}

// FileBase returns the file name of path without directory or extension.
func FileBase(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
