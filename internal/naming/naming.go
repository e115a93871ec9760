// Package naming derives identifiers from URL templates, schema names and
// enum literals.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers are stateful, so each call gets its own.
func title(w string) string { return cases.Title(language.Und, cases.NoLower).String(w) }
func lower(w string) string { return cases.Lower(language.Und).String(w) }

// Words splits s at separators, case changes and letter/digit boundaries.
// Acronyms stay together: "HTTPServer2" gives [HTTP Server 2].
func Words(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			switch {
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && nextLower:
				flush()
			case unicode.IsDigit(r) != unicode.IsDigit(prev):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}

// Pascal joins the words of s as PascalCase, keeping acronyms.
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(title(w))
	}
	return b.String()
}

// Camel is Pascal with a lowercase first word.
func Camel(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(lower(words[0]))
	for _, w := range words[1:] {
		b.WriteString(title(w))
	}
	return b.String()
}

// Snake joins the lowercased words of s with underscores.
func Snake(s string) string {
	words := Words(s)
	for i, w := range words {
		words[i] = lower(w)
	}
	return strings.Join(words, "_")
}

// ScreamingSnake is Snake in upper case.
func ScreamingSnake(s string) string {
	return strings.ToUpper(Snake(s))
}

// RouteName builds a camelCase route identifier: the method followed by the
// URL segments. List endpoints read by GET are prefixed with "list"
// instead of "get". The result is never empty and never starts with a digit.
func RouteName(url, method string, isList bool) string {
	verb := strings.ToLower(method)
	if verb == "get" && isList {
		verb = "list"
	}
	name := Camel(verb + " " + url)
	if name == "" {
		return "call"
	}
	return name
}

// Safe makes name usable as an identifier: a leading digit gets prefix and
// reserved words get a trailing underscore.
func Safe(name, prefix string, reserved map[string]bool) string {
	if name == "" {
		return prefix
	}
	if unicode.IsDigit([]rune(name)[0]) {
		name = prefix + name
	}
	if reserved[name] {
		name += "_"
	}
	return name
}
