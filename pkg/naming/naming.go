// Package naming holds the identifier casing rules shared by the IR
// normalizer, the view builder and the template filters.
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
)

// initialisms follows the Go convention for well known abbreviations so
// generated identifiers read like hand written code (UserID, not UserId).
var initialisms = map[string]bool{
	"acl": true, "api": true, "ascii": true, "cpu": true, "css": true,
	"dns": true, "eof": true, "guid": true, "html": true, "http": true,
	"https": true, "id": true, "ip": true, "json": true, "sku": true,
	"sql": true, "ssh": true, "tcp": true, "tls": true, "ttl": true,
	"udp": true, "ui": true, "uid": true, "uuid": true, "uri": true,
	"url": true, "utf8": true, "xml": true,
}

// LowerFirst lowercases the first rune of s.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

// UpperFirst uppercases the first rune of s.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Words splits an identifier into its lowercase words. Boundaries are
// separators (anything that is not a letter or digit), lower to upper
// transitions and the end of an acronym ("HTTPServer" -> http, server).
// Digits stay attached to the word before them.
func Words(s string) []string {
	runes := []rune(s)
	var (
		words   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(current) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

// Snake renders s as snake_case.
func Snake(s string) string {
	return strings.Join(Words(s), "_")
}

// Kebab renders s as kebab-case.
func Kebab(s string) string {
	return strings.Join(Words(s), "-")
}

// Pascal renders s as an exported Go identifier, applying initialisms.
func Pascal(s string) string {
	var b strings.Builder
	for _, word := range Words(s) {
		if initialisms[word] {
			b.WriteString(strings.ToUpper(word))
			continue
		}
		b.WriteString(UpperFirst(word))
	}
	return b.String()
}

// Camel renders s as an unexported Go identifier. A leading initialism is
// lowercased entirely ("ID" -> "id", "URLPath" -> "urlPath").
func Camel(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(words[0])
	for _, word := range words[1:] {
		if initialisms[word] {
			b.WriteString(strings.ToUpper(word))
			continue
		}
		b.WriteString(UpperFirst(word))
	}
	return b.String()
}

// Plural returns the English plural of the last word of s, keeping the
// original casing of everything before it ("TaskCategory" -> "TaskCategories",
// "Person" -> "People").
func Plural(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return s
	}
	last := words[len(words)-1]
	if len(s) < len(last) || !strings.EqualFold(s[len(s)-len(last):], last) {
		return inflect.Pluralize(s)
	}
	prefix, tail := s[:len(s)-len(last)], s[len(s)-len(last):]
	plural := inflect.Pluralize(last)
	switch {
	case len(tail) > 1 && tail == strings.ToUpper(tail):
		// Acronyms keep their letters and take a lowercase ending (URLs).
		if strings.HasPrefix(plural, last) {
			return prefix + tail + plural[len(last):]
		}
		plural = strings.ToUpper(plural)
	case tail != last:
		plural = UpperFirst(plural)
	}
	return prefix + plural
}

var goKeywords = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true,
	"for": true, "func": true, "go": true, "goto": true, "if": true,
	"import": true, "interface": true, "map": true, "package": true,
	"range": true, "return": true, "select": true, "struct": true,
	"switch": true, "type": true, "var": true,
}

// SafeVar returns Camel(s), suffixed when the result is a Go keyword or
// starts with a digit.
func SafeVar(s string) string {
	name := Camel(s)
	if name == "" {
		return "v"
	}
	if goKeywords[name] {
		return name + "Value"
	}
	if r, _ := utf8.DecodeRuneInString(name); unicode.IsDigit(r) {
		return "v" + name
	}
	return name
}
