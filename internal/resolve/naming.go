package resolve

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/koskimas/gltfgen/internal/schema"
)

// vendorTitle matches titles like "khr_texture_transform Texture Info".
var vendorTitle = regexp.MustCompile(`^[a-z][a-z0-9]*_\S*\s+(\S.*)$`)

// CanonicalName derives the name of the type generated for the node at
// `uri`. Definitions are named by their key, document roots by their file
// name and anything else by its title.
func CanonicalName(uri schema.Uri, s *schema.Schema) (string, error) {
	if name, ok := uri.DefinitionName(); ok {
		return PascalCase(name), nil
	}

	if uri.IsDocument() {
		return PascalCase(uri.Stem()), nil
	}

	if name := TitleName(s.Title); len(name) != 0 {
		return name, nil
	}

	return "", schema.Unhandled(uri, "can't derive a name for a schema without a title")
}

// TitleName derives a name from a schema title, dropping a lowercase vendor
// prefix.
func TitleName(title string) string {
	title = strings.TrimSpace(title)

	if m := vendorTitle.FindStringSubmatch(title); m != nil {
		title = m[1]
	}

	return PascalCase(title)
}

// PascalCase upper-cases the first letter of every word. Word separators
// are dropped, the rest of each word is kept verbatim.
func PascalCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	for _, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(w[size:])
	}

	return b.String()
}

var irregularPlurals = map[string]string{
	"children": "child",
	"indices":  "index",
	"matrices": "matrix",
	"vertices": "vertex",
}

// Singular returns the singular form of an English plural noun.
func Singular(s string) string {
	lower := strings.ToLower(s)

	for plural, singular := range irregularPlurals {
		if strings.HasSuffix(lower, plural) {
			return s[:len(s)-len(plural)] + matchCase(s[len(s)-len(plural):], singular)
		}
	}

	switch {
	case strings.HasSuffix(lower, "ies") && len(s) > 3:
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(lower, "sses"), strings.HasSuffix(lower, "xes"), strings.HasSuffix(lower, "ches"):
		return s[:len(s)-2]
	case strings.HasSuffix(lower, "ss"), strings.HasSuffix(lower, "us"):
		return s
	case strings.HasSuffix(lower, "s") && len(s) > 1:
		return s[:len(s)-1]
	}

	return s
}

func matchCase(original, word string) string {
	r, _ := utf8.DecodeRuneInString(original)
	if unicode.IsUpper(r) {
		return PascalCase(word)
	}

	return word
}

// DefaultModulePath is the module path of a type that isn't given one
// explicitly: the dotted segments of its document name minus the last.
func DefaultModulePath(uri schema.Uri) []string {
	segments := strings.Split(uri.Stem(), ".")
	path := make([]string, 0, len(segments)-1)

	for _, s := range segments[:len(segments)-1] {
		path = append(path, strings.ToLower(s))
	}

	return path
}
