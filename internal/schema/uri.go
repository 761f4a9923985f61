package schema

import (
	"path"
	"strings"
)

const DocumentSuffix = ".schema.json"

var definitionPrefixes = []string{"/definitions/", "/$defs/"}

// Uri is the address of a schema node: a document path and an optional
// JSON pointer fragment. An empty path means "the current document".
type Uri struct {
	Path     string
	Fragment string
}

func ParseUri(s string) Uri {
	p, fragment, _ := strings.Cut(s, "#")
	return Uri{Path: p, Fragment: fragment}
}

func (u Uri) String() string {
	if len(u.Fragment) == 0 {
		return u.Path
	}

	return u.Path + "#" + u.Fragment
}

// IsDocument is true for the root node of a document.
func (u Uri) IsDocument() bool {
	return len(u.Fragment) == 0
}

// DefinitionName returns the suffix after `/definitions/` or `/$defs/`.
func (u Uri) DefinitionName() (string, bool) {
	for _, prefix := range definitionPrefixes {
		if name, ok := strings.CutPrefix(u.Fragment, prefix); ok && len(name) > 0 && !strings.Contains(name, "/") {
			return unescapePointer(name), true
		}
	}

	return "", false
}

// IsAddressable is true for nodes that are generated as separate named
// types: document roots and definitions.
func (u Uri) IsAddressable() bool {
	if u.IsDocument() {
		return true
	}

	_, ok := u.DefinitionName()
	return ok
}

// Stem returns the document file name without the `.schema.json` suffix.
func (u Uri) Stem() string {
	return strings.TrimSuffix(path.Base(u.Path), DocumentSuffix)
}

// Child returns the address of a node nested under `u`.
func (u Uri) Child(segments ...string) Uri {
	var b strings.Builder
	b.WriteString(u.Fragment)

	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(escapePointer(s))
	}

	return Uri{Path: u.Path, Fragment: b.String()}
}

// Join composes a `$ref` found in the document addressed by `u`. Local
// references keep the current document path, others name a document by
// its file name.
func (u Uri) Join(ref string) Uri {
	r := ParseUri(ref)

	if len(r.Path) == 0 {
		return Uri{Path: u.Path, Fragment: r.Fragment}
	}

	return Uri{Path: path.Base(r.Path), Fragment: r.Fragment}
}

func (u Uri) Compare(o Uri) int {
	if c := strings.Compare(u.Path, o.Path); c != 0 {
		return c
	}

	return strings.Compare(u.Fragment, o.Fragment)
}

func escapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

func unescapePointer(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
}
