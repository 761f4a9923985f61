package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type MetaKind int

const (
	MetaCore MetaKind = iota
	MetaExtension
)

// Meta records where a store's schemas come from.
type Meta struct {
	Kind      MetaKind
	Extension string
}

func CoreMeta() Meta {
	return Meta{Kind: MetaCore}
}

func ExtensionMeta(name string) Meta {
	return Meta{Kind: MetaExtension, Extension: name}
}

func (m Meta) String() string {
	if m.Kind == MetaExtension {
		return fmt.Sprintf("extension %s", m.Extension)
	}

	return "core"
}

// Store holds the root schema documents of one folder keyed by file name.
// A store may be layered over a base store, in which case lookups see the
// base's documents too. Stores are read-only once loaded.
type Store struct {
	meta      Meta
	base      *Store
	documents map[string]*Schema
}

// Load reads every `*.schema.json` file directly inside `dir`. A missing
// directory yields an empty store.
func Load(dir string, meta Meta, base *Store, logger *zap.Logger) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("schema folder not found", zap.String("dir", dir), zap.Stringer("store", meta))
		return NewStore(meta, base, nil)
	}

	if err != nil {
		return nil, &LoadError{Path: dir, Err: err}
	}

	documents := make(map[string][]byte)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), DocumentSuffix) {
			continue
		}

		filePath := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, &LoadError{Path: filePath, Err: err}
		}

		logger.Debug("loaded schema", zap.String("path", filePath), zap.Stringer("store", meta))
		documents[e.Name()] = data
	}

	return NewStore(meta, base, documents)
}

// NewStore parses the given documents, keyed by file name, into a store.
func NewStore(meta Meta, base *Store, documents map[string][]byte) (*Store, error) {
	s := &Store{
		meta:      meta,
		base:      base,
		documents: make(map[string]*Schema, len(documents)),
	}

	for name, data := range documents {
		var doc Schema
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, &LoadError{Path: name, Err: err}
		}

		s.documents[name] = &doc
	}

	return s, nil
}

func (s *Store) Meta() Meta {
	return s.meta
}

func (s *Store) Base() *Store {
	return s.base
}

// Documents returns the names of the documents loaded directly into this
// store, sorted.
func (s *Store) Documents() []string {
	return slices.Sorted(maps.Keys(s.documents))
}

// IsLocal is true only if the uri's document was loaded into this store
// and not inherited from the base.
func (s *Store) IsLocal(uri Uri) bool {
	_, ok := s.documents[uri.Path]
	return ok
}

func (s *Store) document(path string) (*Schema, bool) {
	if s.base != nil {
		if doc, ok := s.base.document(path); ok {
			return doc, true
		}
	}

	doc, ok := s.documents[path]
	return doc, ok
}

// Resolve returns the schema node addressed by `uri` along with a context
// for resolving references inside it.
func (s *Store) Resolve(uri Uri) (*Context, *Schema, error) {
	doc, ok := s.document(uri.Path)
	if !ok {
		return nil, nil, &UnresolvedReferenceError{Ref: uri.String()}
	}

	node, err := doc.Pointer(uri.Fragment)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", &UnresolvedReferenceError{Ref: uri.String()}, err)
	}

	return &Context{Uri: uri, store: s}, node, nil
}
