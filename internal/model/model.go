package model

import (
	"fmt"
	"slices"

	"github.com/koskimas/gltfgen/internal/schema"
)

// Type is the deduced semantic shape of a schema node. The set of
// implementations is closed: every consumer switches over all of them and
// panics on anything else.
type Type interface {
	isType()
}

// Any is a fully dynamic value.
type Any struct{}

type Array struct {
	Item Type
	// MinLength is metadata only, it's never validated.
	MinLength int
}

type FixedArray struct {
	Item   Type
	Length int
}

// TypedObject references a separately generated type.
type TypedObject struct {
	Uri schema.Uri
}

// EmbeddedObject is an anonymous inline structure generated alongside its
// owner. An empty Name means the consumer names it.
type EmbeddedObject struct {
	Name      string
	Prototype *ObjectPrototype
}

type String struct{}

type Boolean struct{}

type Number struct{}

type Integer struct{}

type Enum struct {
	Options []string
}

// MapOfObjects is a free-form string keyed dictionary.
type MapOfObjects struct{}

func (Any) isType()            {}
func (Array) isType()          {}
func (FixedArray) isType()     {}
func (TypedObject) isType()    {}
func (EmbeddedObject) isType() {}
func (String) isType()         {}
func (Boolean) isType()        {}
func (Number) isType()         {}
func (Integer) isType()        {}
func (Enum) isType()           {}
func (MapOfObjects) isType()   {}

func IsAny(t Type) bool {
	_, ok := t.(Any)
	return t == nil || ok
}

// TypedObjects returns the uris of the typed objects `t` refers to directly
// or through array items. Embedded objects are not entered: their
// properties are reported when they are built.
func TypedObjects(t Type) []schema.Uri {
	switch t := t.(type) {
	case TypedObject:
		return []schema.Uri{t.Uri}
	case Array:
		return TypedObjects(t.Item)
	case FixedArray:
		return TypedObjects(t.Item)
	case Any, EmbeddedObject, String, Boolean, Number, Integer, Enum, MapOfObjects:
		return nil
	}

	panic(fmt.Sprintf("unhandled type %T", t))
}

// Property is one field of an object type.
type Property struct {
	Name     string
	Type     Type
	Optional bool
	Default  any
	Comment  string
}

func NewProperty(name string) *Property {
	return &Property{
		Name:     name,
		Type:     Any{},
		Optional: true,
	}
}

// ObjectPrototype is the merged property set of one object schema.
type ObjectPrototype struct {
	Comment    string
	Properties []*Property
}

func (p *ObjectPrototype) Property(name string) (*Property, bool) {
	i := slices.IndexFunc(p.Properties, func(p *Property) bool { return p.Name == name })
	if i == -1 {
		return nil, false
	}

	return p.Properties[i], true
}

// ResolvedType is the final generation unit. There is exactly one per local
// schema uri.
type ResolvedType struct {
	Uri        schema.Uri
	ModulePath []string
	Name       string
	Prototype  *ObjectPrototype
	// Extension is the name of the extension the type is generated for,
	// empty for core types.
	Extension string
}

// TypeDescription is a pending worklist item. Empty Name and nil
// ModulePath mean no override. A non-nil empty ModulePath forces the
// tree root.
type TypeDescription struct {
	Uri        schema.Uri
	Name       string
	ModulePath []string
	Extension  string
}

// Module is the closed set of resolved types of one generation pass.
type Module struct {
	Meta  schema.Meta
	Types map[schema.Uri]*ResolvedType
}

func NewModule(meta schema.Meta) *Module {
	return &Module{
		Meta:  meta,
		Types: make(map[schema.Uri]*ResolvedType),
	}
}

func (m *Module) Lookup(uri schema.Uri) (*ResolvedType, bool) {
	t, ok := m.Types[uri]
	return t, ok
}

// Sorted returns the resolved types ordered by uri, independent of the
// order they were discovered in.
func (m *Module) Sorted() []*ResolvedType {
	types := make([]*ResolvedType, 0, len(m.Types))
	for _, t := range m.Types {
		types = append(types, t)
	}

	slices.SortFunc(types, func(a, b *ResolvedType) int {
		return a.Uri.Compare(b.Uri)
	})

	return types
}
