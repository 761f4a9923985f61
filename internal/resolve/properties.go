package resolve

import (
	"fmt"

	"github.com/koskimas/gltfgen/internal/model"
	"github.com/koskimas/gltfgen/internal/schema"
	"github.com/speakeasy-api/openapi/sequencedmap"
)

// propertyList merges the properties of an object schema with the ones it
// inherits through `$ref` and a single `allOf` entry.
//
// Type, comment and default are first-write-wins in the order ref base,
// allOf base, own schema. Optionality is the exception: any contributing
// schema that lists a property in `required` makes it required.
type propertyList struct {
	deducer    *Deducer
	properties *sequencedmap.Map[string, *model.Property]
	visiting   visiting
}

// ReadPrototype builds the merged property set of the object schema `s`.
func (d *Deducer) ReadPrototype(ctx *schema.Context, s *schema.Schema) (*model.ObjectPrototype, error) {
	l := &propertyList{
		deducer:    d,
		properties: sequencedmap.New[string, *model.Property](),
		visiting:   make(visiting),
	}

	if err := l.read(ctx, s); err != nil {
		return nil, err
	}

	prototype := &model.ObjectPrototype{
		Comment:    s.Comment(),
		Properties: make([]*model.Property, 0, l.properties.Len()),
	}

	for _, p := range l.properties.All() {
		prototype.Properties = append(prototype.Properties, p)
	}

	return prototype, nil
}

func (l *propertyList) read(ctx *schema.Context, s *schema.Schema) error {
	if err := l.visiting.enter(ctx.Uri); err != nil {
		return err
	}
	defer l.visiting.leave(ctx.Uri)

	if len(s.Ref) != 0 {
		bctx, bs, err := ctx.Resolve(s.Ref)
		if err != nil {
			return err
		}

		if err := l.read(bctx, bs); err != nil {
			return fmt.Errorf(`base "%s": %w`, bctx.Uri, err)
		}
	}

	switch len(s.AllOf) {
	case 0:
	case 1:
		bctx, bs, err := single(ctx, s)
		if err != nil {
			return err
		}

		if err := l.read(bctx, bs); err != nil {
			return fmt.Errorf(`base "%s": %w`, bctx.Uri, err)
		}
	default:
		return schema.Unhandled(ctx.Uri, "%d allOf entries, only a single base is supported", len(s.AllOf))
	}

	for _, name := range s.PropertyNames() {
		if err := l.readProperty(ctx, s, name); err != nil {
			return fmt.Errorf(`property "%s" of "%s": %w`, name, ctx.Uri, err)
		}
	}

	// A schema may require an inherited property without redeclaring it.
	for _, name := range s.Required {
		if p, ok := l.properties.Get(name); ok {
			p.Optional = false
		}
	}

	return nil
}

func (l *propertyList) readProperty(ctx *schema.Context, s *schema.Schema, name string) error {
	ps := s.Properties[name]
	if ps == nil {
		return schema.Unhandled(ctx.Uri.Child("properties", name), "null property schema")
	}

	pctx := ctx.Child("properties", name)

	p, ok := l.properties.Get(name)
	if !ok {
		p = model.NewProperty(name)
		l.properties.Set(name, p)
	}

	if model.IsAny(p.Type) {
		t, err := l.deducer.Deduce(pctx, ps)
		if err != nil {
			return err
		}

		p.Type = t
		l.deducer.visit(t)
	}

	if len(p.Comment) == 0 {
		comment, err := findComment(pctx, ps, make(visiting))
		if err != nil {
			return err
		}

		p.Comment = comment
	}

	if p.Default == nil {
		p.Default = ps.Default
	}

	if s.IsRequired(name) {
		p.Optional = false
	}

	return nil
}

// findComment returns the description of a property, following a bare
// `$ref` (or a single `allOf` reference) when the property has none.
func findComment(ctx *schema.Context, s *schema.Schema, v visiting) (string, error) {
	if c := s.Comment(); len(c) != 0 {
		return c, nil
	}

	ref := s.Ref
	if len(ref) == 0 && len(s.AllOf) == 1 && s.AllOf[0] != nil {
		ref = s.AllOf[0].Ref
	}

	if len(ref) == 0 {
		return "", nil
	}

	rctx, rs, err := ctx.Resolve(ref)
	if err != nil {
		return "", err
	}

	if err := v.enter(rctx.Uri); err != nil {
		return "", err
	}
	defer v.leave(rctx.Uri)

	return findComment(rctx, rs, v)
}
