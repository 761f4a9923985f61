package resolve

import (
	"fmt"
	"math"
	"strconv"

	"github.com/koskimas/gltfgen/internal/model"
	"github.com/koskimas/gltfgen/internal/schema"
)

// Deducer classifies schema nodes into model types. Every typed object it
// comes across while building property lists is reported to `visit`.
type Deducer struct {
	visit func(model.Type)
}

func NewDeducer(visit func(model.Type)) *Deducer {
	if visit == nil {
		visit = func(model.Type) {}
	}

	return &Deducer{visit: visit}
}

// visiting is the set of uris on the current `$ref`/`allOf` chain.
type visiting map[schema.Uri]bool

func (v visiting) enter(uri schema.Uri) error {
	if v[uri] {
		return schema.Unhandled(uri, "cyclic reference")
	}

	v[uri] = true
	return nil
}

func (v visiting) leave(uri schema.Uri) {
	delete(v, uri)
}

// Deduce returns the type of the node `s` located at `ctx`.
func (d *Deducer) Deduce(ctx *schema.Context, s *schema.Schema) (model.Type, error) {
	return d.deduce(ctx, s, make(visiting))
}

func (d *Deducer) deduce(ctx *schema.Context, s *schema.Schema, v visiting) (model.Type, error) {
	if t, ok := extensibleEnum(s); ok {
		return t, nil
	}

	if len(s.Enum) != 0 {
		return closedEnum(ctx, s)
	}

	if len(s.Type) != 0 {
		return d.deduceInstanceType(ctx, s, v)
	}

	if len(s.Ref) != 0 {
		rctx, rs, err := ctx.Resolve(s.Ref)
		if err != nil {
			return nil, err
		}

		return d.deduceReferenced(rctx, rs, v)
	}

	switch len(s.AllOf) {
	case 0:
	case 1:
		bctx, bs, err := single(ctx, s)
		if err != nil {
			return nil, err
		}

		return d.deduceReferenced(bctx, bs, v)
	default:
		return nil, schema.Unhandled(ctx.Uri, "%d allOf entries, only a single entry is supported", len(s.AllOf))
	}

	return model.Any{}, nil
}

func (d *Deducer) deduceReferenced(ctx *schema.Context, s *schema.Schema, v visiting) (model.Type, error) {
	if err := v.enter(ctx.Uri); err != nil {
		return nil, err
	}
	defer v.leave(ctx.Uri)

	t, err := d.deduce(ctx, s, v)
	if err != nil {
		return nil, fmt.Errorf(`in "%s": %w`, ctx.Uri, err)
	}

	return t, nil
}

func (d *Deducer) deduceInstanceType(ctx *schema.Context, s *schema.Schema, v visiting) (model.Type, error) {
	switch s.Type {
	case "null":
		return nil, schema.Unhandled(ctx.Uri, `instance type "null" is not supported`)
	case "boolean":
		return model.Boolean{}, nil
	case "object":
		return d.deduceObject(ctx, s)
	case "array":
		return d.deduceArray(ctx, s, v)
	case "number":
		return model.Number{}, nil
	case "string":
		return model.String{}, nil
	case "integer":
		return model.Integer{}, nil
	}

	return nil, schema.Unhandled(ctx.Uri, `unknown instance type "%s"`, s.Type)
}

func (d *Deducer) deduceObject(ctx *schema.Context, s *schema.Schema) (model.Type, error) {
	if s.HasAdditionalProperties && len(s.Properties) == 0 {
		return model.MapOfObjects{}, nil
	}

	if ctx.Uri.IsAddressable() {
		return model.TypedObject{Uri: ctx.Uri}, nil
	}

	prototype, err := d.ReadPrototype(ctx, s)
	if err != nil {
		return nil, err
	}

	return model.EmbeddedObject{
		Name:      TitleName(s.Title),
		Prototype: prototype,
	}, nil
}

func (d *Deducer) deduceArray(ctx *schema.Context, s *schema.Schema, v visiting) (model.Type, error) {
	if len(s.ItemsTuple) != 0 {
		return nil, schema.Unhandled(ctx.Uri, "tuple items are not supported")
	}

	var item model.Type = model.Any{}
	if s.Items != nil {
		t, err := d.deduce(ctx.Child("items"), s.Items, v)
		if err != nil {
			return nil, fmt.Errorf("array items: %w", err)
		}
		item = t
	}

	if s.MinItems != nil && s.MaxItems != nil && *s.MinItems == *s.MaxItems {
		return model.FixedArray{Item: item, Length: *s.MinItems}, nil
	}

	minLength := 0
	if s.MinItems != nil {
		minLength = *s.MinItems
	}

	return model.Array{Item: item, MinLength: minLength}, nil
}

// extensibleEnum recognizes an `anyOf` where every branch is a const or an
// unconstrained string (or integer). Branches without a const add no
// option but don't break the pattern.
//
// Integer enums collapse to Integer and lose their literal values. That is
// how the generated code has always looked, but it's probably an oversight.
func extensibleEnum(s *schema.Schema) (model.Type, bool) {
	if len(s.AnyOf) == 0 {
		return nil, false
	}

	isString := true
	isInteger := true
	options := make([]string, 0, len(s.AnyOf))

	for _, b := range s.AnyOf {
		if b == nil {
			return nil, false
		}

		switch c := b.Const.(type) {
		case nil:
			switch b.Type {
			case "string":
				isInteger = false
			case "integer":
				isString = false
			default:
				return nil, false
			}
		case string:
			isInteger = false
			options = append(options, c)
		case float64:
			isString = false
			if c != math.Trunc(c) {
				return nil, false
			}
		default:
			return nil, false
		}
	}

	if isString {
		return model.Enum{Options: options}, true
	}

	if isInteger {
		return model.Integer{}, true
	}

	return nil, false
}

func closedEnum(ctx *schema.Context, s *schema.Schema) (model.Type, error) {
	options := make([]string, 0, len(s.Enum))

	for i, e := range s.Enum {
		o, ok := e.(string)
		if !ok {
			return nil, schema.Unhandled(ctx.Uri.Child("enum", strconv.Itoa(i)), "non-string enum literal %v", e)
		}

		options = append(options, o)
	}

	return model.Enum{Options: options}, nil
}

// single returns the node of the single `allOf` entry of `s`, following
// its `$ref` if it has one.
func single(ctx *schema.Context, s *schema.Schema) (*schema.Context, *schema.Schema, error) {
	entry := s.AllOf[0]
	if entry == nil {
		return nil, nil, schema.Unhandled(ctx.Uri, "null allOf entry")
	}

	if len(entry.Ref) != 0 && len(entry.Type) == 0 && len(entry.Properties) == 0 {
		return ctx.Resolve(entry.Ref)
	}

	return ctx.Child("allOf", "0"), entry, nil
}
