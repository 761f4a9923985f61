package resolve

import (
	"testing"

	"github.com/koskimas/gltfgen/internal/model"
	"github.com/koskimas/gltfgen/internal/schema"
	assert "github.com/stretchr/testify/require"
)

func readPrototype(t *testing.T, store *schema.Store, uri string, visit func(model.Type)) (*model.ObjectPrototype, error) {
	ctx, s, err := store.Resolve(schema.ParseUri(uri))
	assert.NoError(t, err)

	return NewDeducer(visit).ReadPrototype(ctx, s)
}

func TestMergePrecedence(t *testing.T) {
	store := newStore(t, nil, map[string]string{
		"s.schema.json": `{
			"type": "object",
			"$ref": "refBase.schema.json",
			"allOf": [{"$ref": "allOfBase.schema.json"}],
			"properties": {"p": {}}
		}`,
		"refBase.schema.json": `{
			"type": "object",
			"properties": {"p": {"type": "integer", "description": "C1"}}
		}`,
		"allOfBase.schema.json": `{
			"type": "object",
			"properties": {"p": {"type": "string", "description": "C2"}}
		}`,
	})

	proto, err := readPrototype(t, store, "s.schema.json", nil)
	assert.NoError(t, err)
	assert.Len(t, proto.Properties, 1)

	p, ok := proto.Property("p")
	assert.True(t, ok)
	assert.Equal(t, model.Integer{}, p.Type)
	assert.Equal(t, "C1", p.Comment)
}

func TestOwnSchemaFillsUnsetFields(t *testing.T) {
	store := newStore(t, nil, map[string]string{
		"s.schema.json": `{
			"type": "object",
			"allOf": [{"$ref": "base.schema.json"}],
			"properties": {
				"p": {"type": "number", "description": "Own.", "default": 1},
				"q": {"type": "boolean"}
			}
		}`,
		"base.schema.json": `{
			"type": "object",
			"properties": {"p": {"description": "Base."}}
		}`,
	})

	proto, err := readPrototype(t, store, "s.schema.json", nil)
	assert.NoError(t, err)

	p, _ := proto.Property("p")
	assert.Equal(t, model.Number{}, p.Type)
	assert.Equal(t, "Base.", p.Comment)
	assert.Equal(t, float64(1), p.Default)
	assert.True(t, p.Optional)

	q, _ := proto.Property("q")
	assert.Equal(t, model.Boolean{}, q.Type)
}

func TestRequiredOverridesOptionality(t *testing.T) {
	store := newStore(t, nil, map[string]string{
		"derived.schema.json": `{
			"type": "object",
			"allOf": [{"$ref": "base.schema.json"}],
			"required": ["p"]
		}`,
		"viaRef.schema.json": `{
			"type": "object",
			"$ref": "base.schema.json",
			"properties": {"p": {}},
			"required": ["p"]
		}`,
		"base.schema.json": `{
			"type": "object",
			"properties": {"p": {"type": "string"}, "q": {"type": "string"}}
		}`,
	})

	for _, uri := range []string{"derived.schema.json", "viaRef.schema.json"} {
		proto, err := readPrototype(t, store, uri, nil)
		assert.NoError(t, err)

		p, _ := proto.Property("p")
		assert.False(t, p.Optional, uri)

		q, _ := proto.Property("q")
		assert.True(t, q.Optional, uri)
	}
}

func TestCommentFollowsReference(t *testing.T) {
	store := newStore(t, nil, map[string]string{
		"s.schema.json": `{
			"type": "object",
			"properties": {
				"direct": {"$ref": "glTFid.schema.json"},
				"wrapped": {"allOf": [{"$ref": "glTFid.schema.json"}]},
				"own": {"$ref": "glTFid.schema.json", "description": "Own."}
			}
		}`,
		"glTFid.schema.json": `{
			"type": "integer",
			"description": "Short.",
			"gltf_detailedDescription": "Long."
		}`,
	})

	proto, err := readPrototype(t, store, "s.schema.json", nil)
	assert.NoError(t, err)

	direct, _ := proto.Property("direct")
	assert.Equal(t, "Long.", direct.Comment)

	wrapped, _ := proto.Property("wrapped")
	assert.Equal(t, "Long.", wrapped.Comment)

	own, _ := proto.Property("own")
	assert.Equal(t, "Own.", own.Comment)
}

func TestReadPrototypeVisitsTypedObjects(t *testing.T) {
	store := newStore(t, nil, map[string]string{
		"s.schema.json": `{
			"type": "object",
			"properties": {
				"camera": {"$ref": "camera.schema.json"},
				"nodes": {"type": "array", "items": {"$ref": "node.schema.json"}},
				"inline": {"type": "object", "properties": {"mesh": {"$ref": "mesh.schema.json"}}}
			}
		}`,
		"camera.schema.json": `{"type": "object"}`,
		"node.schema.json":   `{"type": "object"}`,
		"mesh.schema.json":   `{"type": "object"}`,
	})

	var visited []schema.Uri
	_, err := readPrototype(t, store, "s.schema.json", func(t model.Type) {
		visited = append(visited, model.TypedObjects(t)...)
	})
	assert.NoError(t, err)

	assert.ElementsMatch(t, []schema.Uri{
		schema.ParseUri("camera.schema.json"),
		schema.ParseUri("node.schema.json"),
		schema.ParseUri("mesh.schema.json"),
	}, visited)
}

func TestMultipleAllOfBasesAreRejected(t *testing.T) {
	store := newStore(t, nil, map[string]string{
		"s.schema.json": `{
			"type": "object",
			"allOf": [{"$ref": "a.schema.json"}, {"$ref": "b.schema.json"}]
		}`,
		"a.schema.json": `{"type": "object"}`,
		"b.schema.json": `{"type": "object"}`,
	})

	_, err := readPrototype(t, store, "s.schema.json", nil)
	assert.ErrorIs(t, err, schema.ErrUnhandledShape)
}

func TestCyclicInheritanceIsRejected(t *testing.T) {
	store := newStore(t, nil, map[string]string{
		"a.schema.json": `{"type": "object", "allOf": [{"$ref": "b.schema.json"}]}`,
		"b.schema.json": `{"type": "object", "$ref": "a.schema.json"}`,
	})

	_, err := readPrototype(t, store, "a.schema.json", nil)
	assert.ErrorIs(t, err, schema.ErrUnhandledShape)
	assert.Contains(t, err.Error(), "cyclic reference")
}

func TestPropertyErrorsCarryBreadcrumbs(t *testing.T) {
	store := newStore(t, nil, map[string]string{
		"s.schema.json": `{"type": "object", "allOf": [{"$ref": "base.schema.json"}]}`,
		"base.schema.json": `{"type": "object", "properties": {"bad": {"type": "null"}}}`,
	})

	_, err := readPrototype(t, store, "s.schema.json", nil)
	assert.ErrorIs(t, err, schema.ErrUnhandledShape)
	assert.Contains(t, err.Error(), `base "base.schema.json"`)
	assert.Contains(t, err.Error(), `property "bad" of "base.schema.json"`)
}
