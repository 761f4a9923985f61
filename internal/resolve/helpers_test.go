package resolve

import (
	"testing"

	"github.com/koskimas/gltfgen/internal/model"
	"github.com/koskimas/gltfgen/internal/schema"
	assert "github.com/stretchr/testify/require"
)

func newStore(t *testing.T, base *schema.Store, docs map[string]string) *schema.Store {
	documents := make(map[string][]byte, len(docs))
	for name, d := range docs {
		documents[name] = []byte(d)
	}

	meta := schema.CoreMeta()
	if base != nil {
		meta = schema.ExtensionMeta("KHR_test")
	}

	store, err := schema.NewStore(meta, base, documents)
	assert.NoError(t, err, "failed to create store")
	return store
}

// deduceProperty deduces the type of property `prop` of document `doc`.
func deduceProperty(t *testing.T, store *schema.Store, doc string, prop string) (model.Type, error) {
	ctx, s, err := store.Resolve(schema.ParseUri(doc).Child("properties", prop))
	assert.NoError(t, err)

	return NewDeducer(nil).Deduce(ctx, s)
}

// deduceInline deduces the type of a single inline property schema.
func deduceInline(t *testing.T, propertySchema string) (model.Type, error) {
	store := newStore(t, nil, map[string]string{
		"owner.schema.json": `{"type": "object", "properties": {"p": ` + propertySchema + `}}`,
	})

	return deduceProperty(t, store, "owner.schema.json", "p")
}
