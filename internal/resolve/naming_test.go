package resolve

import (
	"testing"

	"github.com/koskimas/gltfgen/internal/schema"
	assert "github.com/stretchr/testify/require"
)

func TestCanonicalName(t *testing.T) {
	name, err := CanonicalName(schema.ParseUri("light.schema.json#/definitions/lightSpot"), &schema.Schema{Title: "Spot"})
	assert.NoError(t, err)
	assert.Equal(t, "LightSpot", name)

	name, err = CanonicalName(schema.ParseUri("camera.schema.json"), &schema.Schema{Title: "Camera Object"})
	assert.NoError(t, err)
	assert.Equal(t, "Camera", name)

	name, err = CanonicalName(schema.ParseUri("accessor.sparse.schema.json"), &schema.Schema{})
	assert.NoError(t, err)
	assert.Equal(t, "AccessorSparse", name)

	name, err = CanonicalName(schema.ParseUri("a.schema.json#/properties/x"), &schema.Schema{Title: "khr_lights light spot"})
	assert.NoError(t, err)
	assert.Equal(t, "LightSpot", name)

	_, err = CanonicalName(schema.ParseUri("a.schema.json#/properties/x"), &schema.Schema{})
	assert.ErrorIs(t, err, schema.ErrUnhandledShape)
}

func TestTitleName(t *testing.T) {
	assert.Equal(t, "TextureInfo", TitleName("khr_texture_transform Texture Info"))
	assert.Equal(t, "TextureInfo", TitleName("Texture Info"))
	assert.Equal(t, "KHRLightsPunctualGlTFExtension", TitleName("KHR_lights_punctual glTF extension"))
	assert.Equal(t, "KhrOnly", TitleName("khr_only"))
}

func TestPascalCase(t *testing.T) {
	assert.Equal(t, "LightSpot", PascalCase("lightSpot"))
	assert.Equal(t, "GlTF", PascalCase("glTF"))
	assert.Equal(t, "AnimationChannelTarget", PascalCase("animation.channel.target"))
	assert.Equal(t, "", PascalCase(" . "))
}

func TestSingular(t *testing.T) {
	for plural, singular := range map[string]string{
		"nodes":      "node",
		"accessors":  "accessor",
		"primitives": "primitive",
		"indices":    "index",
		"Vertices":   "Vertex",
		"bodies":     "body",
		"matrices":   "matrix",
		"children":   "child",
		"status":     "status",
		"class":      "class",
		"boxes":      "box",
		"weight":     "weight",
	} {
		assert.Equal(t, singular, Singular(plural), plural)
	}
}

func TestDefaultModulePath(t *testing.T) {
	assert.Equal(t, []string{"accessor", "sparse"}, DefaultModulePath(schema.ParseUri("accessor.sparse.indices.schema.json")))
	assert.Equal(t, []string{}, DefaultModulePath(schema.ParseUri("node.schema.json")))
	assert.Equal(t, []string{"camera"}, DefaultModulePath(schema.ParseUri("camera.perspective.schema.json#/definitions/x")))
}
