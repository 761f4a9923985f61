package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/koskimas/gltfgen/internal/schema"
	assert "github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// workspace copies a fixture into a temporary working directory so that
// the generated files don't end up in testdata.
func workspace(t *testing.T, fixture string) string {
	dir := t.TempDir()
	assert.NoError(t, os.CopyFS(dir, os.DirFS(filepath.Join("testdata", fixture))), "failed to copy fixture")
	return dir
}

func readFile(t *testing.T, filePath string) string {
	data, err := os.ReadFile(filePath)
	assert.NoError(t, err)
	return string(data)
}

func TestRun(t *testing.T) {
	wd := workspace(t, "simple")

	err := Run(Settings{
		WorkingDir: wd,
		Logger:     zaptest.NewLogger(t),
	})
	assert.NoError(t, err)

	core := readFile(t, filepath.Join(wd, "gltf", "gltf.go"))
	assert.Contains(t, core, "package gltf")
	assert.Contains(t, core, "// The root object for a glTF asset.\ntype Root struct {")
	assert.Contains(t, core, "type Node struct {")
	assert.Regexp(t, "Extensions\\s+map\\[string\\]any\\s+`json:\"extensions,omitempty\"`", core)
	assert.Regexp(t, "Scene\\s+\\*int64\\s+`json:\"scene,omitempty\"`", core)
	assert.Regexp(t, "Children\\s+\\[\\]int64\\s+`json:\"children,omitempty\"`", core)
	assert.Regexp(t, "Matrix\\s+\\*\\[16\\]float64\\s+`json:\"matrix,omitempty\"`", core)

	extDir := filepath.Join(wd, "gltf", "extensions", "khr_lights_punctual")

	root := readFile(t, filepath.Join(extDir, "khrlightspunctual.go"))
	assert.Contains(t, root, "package khrlightspunctual")
	assert.Contains(t, root, `const ExtensionName = "KHR_lights_punctual"`)
	assert.Contains(t, root, "type Light struct {")
	assert.Regexp(t, "Type\\s+LightType\\s+`json:\"type\"`", root)
	assert.Regexp(t, `LightTypeSpot\s+LightType = "spot"`, root)
	assert.Regexp(t, "Spot\\s+\\*LightSpot\\s+`json:\"spot,omitempty\"`", root)
	assert.Contains(t, root, "// Defaults to [1,1,1].")

	spot := readFile(t, filepath.Join(extDir, "light.go"))
	assert.Contains(t, spot, "type LightSpot struct {")

	node := readFile(t, filepath.Join(extDir, "node.go"))
	assert.Contains(t, node, "type NodeExtension struct {")
	assert.Regexp(t, "Light\\s+int64\\s+`json:\"light\"`", node)

	document := readFile(t, filepath.Join(extDir, "gltf.go"))
	assert.Contains(t, document, "type GltfExtension struct {")
	assert.Regexp(t, "Lights\\s+\\[\\]Light\\s+`json:\"lights\"`", document)

	_, err = os.Stat(filepath.Join(wd, "gltf", "extensions", "ext_disabled"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunIsDeterministic(t *testing.T) {
	first := workspace(t, "simple")
	second := workspace(t, "simple")

	assert.NoError(t, Run(Settings{WorkingDir: first}))
	assert.NoError(t, Run(Settings{WorkingDir: second}))

	for _, f := range []string{
		filepath.Join("gltf", "gltf.go"),
		filepath.Join("gltf", "extensions", "khr_lights_punctual", "khrlightspunctual.go"),
		filepath.Join("gltf", "extensions", "khr_lights_punctual", "node.go"),
	} {
		assert.Equal(t, readFile(t, filepath.Join(first, f)), readFile(t, filepath.Join(second, f)), f)
	}
}

func TestRunWritesNothingOnFailure(t *testing.T) {
	wd := workspace(t, "simple")

	configFile := filepath.Join(wd, "all.yaml")
	assert.NoError(t, os.WriteFile(configFile, []byte(`
version: 1
package:
  path: github.com/example/gltf
output:
  path: gltf
specification:
  path: specification/schema
extensions:
  path: extensions
`), 0600))

	err := Run(Settings{WorkingDir: wd, ConfigFile: configFile})
	assert.ErrorIs(t, err, schema.ErrUnresolvedReference)
	assert.ErrorContains(t, err, `extension "EXT_disabled"`)

	_, err = os.Stat(filepath.Join(wd, "gltf"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunMissingConfig(t *testing.T) {
	err := Run(Settings{WorkingDir: t.TempDir()})
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestRunFailsOnMissingRoot(t *testing.T) {
	wd := workspace(t, "simple")

	configFile := filepath.Join(wd, "typo.yaml")
	assert.NoError(t, os.WriteFile(configFile, []byte(`
version: 1
package:
  path: github.com/example/gltf
output:
  path: gltf
specification:
  path: specification/schema
  roots:
    - path: gltf.schema.json
      name: Root
`), 0600))

	err := Run(Settings{WorkingDir: wd, ConfigFile: configFile})
	assert.ErrorIs(t, err, schema.ErrUnresolvedReference)
	assert.ErrorContains(t, err, `core specification: failed to resolve type "gltf.schema.json"`)

	_, err = os.Stat(filepath.Join(wd, "gltf"))
	assert.True(t, os.IsNotExist(err))
}
