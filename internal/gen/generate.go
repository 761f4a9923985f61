package gen

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"github.com/goccy/go-json"
	"github.com/koskimas/gltfgen/internal/config"
	"github.com/koskimas/gltfgen/internal/extension"
	"github.com/koskimas/gltfgen/internal/model"
	"github.com/koskimas/gltfgen/internal/resolve"
	"github.com/koskimas/gltfgen/internal/schema"
	"github.com/koskimas/gltfgen/internal/tree"
)

const (
	headerComment = "Code generated by gltfgen. DO NOT EDIT."

	extensionsDir = "extensions"

	idConstExtensionName = "ExtensionName"
	idAny                = "any"
	tagJson              = "json"
	tagOmitEmpty         = ",omitempty"
)

// Package is one generated Go package. The core package holds the types of
// the core pass, every extension gets a package of its own.
type Package struct {
	Path   string
	Dir    string
	Name   string
	Module *model.Module
	Pass   *extension.Pass
}

// Packages lays out the packages generated for the given passes.
func Packages(cfg config.Config, core *model.Module, passes []*extension.Pass) []*Package {
	packages := []*Package{{
		Path:   cfg.Package.Path,
		Dir:    cfg.Output.Path,
		Name:   packageName(path.Base(cfg.Package.Path)),
		Module: core,
	}}

	for _, p := range passes {
		dir := strings.ToLower(p.Extension.Name)

		packages = append(packages, &Package{
			Path:   path.Join(cfg.Package.Path, extensionsDir, dir),
			Dir:    filepath.Join(cfg.Output.Path, extensionsDir, dir),
			Name:   packageName(dir),
			Module: p.Module,
			Pass:   p,
		})
	}

	return packages
}

// Render renders every generated file in memory. The keys of the returned
// map are file paths relative to the working directory.
func Render(cfg config.Config, core *model.Module, passes []*extension.Pass) (map[string][]byte, error) {
	packages := Packages(cfg, core, passes)
	names := make(map[*model.Module]map[schema.Uri]string, len(packages))

	for _, pkg := range packages {
		names[pkg.Module] = typeNames(pkg.Module)
	}

	files := make(map[string][]byte)
	for _, pkg := range packages {
		g := &generator{
			core:  packages[0],
			pkg:   pkg,
			names: names,
			used:  make(map[string]bool),
		}

		for _, n := range names[pkg.Module] {
			g.used[n] = true
		}

		if err := g.genPackage(files); err != nil {
			return nil, fmt.Errorf(`failed to generate package "%s": %w`, pkg.Path, err)
		}
	}

	return files, nil
}

func Write(workingDir string, files map[string][]byte) error {
	for _, p := range slices.Sorted(maps.Keys(files)) {
		filePath := filepath.Join(workingDir, p)

		if err := os.MkdirAll(filepath.Dir(filePath), 0700); err != nil {
			return err
		}

		if err := os.WriteFile(filePath, files[p], 0600); err != nil {
			return fmt.Errorf(`failed to write "%s": %w`, filePath, err)
		}
	}

	return nil
}

type generator struct {
	core  *Package
	pkg   *Package
	names map[*model.Module]map[schema.Uri]string
	used  map[string]bool
}

func (g *generator) genPackage(files map[string][]byte) error {
	root := tree.Build(g.pkg.Module)

	return root.Walk(func(segments []string, node *tree.Node) error {
		isRoot := len(segments) == 0
		if len(node.Types) == 0 && !(isRoot && g.pkg.Pass != nil) {
			return nil
		}

		f := jen.NewFilePathName(g.pkg.Path, g.pkg.Name)
		f.HeaderComment(headerComment)

		if isRoot && g.pkg.Pass != nil {
			genExtensionName(f, g.pkg.Pass.Extension)
		}

		for _, t := range node.Types {
			if err := g.genType(f, t); err != nil {
				return fmt.Errorf(`type "%s": %w`, t.Uri, err)
			}
		}

		fileName := g.pkg.Name + ".go"
		if !isRoot {
			fileName = strings.Join(segments, "_") + ".go"
		}

		var buf bytes.Buffer
		if err := f.Render(&buf); err != nil {
			return fmt.Errorf(`failed to render "%s": %w`, fileName, err)
		}

		files[filepath.Join(g.pkg.Dir, fileName)] = buf.Bytes()
		return nil
	})
}

func genExtensionName(f *jen.File, ext extension.Extension) {
	f.Comment(fmt.Sprintf("%s is the key of the extension in `extensions` objects.", idConstExtensionName))
	f.Const().Id(idConstExtensionName).Op("=").Lit(ext.Name)
	f.Empty()
}

func (g *generator) genType(f *jen.File, t *model.ResolvedType) error {
	name := g.names[g.pkg.Module][t.Uri]
	comments := commentLines(t.Prototype.Comment)

	if base, ok := g.attachmentBase(t.Uri); ok {
		comments = append(comments, fmt.Sprintf("%s attaches to the `%s` object.", name, base))
	}

	return g.genStruct(f, name, t.Prototype, comments)
}

func (g *generator) attachmentBase(uri schema.Uri) (string, bool) {
	if g.pkg.Pass == nil {
		return "", false
	}

	for _, a := range g.pkg.Pass.Attachments {
		if a.Uri == uri {
			return a.BaseObject, true
		}
	}

	return "", false
}

func (g *generator) genStruct(f *jen.File, name string, proto *model.ObjectPrototype, comments []string) error {
	// Enums and embedded objects of the fields are declared after the struct.
	var decls []decl
	var fieldErr error

	for _, c := range comments {
		f.Comment(c)
	}

	f.Type().Id(name).StructFunc(func(sg *jen.Group) {
		for _, p := range proto.Properties {
			if fieldErr != nil {
				return
			}

			fieldType, err := g.goType(name, p.Name, p.Type, &decls)
			if err != nil {
				fieldErr = fmt.Errorf(`property "%s": %w`, p.Name, err)
				return
			}

			tag := p.Name
			if p.Optional {
				tag += tagOmitEmpty
				if isPointer(p.Type) {
					fieldType = jen.Op("*").Add(fieldType)
				}
			}

			for _, c := range fieldComments(p) {
				sg.Comment(c)
			}

			sg.Id(identifier(p.Name)).Add(fieldType).Tag(map[string]string{tagJson: tag})
		}
	})
	f.Empty()

	if fieldErr != nil {
		return fieldErr
	}

	for _, d := range decls {
		if err := d(f); err != nil {
			return err
		}
	}

	return nil
}

type decl func(f *jen.File) error

// goType returns the Go type of `t`, the type of property `prop` of the
// struct `owner`. Declarations `t` needs are appended to `decls`.
func (g *generator) goType(owner string, prop string, t model.Type, decls *[]decl) (jen.Code, error) {
	switch t := t.(type) {
	case model.Any:
		return jen.Id(idAny), nil
	case model.Array:
		item, err := g.goType(owner, resolve.Singular(prop), t.Item, decls)
		if err != nil {
			return nil, err
		}

		return jen.Index().Add(item), nil
	case model.FixedArray:
		item, err := g.goType(owner, resolve.Singular(prop), t.Item, decls)
		if err != nil {
			return nil, err
		}

		return jen.Index(jen.Lit(t.Length)).Add(item), nil
	case model.TypedObject:
		return g.typeRef(t.Uri)
	case model.EmbeddedObject:
		return g.embeddedObject(owner, prop, t, decls), nil
	case model.String:
		return jen.String(), nil
	case model.Boolean:
		return jen.Bool(), nil
	case model.Number:
		return jen.Float64(), nil
	case model.Integer:
		return jen.Int64(), nil
	case model.Enum:
		return g.enum(owner, prop, t, decls), nil
	case model.MapOfObjects:
		return jen.Map(jen.String()).Id(idAny), nil
	}

	panic(fmt.Sprintf("unhandled type %T", t))
}

// isPointer reports whether an optional field of type `t` is wrapped in a
// pointer. Slices, maps and `any` already have a zero value meaning
// absent, so optional arrays are never wrapped whatever their min length.
func isPointer(t model.Type) bool {
	switch t.(type) {
	case model.TypedObject, model.EmbeddedObject, model.FixedArray,
		model.String, model.Boolean, model.Number, model.Integer, model.Enum:
		return true
	case model.Any, model.Array, model.MapOfObjects:
		return false
	}

	panic(fmt.Sprintf("unhandled type %T", t))
}

func (g *generator) typeRef(uri schema.Uri) (jen.Code, error) {
	if name, ok := g.names[g.pkg.Module][uri]; ok {
		return jen.Id(name), nil
	}

	if g.pkg != g.core {
		if name, ok := g.names[g.core.Module][uri]; ok {
			return jen.Qual(g.core.Path, name), nil
		}
	}

	return nil, fmt.Errorf(`no generated type for "%s"`, uri)
}

// embeddedObject names an anonymous object by its title, or after the
// singular form of the property holding it.
func (g *generator) embeddedObject(owner string, prop string, t model.EmbeddedObject, decls *[]decl) jen.Code {
	name := owner + identifier(resolve.Singular(prop))
	if len(t.Name) != 0 && !g.used[identifier(t.Name)] {
		name = identifier(t.Name)
	}
	name = g.unique(name)

	*decls = append(*decls, func(f *jen.File) error {
		return g.genStruct(f, name, t.Prototype, commentLines(t.Prototype.Comment))
	})

	return jen.Id(name)
}

func (g *generator) enum(owner string, prop string, t model.Enum, decls *[]decl) jen.Code {
	name := g.unique(owner + identifier(prop))

	*decls = append(*decls, func(f *jen.File) error {
		genEnum(f, name, t)
		return nil
	})

	return jen.Id(name)
}

func genEnum(f *jen.File, name string, t model.Enum) {
	f.Type().Id(name).String()

	if len(t.Options) == 0 {
		f.Empty()
		return
	}

	f.Const().DefsFunc(func(g *jen.Group) {
		seen := make(map[string]bool, len(t.Options))

		for _, o := range t.Options {
			id := name + identifier(o)
			if seen[id] {
				continue
			}
			seen[id] = true

			g.Id(id).Id(name).Op("=").Lit(o)
		}
	})
	f.Empty()
}

func (g *generator) unique(name string) string {
	candidate := name
	for i := 2; g.used[candidate]; i += 1 {
		candidate = name + strconv.Itoa(i)
	}

	g.used[candidate] = true
	return candidate
}

// typeNames assigns a Go identifier to every type of `module`. Extension
// attachments are all named alike, so they're prefixed with the object
// they attach to.
func typeNames(module *model.Module) map[schema.Uri]string {
	names := make(map[schema.Uri]string, len(module.Types))
	used := make(map[string]bool, len(module.Types))

	for _, t := range module.Sorted() {
		name := identifier(t.Name)
		if len(t.Extension) != 0 || used[name] {
			name = identifier(strings.Join(t.ModulePath, " ")) + name
		}

		candidate := name
		for i := 2; used[candidate]; i += 1 {
			candidate = name + strconv.Itoa(i)
		}

		used[candidate] = true
		names[t.Uri] = candidate
	}

	return names
}

func fieldComments(p *model.Property) []string {
	lines := commentLines(p.Comment)

	if p.Default != nil {
		if d, err := json.Marshal(p.Default); err == nil {
			lines = append(lines, fmt.Sprintf("Defaults to %s.", d))
		}
	}

	return lines
}

func commentLines(c string) []string {
	c = strings.TrimSpace(c)
	if len(c) == 0 {
		return nil
	}

	return strings.Split(c, "\n")
}

// identifier turns a schema name into an exported Go identifier.
func identifier(name string) string {
	id := resolve.PascalCase(name)

	if len(id) == 0 {
		return "X"
	}

	if unicode.IsDigit(rune(id[0])) {
		return "X" + id
	}

	return id
}

func packageName(dir string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}

		return -1
	}, dir)
}
