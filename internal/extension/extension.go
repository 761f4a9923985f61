package extension

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/koskimas/gltfgen/internal/model"
	"github.com/koskimas/gltfgen/internal/resolve"
	"github.com/koskimas/gltfgen/internal/schema"
	"go.uber.org/zap"
)

// AttachmentName is the name every attachment root is generated under.
const AttachmentName = "Extension"

const schemaFolder = "schema"

var folderName = regexp.MustCompile(`^([A-Z0-9]+)_([A-Za-z0-9_]+)$`)

type Extension struct {
	Name   string
	Vendor string
	Dir    string
}

func (e Extension) SchemaDir() string {
	return filepath.Join(e.Dir, schemaFolder)
}

// Attachment is an extension object attached to a base object of the core
// specification, such as `node` or `material`.
type Attachment struct {
	BaseObject string
	Uri        schema.Uri
}

// Pass is the result of compiling one extension.
type Pass struct {
	Extension   Extension
	Attachments []Attachment
	Module      *model.Module
}

// Discover lists the `<VENDOR>_<name>` folders directly inside `dir`. A
// missing directory has no extensions.
func Discover(dir string, logger *zap.Logger) ([]Extension, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf(`failed to list extensions in "%s": %w`, dir, err)
	}

	extensions := make([]Extension, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		m := folderName.FindStringSubmatch(e.Name())
		if m == nil {
			logger.Warn("skipping folder without a vendor prefix", zap.String("folder", e.Name()))
			continue
		}

		extensions = append(extensions, Extension{
			Name:   e.Name(),
			Vendor: m[1],
			Dir:    filepath.Join(dir, e.Name()),
		})
	}

	return extensions, nil
}

// AttachmentBase extracts the base object name from a file named
// `<BaseObject>.<extension>.schema.json`. A file named
// `<extension>.schema.json` is an attachment with an empty base object.
// ok is false for files that aren't attachments of `extension`.
func AttachmentBase(fileName string, extension string) (base string, ok bool) {
	suffix := extension + schema.DocumentSuffix
	if fileName == suffix {
		return "", true
	}

	return strings.CutSuffix(fileName, "."+suffix)
}

// Attachments returns the attachment files loaded into `store`.
func Attachments(store *schema.Store, extension string, logger *zap.Logger) []Attachment {
	attachments := make([]Attachment, 0)

	for _, doc := range store.Documents() {
		base, ok := AttachmentBase(doc, extension)
		if !ok {
			continue
		}

		if len(base) == 0 {
			// TODO: generate attachments that apply to all objects once the emitter
			// can attach a type to every base object.
			logger.Warn("skipping attachment without a base object", zap.String("file", doc))
			continue
		}

		attachments = append(attachments, Attachment{
			BaseObject: base,
			Uri:        schema.Uri{Path: doc},
		})
	}

	return attachments
}

// Compile runs the generation pass of one extension. Its store is layered
// over `core` so that core types resolve but aren't generated again.
func Compile(ext Extension, core *schema.Store, logger *zap.Logger) (*Pass, error) {
	logger = logger.With(zap.String("extension", ext.Name))

	store, err := schema.Load(ext.SchemaDir(), schema.ExtensionMeta(ext.Name), core, logger)
	if err != nil {
		return nil, err
	}

	attachments := Attachments(store, ext.Name, logger)
	builder := resolve.NewBuilder(store, logger)

	for _, a := range attachments {
		builder.Push(model.TypeDescription{
			Uri:        a.Uri,
			Name:       AttachmentName,
			ModulePath: []string{strings.ToLower(a.BaseObject)},
			Extension:  ext.Name,
		})
	}

	module, err := builder.Traverse()
	if err != nil {
		return nil, err
	}

	logger.Info("compiled extension", zap.Int("attachments", len(attachments)), zap.Int("types", len(module.Types)))

	return &Pass{
		Extension:   ext,
		Attachments: attachments,
		Module:      module,
	}, nil
}
