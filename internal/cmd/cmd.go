package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/koskimas/gltfgen/internal/config"
	"github.com/koskimas/gltfgen/internal/extension"
	"github.com/koskimas/gltfgen/internal/gen"
	"github.com/koskimas/gltfgen/internal/model"
	"github.com/koskimas/gltfgen/internal/resolve"
	"github.com/koskimas/gltfgen/internal/schema"
	"go.uber.org/zap"
)

const configFile = "gltfgen.yaml"

type Settings struct {
	WorkingDir string
	// ConfigFile defaults to `gltfgen.yaml` in the working directory.
	ConfigFile string
	Logger     *zap.Logger
}

// Run compiles the core specification and every enabled extension and
// writes the generated code. Nothing is written unless every pass succeeds.
func Run(s Settings) error {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	configPath := s.ConfigFile
	if len(configPath) == 0 {
		configPath = filepath.Join(s.WorkingDir, configFile)
	}

	cfg, err := config.Read(configPath)
	if err != nil {
		return err
	}

	core, module, err := compileCore(s, *cfg, logger)
	if err != nil {
		return err
	}

	passes, err := compileExtensions(s, *cfg, core, logger)
	if err != nil {
		return err
	}

	files, err := gen.Render(*cfg, module, passes)
	if err != nil {
		return err
	}

	if err := gen.Write(s.WorkingDir, files); err != nil {
		return err
	}

	logger.Info("generated code", zap.Int("files", len(files)), zap.String("output", cfg.Output.Path))
	return nil
}

// compileCore loads the core specification and resolves every type
// reachable from the configured roots.
func compileCore(s Settings, cfg config.Config, logger *zap.Logger) (*schema.Store, *model.Module, error) {
	store, err := schema.Load(filepath.Join(s.WorkingDir, cfg.Specification.Path), schema.CoreMeta(), nil, logger)
	if err != nil {
		return nil, nil, err
	}

	builder := resolve.NewBuilder(store, logger)
	for _, r := range cfg.Specification.Roots {
		builder.Push(model.TypeDescription{
			Uri:  schema.ParseUri(r.Path),
			Name: r.Name,
		})
	}

	module, err := builder.Traverse()
	if err != nil {
		return nil, nil, fmt.Errorf("core specification: %w", err)
	}

	logger.Info("compiled core specification", zap.Int("types", len(module.Types)))
	return store, module, nil
}

// compileExtensions runs one independent pass per enabled extension. The
// core store is shared read-only between them.
func compileExtensions(s Settings, cfg config.Config, core *schema.Store, logger *zap.Logger) ([]*extension.Pass, error) {
	if len(cfg.Extensions.Path) == 0 {
		return nil, nil
	}

	extensions, err := extension.Discover(filepath.Join(s.WorkingDir, cfg.Extensions.Path), logger)
	if err != nil {
		return nil, err
	}

	passes := make([]*extension.Pass, 0, len(extensions))
	for _, ext := range extensions {
		if !cfg.Extensions.Enabled(ext.Name) {
			logger.Debug("extension disabled", zap.String("extension", ext.Name))
			continue
		}

		pass, err := extension.Compile(ext, core, logger)
		if err != nil {
			return nil, fmt.Errorf(`extension "%s": %w`, ext.Name, err)
		}

		passes = append(passes, pass)
	}

	return passes, nil
}
