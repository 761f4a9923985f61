package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

const (
	currentVersion = 1

	defaultRootPath = "glTF.schema.json"
	defaultRootName = "Root"
)

type Config struct {
	Version       int           `yaml:"version"`
	Package       Package       `yaml:"package"`
	Output        Output        `yaml:"output"`
	Specification Specification `yaml:"specification"`
	Extensions    Extensions    `yaml:"extensions"`
}

type Package struct {
	Path string `yaml:"path"`
}

type Output struct {
	Path string `yaml:"path"`
}

type Specification struct {
	Path  string `yaml:"path"`
	Roots []Root `yaml:"roots"`
}

// Root is a schema document the core pass starts from. Name forces the
// generated type name.
type Root struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
}

type Extensions struct {
	Path    string   `yaml:"path"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Enabled reports whether the extension named `name` should be generated.
func (e Extensions) Enabled(name string) bool {
	if slices.Contains(e.Exclude, name) {
		return false
	}

	return len(e.Include) == 0 || slices.Contains(e.Include, name)
}

func Read(configPath string) (*Config, error) {
	fileData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf(`failed to read config file "%s": %w`, configPath, err)
	}

	config, err := Parse(fileData)
	if err != nil {
		return nil, fmt.Errorf(`invalid config file "%s": %w`, configPath, err)
	}

	return config, nil
}

func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(`failed to unmarshal: %w`, err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if len(c.Specification.Roots) == 0 {
		c.Specification.Roots = []Root{{Path: defaultRootPath, Name: defaultRootName}}
	}
}

func (c *Config) Validate() error {
	var errs []error

	if c.Version != currentVersion {
		errs = append(errs, fmt.Errorf("unsupported version %d", c.Version))
	}

	if len(c.Package.Path) == 0 {
		errs = append(errs, errors.New("package.path is required"))
	}

	if len(c.Output.Path) == 0 {
		errs = append(errs, errors.New("output.path is required"))
	}

	if len(c.Specification.Path) == 0 {
		errs = append(errs, errors.New("specification.path is required"))
	}

	for i, r := range c.Specification.Roots {
		if len(r.Path) == 0 {
			errs = append(errs, fmt.Errorf("specification.roots[%d].path is required", i))
		}
	}

	for _, name := range c.Extensions.Include {
		if slices.Contains(c.Extensions.Exclude, name) {
			errs = append(errs, fmt.Errorf(`extension "%s" is both included and excluded`, name))
		}
	}

	return errors.Join(errs...)
}
