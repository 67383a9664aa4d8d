// Package config loads the project configuration from docgraph.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileNames are the config file names probed in order inside the project
// root.
var FileNames = []string{"docgraph.yaml", "docgraph.yml"}

// Output formats accepted by the "format" key.
const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatBoth = "both"
)

// Config is the full project configuration. Zero values fall back to
// defaults; validation runs after defaults and env overrides are applied.
type Config struct {
	// Title is the site name shown in page headers and the run summary.
	Title string `yaml:"title"`

	// Entrypoints are the root module specifiers, relative to the project
	// root. Empty means discover entrypoints under the root.
	Entrypoints []string `yaml:"entrypoints"`

	// OutputDir receives the rendered site and indexes.
	OutputDir string `yaml:"output_dir" validate:"required"`

	// Format selects which artifacts generate writes.
	Format string `yaml:"format" validate:"oneof=html json both"`

	// Workers bounds the parse pool; 0 means one per CPU.
	Workers int `yaml:"workers" validate:"gte=0"`

	// Ambient adds or overrides ambient symbol table entries (name → href).
	Ambient map[string]string `yaml:"ambient"`

	// Ignore holds gitignore-style patterns applied during entrypoint
	// discovery.
	Ignore []string `yaml:"ignore"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Title:     "API Documentation",
		OutputDir: "docs",
		Format:    FormatBoth,
	}
}

// Load reads the config file at path, fills defaults, applies env overrides,
// and validates. An empty path returns the default config with env overrides
// applied.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Discover looks for a config file inside root and loads it, falling back to
// defaults when none exists.
func Discover(root string) (Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(root, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Load("")
}

func applyDefaults(cfg *Config) {
	if cfg.Title == "" {
		cfg.Title = "API Documentation"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "docs"
	}
	if cfg.Format == "" {
		cfg.Format = FormatBoth
	}
}

// applyEnv overrides the small set of keys that make sense per-invocation.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DOCGRAPH_TITLE"); v != "" {
		cfg.Title = v
	}
	if v := os.Getenv("DOCGRAPH_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("DOCGRAPH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Workers = n
		}
	}
}
