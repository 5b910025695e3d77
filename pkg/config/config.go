package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
	k8syaml "sigs.k8s.io/yaml"
)

// Config represents a generation run
type Config struct {
	// Inputs are schema documents (paths or http(s) URLs), processed in order
	Inputs []string `yaml:"inputs" toml:"inputs" json:"inputs"`
	// Output is the directory generated files are written to. Defaults to "."
	Output string `yaml:"output" toml:"output" json:"output"`
	// ClassNames overrides the generated class name per input basename
	// Example: {"cloud-api": "CloudApi"}
	ClassNames map[string]string `yaml:"classNames" toml:"classNames" json:"classNames"`
	// Formatter is an optional command run in Output after generation.
	// Uses Docker Compose array format: ["npx", "prettier", "--write", "."]
	Formatter []string `yaml:"formatter" toml:"formatter" json:"formatter"`
	// IncludeTags and ExcludeTags are regex patterns matched against operation tags
	IncludeTags []string `yaml:"includeTags" toml:"includeTags" json:"includeTags"`
	ExcludeTags []string `yaml:"excludeTags" toml:"excludeTags" json:"excludeTags"`
	LogLevel    string   `yaml:"logLevel" toml:"logLevel" json:"logLevel"`
	DryRun      bool     `yaml:"dryRun" toml:"dryRun" json:"dryRun"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{Output: ".", LogLevel: "info"}
}

// Load reads a configuration file. The format follows the extension:
// .yaml/.yml, .toml or .json. Relative inputs and output are resolved
// against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".json":
		if err := k8syaml.UnmarshalStrict(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (use .yaml, .toml or .json)", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, in := range cfg.Inputs {
		cfg.Inputs[i] = resolve(base, in)
	}
	if cfg.Output == "" {
		cfg.Output = "."
	}
	cfg.Output = resolve(base, cfg.Output)
	return &cfg, nil
}

// Validate checks that tag patterns compile and no input is blank.
func (c *Config) Validate() error {
	for i, in := range c.Inputs {
		if strings.TrimSpace(in) == "" {
			return fmt.Errorf("inputs[%d] is empty", i)
		}
	}
	for _, p := range append(append([]string{}, c.IncludeTags...), c.ExcludeTags...) {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("invalid tag pattern %q: %w", p, err)
		}
	}
	return nil
}

func resolve(base, p string) string {
	if isURL(p) || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Sample is the file written by the init command.
const Sample = `# tsclientgen configuration
inputs:
  - ./schemas/cloud-api.yaml
output: ./src/clients
# classNames:
#   cloud-api: CloudApi
# formatter: ["npx", "prettier", "--write", "."]
# includeTags: []
# excludeTags: ["internal"]
logLevel: info
dryRun: false
`
