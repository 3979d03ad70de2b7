package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Loader specifies how to load the scenario config
type Loader interface {
	Load(ctx context.Context) (*Config, error)
}

// YamlLoader loads a YAML file on top of DefaultConfig.
// Unknown fields are rejected.
type YamlLoader struct {
	Path string
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
}

var _ Loader = (*YamlLoader)(nil)

func (l *YamlLoader) Load(ctx context.Context) (*Config, error) {
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", l.Path, err)
	}
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %q: %w", l.Path, err)
	}
	return cfg, nil
}

// TomlLoader loads a TOML file on top of DefaultConfig.
// Unknown keys are rejected.
type TomlLoader struct {
	Path string
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
}

var _ Loader = (*TomlLoader)(nil)

func (l *TomlLoader) Load(ctx context.Context) (*Config, error) {
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, l.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", l.Path, err)
	}
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %q: %w", l.Path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return nil, fmt.Errorf("failed to decode config %q: unknown keys %s", l.Path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// NewFileLoader picks the loader by file extension: .toml files are read as TOML,
// anything else as YAML.
func NewFileLoader(fs afero.Fs, path string) Loader {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return &TomlLoader{Path: path, Fs: fs}
	}
	return &YamlLoader{Path: path, Fs: fs}
}

// Load is implemented on the Config itself, so an in-process config can be used directly.
func (c *Config) Load(ctx context.Context) (*Config, error) {
	return c, nil
}

// LoadDotEnv exports the variables of a dotenv file into the process environment.
// Variables that are already set take precedence over the file.
// A missing file is not an error.
func LoadDotEnv(fs afero.Fs, path string) (loaded []string, err error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	data, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read env file %q: %w", path, err)
	}
	env, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse env file %q: %w", path, err)
	}
	for k, v := range env {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return loaded, err
		}
		loaded = append(loaded, k)
	}
	return loaded, nil
}
