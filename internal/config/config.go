// Package config loads dispatchbench settings from an optional YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/KromDaniel/dispatchbench/internal/driver"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config holds settings shared by every command. Flags override them.
type Config struct {
	OutDir     string    `yaml:"out_dir" validate:"required"`
	NameFields int       `yaml:"name_fields" validate:"min=1,max=3"`
	Format     string    `yaml:"format" validate:"omitempty,oneof=text json"`
	Toolchain  Toolchain `yaml:"toolchain"`
	Symbols    Symbols   `yaml:"symbols"`
}

// Toolchain configures the compiler invocation.
type Toolchain struct {
	Go  string   `yaml:"go" validate:"required"`
	Env []string `yaml:"env,omitempty" validate:"dive,required"`
}

// Symbols configures symbol classification after builds.
type Symbols struct {
	Enabled bool     `yaml:"enabled"`
	Command []string `yaml:"command" validate:"min=1,dive,required"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	tc := driver.DefaultToolchain()
	return Config{
		OutDir:     "cases",
		NameFields: 3,
		Format:     "text",
		Toolchain: Toolchain{
			Go: tc.GoCommand,
		},
		Symbols: Symbols{
			Command: tc.SymbolCommand,
		},
	}
}

// Load reads path on top of DefaultConfig. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the struct constraints.
func (c Config) Validate() error {
	return validate.Struct(c)
}

// Marshal renders the config as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// DriverToolchain converts the settings for the build driver.
func (c Config) DriverToolchain() driver.Toolchain {
	return driver.Toolchain{
		GoCommand:     c.Toolchain.Go,
		Env:           c.Toolchain.Env,
		SymbolCommand: c.Symbols.Command,
	}
}
