package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vogtb/gridcalc/packages/persist"
	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

// Config holds the settings read from the --config file. flags override
// individual fields.
type Config struct {
	Rows      int    `yaml:"rows"`
	Columns   int    `yaml:"columns"`
	LogLevel  string `yaml:"log_level"`
	SheetName string `yaml:"sheet_name"`
}

// DefaultConfig returns the settings used without a config file
func DefaultConfig() Config {
	return Config{
		Rows:      50,
		Columns:   spreadsheet.MaxColumns,
		LogLevel:  "warn",
		SheetName: persist.DefaultSheetName,
	}
}

// LoadConfig reads a YAML config file on top of the defaults. an empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	if err := decodeConfig(f, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func decodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the grid size against what a sheet supports
func (c Config) Validate() error {
	if c.Rows <= 0 {
		return fmt.Errorf("rows must be positive, got %d", c.Rows)
	}
	if c.Columns <= 0 || c.Columns > spreadsheet.MaxColumns {
		return fmt.Errorf("columns must be between 1 and %d, got %d", spreadsheet.MaxColumns, c.Columns)
	}
	return nil
}
