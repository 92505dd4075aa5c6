// Package config loads converter settings from a YAML file, INTESASP_*
// environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/intesasp/xlsx2ofx/internal/importer"
)

// Config holds the converter settings.
type Config struct {
	BankID   string `yaml:"bank_id" mapstructure:"bank_id"`
	Tables   string `yaml:"tables,omitempty" mapstructure:"tables"`
	MissLog  string `yaml:"miss_log,omitempty" mapstructure:"miss_log"`
	Format   string `yaml:"format" mapstructure:"format"`
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
}

// Setting keys.
const (
	KeyBankID   = "bank_id"
	KeyTables   = "tables"
	KeyMissLog  = "miss_log"
	KeyFormat   = "format"
	KeyLogLevel = "log_level"
)

// EnvPrefix prefixes environment overrides, e.g. INTESASP_BANK_ID.
const EnvPrefix = "INTESASP"

// DefaultFile is the config file name looked up in the working directory.
const DefaultFile = "intesasp.yaml"

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BankID:   importer.DefaultBankID,
		Format:   "ofx",
		LogLevel: "info",
	}
}

// NewViper returns a viper instance holding the defaults and bound to the
// environment. Callers may bind flags to it before calling Read.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault(KeyBankID, d.BankID)
	v.SetDefault(KeyTables, d.Tables)
	v.SetDefault(KeyMissLog, d.MissLog)
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// Read merges the YAML file at path (if any) into v and decodes the result.
// Relative table and miss log paths are resolved against the file's directory.
func Read(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.BankID == "" {
		return nil, errors.New("config: bank_id must not be empty")
	}
	if path != "" {
		dir := filepath.Dir(path)
		cfg.Tables = resolve(dir, cfg.Tables)
		cfg.MissLog = resolve(dir, cfg.MissLog)
	}
	return &cfg, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Load reads the config file at path on top of defaults and environment.
func Load(path string) (*Config, error) {
	return Read(NewViper(), path)
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
