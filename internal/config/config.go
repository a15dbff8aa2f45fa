package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/teller/internal/model"
)

// FileName is the config file at the root of a teller project.
const FileName = "teller.yaml"

// Storage drivers. Both keep their data under the project directory.
const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"
)

// Config represents the top-level teller.yaml configuration.
type Config struct {
	Bank     BankConfig      `yaml:"bank"`
	Storage  StorageConfig   `yaml:"storage"`
	Rules    RulesConfig     `yaml:"rules"`
	Products []ProductConfig `yaml:"products"`
	Log      LogConfig       `yaml:"log"`
	Git      GitConfig       `yaml:"git"`
}

// BankConfig identifies the bank running the project.
type BankConfig struct {
	Name string `yaml:"name"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string `yaml:"driver"`         // csv or sqlite
	Path   string `yaml:"path,omitempty"` // data dir (csv) or database file (sqlite), relative to the project
}

// RulesConfig holds registration rules.
type RulesConfig struct {
	MinimumAge int `yaml:"minimum_age"`
}

// ProductConfig is one (account type, currency) pair the bank offers.
type ProductConfig struct {
	Type     string `yaml:"type"`
	Currency string `yaml:"currency"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `yaml:"level"` // debug, info, warn, error
	Pretty bool   `yaml:"pretty"`
}

// GitConfig controls git history of the data directory.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads and validates a teller.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
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

// Default returns a Config with sensible defaults for a new project.
func Default(bankName, driver string) *Config {
	cfg := &Config{
		Bank:    BankConfig{Name: bankName},
		Storage: StorageConfig{Driver: driver},
		Rules:   RulesConfig{MinimumAge: 18},
		Products: []ProductConfig{
			{Type: string(model.AccountTypeSavings), Currency: string(model.CurrencyPesos)},
			{Type: string(model.AccountTypeChecking), Currency: string(model.CurrencyPesos)},
			{Type: string(model.AccountTypeSavings), Currency: string(model.CurrencyDollars)},
		},
		Log: LogConfig{Level: "info"},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Teller",
			AuthorEmail: "teller@localhost",
		},
	}
	switch driver {
	case DriverCSV:
		cfg.Storage.Path = "data"
	case DriverSQLite:
		cfg.Storage.Path = "data/teller.db"
	}
	return cfg
}

// Validate checks the driver, the minimum age and every product name.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case DriverCSV, DriverSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, fmt.Errorf("storage.path is required for driver %q", c.Storage.Driver))
		}
	case "memory":
		errs = append(errs, fmt.Errorf("storage driver %q does not persist between commands, use %q or %q", c.Storage.Driver, DriverCSV, DriverSQLite))
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q, want %q or %q", c.Storage.Driver, DriverCSV, DriverSQLite))
	}

	if c.Rules.MinimumAge < 0 {
		errs = append(errs, fmt.Errorf("rules.minimum_age must not be negative, got %d", c.Rules.MinimumAge))
	}

	for i, p := range c.Products {
		if _, ok := model.ParseAccountType(p.Type); !ok {
			errs = append(errs, fmt.Errorf("products[%d]: unknown account type %q", i, p.Type))
		}
		if _, ok := model.ParseCurrency(p.Currency); !ok {
			errs = append(errs, fmt.Errorf("products[%d]: unknown currency %q", i, p.Currency))
		}
	}

	return errors.Join(errs...)
}

// ProductList returns the configured products. Call Validate first; unknown
// names are skipped.
func (c *Config) ProductList() []model.Product {
	var out []model.Product
	for _, p := range c.Products {
		at, ok1 := model.ParseAccountType(p.Type)
		cur, ok2 := model.ParseCurrency(p.Currency)
		if ok1 && ok2 {
			out = append(out, model.Product{Type: at, Currency: cur})
		}
	}
	return out
}
