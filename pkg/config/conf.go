package config

import (
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/mchmarny/prosody/pkg/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the default config file name.
	FileName = "config.yaml"

	dirMode  = 0700
	fileMode = 0600

	defaultLocale   = "en"
	defaultLogLevel = "info"
)

// Config describes the model inventory and the sweep to run.
type Config struct {
	QUDs        []string           `yaml:"quds" env:"PROSODY_QUDS" envSeparator:","`
	Categories  []string           `yaml:"categories" env:"PROSODY_CATEGORIES" envSeparator:","`
	Patterns    []string           `yaml:"patterns" env:"PROSODY_PATTERNS" envSeparator:","`
	Target      string             `yaml:"target" env:"PROSODY_TARGET_QUD"`
	Rationality Range              `yaml:"rationality"`
	Prior       map[string]float64 `yaml:"prior,omitempty"`
	Locale      string             `yaml:"locale" env:"PROSODY_LOCALE"`
	LogLevel    string             `yaml:"log_level" env:"PROSODY_LOG_LEVEL"`
}

// Range is an inclusive integer rationality range.
type Range struct {
	Min int `yaml:"min" env:"PROSODY_RATIONALITY_MIN"`
	Max int `yaml:"max" env:"PROSODY_RATIONALITY_MAX"`
}

// Default returns the reference configuration.
func Default() *Config {
	c := &Config{
		Target: string(model.DefaultTargetQUD),
		Rationality: Range{
			Min: model.DefaultMinRationality,
			Max: model.DefaultMaxRationality,
		},
		Categories: append([]string(nil), model.DefaultCategories...),
		Patterns:   append([]string(nil), model.DefaultPatterns...),
		Locale:     defaultLocale,
		LogLevel:   defaultLogLevel,
	}
	for _, q := range model.DefaultQUDs {
		c.QUDs = append(c.QUDs, string(q))
	}
	return c
}

// Load reads the config at path, or starts from the defaults when path is
// empty, then applies environment overrides.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "error reading config file: %s", path)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, errors.Wrapf(err, "error unmarshalling config file: %s", path)
		}
	}

	if err := ParseEnv(c); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseEnv overlays environment variables onto target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return errors.Wrap(err, "parse env")
	}
	return nil
}

// Save writes c to path as YAML, creating the parent directory if needed.
func Save(path string, c *Config) error {
	if path == "" {
		return errors.New("config path required")
	}
	if c == nil {
		return errors.New("config required")
	}

	b, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return errors.Wrapf(err, "failed to create dir: %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return errors.Wrapf(err, "failed to write config file: %s", path)
	}
	return nil
}

// Inventory builds the model inventory described by c.
func (c *Config) Inventory() (*model.Inventory, error) {
	quds := make([]model.QUD, 0, len(c.QUDs))
	for _, q := range c.QUDs {
		quds = append(quds, model.QUD(q))
	}
	inv, err := model.NewInventory(quds, c.Categories, c.Patterns)
	if err != nil {
		return nil, errors.Wrap(err, "invalid inventory")
	}
	return inv, nil
}

// TargetQUD returns the QUD whose posterior is reported as projection.
func (c *Config) TargetQUD() model.QUD {
	return model.QUD(c.Target)
}

// PriorFunc returns the configured prior, or nil for the uniform prior.
func (c *Config) PriorFunc() model.Prior {
	if len(c.Prior) == 0 {
		return nil
	}
	weights := make(map[model.QUD]float64, len(c.Prior))
	for k, v := range c.Prior {
		weights[model.QUD(k)] = v
	}
	return model.WeightedPrior(weights)
}

// Validate checks that the config describes a runnable sweep.
func (c *Config) Validate() error {
	inv, err := c.Inventory()
	if err != nil {
		return err
	}
	if !inv.HasQUD(c.TargetQUD()) {
		return errors.Errorf("target QUD %q is not one of %v", c.Target, c.QUDs)
	}
	if c.Rationality.Min < 0 || c.Rationality.Max < c.Rationality.Min {
		return errors.Errorf("invalid rationality range [%d, %d]", c.Rationality.Min, c.Rationality.Max)
	}
	for q, w := range c.Prior {
		if !inv.HasQUD(model.QUD(q)) {
			return errors.Errorf("prior names unknown QUD %q", q)
		}
		if w < 0 {
			return errors.Errorf("prior weight for %q must not be negative: %v", q, w)
		}
	}
	return nil
}
