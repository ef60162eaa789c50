// Package config loads the simulator configuration from a YAML or JSON file
// with TGC_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/tgcsim/core/dispatch"
	"github.com/kilianp07/tgcsim/core/model"
	"github.com/kilianp07/tgcsim/core/random"
	"github.com/kilianp07/tgcsim/core/report"
	"github.com/kilianp07/tgcsim/infra/logger"
)

// EnvPrefix marks environment overrides: TGC_SIMULATION__HORIZON_HOURS=10
// sets simulation.horizon_hours.
const EnvPrefix = "TGC_"

// Config is the root of the configuration file.
type Config struct {
	Simulation    SimulationConfig       `json:"simulation"`
	Distributions map[string]random.Spec `json:"distributions"`
	Dispatch      dispatch.Config        `json:"dispatch"`
	Report        report.Config          `json:"report"`
	Logging       logger.Config          `json:"logging"`
}

// Load reads path, applies the environment overrides, fills defaults and
// validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format %q: %w", ext, model.ErrConfiguration)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode %s: %v: %w", path, err, model.ErrConfiguration)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills zero values in every section.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Dispatch.SetDefaults()
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	specs := make(map[string]random.Spec, len(c.Distributions))
	for k, s := range c.Distributions {
		specs[strings.ToUpper(k)] = s
	}
	c.Distributions = specs
}

// Validate checks every section. Errors wrap model.ErrConfiguration.
func (c Config) Validate() error {
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if err := c.Dispatch.Validate(); err != nil {
		return wrap("dispatch", err)
	}
	required := []string{random.MPO}
	if c.Simulation.Scenario == "" {
		required = append(required, random.IAT, random.DUR, random.CAP, random.MPI)
	}
	if _, err := random.NewSet(c.Distributions, c.Simulation.Seed); err != nil {
		return wrap("distributions", err)
	}
	for _, k := range required {
		if _, ok := c.Distributions[k]; !ok {
			return fmt.Errorf("distributions: %s is required: %w", k, model.ErrConfiguration)
		}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging: unknown format %q: %w", c.Logging.Format, model.ErrConfiguration)
	}
	return nil
}

func wrap(section string, err error) error {
	if errors.Is(err, model.ErrConfiguration) {
		return fmt.Errorf("%s: %w", section, err)
	}
	return fmt.Errorf("%s: %v: %w", section, err, model.ErrConfiguration)
}
