package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/skillsenselab/diard/engine/runner"
	"github.com/skillsenselab/diard/logger"
	"github.com/skillsenselab/diard/observability"
	"github.com/skillsenselab/diard/pipeline"
	"github.com/skillsenselab/diard/server"
)

// validate checks the struct tags on Config.
var validate = validator.New()

// Config is the full configuration of the diarization service.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	// StagingDir is where uploads are staged for the engine. Empty means the
	// system temporary directory.
	StagingDir string `yaml:"staging_dir" mapstructure:"staging_dir"`

	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Pipeline      pipeline.Config      `yaml:"pipeline" mapstructure:"pipeline"`
	Worker        runner.Config        `yaml:"worker" mapstructure:"worker"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// Load reads the service configuration from config.yml, .env, and the
// process environment, then applies defaults.
func Load(serviceName string, opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadInto(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults applies default values and propagates shared settings into
// sub-configurations. The worker inherits the pipeline identity and
// credentials unless configured separately.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Pipeline.ApplyDefaults()

	if c.Worker.Pipeline == "" {
		c.Worker.Pipeline = c.Pipeline.Pipeline
	}
	if c.Worker.AuthToken == "" {
		c.Worker.AuthToken = c.Pipeline.AuthToken
	}
	if c.Worker.CacheDir == "" {
		c.Worker.CacheDir = c.Pipeline.CacheDir
	}
	c.Worker.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the whole configuration tree.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("config.%s failed %q validation (got: %v)",
				e.StructField(), e.Tag(), e.Value())
		}
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("config.pipeline: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	return nil
}
