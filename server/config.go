package server

import (
	"fmt"

	"github.com/skillsenselab/diard/server/middleware"
)

// Config holds HTTP server configuration.
type Config struct {
	Host              string                `yaml:"host" mapstructure:"host"`
	Port              int                   `yaml:"port" mapstructure:"port"`
	ReadTimeout       int                   `yaml:"read_timeout" mapstructure:"read_timeout"`   // seconds
	WriteTimeout      int                   `yaml:"write_timeout" mapstructure:"write_timeout"` // seconds
	IdleTimeout       int                   `yaml:"idle_timeout" mapstructure:"idle_timeout"`   // seconds
	MaxBodySize       string                `yaml:"max_body_size" mapstructure:"max_body_size"` // e.g. "100MB"
	RequestsPerMinute int                   `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	CORS              middleware.CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// ApplyDefaults sets sensible default values for unset fields. Write and idle
// timeouts default high because one diarization run can take minutes on long
// audio.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 60
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 600
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "100MB"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept"}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("server.read_timeout must be non-negative (got: %d)", c.ReadTimeout)
	}
	if c.WriteTimeout < 0 {
		return fmt.Errorf("server.write_timeout must be non-negative (got: %d)", c.WriteTimeout)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("server.idle_timeout must be non-negative (got: %d)", c.IdleTimeout)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("server.requests_per_minute must be non-negative (got: %d)", c.RequestsPerMinute)
	}
	return nil
}
