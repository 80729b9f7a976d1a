// Package config loads the agent configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"gpuinfo-agent/logger"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	DefaultAPIBaseURL     = "http://localhost:8080/api/v1"
	DefaultStateFile      = "/app/agent_state.json"
	DefaultHostMountsFile = "/host/mounts"
	DefaultOTelEndpoint   = "otel-collector:4317"
	DefaultOTelInterval   = 15 * time.Second
	DefaultServiceName    = "gpuinfo-agent"
	DefaultHTTPTimeout    = 10 * time.Second
)

// Config holds the agent configuration.
type Config struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	StateFile      string        `yaml:"state_file"`
	HostMountsFile string        `yaml:"host_mounts_file"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
	OTel           OTelConfig    `yaml:"otel"`
	Log            logger.Config `yaml:"log"`
}

type OTelConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Interval    time.Duration `yaml:"interval"`
	ServiceName string        `yaml:"service_name"`
	Insecure    bool          `yaml:"insecure"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		APIBaseURL:     DefaultAPIBaseURL,
		StateFile:      DefaultStateFile,
		HostMountsFile: DefaultHostMountsFile,
		HTTPTimeout:    DefaultHTTPTimeout,
		OTel: OTelConfig{
			Endpoint:    DefaultOTelEndpoint,
			Interval:    DefaultOTelInterval,
			ServiceName: DefaultServiceName,
			Insecure:    true,
		},
		Log: logger.Config{Level: "info", Output: "stdout"},
	}
}

// Load reads a YAML config file from path on top of Default. A missing file
// or an empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or non-positive required setting, joined
// into one error wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error

	if c.APIBaseURL == "" {
		errs = append(errs, fmt.Errorf("%w: api_base_url is required", ErrInvalidConfig))
	}
	if c.StateFile == "" {
		errs = append(errs, fmt.Errorf("%w: state_file is required", ErrInvalidConfig))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: http_timeout must be positive", ErrInvalidConfig))
	}
	if c.OTel.Endpoint == "" {
		errs = append(errs, fmt.Errorf("%w: otel.endpoint is required", ErrInvalidConfig))
	}
	if c.OTel.Interval <= 0 {
		errs = append(errs, fmt.Errorf("%w: otel.interval must be positive", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}
