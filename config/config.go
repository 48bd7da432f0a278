package config

import (
	"fmt"
	"time"

	billinglogix "github.com/billinglogix/billinglogix-go"
	"github.com/billinglogix/billinglogix-go/auth"
	"github.com/billinglogix/billinglogix-go/logger"
	"github.com/billinglogix/billinglogix-go/security"
	"github.com/billinglogix/billinglogix-go/validation"
)

// Config holds everything needed to build a client.
type Config struct {
	Account   string            `yaml:"account" mapstructure:"account"`
	AccessKey string            `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string            `yaml:"secret_key" mapstructure:"secret_key"`
	Version   string            `yaml:"version" mapstructure:"version"`
	Timeout   time.Duration     `yaml:"timeout" mapstructure:"timeout"`
	Headers   map[string]string `yaml:"headers" mapstructure:"headers"`
	Debug     bool              `yaml:"debug" mapstructure:"debug"`

	TLS       security.TLSConfig `yaml:"tls" mapstructure:"tls"`
	Log       logger.Config      `yaml:"log" mapstructure:"log"`
	Telemetry TelemetryConfig    `yaml:"telemetry" mapstructure:"telemetry"`
}

// TelemetryConfig controls OTLP export of client traces and metrics.
type TelemetryConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	ServiceName string  `yaml:"service_name" mapstructure:"service_name"`
	Endpoint    string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure    bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate  float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = billinglogix.APIVersion
	}
	if c.Timeout == 0 {
		c.Timeout = billinglogix.DefaultTimeout
	}
	c.Log.ApplyDefaults()
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "blx"
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
}

// Validate checks credentials and client settings. Only the first problem
// per field is reported.
func (c *Config) Validate() error {
	err := validation.New().
		Required("account", c.Account).
		Pattern("account", c.Account, validation.AccountPattern).
		Required("access_key", c.AccessKey).
		Pattern("access_key", c.AccessKey, validation.AccessKeyPattern).
		Required("secret_key", c.SecretKey).
		Pattern("secret_key", c.SecretKey, validation.SecretKeyPattern).
		OneOf("version", c.Version, []string{billinglogix.APIVersion}).
		DurationRange("timeout", c.Timeout, billinglogix.MinTimeout, billinglogix.MaxTimeout).
		Custom(c.Telemetry.SampleRate >= 0 && c.Telemetry.SampleRate <= 1,
			"telemetry.sample_rate", c.Telemetry.SampleRate, "must be between 0 and 1").
		Validate()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Credentials returns the configured keys as a credentials source.
func (c *Config) Credentials() auth.Credentials {
	return auth.StaticCredentials{AccessKey: c.AccessKey, SecretKey: c.SecretKey}
}

// ClientOptions converts the settings into client options. The logger is
// built from Log and the HTTP client from TLS.
func (c *Config) ClientOptions() (*billinglogix.Options, error) {
	httpClient, err := c.TLS.HTTPClient()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &billinglogix.Options{
		Version:    c.Version,
		Timeout:    c.Timeout,
		Headers:    c.Headers,
		Debug:      c.Debug,
		Logger:     logger.New(&c.Log, billinglogix.Component),
		HTTPClient: httpClient,
	}, nil
}
