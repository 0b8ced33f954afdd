package config

import (
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/italypaleale/faultkit/severity"
	slogkit "github.com/italypaleale/faultkit/slog"
)

const (
	// EnvVar is the name of the env var with the path to the config file
	EnvVar = "FAULTKIT_CONFIG"
	// DirName is the name of the folder where the config file is searched, in the home directory and in /etc
	DirName = "faultkit"
)

// Config is the configuration for the fault handlers.
type Config struct {
	// Minimum level for logs: "debug", "info", "notice", "warning", "error", "critical", "alert", "emergency"
	// +default "info"
	LogLevel string `yaml:"logLevel"`
	// If true, logs are formatted as JSON
	LogAsJSON bool `yaml:"logAsJson"`
	// Name of the logger faults are written to
	// +default "root"
	LoggerName string `yaml:"loggerName"`
	// Options for individual loggers, by name
	Loggers map[string]LoggerConfig `yaml:"loggers"`
	// Error codes that are reported, as a list of flag names or numbers
	// Names prefixed with "~" are removed, for example: ["E_ALL", "~E_DEPRECATED"]
	// +default ["E_ALL"]
	ErrorReporting []string `yaml:"errorReporting"`
	// If greater than 0, identical runtime errors repeated within this window are logged only once
	SuppressWindow time.Duration `yaml:"suppressWindow"`
	// Enables exporting metrics with OpenTelemetry
	EnableMetrics bool `yaml:"enableMetrics"`
	// Enables exporting traces with OpenTelemetry
	EnableTraces bool `yaml:"enableTraces"`
	// Ratio of traces that are sampled, between 0 and 1
	// +default 1
	TraceSampleRatio *float64 `yaml:"traceSampleRatio"`
	// If true, the error reporting mask is reloaded when the config file changes
	WatchConfig bool `yaml:"watchConfig"`

	// Internal keys
	loadedConfigPath string
	instanceID       string
	instanceIDOnce   sync.Once
}

// LoggerConfig contains the options for a logger.
type LoggerConfig struct {
	// Minimum level for the logger
	Level string `yaml:"level"`
}

// GetLoadedConfigPath implements Base.
func (c *Config) GetLoadedConfigPath() string {
	return c.loadedConfigPath
}

// SetLoadedConfigPath implements Base.
func (c *Config) SetLoadedConfigPath(filePath string) {
	c.loadedConfigPath = filePath
}

// GetInstanceID implements Base.
func (c *Config) GetInstanceID() string {
	c.instanceIDOnce.Do(func() {
		id, err := GetInstanceID()
		if err != nil {
			id = "unknown"
		}
		c.instanceID = id
	})
	return c.instanceID
}

// GetOtelResource implements Base.
func (c *Config) GetOtelResource(name string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", name),
			attribute.String("service.instance.id", c.GetInstanceID()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenTelemetry resource: %w", err)
	}
	return res, nil
}

// Validate implements Validator.
func (c *Config) Validate() error {
	_, err := slogkit.ParseLevel(c.LogLevel)
	if err != nil {
		return NewConfigError(err, "Invalid value for 'logLevel'")
	}

	_, err = c.LoggerLevels()
	if err != nil {
		return err
	}

	_, err = c.ReportingMask()
	if err != nil {
		return err
	}

	if c.SuppressWindow < 0 || (c.SuppressWindow > 0 && c.SuppressWindow < time.Millisecond) {
		return NewConfigError("must be 0 or at least 1ms", "Invalid value for 'suppressWindow'")
	}

	if c.TraceSampleRatio != nil && (*c.TraceSampleRatio < 0 || *c.TraceSampleRatio > 1) {
		return NewConfigError("must be between 0 and 1", "Invalid value for 'traceSampleRatio'")
	}

	return nil
}

// ReportingMask returns the mask of error codes that are reported.
func (c *Config) ReportingMask() (severity.Mask, error) {
	mask, err := severity.ParseMask(c.ErrorReporting)
	if err != nil {
		return 0, NewConfigError(err, "Invalid value for 'errorReporting'")
	}
	return mask, nil
}

// LoggerLevels returns the minimum level configured for each logger.
// Loggers without a level are not included.
func (c *Config) LoggerLevels() (map[string]slogkit.Level, error) {
	res := make(map[string]slogkit.Level, len(c.Loggers))
	for name, lc := range c.Loggers {
		if lc.Level == "" {
			continue
		}
		level, err := slogkit.ParseLevel(lc.Level)
		if err != nil {
			return nil, NewConfigError(err, "Invalid value for 'loggers."+name+".level'")
		}
		res[name] = level
	}
	return res, nil
}

// GetLoggerName returns the name of the logger faults are written to.
func (c *Config) GetLoggerName() string {
	if c.LoggerName == "" {
		return "root"
	}
	return c.LoggerName
}

// GetTraceSampleRatio returns the ratio of sampled traces.
func (c *Config) GetTraceSampleRatio() float64 {
	if c.TraceSampleRatio == nil {
		return 1
	}
	return *c.TraceSampleRatio
}

// Load loads the configuration from the file set in FAULTKIT_CONFIG or found in the default search paths.
// If no file is found, the default configuration is returned.
func Load() (*Config, error) {
	cfg := &Config{}
	err := LoadConfig(cfg, LoadConfigOpts{
		EnvVar:   EnvVar,
		DirName:  DirName,
		Optional: true,
	})
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
