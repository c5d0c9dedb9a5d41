// Package config loads the layered configuration a Channel and its
// ambient stack are constructed from: environment variables override a
// config file, which overrides built-in defaults. Environment variables
// are read only when a config file is found.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/jethome-iot/litepb-go/internal/bytesize"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the static configuration for a Channel and its ambient
// stack.
//
// Configuration sources, in order of precedence:
//  1. Environment variables (LITEPB_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// Environment variables apply only when a configuration file is found,
// and only to keys that file sets; with no file, Load returns the
// built-in defaults unchanged.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry distributed tracing.
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Metrics contains Prometheus metrics server configuration.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Channel contains RPC channel construction parameters.
	Channel ChannelConfig `mapstructure:"channel" yaml:"channel"`
}

// ChannelConfig configures a single Channel instance.
type ChannelConfig struct {
	// LocalAddress is this peer's address on the bus.
	LocalAddress uint64 `mapstructure:"local_address" yaml:"local_address"`

	// DefaultTimeout bounds how long a pending call waits for a response
	// before the timeout callback fires.
	DefaultTimeout time.Duration `mapstructure:"default_timeout" yaml:"default_timeout"`

	// InitialBufferSize is the receive buffer's starting capacity.
	InitialBufferSize bytesize.ByteSize `mapstructure:"initial_buffer_size" yaml:"initial_buffer_size"`

	// MaxBufferSize caps how large the receive buffer is allowed to grow.
	// When the buffer is full at this size without a complete frame, the
	// buffered bytes are discarded.
	MaxBufferSize bytesize.ByteSize `mapstructure:"max_buffer_size" yaml:"max_buffer_size"`

	// MaxPendingCalls caps outstanding calls awaiting a response. Zero
	// means unbounded.
	MaxPendingCalls int `mapstructure:"max_pending_calls" yaml:"max_pending_calls"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level: DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level" yaml:"level"`

	// Format is the output format: text or json.
	Format string `mapstructure:"format" yaml:"format"`

	// Output is stdout, stderr, or a file path.
	Output string `mapstructure:"output" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
}

// MetricsConfig controls the Prometheus metrics exporter.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port"`
}

// GetDefaultConfig returns the built-in defaults.
func GetDefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
			Output: "stdout",
		},
		Telemetry: TelemetryConfig{
			Enabled:    false,
			Endpoint:   "localhost:4317",
			Insecure:   true,
			SampleRate: 1.0,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9100,
		},
		Channel: ChannelConfig{
			LocalAddress:      0,
			DefaultTimeout:    5 * time.Second,
			InitialBufferSize: bytesize.ByteSize(256),
			MaxBufferSize:     bytesize.ByteSize(64 * 1024),
			MaxPendingCalls:   0,
		},
	}
}

// ApplyDefaults fills zero-valued fields of cfg with built-in defaults.
func ApplyDefaults(cfg *Config) {
	d := GetDefaultConfig()

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = d.Logging.Format
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = d.Logging.Output
	}
	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = d.Telemetry.Endpoint
	}
	if cfg.Telemetry.SampleRate == 0 {
		cfg.Telemetry.SampleRate = d.Telemetry.SampleRate
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = d.Metrics.Port
	}
	if cfg.Channel.DefaultTimeout == 0 {
		cfg.Channel.DefaultTimeout = d.Channel.DefaultTimeout
	}
	if cfg.Channel.InitialBufferSize == 0 {
		cfg.Channel.InitialBufferSize = d.Channel.InitialBufferSize
	}
	if cfg.Channel.MaxBufferSize == 0 {
		cfg.Channel.MaxBufferSize = d.Channel.MaxBufferSize
	}
}

// Validate checks cfg for invalid combinations.
func Validate(cfg *Config) error {
	switch strings.ToUpper(cfg.Logging.Level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("invalid logging level: %q", cfg.Logging.Level)
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging format: %q", cfg.Logging.Format)
	}

	if cfg.Channel.DefaultTimeout <= 0 {
		return fmt.Errorf("channel.default_timeout must be positive")
	}

	if cfg.Channel.MaxBufferSize < cfg.Channel.InitialBufferSize {
		return fmt.Errorf("channel.max_buffer_size must be >= initial_buffer_size")
	}

	if cfg.Telemetry.SampleRate < 0 || cfg.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry.sample_rate must be in [0,1]")
	}

	return nil
}

// Load loads configuration from file, environment, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !found {
		return GetDefaultConfig(), nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration, returning a user-facing error when the
// requested file is absent.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return GetDefaultConfig(), nil
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML to path.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("LITEPB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook lets config files use human-readable sizes like
// "64Ki" for buffer fields.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook lets config files use human-readable durations like
// "30s" for timeout fields.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "litepb")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "litepb")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
