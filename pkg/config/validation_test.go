package config

import "testing"

func validConfig() *Config {
	return GetDefaultConfig()
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("expected valid config to pass, got %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "VERBOSE"
	if err := Validate(cfg); err == nil {
		t.Error("expected error for invalid log level")
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	if err := Validate(cfg); err == nil {
		t.Error("expected error for invalid log format")
	}
}

func TestValidate_NonPositiveTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Channel.DefaultTimeout = 0
	if err := Validate(cfg); err == nil {
		t.Error("expected error for non-positive default_timeout")
	}
}

func TestValidate_MaxBufferBelowInitial(t *testing.T) {
	cfg := validConfig()
	cfg.Channel.InitialBufferSize = 1024
	cfg.Channel.MaxBufferSize = 128
	if err := Validate(cfg); err == nil {
		t.Error("expected error when max_buffer_size < initial_buffer_size")
	}
}

func TestValidate_SampleRateOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.SampleRate = 1.5
	if err := Validate(cfg); err == nil {
		t.Error("expected error for sample_rate out of [0,1]")
	}
}
