package telemetry

// Config holds OpenTelemetry configuration for a Channel.
type Config struct {
	// Enabled indicates whether tracing is enabled.
	Enabled bool

	// ServiceName is reported to the trace backend.
	ServiceName string

	// ServiceVersion is the version of the service.
	ServiceVersion string

	// Endpoint is the OTLP endpoint (e.g., "localhost:4317").
	Endpoint string

	// Insecure indicates whether to use an insecure connection (no TLS).
	Insecure bool

	// SampleRate is the trace sampling rate, 0.0 to 1.0.
	SampleRate float64
}

// DefaultConfig returns a default configuration with tracing disabled.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "litepb",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}
