package config

import "time"

// Duration is a wrapper around time.Duration that supports YAML
// marshaling from human-readable strings such as "30s" or "1h30m".
// An empty string unmarshals to zero duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	duration, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the wrapped time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the root daemon configuration.
type Config struct {
	Listen    ListenConfig    `yaml:"listen"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Dispatch  DispatchConfig  `yaml:"dispatch"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
}

// ListenConfig configures the HTTP listener.
type ListenConfig struct {
	Address         string   `yaml:"address"`
	ReadTimeout     Duration `yaml:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout"`
	IdleTimeout     Duration `yaml:"idleTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DispatchConfig configures dispatch behavior.
type DispatchConfig struct {
	ParseCookie              bool        `yaml:"parseCookie"`
	Auto405                  bool        `yaml:"auto405"`
	ExtractRequestParameters bool        `yaml:"extractRequestParameters"`
	AutoContentType          bool        `yaml:"autoContentType"`
	CORSPreflight            *CORSConfig `yaml:"corsPreflight"`
}

// CORSConfig configures the automatic CORS preflight handler.
type CORSConfig struct {
	TrustedOrigins []string `yaml:"trustedOrigins"`
}

// RateLimitConfig configures request rate limiting.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerSecond int  `yaml:"requestsPerSecond"`
	Burst             int  `yaml:"burst"`
	PerClient         bool `yaml:"perClient"`
}

// DefaultConfig returns the configuration used when a field is left
// unset.
func DefaultConfig() *Config {
	return &Config{
		Listen: ListenConfig{
			Address:         ":8080",
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			IdleTimeout:     Duration(120 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Dispatch: DispatchConfig{
			ParseCookie:              true,
			Auto405:                  true,
			ExtractRequestParameters: true,
			AutoContentType:          true,
		},
	}
}
