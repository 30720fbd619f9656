package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// validLogLevels are the accepted logging levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats are the accepted logging formats.
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks a configuration for errors, reporting all of them
// at once.
func Validate(c *Config) error {
	var errs ValidationErrors

	addError := func(path, message string) {
		errs = append(errs, ValidationError{Path: path, Message: message})
	}

	if c.Listen.Address == "" {
		addError("listen.address", "must not be empty")
	}
	if c.Listen.ShutdownTimeout < 0 {
		addError("listen.shutdownTimeout", "must not be negative")
	}

	if !validLogLevels[c.Logging.Level] {
		addError("logging.level", fmt.Sprintf("unknown level %q", c.Logging.Level))
	}
	if !validLogFormats[c.Logging.Format] {
		addError("logging.format", fmt.Sprintf("unknown format %q", c.Logging.Format))
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		addError("metrics.path", "must start with /")
	}

	if cors := c.Dispatch.CORSPreflight; cors != nil {
		for i, origin := range cors.TrustedOrigins {
			if origin == "" {
				addError(fmt.Sprintf("dispatch.corsPreflight.trustedOrigins[%d]", i), "must not be empty")
			}
		}
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			addError("rateLimit.requestsPerSecond", "must be positive")
		}
		if c.RateLimit.Burst <= 0 {
			addError("rateLimit.burst", "must be positive")
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
