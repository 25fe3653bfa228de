package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// Validate checks the configuration for values vigil cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Value:   c.Server.Port,
			Message: fmt.Sprintf("port %d is outside the valid range 1-65535", c.Server.Port),
		}
	}
	if c.Server.Root == "" {
		return &ValidationError{
			Field:   "server.root",
			Message: "document root must not be empty",
		}
	}
	if c.Server.MaxConns < 1 {
		return &ValidationError{
			Field:   "server.max_conns",
			Value:   c.Server.MaxConns,
			Message: "connection limit must be at least 1",
		}
	}
	if strings.TrimSpace(c.Build.Command) == "" {
		return &ValidationError{
			Field:   "build.command",
			Message: "build command must not be empty",
		}
	}
	if len(c.Watch.Roots) == 0 {
		return &ValidationError{
			Field:   "watch.roots",
			Message: "at least one watch root is required",
		}
	}
	for _, root := range c.Watch.Roots {
		if strings.TrimSpace(root) == "" {
			return &ValidationError{
				Field:   "watch.roots",
				Message: "watch roots must not contain empty entries",
			}
		}
	}
	if c.Watch.Interval <= 0 {
		return &ValidationError{
			Field:   "watch.interval",
			Value:   c.Watch.Interval.String(),
			Message: "polling interval must be positive",
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{
			Field:   "log.level",
			Value:   c.Log.Level,
			Message: "log level must be one of debug, info, warn, error",
		}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return &ValidationError{
			Field:   "log.format",
			Value:   c.Log.Format,
			Message: "log format must be text or json",
		}
	}
	return nil
}
