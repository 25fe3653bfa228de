// Package config provides configuration management for vigil using Viper for
// flexible configuration loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files, environment variable overrides
// with VIGIL_ prefix, and validation. It manages preview-server settings, the
// external build command, and the polling watch roots and interval.
package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Build  BuildConfig  `yaml:"build"`
	Watch  WatchConfig  `yaml:"watch"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Root     string `yaml:"root"`
	MaxConns int    `yaml:"max_conns"`
}

type BuildConfig struct {
	Command string `yaml:"command"`
	Dir     string `yaml:"dir"`
}

type WatchConfig struct {
	Roots    []string      `yaml:"roots"`
	Interval time.Duration `yaml:"interval"`
}

// MarshalYAML renders the interval as a duration string so generated config
// files stay human-editable.
func (w WatchConfig) MarshalYAML() (interface{}, error) {
	return struct {
		Roots    []string `yaml:"roots"`
		Interval string   `yaml:"interval"`
	}{Roots: w.Roots, Interval: w.Interval.String()}, nil
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Unmarshal does not see values that only exist as environment
	// variables, and underscored keys miss field matching, so common keys
	// are read back explicitly (workaround for viper key handling).
	if viper.IsSet("server.port") {
		config.Server.Port = viper.GetInt("server.port")
	}
	if viper.IsSet("server.host") {
		config.Server.Host = viper.GetString("server.host")
	}
	if viper.IsSet("server.root") {
		config.Server.Root = viper.GetString("server.root")
	}
	if viper.IsSet("server.max_conns") {
		config.Server.MaxConns = viper.GetInt("server.max_conns")
	}
	if viper.IsSet("build.command") {
		config.Build.Command = viper.GetString("build.command")
	}
	if viper.IsSet("build.dir") {
		config.Build.Dir = viper.GetString("build.dir")
	}
	if viper.IsSet("log.level") {
		config.Log.Level = viper.GetString("log.level")
	}
	if viper.IsSet("log.format") {
		config.Log.Format = viper.GetString("log.format")
	}
	if viper.IsSet("watch.roots") && len(config.Watch.Roots) == 0 {
		roots := viper.GetStringSlice("watch.roots")
		if len(roots) > 0 {
			config.Watch.Roots = roots
		}
	}
	if viper.IsSet("watch.interval") {
		config.Watch.Interval = viper.GetDuration("watch.interval")
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default returns the configuration vigil uses when no file, environment
// variable, or flag overrides anything. It is also what `vigil init` writes.
func Default() *Config {
	var config Config
	applyDefaults(&config)
	return &config
}

func applyDefaults(config *Config) {
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "127.0.0.1"
	}
	if config.Server.Root == "" {
		config.Server.Root = "public"
	}
	if config.Server.MaxConns == 0 {
		config.Server.MaxConns = 256
	}
	if config.Build.Command == "" {
		config.Build.Command = "make build"
	}
	if config.Build.Dir == "" {
		config.Build.Dir = "."
	}
	if len(config.Watch.Roots) == 0 {
		config.Watch.Roots = []string{"content", "templates", "static"}
	}
	if config.Watch.Interval == 0 {
		config.Watch.Interval = 500 * time.Millisecond
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
}
