package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	BindAddr        string        `mapstructure:"BIND_ADDR"`
	Port            string        `mapstructure:"PORT"`
	AllowRemote     bool          `mapstructure:"ALLOW_REMOTE"`
	OutputDir       string        `mapstructure:"OUTPUT_DIR"`
	BodyLimit       string        `mapstructure:"BODY_LIMIT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BIND_ADDR", "127.0.0.1")
	v.SetDefault("PORT", "8086")
	v.SetDefault("ALLOW_REMOTE", false)
	v.SetDefault("OUTPUT_DIR", "./records")
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("BIND_ADDR")
	v.BindEnv("PORT")
	v.BindEnv("ALLOW_REMOTE")
	v.BindEnv("OUTPUT_DIR")
	v.BindEnv("BODY_LIMIT")
	v.BindEnv("SHUTDOWN_TIMEOUT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.OutputDir = strings.TrimSpace(cfg.OutputDir)
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Addr is the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.BindAddr, c.Port)
}

// Level parses LOG_LEVEL, defaulting to info when unset.
func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(c.LogLevel))
}

// Validate checks that the configuration is safe to run. Records hold
// patient data, so the server only listens on loopback unless
// ALLOW_REMOTE is set.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("LOG_LEVEL %q is invalid: %w", c.LogLevel, err)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if !c.AllowRemote && !isLoopback(c.BindAddr) {
		return fmt.Errorf(
			"BIND_ADDR %q is not a loopback address. "+
				"Refusing to expose patient intake on the network; set ALLOW_REMOTE=true to override", c.BindAddr)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout)
	}
	return nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
