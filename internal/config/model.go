package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration of the relay. It is assembled from
// environment-bound command line flags at startup and never written back.
type Config struct {
	System  SystemConfig
	Discord DiscordConfig
}

type SystemConfig struct {
	Port            int
	LogLevel        string
	PlatformTimeout time.Duration
	MaxBodyBytes    int64
}

type DiscordConfig struct {
	Token string
}

// DefaultConfig returns a config with sensible defaults. The Discord token has
// no default and must always be supplied.
func DefaultConfig() Config {
	return Config{
		System: SystemConfig{
			Port:            3000,
			LogLevel:        "info",
			PlatformTimeout: 10 * time.Second,
			MaxBodyBytes:    10 << 20,
		},
	}
}

// ApplyDefaults fills zero-value fields with defaults.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.System.Port == 0 {
		c.System.Port = d.System.Port
	}
	if c.System.LogLevel == "" {
		c.System.LogLevel = d.System.LogLevel
	}
	if c.System.PlatformTimeout <= 0 {
		c.System.PlatformTimeout = d.System.PlatformTimeout
	}
	if c.System.MaxBodyBytes <= 0 {
		c.System.MaxBodyBytes = d.System.MaxBodyBytes
	}
	c.System.LogLevel = strings.ToLower(c.System.LogLevel)
	c.Discord.Token = strings.TrimSpace(c.Discord.Token)
}

// ListenAddress is the address the HTTP server binds to.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf(":%d", c.System.Port)
}

// Validate checks the config for logical errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Discord.Token == "" {
		errs = append(errs, "discord.token is required (set DISCORD_TOKEN)")
	}
	if c.System.Port < 1 || c.System.Port > 65535 {
		errs = append(errs, fmt.Sprintf("system.port must be between 1 and 65535 (got %d)", c.System.Port))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.System.LogLevel] {
		errs = append(errs, fmt.Sprintf("system.log_level must be one of: debug, info, warn, error (got %q)", c.System.LogLevel))
	}

	if c.System.PlatformTimeout < time.Second {
		errs = append(errs, "system.platform_timeout must be >= 1s")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
