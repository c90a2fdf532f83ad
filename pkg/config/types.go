// Package config provides configuration management for nofus.
//
// Configuration is loaded from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Configuration file
// 4. Default values (lowest priority)
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Monitoring: %v\n", cfg.MountPoints)
package config

import (
	"path/filepath"
	"time"
)

// Config represents the complete daemon configuration.
//
// Invariants:
// - MountPoints must have at least one absolute path
// - DelaySeconds must be > 0
// - AllMountedCmd and AnyUnmountedCmd must be non-empty
// - ProbeTimeoutSeconds must be > 0.
type Config struct {
	// Mount points to monitor, absolute paths
	MountPoints []string `yaml:"mount_points"`

	// Seconds between periodic health sweeps
	DelaySeconds int `yaml:"delay_seconds"`

	// Shell command to run when every mount point is available
	AllMountedCmd string `yaml:"all_mounted_cmd"`

	// Shell command to run when any mount point is lost
	AnyUnmountedCmd string `yaml:"any_unmounted_cmd"`

	// Seconds a single mount probe may take before it is treated as dead
	ProbeTimeoutSeconds int `yaml:"probe_timeout_seconds"`

	// History settings
	History HistoryConfig `yaml:"history"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// HistoryConfig contains transition journal settings.
type HistoryConfig struct {
	// Enable the on-disk transition journal
	Enabled bool `yaml:"enabled"`

	// Path to the BoltDB journal file
	DBPath string `yaml:"db_path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Log output destination (stdout, stderr, file path)
	Output string `yaml:"output"`

	// Log format (text, json)
	Format string `yaml:"format"`
}

// Delay returns the periodic sweep interval as a duration.
func (c *Config) Delay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

// ProbeTimeout returns the per-probe timeout as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// Normalize cleans mount point paths and collapses duplicates,
// preserving first-occurrence order.
func (c *Config) Normalize() {
	seen := make(map[string]bool, len(c.MountPoints))
	out := make([]string, 0, len(c.MountPoints))

	for _, p := range c.MountPoints {
		clean := filepath.Clean(p)
		if seen[clean] {
			continue
		}
		seen[clean] = true
		out = append(out, clean)
	}

	c.MountPoints = out
}

// Validate checks if the configuration satisfies all invariants.
//
// Thread-safety: this method is read-only and thread-safe.
func (c *Config) Validate() error {
	if len(c.MountPoints) == 0 {
		return ErrNoMountPoints
	}
	for _, p := range c.MountPoints {
		if !filepath.IsAbs(p) {
			return ErrRelativeMountPoint
		}
	}

	if c.DelaySeconds <= 0 {
		return ErrInvalidDelay
	}
	if c.ProbeTimeoutSeconds <= 0 {
		return ErrInvalidProbeTimeout
	}

	if c.AllMountedCmd == "" {
		return ErrMissingAllMountedCmd
	}
	if c.AnyUnmountedCmd == "" {
		return ErrMissingAnyUnmountedCmd
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

// Default returns a configuration with sensible default values.
//
// Mount points and commands have no useful defaults; the template
// written on first run prompts the operator to fill them in.
func Default() *Config {
	return &Config{
		MountPoints:         nil,
		DelaySeconds:        5,
		ProbeTimeoutSeconds: 5,
		History: HistoryConfig{
			Enabled: true,
			DBPath:  defaultHistoryPath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "stderr",
			Format: "text",
		},
	}
}
