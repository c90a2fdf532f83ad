package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrNoMountPoints is returned when no mount points are configured.
	ErrNoMountPoints = errors.New("no mount points configured")

	// ErrRelativeMountPoint is returned when a mount point path is not absolute.
	ErrRelativeMountPoint = errors.New("mount point paths must be absolute")

	// ErrInvalidDelay is returned when delay_seconds is <= 0.
	ErrInvalidDelay = errors.New("invalid delay_seconds: must be > 0")

	// ErrInvalidProbeTimeout is returned when probe_timeout_seconds is <= 0.
	ErrInvalidProbeTimeout = errors.New("invalid probe_timeout_seconds: must be > 0")

	// ErrMissingAllMountedCmd is returned when all_mounted_cmd is empty.
	ErrMissingAllMountedCmd = errors.New("all_mounted_cmd must be set")

	// ErrMissingAnyUnmountedCmd is returned when any_unmounted_cmd is empty.
	ErrMissingAnyUnmountedCmd = errors.New("any_unmounted_cmd must be set")

	// ErrInvalidLogLevel is returned when log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned when log format is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConfigNotFound is returned when the config file is not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when config file has invalid YAML syntax.
	ErrInvalidYAML = errors.New("invalid YAML syntax in config file")
)
