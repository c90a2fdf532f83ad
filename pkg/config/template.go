package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// configTemplate is written on first run so the operator has something
// concrete to edit instead of an error message.
const configTemplate = `# nofus configuration
#
# Mount points to monitor. Each path should appear in the system mount
# table (e.g. an NFS export mounted via fstab or autofs).
mount_points:
  - /mnt/media
  - /mnt/backups

# Seconds between periodic health sweeps. Filesystem events usually
# detect changes sooner; the sweep bounds worst-case latency.
delay_seconds: 5

# Seconds a single mount check may take before the mount is treated as
# dead. Guards against stale NFS handles that hang on access.
probe_timeout_seconds: 5

# Shell commands to run on availability transitions. Passed verbatim
# to 'sh -c'.
all_mounted_cmd: "systemctl start media-services.target"
any_unmounted_cmd: "systemctl stop media-services.target"

# Transition journal, used by 'nofus history'.
history:
  enabled: true
  #db_path: ~/.config/nofus/history.db

# Logging.
logging:
  level: info     # debug, info, warn, error
  output: stderr  # stdout, stderr, or a file path
  format: text    # text, json
`

// WriteTemplate writes a commented example configuration to path,
// creating parent directories as needed.
//
// Fails if a file already exists at path; the template must never
// clobber a real configuration.
func WriteTemplate(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("failed to write config template: %w", err)
	}

	return nil
}

// DefaultPath returns the path where WriteTemplate should place a
// first-run configuration.
func DefaultPath() string {
	return defaultConfigPath()
}
