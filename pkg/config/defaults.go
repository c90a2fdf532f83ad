package config

import (
	"os"
	"path/filepath"
)

// defaultConfigPath returns the preferred configuration file path.
//
// Returns: ~/.config/nofus/config.yml, or /etc/nofus/config.yml when
// no home directory is available (e.g. a system service account).
func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return systemConfigPath
	}

	return filepath.Join(homeDir, ".config", "nofus", "config.yml")
}

// systemConfigPath is the fallback configuration path for processes
// without a user context.
const systemConfigPath = "/etc/nofus/config.yml"

// defaultHistoryPath returns the default transition journal path.
//
// Returns: ~/.config/nofus/history.db.
func defaultHistoryPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./history.db"
	}

	return filepath.Join(homeDir, ".config", "nofus", "history.db")
}

// SearchPaths returns the configuration file locations in order of
// precedence, for diagnostics output.
func SearchPaths() []string {
	return []string{
		defaultConfigPath(),
		systemConfigPath,
	}
}
