package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/jmylchreest/plugsunset/internal/errors"
)

// GetConfigBaseDir returns the base directory for configuration files
func GetConfigBaseDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		// For system service, XDG_CONFIG_HOME is set to /etc/plugsunset
		// so we return it directly without appending ConfigDirName
		if dir == "/etc/plugsunset" {
			return dir
		}
		return filepath.Join(dir, ConfigDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", ConfigDirName)
}

// GetConfigPath returns the full path to a configuration file
func GetConfigPath(filename string) string {
	return filepath.Join(GetConfigBaseDir(), filename)
}

// GetDefaultConfigPath returns the full path to the default configuration file
func GetDefaultConfigPath() string {
	return GetConfigPath(ConfigFilename)
}

// ParseClock parses a 24-hour "hh:mm" clock value
func ParseClock(value string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, errors.InvalidInputf("clock value %q must be hh:mm (24-hour)", value)
	}
	return t.Hour(), t.Minute(), nil
}

// LoadLocation resolves a time zone name, with the empty name meaning the process local zone
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.InvalidInputf("unknown time zone %q", name)
	}
	return loc, nil
}
