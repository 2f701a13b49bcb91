package config

import "time"

const (
	// ConfigDirName is the name of the config directory within XDG_CONFIG_HOME
	ConfigDirName = "plugsunset"

	// ConfigFilename is the base filename for the config file
	ConfigFilename = "plugsunset.yaml"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "PLUGSUNSET"
)

// Device and discovery defaults
const (
	// DefaultAlias is the alias assigned to the plug when it was provisioned
	DefaultAlias = "Plug_8714"

	// DefaultDeviceTimeout bounds a single command round trip to the plug
	DefaultDeviceTimeout = 5 * time.Second

	// DefaultDiscoveryTarget is the broadcast address discovery probes are sent to
	DefaultDiscoveryTarget = "255.255.255.255"

	// DefaultDiscoveryTimeout is how long a single discovery attempt collects replies
	DefaultDiscoveryTimeout = 1 * time.Second

	// DefaultDiscoveryAttempts is the number of discovery rounds before giving up
	DefaultDiscoveryAttempts = 3
)

// Schedule defaults
const (
	DefaultLatitude        = 33.0
	DefaultLongitude       = -117.3
	DefaultOffTime         = "00:05"
	DefaultOnOffsetMinutes = -5

	// DefaultApplyRetries is the number of retries around a single on/off command
	DefaultApplyRetries = 5

	// MaxOnOffsetMinutes bounds the sunset offset in either direction
	MaxOnOffsetMinutes = 180
)

// API and MQTT defaults
const (
	// DefaultRequestsPerMinute is the per-IP rate limit of the status API
	DefaultRequestsPerMinute = 120

	// DefaultMQTTTopic is the topic plug events are published to
	DefaultMQTTTopic = "plugsunset/events"

	// DefaultMQTTClientID is the client id prefix used on the broker
	DefaultMQTTClientID = "plugsunset"
)

// Logging constants
const (
	// LogLevelDebug represents debug log level
	LogLevelDebug = "debug"

	// LogLevelInfo represents info log level
	LogLevelInfo = "info"

	// LogLevelWarn represents warning log level
	LogLevelWarn = "warn"

	// LogLevelError represents error log level
	LogLevelError = "error"

	// LogFormatText represents text log format
	LogFormatText = "text"

	// LogFormatJSON represents JSON log format
	LogFormatJSON = "json"
)
