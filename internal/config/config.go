package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/plugsunset/internal/errors"
)

// Config represents the application configuration
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Location  LocationConfig  `yaml:"location"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Logging   LoggingConfig   `yaml:"logging"`
	API       APIConfig       `yaml:"api"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
}

// DeviceConfig identifies the controlled plug
type DeviceConfig struct {
	Alias   string        `yaml:"alias"`
	Host    string        `yaml:"host"` // Skips discovery when set
	Timeout time.Duration `yaml:"timeout"`
}

// DiscoveryConfig controls the startup alias lookup
type DiscoveryConfig struct {
	Target   string        `yaml:"target"`
	Timeout  time.Duration `yaml:"timeout"`
	Attempts int           `yaml:"attempts"`
}

// LocationConfig holds the coordinates sunset is computed for
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Timezone  string  `yaml:"timezone"`
}

// ScheduleConfig holds the on/off timing
type ScheduleConfig struct {
	OffTime         string `yaml:"off_time"`
	OnOffsetMinutes int    `yaml:"on_offset_minutes"`
	ApplyRetries    int    `yaml:"apply_retries"`

	offHour   int
	offMinute int
}

// LoggingConfig represents the logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// APIConfig configures the optional read-only status API
type APIConfig struct {
	ListenAddress     string `yaml:"listen_address"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// MQTTConfig configures the optional event publisher
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
}

// flagKeys maps config keys to the command line flags that may override them
var flagKeys = map[string]string{
	"logging.level":      "log-level",
	"logging.format":     "log-format",
	"device.alias":       "alias",
	"device.host":        "host",
	"api.listen_address": "listen",
	"mqtt.broker":        "mqtt-broker",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("device.alias", DefaultAlias)
	v.SetDefault("device.host", "")
	v.SetDefault("device.timeout", DefaultDeviceTimeout)
	v.SetDefault("discovery.target", DefaultDiscoveryTarget)
	v.SetDefault("discovery.timeout", DefaultDiscoveryTimeout)
	v.SetDefault("discovery.attempts", DefaultDiscoveryAttempts)
	v.SetDefault("location.latitude", DefaultLatitude)
	v.SetDefault("location.longitude", DefaultLongitude)
	v.SetDefault("location.timezone", "")
	v.SetDefault("schedule.off_time", DefaultOffTime)
	v.SetDefault("schedule.on_offset_minutes", DefaultOnOffsetMinutes)
	v.SetDefault("schedule.apply_retries", DefaultApplyRetries)
	v.SetDefault("logging.level", LogLevelInfo)
	v.SetDefault("logging.format", LogFormatText)
	v.SetDefault("api.listen_address", "")
	v.SetDefault("api.requests_per_minute", DefaultRequestsPerMinute)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.topic", DefaultMQTTTopic)
	v.SetDefault("mqtt.client_id", DefaultMQTTClientID)
}

// Load loads configuration from a file, environment variables and flags.
// An empty configFile means the default XDG location; a missing file there is not an error.
// Flags that were explicitly set take precedence over everything else.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		slog.Info("Using config file from command line", "path", configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		configPath := GetDefaultConfigPath()
		if _, err := os.Stat(configPath); err == nil {
			slog.Info("Using default config file", "path", configPath)
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Device: DeviceConfig{
			Alias:   v.GetString("device.alias"),
			Host:    v.GetString("device.host"),
			Timeout: v.GetDuration("device.timeout"),
		},
		Discovery: DiscoveryConfig{
			Target:   v.GetString("discovery.target"),
			Timeout:  v.GetDuration("discovery.timeout"),
			Attempts: v.GetInt("discovery.attempts"),
		},
		Location: LocationConfig{
			Latitude:  v.GetFloat64("location.latitude"),
			Longitude: v.GetFloat64("location.longitude"),
			Timezone:  v.GetString("location.timezone"),
		},
		Schedule: ScheduleConfig{
			OffTime:         v.GetString("schedule.off_time"),
			OnOffsetMinutes: v.GetInt("schedule.on_offset_minutes"),
			ApplyRetries:    v.GetInt("schedule.apply_retries"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		API: APIConfig{
			ListenAddress:     v.GetString("api.listen_address"),
			RequestsPerMinute: v.GetInt("api.requests_per_minute"),
		},
		MQTT: MQTTConfig{
			Broker:   v.GetString("mqtt.broker"),
			Topic:    v.GetString("mqtt.topic"),
			ClientID: v.GetString("mqtt.client_id"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and resolves derived values such as the off-time clock
func (c *Config) Validate() error {
	if c.Device.Alias == "" && c.Device.Host == "" {
		return errors.InvalidInputf("one of device.alias or device.host is required")
	}
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		return errors.InvalidInputf("location.latitude %v out of range [-90, 90]", c.Location.Latitude)
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		return errors.InvalidInputf("location.longitude %v out of range [-180, 180]", c.Location.Longitude)
	}
	if _, err := LoadLocation(c.Location.Timezone); err != nil {
		return err
	}
	hour, minute, err := ParseClock(c.Schedule.OffTime)
	if err != nil {
		return err
	}
	c.Schedule.offHour, c.Schedule.offMinute = hour, minute
	if c.Schedule.OnOffsetMinutes < -MaxOnOffsetMinutes || c.Schedule.OnOffsetMinutes > MaxOnOffsetMinutes {
		return errors.InvalidInputf("schedule.on_offset_minutes %d out of range [-%d, %d]",
			c.Schedule.OnOffsetMinutes, MaxOnOffsetMinutes, MaxOnOffsetMinutes)
	}
	if c.Schedule.ApplyRetries < 0 {
		return errors.InvalidInputf("schedule.apply_retries must not be negative")
	}
	if c.Discovery.Attempts < 1 {
		return errors.InvalidInputf("discovery.attempts must be at least 1")
	}
	if c.Discovery.Timeout <= 0 || c.Device.Timeout <= 0 {
		return errors.InvalidInputf("discovery.timeout and device.timeout must be positive")
	}
	return nil
}

// OffClock returns the validated off-time hour and minute
func (s ScheduleConfig) OffClock() (hour, minute int) {
	return s.offHour, s.offMinute
}

// OnOffset returns the sunset offset as a duration
func (s ScheduleConfig) OnOffset() time.Duration {
	return time.Duration(s.OnOffsetMinutes) * time.Minute
}

// TimeLocation returns the configured location, falling back to time.Local
func (l LocationConfig) TimeLocation() *time.Location {
	loc, err := LoadLocation(l.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// YAML renders the effective configuration
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("error encoding config: %w", err)
	}
	return out, nil
}
