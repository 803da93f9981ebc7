package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DeviceConfig - per-port settings, keyed by platform port name (e.g. COM3, /dev/ttyACM0)
type DeviceConfig struct {
	Enabled bool   `json:"enabled"`
	Side    string `json:"side"` // "left" or "right"
	Slot    int    `json:"slot"`
}

// SerialConfig - settings for the USB serial link to the matrices
type SerialConfig struct {
	BaudRate        int     `json:"baud_rate"`
	RetryDelay      string  `json:"retry_delay"`
	ResponseTimeout string  `json:"response_timeout"`
	RateLimit       float64 `json:"command_rate_limit"`
	RateBurst       int     `json:"command_rate_burst"`
}

// ServerConfig - settings for the WebSocket status/control server
type ServerConfig struct {
	Enabled        bool     `json:"enabled"`
	Port           string   `json:"port"`
	WebFilesDir    string   `json:"web_files_dir"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// MQTTConfig - MQTT and Home Assistant Discovery settings
type MQTTConfig struct {
	Enabled            bool   `json:"enabled"`
	Broker             string `json:"broker"` // tcp://IP:PORT
	Username           string `json:"username"`
	Password           string `json:"password"`
	ClientID           string `json:"client_id"`
	TopicPrefix        string `json:"topic_prefix"`
	HADiscoveryEnabled bool   `json:"ha_discovery_enabled"`
	HADiscoveryPrefix  string `json:"ha_discovery_prefix"`
}

// SoundConfig - wav files played on power transitions
type SoundConfig struct {
	Plugged   string `json:"plugged"`
	Unplugged string `json:"unplugged"`
}

// Config - the main configuration structure, persisted as JSON
type Config struct {
	Brightness         int                     `json:"brightness"`     // 0-100
	CheckInterval      int                     `json:"check_interval"` // seconds
	Animations         bool                    `json:"animations"`
	SoundNotifications bool                    `json:"sound_notifications"`
	Devices            map[string]DeviceConfig `json:"devices"`

	Serial SerialConfig `json:"serial"`
	Server ServerConfig `json:"server"`
	MQTT   MQTTConfig   `json:"mqtt"`
	Sounds SoundConfig  `json:"sounds"`

	// File system settings
	PatternsDir   string `json:"patterns_dir"`
	PresetsDir    string `json:"presets_dir"`
	SchedulesFile string `json:"schedules_file"`
}

// Load reads the file, parses the JSON and applies sanitization/defaults/validation.
// A missing file is not an error: the defaults are returned.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultConfig()
			cfg.setDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to open config file '%s': %w", path, err)
	}
	defer file.Close()

	cfg := defaultConfig()
	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}

	cfg.sanitize()
	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration back to disk as indented JSON.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// defaultConfig returns a Config with the fields that are meaningful when
// absent from the file. Booleans that default to true must be set here,
// before decoding, so an omitted key keeps the default.
func defaultConfig() *Config {
	return &Config{
		Brightness:         50,
		CheckInterval:      5,
		Animations:         true,
		SoundNotifications: true,
		Devices:            make(map[string]DeviceConfig),
	}
}

func (c *Config) sanitize() {
	c.Server.Port = strings.TrimSpace(c.Server.Port)
	c.Server.WebFilesDir = strings.TrimSpace(c.Server.WebFilesDir)
	c.PatternsDir = strings.TrimSpace(c.PatternsDir)
	c.PresetsDir = strings.TrimSpace(c.PresetsDir)
	c.SchedulesFile = strings.TrimSpace(c.SchedulesFile)

	for port, dev := range c.Devices {
		dev.Side = strings.ToLower(strings.TrimSpace(dev.Side))
		c.Devices[port] = dev
	}
}

func (c *Config) setDefaults() {
	if c.CheckInterval <= 0 {
		c.CheckInterval = 5
	}

	// Serial Defaults
	if c.Serial.BaudRate <= 0 {
		c.Serial.BaudRate = 115200
	}
	if c.Serial.RetryDelay == "" {
		c.Serial.RetryDelay = "5s"
	}
	if c.Serial.ResponseTimeout == "" {
		c.Serial.ResponseTimeout = "2s"
	}
	if c.Serial.RateLimit <= 0 {
		c.Serial.RateLimit = 60.0
	}
	if c.Serial.RateBurst <= 0 {
		c.Serial.RateBurst = 60
	}

	// Server Defaults
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.WebFilesDir == "" {
		c.Server.WebFilesDir = "./web"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:8080"}
	}

	// MQTT Defaults
	if c.MQTT.Broker == "" {
		c.MQTT.Broker = "tcp://localhost:1883"
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "led-matrix-battery"
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "ledmatrix"
	}
	if c.MQTT.HADiscoveryPrefix == "" {
		c.MQTT.HADiscoveryPrefix = "homeassistant"
	}

	// File Defaults
	if c.PatternsDir == "" {
		c.PatternsDir = DefaultPatternsDir()
	}
	if c.PresetsDir == "" {
		c.PresetsDir = DefaultPresetsDir()
	}
	if c.SchedulesFile == "" {
		c.SchedulesFile = DefaultSchedulesFile()
	}
}

func (c *Config) validate() error {
	if c.Brightness < 0 || c.Brightness > 100 {
		return fmt.Errorf("config error: 'brightness' must be between 0 and 100, got %d", c.Brightness)
	}
	if c.Serial.RateLimit <= 0 {
		return fmt.Errorf("config error: 'command_rate_limit' must be positive")
	}
	for port, dev := range c.Devices {
		if dev.Side != "" && dev.Side != "left" && dev.Side != "right" {
			return fmt.Errorf("config error: device '%s' side must be 'left' or 'right', got '%s'", port, dev.Side)
		}
		if dev.Slot < 0 || dev.Slot > 2 {
			return fmt.Errorf("config error: device '%s' slot must be 1 or 2", port)
		}
	}
	return nil
}
