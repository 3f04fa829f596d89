// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker          string
	MQTTClientIDGPS     string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string
	MQTTClientIDDisplay string

	// Topics
	TopicGPS             string
	TopicGPSAvailability string

	// GPS receiver
	GPSSerialPort  string // path, "auto" (or empty) to discover, "sim" for the simulator
	GPSBaudRate    int
	GPSDiscoverVID string
	GPSDiscoverPID string

	// Fix filtering
	GPSMinQuality        int
	GPSPositionTolerance float64 // decimal degrees

	// Timing
	GPSReconnectDelay int // milliseconds
	GPSReadTimeout    int // milliseconds, 0 disables
	GPSDebug          bool

	// Web Server
	WebServerPort int // 0 disables the embedded server

	// Display
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported so other packages cannot modify it directly.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock for initialization,
//     read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config with every optional value filled in.
func Default() *Config {
	return &Config{
		MQTTBroker:            "tcp://localhost:1883",
		MQTTClientIDGPS:       "gps-reader-producer",
		MQTTClientIDConsole:   "gps-reader-console",
		MQTTClientIDWeb:       "gps-reader-web",
		MQTTClientIDDisplay:   "gps-reader-display",
		TopicGPS:              "gps/fix",
		TopicGPSAvailability:  "gps/availability",
		GPSSerialPort:         "auto",
		GPSBaudRate:           4800,
		GPSDiscoverVID:        "067B",
		GPSDiscoverPID:        "23A3",
		GPSMinQuality:         1,
		GPSPositionTolerance:  1e-3,
		GPSReconnectDelay:     5000,
		GPSReadTimeout:        0,
		WebServerPort:         8080,
		DisplayUpdateInterval: 500,
	}
}

// Load reads the configuration file and returns a Config struct. Files
// ending in .toml are decoded as TOML; anything else uses KEY=VALUE lines.
// Keys missing from the file keep their Default() value.
func Load(configPath string) (*Config, error) {
	if strings.EqualFold(filepath.Ext(configPath), ".toml") {
		return loadTOML(configPath)
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadTOML(configPath string) (*Config, error) {
	contents, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	tree, err := toml.LoadBytes(contents)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", configPath, err)
	}

	// TOML keys are the lower-case form of the KEY=VALUE names.
	cfg := Default()
	for _, key := range tree.Keys() {
		value := tree.Get(key)
		if _, nested := value.(*toml.Tree); nested {
			return nil, fmt.Errorf("config %s: unexpected table %q", configPath, key)
		}
		if err := cfg.setValue(strings.ToUpper(key), fmt.Sprint(value)); err != nil {
			return nil, fmt.Errorf("config %s: %w", configPath, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_GPS":
		c.MQTTClientIDGPS = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_GPS":
		c.TopicGPS = value
	case "TOPIC_GPS_AVAILABILITY":
		c.TopicGPSAvailability = value

	// GPS receiver
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		c.GPSBaudRate = rate
	case "GPS_DISCOVER_VID":
		c.GPSDiscoverVID = value
	case "GPS_DISCOVER_PID":
		c.GPSDiscoverPID = value

	// Fix filtering
	case "GPS_MIN_QUALITY":
		q, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_MIN_QUALITY %q: %w", value, err)
		}
		c.GPSMinQuality = q
	case "GPS_POSITION_TOLERANCE":
		tol, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid GPS_POSITION_TOLERANCE %q: %w", value, err)
		}
		c.GPSPositionTolerance = tol

	// Timing
	case "GPS_RECONNECT_DELAY_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_RECONNECT_DELAY_MS %q: %w", value, err)
		}
		c.GPSReconnectDelay = ms
	case "GPS_READ_TIMEOUT_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_READ_TIMEOUT_MS %q: %w", value, err)
		}
		c.GPSReadTimeout = ms
	case "GPS_DEBUG":
		debug, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_DEBUG %q: %w", value, err)
		}
		c.GPSDebug = debug

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set and in range.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicGPS == "" {
		return fmt.Errorf("TOPIC_GPS is required")
	}
	if c.GPSBaudRate <= 0 {
		return fmt.Errorf("GPS_BAUD_RATE must be positive, got %d", c.GPSBaudRate)
	}
	if c.GPSMinQuality < 0 {
		return fmt.Errorf("GPS_MIN_QUALITY must be >= 0, got %d", c.GPSMinQuality)
	}
	if c.GPSPositionTolerance <= 0 {
		return fmt.Errorf("GPS_POSITION_TOLERANCE must be positive, got %g", c.GPSPositionTolerance)
	}
	if c.GPSReconnectDelay <= 0 {
		return fmt.Errorf("GPS_RECONNECT_DELAY_MS must be positive, got %d", c.GPSReconnectDelay)
	}
	if c.GPSReadTimeout < 0 {
		return fmt.Errorf("GPS_READ_TIMEOUT_MS must be >= 0, got %d", c.GPSReadTimeout)
	}
	if c.WebServerPort < 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("WEB_SERVER_PORT out of range: %d", c.WebServerPort)
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive, got %d", c.DisplayUpdateInterval)
	}
	return nil
}

// AutoDetect reports whether the serial port should be discovered.
func (c *Config) AutoDetect() bool {
	p := strings.TrimSpace(c.GPSSerialPort)
	return p == "" || strings.EqualFold(p, "auto")
}

// ReconnectDelay returns GPSReconnectDelay as a time.Duration.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.GPSReconnectDelay) * time.Millisecond
}

// ReadTimeout returns GPSReadTimeout as a time.Duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.GPSReadTimeout) * time.Millisecond
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
