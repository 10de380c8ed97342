package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDBridge   string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicPhoneRaw       string // raw phone messages (right-up-back, xyzw)
	TopicPoseWorld      string // display-ready world poses
	TopicArmOrientation string // forearm orientation, scalar-first quaternion JSON
	TopicWrist          string // wrist deltas for the actuator
	TopicCommand        string // "calibrate" / "reset"

	// Phone ingress
	WSListenAddr string

	// Frame conversion
	InitialRollDeg  float64
	InitialPitchDeg float64
	InitialYawDeg   float64

	// Smoothing: 1 disables
	SmoothingAlpha float64

	// Wrist limits in degrees, 0 = unlimited
	WristMaxPitchDeg float64
	WristMaxRollDeg  float64

	// Actuator serial link, empty port disables it
	ActuatorSerialPort string
	ActuatorBaudRate   int

	// Mock producer
	MockFPS          float64
	ProducerInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CBus         string // empty selects the first bus
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for the singleton: globalConfig is only
// reachable through InitGlobal and Get, configOnce makes InitGlobal run once,
// and configMu lets readers share the config while initialization holds the
// write lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a config with every optional value set.
func Default() *Config {
	return &Config{
		MQTTClientIDBridge:   "teleop-bridge",
		MQTTClientIDProducer: "teleop-producer-mock",
		MQTTClientIDConsole:  "teleop-console",
		MQTTClientIDWeb:      "teleop-web",
		MQTTClientIDDisplay:  "teleop-display",

		TopicPhoneRaw:       "teleop/phone/raw",
		TopicPoseWorld:      "teleop/pose/world",
		TopicArmOrientation: "teleop/arm/orientation",
		TopicWrist:          "teleop/wrist",
		TopicCommand:        "teleop/command",

		WSListenAddr: ":4443",

		InitialPitchDeg: -45,
		SmoothingAlpha:  1,

		ActuatorBaudRate: 115200,

		MockFPS:          30,
		ProducerInterval: 33,

		WebServerPort: 8080,

		DisplayUpdateInterval: 200,
	}
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of Default and validates the result.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
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

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_BRIDGE":
		c.MQTTClientIDBridge = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_PHONE_RAW":
		c.TopicPhoneRaw = value
	case "TOPIC_POSE_WORLD":
		c.TopicPoseWorld = value
	case "TOPIC_ARM_ORIENTATION":
		c.TopicArmOrientation = value
	case "TOPIC_WRIST":
		c.TopicWrist = value
	case "TOPIC_COMMAND":
		c.TopicCommand = value

	case "WS_LISTEN_ADDR":
		c.WSListenAddr = value

	// Frame conversion
	case "INITIAL_ROLL_DEG":
		return parseFloat(key, value, &c.InitialRollDeg)
	case "INITIAL_PITCH_DEG":
		return parseFloat(key, value, &c.InitialPitchDeg)
	case "INITIAL_YAW_DEG":
		return parseFloat(key, value, &c.InitialYawDeg)

	case "SMOOTHING_ALPHA":
		if err := parseFloat(key, value, &c.SmoothingAlpha); err != nil {
			return err
		}
		if c.SmoothingAlpha <= 0 || c.SmoothingAlpha > 1 {
			return fmt.Errorf("SMOOTHING_ALPHA must be in (0, 1], got %v", c.SmoothingAlpha)
		}

	// Wrist limits
	case "WRIST_MAX_PITCH_DEG":
		if err := parseFloat(key, value, &c.WristMaxPitchDeg); err != nil {
			return err
		}
		if c.WristMaxPitchDeg < 0 {
			return fmt.Errorf("WRIST_MAX_PITCH_DEG must be >= 0, got %v", c.WristMaxPitchDeg)
		}
	case "WRIST_MAX_ROLL_DEG":
		if err := parseFloat(key, value, &c.WristMaxRollDeg); err != nil {
			return err
		}
		if c.WristMaxRollDeg < 0 {
			return fmt.Errorf("WRIST_MAX_ROLL_DEG must be >= 0, got %v", c.WristMaxRollDeg)
		}

	// Actuator
	case "ACTUATOR_SERIAL_PORT":
		c.ActuatorSerialPort = value
	case "ACTUATOR_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ACTUATOR_BAUD_RATE %q: %w", value, err)
		}
		c.ActuatorBaudRate = rate

	// Mock producer
	case "MOCK_FPS":
		return parseFloat(key, value, &c.MockFPS)
	case "PRODUCER_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid PRODUCER_INTERVAL %q: %w", value, err)
		}
		c.ProducerInterval = interval

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
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

func parseFloat(key, value string, dst *float64) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = v
	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicPoseWorld == "" || c.TopicWrist == "" {
		return fmt.Errorf("TOPIC_POSE_WORLD and TOPIC_WRIST are required")
	}
	if c.ActuatorSerialPort != "" && c.ActuatorBaudRate <= 0 {
		return fmt.Errorf("ACTUATOR_BAUD_RATE is required when ACTUATOR_SERIAL_PORT is set")
	}
	if c.ProducerInterval <= 0 {
		return fmt.Errorf("PRODUCER_INTERVAL must be positive")
	}
	if c.DisplayUpdateInterval <= 0 {
		return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must be positive")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Only the first
// call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
