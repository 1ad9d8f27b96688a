// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/relabs-tech/wheel_odometry/internal/odometry"
)

// DefaultPath is where the binaries look for their configuration file.
const DefaultPath = "./odometry_config.txt"

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDOdometry string
	MQTTClientIDBridge   string
	MQTTClientIDGPIO     string
	MQTTClientIDMock     string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string
	MQTTClientIDRecorder string

	// Topics
	TopicSensorState string
	TopicOdometry    string
	TopicPoseReset   string

	// Frames
	FrameID      string
	ChildFrameID string

	// Robot geometry (TurtleBot3 Burger defaults)
	TicksPerRevolution int
	WheelRadius        float64 // meters
	WheelSeparation    float64 // meters

	// Integrator behaviour
	UpdateRateHz     float64
	IntegrationMode  string // "post" or "midpoint"
	NormalizeHeading bool
	EncoderBits      int // 0 disables counter wrap handling, otherwise 16 or 32

	// Serial encoder bridge
	EncoderSerialPort string
	EncoderBaudRate   int

	// GPIO quadrature encoders
	EncoderLeftPinA  string
	EncoderLeftPinB  string
	EncoderRightPinA string
	EncoderRightPinB string

	EncoderPublishInterval int // milliseconds

	// Web Server
	WebServerPort int

	// Display
	DisplayI2CBus         string
	DisplayUpdateInterval int // milliseconds

	// Recorder
	RecorderDBPath string

	// Timing
	ConsoleLogInterval int // milliseconds, 0 logs every tick
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through InitGlobal and Get.
//   - configOnce: InitGlobal only loads once.
//   - configMu: protects globalConfig for concurrent readers.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns a Config populated with the TurtleBot3 Burger geometry and
// the topics used by the rest of the project. Load starts from these values.
func Default() *Config {
	return &Config{
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDOdometry: "odometry-node",
		MQTTClientIDBridge:   "odometry-encoder-bridge",
		MQTTClientIDGPIO:     "odometry-gpio-encoder",
		MQTTClientIDMock:     "odometry-mock-encoder",
		MQTTClientIDConsole:  "odometry-console",
		MQTTClientIDWeb:      "odometry-web",
		MQTTClientIDDisplay:  "odometry-display",
		MQTTClientIDRecorder: "odometry-recorder",

		TopicSensorState: "robot/sensor_state",
		TopicOdometry:    "robot/custom_odom",
		TopicPoseReset:   "robot/odom_reset",

		FrameID:      "odom",
		ChildFrameID: "base_link",

		TicksPerRevolution: 4096,
		WheelRadius:        0.033,
		WheelSeparation:    0.160,

		UpdateRateHz:    10,
		IntegrationMode: string(odometry.IntegratePostHeading),

		EncoderSerialPort:      "/dev/ttyACM0",
		EncoderBaudRate:        115200,
		EncoderPublishInterval: 20,

		WebServerPort: 8080,

		DisplayI2CBus:         "",
		DisplayUpdateInterval: 200,

		RecorderDBPath: "./odometry.db",
	}
}

// Load reads the configuration file and returns a Config struct.
// Keys not present in the file keep their Default values.
func Load(configPath string) (*Config, error) {
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

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_ODOMETRY":
		c.MQTTClientIDOdometry = value
	case "MQTT_CLIENT_ID_BRIDGE":
		c.MQTTClientIDBridge = value
	case "MQTT_CLIENT_ID_GPIO":
		c.MQTTClientIDGPIO = value
	case "MQTT_CLIENT_ID_MOCK":
		c.MQTTClientIDMock = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value
	case "MQTT_CLIENT_ID_RECORDER":
		c.MQTTClientIDRecorder = value

	// Topics
	case "TOPIC_SENSOR_STATE":
		c.TopicSensorState = value
	case "TOPIC_ODOMETRY":
		c.TopicOdometry = value
	case "TOPIC_POSE_RESET":
		c.TopicPoseReset = value

	// Frames
	case "FRAME_ID":
		c.FrameID = value
	case "CHILD_FRAME_ID":
		c.ChildFrameID = value

	// Robot geometry
	case "TICKS_PER_REVOLUTION":
		ticks, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid TICKS_PER_REVOLUTION %q: %w", value, err)
		}
		if ticks <= 0 {
			return fmt.Errorf("TICKS_PER_REVOLUTION must be positive, got %d", ticks)
		}
		c.TicksPerRevolution = ticks
	case "WHEEL_RADIUS":
		r, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid WHEEL_RADIUS %q: %w", value, err)
		}
		if !(r > 0) || math.IsInf(r, 0) {
			return fmt.Errorf("WHEEL_RADIUS must be positive and finite (meters), got %g", r)
		}
		c.WheelRadius = r
	case "WHEEL_SEPARATION":
		s, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid WHEEL_SEPARATION %q: %w", value, err)
		}
		if !(s > 0) || math.IsInf(s, 0) {
			return fmt.Errorf("WHEEL_SEPARATION must be positive and finite (meters), got %g", s)
		}
		c.WheelSeparation = s

	// Integrator behaviour
	case "UPDATE_RATE_HZ":
		hz, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid UPDATE_RATE_HZ %q: %w", value, err)
		}
		if hz <= 0 || hz > 1000 {
			return fmt.Errorf("UPDATE_RATE_HZ must be in (0, 1000], got %g", hz)
		}
		c.UpdateRateHz = hz
	case "INTEGRATION_MODE":
		switch odometry.IntegrationMode(value) {
		case odometry.IntegratePostHeading, odometry.IntegrateMidpoint:
			c.IntegrationMode = value
		default:
			return fmt.Errorf("INTEGRATION_MODE must be %q or %q, got %q",
				odometry.IntegratePostHeading, odometry.IntegrateMidpoint, value)
		}
	case "NORMALIZE_HEADING":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid NORMALIZE_HEADING %q: %w", value, err)
		}
		c.NormalizeHeading = b
	case "ENCODER_BITS":
		bits, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ENCODER_BITS %q: %w", value, err)
		}
		if bits != 0 && bits != 16 && bits != 32 {
			return fmt.Errorf("ENCODER_BITS must be 0, 16 or 32, got %d", bits)
		}
		c.EncoderBits = bits

	// Serial encoder bridge
	case "ENCODER_SERIAL_PORT":
		c.EncoderSerialPort = value
	case "ENCODER_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ENCODER_BAUD_RATE %q: %w", value, err)
		}
		c.EncoderBaudRate = rate

	// GPIO quadrature encoders
	case "ENCODER_LEFT_PIN_A":
		c.EncoderLeftPinA = value
	case "ENCODER_LEFT_PIN_B":
		c.EncoderLeftPinB = value
	case "ENCODER_RIGHT_PIN_A":
		c.EncoderRightPinA = value
	case "ENCODER_RIGHT_PIN_B":
		c.EncoderRightPinB = value
	case "ENCODER_PUBLISH_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid ENCODER_PUBLISH_INTERVAL %q: %w", value, err)
		}
		c.EncoderPublishInterval = interval

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

	// Recorder
	case "RECORDER_DB_PATH":
		c.RecorderDBPath = value

	// Timing
	case "CONSOLE_LOG_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CONSOLE_LOG_INTERVAL %q: %w", value, err)
		}
		c.ConsoleLogInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicSensorState == "" {
		return fmt.Errorf("TOPIC_SENSOR_STATE is required")
	}
	if c.TopicOdometry == "" {
		return fmt.Errorf("TOPIC_ODOMETRY is required")
	}
	if c.FrameID == "" || c.ChildFrameID == "" {
		return fmt.Errorf("FRAME_ID and CHILD_FRAME_ID are required")
	}
	if err := c.OdometryParams().Validate(); err != nil {
		return err
	}
	return nil
}

// OdometryParams builds the integrator parameters from the loaded values.
func (c *Config) OdometryParams() odometry.Params {
	return odometry.Params{
		TicksPerRevolution: c.TicksPerRevolution,
		WheelRadius:        c.WheelRadius,
		WheelSeparation:    c.WheelSeparation,
		Mode:               odometry.IntegrationMode(c.IntegrationMode),
		NormalizeHeading:   c.NormalizeHeading,
		EncoderBits:        c.EncoderBits,
	}
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once so only the first call reads the file.
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
