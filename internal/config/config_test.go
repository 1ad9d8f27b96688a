// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/wheel_odometry/internal/odometry"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "odometry_config.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "# nothing set\n\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, odometry.DefaultParams(), cfg.OdometryParams())
}

func TestLoad_OverridesValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
# broker
MQTT_BROKER = tcp://robot.local:1883
TOPIC_SENSOR_STATE=burger/sensor_state
TOPIC_ODOMETRY=burger/odom
FRAME_ID=map

TICKS_PER_REVOLUTION=2048
WHEEL_RADIUS=0.05
WHEEL_SEPARATION=0.287
UPDATE_RATE_HZ=30
INTEGRATION_MODE=midpoint
NORMALIZE_HEADING=true
ENCODER_BITS=16
ENCODER_BAUD_RATE=57600
RECORDER_DB_PATH=/tmp/odom.db
`))
	require.NoError(t, err)

	assert.Equal(t, "tcp://robot.local:1883", cfg.MQTTBroker)
	assert.Equal(t, "burger/sensor_state", cfg.TopicSensorState)
	assert.Equal(t, "burger/odom", cfg.TopicOdometry)
	assert.Equal(t, "map", cfg.FrameID)
	assert.Equal(t, "base_link", cfg.ChildFrameID)
	assert.Equal(t, 30.0, cfg.UpdateRateHz)
	assert.Equal(t, 57600, cfg.EncoderBaudRate)
	assert.Equal(t, "/tmp/odom.db", cfg.RecorderDBPath)

	assert.Equal(t, odometry.Params{
		TicksPerRevolution: 2048,
		WheelRadius:        0.05,
		WheelSeparation:    0.287,
		Mode:               odometry.IntegrateMidpoint,
		NormalizeHeading:   true,
		EncoderBits:        16,
	}, cfg.OdometryParams())
}

func TestLoad_Errors(t *testing.T) {
	for _, tc := range []struct {
		name     string
		contents string
		contains string
	}{
		{"unknown key", "WHEEL_DIAMETER=0.066\n", "unknown config key"},
		{"missing equals", "MQTT_BROKER\n", "invalid config line 1"},
		{"zero ticks", "TICKS_PER_REVOLUTION=0\n", "TICKS_PER_REVOLUTION"},
		{"negative radius", "WHEEL_RADIUS=-0.033\n", "WHEEL_RADIUS"},
		{"bad separation", "WHEEL_SEPARATION=wide\n", "WHEEL_SEPARATION"},
		{"infinite radius", "WHEEL_RADIUS=+Inf\n", "WHEEL_RADIUS must be positive and finite"},
		{"infinite separation", "WHEEL_SEPARATION=Inf\n", "WHEEL_SEPARATION must be positive and finite"},
		{"NaN radius", "WHEEL_RADIUS=NaN\n", "WHEEL_RADIUS"},
		{"rate too high", "UPDATE_RATE_HZ=5000\n", "UPDATE_RATE_HZ"},
		{"unknown mode", "INTEGRATION_MODE=rk4\n", "INTEGRATION_MODE"},
		{"bad bool", "NORMALIZE_HEADING=sometimes\n", "NORMALIZE_HEADING"},
		{"odd encoder width", "ENCODER_BITS=12\n", "ENCODER_BITS"},
		{"empty odometry topic", "TOPIC_ODOMETRY=\n", "TOPIC_ODOMETRY is required"},
		{"empty frame", "CHILD_FRAME_ID=\n", "CHILD_FRAME_ID"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.contents))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInitGlobal(t *testing.T) {
	path := writeConfig(t, "MQTT_BROKER=tcp://first:1883\n")
	require.NoError(t, InitGlobal(path))
	require.NotNil(t, Get())
	assert.Equal(t, "tcp://first:1883", Get().MQTTBroker)

	// Later calls keep the first configuration.
	require.NoError(t, InitGlobal(writeConfig(t, "MQTT_BROKER=tcp://second:1883\n")))
	assert.Equal(t, "tcp://first:1883", Get().MQTTBroker)
}

func TestLoad_ProducersHaveDistinctClientIDs(t *testing.T) {
	cfg, err := Load(writeConfig(t, "MQTT_CLIENT_ID_MOCK=sim-left-right\n"))
	require.NoError(t, err)

	assert.Equal(t, "sim-left-right", cfg.MQTTClientIDMock)
	ids := []string{cfg.MQTTClientIDBridge, cfg.MQTTClientIDGPIO, cfg.MQTTClientIDMock}
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			assert.NotEqual(t, ids[i], ids[j])
		}
	}
	assert.NotEqual(t, Default().MQTTClientIDBridge, Default().MQTTClientIDMock)
	assert.NotEqual(t, Default().MQTTClientIDBridge, Default().MQTTClientIDGPIO)
}
