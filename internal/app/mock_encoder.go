// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"log"
	"time"

	"github.com/relabs-tech/wheel_odometry/internal/bus"
	"github.com/relabs-tech/wheel_odometry/internal/config"
	"github.com/relabs-tech/wheel_odometry/internal/encoder"
)

// defaultMockEncoderInterval is used when the requested interval is not positive.
const defaultMockEncoderInterval = 33 * time.Millisecond

func mockEncoderInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultMockEncoderInterval
	}
	return d
}

// RunMockEncoder publishes synthetic sensor_state samples so the odometry
// node can be exercised without a robot.
func RunMockEncoder(leftTicksPerSec, rightTicksPerSec float64, interval time.Duration) error {
	cfg := config.Get()

	client, err := bus.Connect(cfg.MQTTBroker, cfg.MQTTClientIDMock)
	if err != nil {
		return err
	}
	defer client.Close()

	src := encoder.NewMockSource(leftTicksPerSec, rightTicksPerSec)
	ticker := time.NewTicker(mockEncoderInterval(interval))
	defer ticker.Stop()

	for t := range ticker.C {
		s, err := src.Next()
		if err != nil {
			log.Printf("mock_encoder: source error: %v", err)
			continue
		}
		if err := client.PublishJSON(cfg.TopicSensorState, false, s); err != nil {
			log.Printf("mock_encoder: %v", err)
			continue
		}
		log.Printf("%s published sensor_state: left=%d right=%d", t.Format(time.RFC3339), s.Left, s.Right)
	}
	return nil
}
