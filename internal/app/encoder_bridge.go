// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/wheel_odometry/internal/bus"
	"github.com/relabs-tech/wheel_odometry/internal/config"
	"github.com/relabs-tech/wheel_odometry/internal/encoder"
)

// RunEncoderBridge opens the encoder board's serial port, parses RBENC
// sentences, and publishes each one as a sensor_state message.
func RunEncoderBridge() error {
	cfg := config.Get()

	// ---- 1) Connect to MQTT broker ----
	client, err := bus.Connect(cfg.MQTTBroker, cfg.MQTTClientIDBridge)
	if err != nil {
		return err
	}
	defer client.Close()

	// ---- 2) Open encoder serial port ----
	serialOpts := serial.OpenOptions{
		PortName:              cfg.EncoderSerialPort,
		BaudRate:              uint(cfg.EncoderBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("open encoder serial port %s: %w", serialOpts.PortName, err)
	}
	defer port.Close()
	log.Printf("bridge: serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	stats, err := bridgeSentences(port, func(s encoder.Sample) error {
		return client.PublishJSON(cfg.TopicSensorState, false, s)
	})
	log.Printf("bridge: stopped after %d samples (%d bad lines)", stats.published, stats.rejected)
	return err
}

type bridgeStats struct {
	published int
	rejected  int
}

// bridgeSentences reads lines from r until EOF or a read error, publishing
// every valid encoder sentence. Noise and partial lines are dropped.
func bridgeSentences(r io.Reader, publish func(encoder.Sample) error) (bridgeStats, error) {
	var stats bridgeStats
	reader := bufio.NewReader(r)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return stats, nil
			}
			return stats, fmt.Errorf("encoder serial read: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "$") {
			continue
		}

		sample, err := encoder.ParseSentence(line)
		if err != nil {
			// boards print boot banners and partial lines on reset
			stats.rejected++
			continue
		}
		sample.Stamp = time.Now().UTC().Format(time.RFC3339Nano)

		if err := publish(sample); err != nil {
			log.Printf("bridge: publish error: %v", err)
			continue
		}
		stats.published++
	}
}
