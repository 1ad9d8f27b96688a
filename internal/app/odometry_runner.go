// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/wheel_odometry/internal/bus"
	"github.com/relabs-tech/wheel_odometry/internal/config"
	"github.com/relabs-tech/wheel_odometry/internal/nav"
	"github.com/relabs-tech/wheel_odometry/internal/odometry"
	"github.com/relabs-tech/wheel_odometry/internal/timeutil"
)

// mqttPublisher publishes odometry on a fixed topic.
type mqttPublisher struct {
	client *bus.Client
	topic  string
}

func (p mqttPublisher) PublishOdometry(msg nav.Odometry) error {
	return p.client.PublishJSON(p.topic, false, msg)
}

// RunOdometryNode subscribes to sensor_state, integrates wheel odometry and
// publishes it until SIGINT/SIGTERM.
func RunOdometryNode() error {
	cfg := config.Get()

	integrator, err := odometry.NewIntegrator(cfg.OdometryParams())
	if err != nil {
		return err
	}
	p := integrator.Params()
	log.Printf("odometry: tick_to_rad=%.9f wheel_radius=%.3f wheel_separation=%.3f mode=%s normalize=%v encoder_bits=%d",
		p.TickToRad(), p.WheelRadius, p.WheelSeparation, p.Mode, p.NormalizeHeading, p.EncoderBits)

	client, err := bus.Connect(cfg.MQTTBroker, cfg.MQTTClientIDOdometry)
	if err != nil {
		return err
	}
	defer client.Close()

	node := NewNode(integrator, mqttPublisher{client: client, topic: cfg.TopicOdometry}, timeutil.RealClock{}, NodeOptions{
		FrameID:      cfg.FrameID,
		ChildFrameID: cfg.ChildFrameID,
		UpdateRateHz: cfg.UpdateRateHz,
		LogInterval:  time.Duration(cfg.ConsoleLogInterval) * time.Millisecond,
	})

	if err := client.Subscribe(cfg.TopicSensorState, func(payload []byte) {
		if err := node.HandleSensorState(payload); err != nil {
			log.Printf("odometry: %v", err)
		}
	}); err != nil {
		return err
	}

	if cfg.TopicPoseReset != "" {
		if err := bus.SubscribeJSON(client, cfg.TopicPoseReset, node.ResetPose); err != nil {
			return err
		}
	}

	log.Printf("odometry: publishing on %s", cfg.TopicOdometry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return node.Run(ctx)
}
