// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/wheel_odometry/internal/bus"
	"github.com/relabs-tech/wheel_odometry/internal/config"
	"github.com/relabs-tech/wheel_odometry/internal/encoder"
	"github.com/relabs-tech/wheel_odometry/internal/nav"
)

// RunConsoleMQTT prints every sensor_state and odometry message.
func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := bus.Connect(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}

	if err := bus.SubscribeJSON(client, cfg.TopicSensorState, func(s encoder.Sample) {
		printSensorState(os.Stdout, s)
	}); err != nil {
		return err
	}

	if err := bus.SubscribeJSON(client, cfg.TopicOdometry, func(o nav.Odometry) {
		printOdometry(os.Stdout, o)
	}); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Close()
	return nil
}

func printSensorState(w io.Writer, s encoder.Sample) {
	fmt.Fprintf(w, "[ENC ]  left=%10d  right=%10d\n", s.Left, s.Right)
}

func printOdometry(w io.Writer, o nav.Odometry) {
	p := o.PlanarPose()
	t := o.Twist.Twist
	fmt.Fprintf(w,
		"[ODOM] #%d x=%8.3f y=%8.3f θ=%7.3f  v=%6.3f m/s  w=%6.3f rad/s  (%s -> %s)\n",
		o.Header.Seq, p.X, p.Y, p.Heading, t.Linear.X, t.Angular.Z, o.Header.FrameID, o.ChildFrameID,
	)
}
