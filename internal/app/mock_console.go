// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/relabs-tech/wheel_odometry/internal/config"
	"github.com/relabs-tech/wheel_odometry/internal/encoder"
	"github.com/relabs-tech/wheel_odometry/internal/nav"
	"github.com/relabs-tech/wheel_odometry/internal/odometry"
	"github.com/relabs-tech/wheel_odometry/internal/timeutil"
)

// consolePublisher prints odometry instead of sending it to the broker.
type consolePublisher struct {
	w io.Writer
}

func (p consolePublisher) PublishOdometry(o nav.Odometry) error {
	printOdometry(p.w, o)
	return nil
}

// RunMockConsole integrates a simulated encoder locally and prints every
// pose, without a broker.
func RunMockConsole(leftTicksPerSec, rightTicksPerSec float64) error {
	cfg := config.Get()

	in, err := odometry.NewIntegrator(cfg.OdometryParams())
	if err != nil {
		return err
	}

	node := NewNode(in, consolePublisher{w: os.Stdout}, timeutil.RealClock{}, NodeOptions{
		FrameID:      cfg.FrameID,
		ChildFrameID: cfg.ChildFrameID,
		UpdateRateHz: cfg.UpdateRateHz,
		LogInterval:  time.Hour,
	})

	src := encoder.NewMockSource(leftTicksPerSec, rightTicksPerSec)
	ticker := time.NewTicker(time.Duration(float64(time.Second) / cfg.UpdateRateHz))
	defer ticker.Stop()

	for t := range ticker.C {
		sample, err := src.Next()
		if err != nil {
			return err
		}
		node.Mailbox().Store(sample)
		if _, err := node.Tick(t); err != nil {
			fmt.Fprintf(os.Stderr, "tick skipped: %v\n", err)
		}
	}
	return nil
}
