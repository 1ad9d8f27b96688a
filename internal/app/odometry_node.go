// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/relabs-tech/wheel_odometry/internal/encoder"
	"github.com/relabs-tech/wheel_odometry/internal/nav"
	"github.com/relabs-tech/wheel_odometry/internal/odometry"
	"github.com/relabs-tech/wheel_odometry/internal/timeutil"
)

// Publisher hands odometry messages to the bus.
type Publisher interface {
	PublishOdometry(nav.Odometry) error
}

// NodeOptions configures a Node.
type NodeOptions struct {
	FrameID      string
	ChildFrameID string
	UpdateRateHz float64
	// LogInterval throttles the pose log line; 0 logs every published step.
	LogInterval time.Duration
}

// Node owns the integrator and drives it from a ticker. The sensor callback
// writes into the mailbox; everything else happens on the Run goroutine.
type Node struct {
	mailbox encoder.Mailbox
	pub     Publisher
	clock   timeutil.Clock
	opts    NodeOptions

	mu         sync.Mutex // guards integrator, seq and lastLog
	integrator *odometry.Integrator
	seq        uint64
	lastLog    time.Time
	skipped    uint64
}

// NewNode wires an integrator to a publisher. Zero-valued options fall back
// to the "odom"/"base_link" frames and 10 Hz.
func NewNode(in *odometry.Integrator, pub Publisher, clock timeutil.Clock, opts NodeOptions) *Node {
	if opts.FrameID == "" {
		opts.FrameID = nav.DefaultFrameID
	}
	if opts.ChildFrameID == "" {
		opts.ChildFrameID = nav.DefaultChildFrameID
	}
	if opts.UpdateRateHz <= 0 {
		opts.UpdateRateHz = 10
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Node{
		integrator: in,
		pub:        pub,
		clock:      clock,
		opts:       opts,
	}
}

// Mailbox is where sensor samples are delivered.
func (n *Node) Mailbox() *encoder.Mailbox { return &n.mailbox }

// HandleSensorState decodes a sensor_state payload into the mailbox.
func (n *Node) HandleSensorState(payload []byte) error {
	var s encoder.Sample
	if err := json.Unmarshal(payload, &s); err != nil {
		return fmt.Errorf("sensor_state unmarshal: %w", err)
	}
	n.mailbox.Store(s)
	return nil
}

// ResetPose moves the estimate to p. The next tick re-seeds the encoder
// baseline from whatever sample is current.
func (n *Node) ResetPose(p odometry.Pose) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.integrator.Reset(p)
	log.Printf("odometry: pose reset to x=%.3f y=%.3f heading=%.3f", p.X, p.Y, p.Heading)
}

// Pose returns the current estimate.
func (n *Node) Pose() odometry.Pose {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.integrator.Pose()
}

// Skipped is the number of ticks dropped because time did not advance.
func (n *Node) Skipped() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.skipped
}

// Tick runs one integration step at now and publishes the result. It reports
// whether a message was published. Before the first sample arrives it does
// nothing; a non-advancing clock yields odometry.ErrNonPositiveInterval.
func (n *Node) Tick(now time.Time) (bool, error) {
	sample, ok := n.mailbox.Load()
	if !ok {
		return false, nil
	}

	n.mu.Lock()
	step, err := n.integrator.Update(sample, now)
	if err != nil {
		if errors.Is(err, odometry.ErrNonPositiveInterval) {
			n.skipped++
		}
		n.mu.Unlock()
		return false, err
	}
	n.seq++
	msg := nav.FromStep(step, n.seq, n.opts.FrameID, n.opts.ChildFrameID)
	logNow := n.opts.LogInterval == 0 || now.Sub(n.lastLog) >= n.opts.LogInterval
	if logNow {
		n.lastLog = now
	}
	n.mu.Unlock()

	if logNow {
		log.Printf("odometry: [x: %.3f, y: %.3f, θ: %.3f] v=%.3f m/s w=%.3f rad/s",
			step.Pose.X, step.Pose.Y, step.Pose.Heading, step.Velocity.Linear, step.Velocity.Angular)
	}

	if err := n.pub.PublishOdometry(msg); err != nil {
		return false, err
	}
	return true, nil
}

// Run ticks at the configured rate until ctx is cancelled.
func (n *Node) Run(ctx context.Context) error {
	interval := time.Duration(float64(time.Second) / n.opts.UpdateRateHz)
	ticker := n.clock.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("odometry: update loop running at %.1f Hz", n.opts.UpdateRateHz)

	for {
		select {
		case <-ctx.Done():
			log.Println("odometry: update loop stopped")
			return nil
		case t := <-ticker.C():
			if _, err := n.Tick(t); err != nil {
				log.Printf("odometry: tick skipped: %v", err)
			}
		}
	}
}
