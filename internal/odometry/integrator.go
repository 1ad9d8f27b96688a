// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package odometry integrates differential-drive wheel encoder ticks into a
// 2D pose estimate (dead reckoning).
package odometry

import (
	"errors"
	"math"
	"time"

	"github.com/relabs-tech/wheel_odometry/internal/encoder"
)

// ErrNonPositiveInterval is returned by Update when the timestamp does not
// advance past the previous update. The step is skipped and the state is
// left untouched, so the motion is picked up by the next valid call.
var ErrNonPositiveInterval = errors.New("odometry: non-positive time step")

// Pose is the planar robot pose in the odometry frame.
type Pose struct {
	X       float64 `json:"x"`       // m
	Y       float64 `json:"y"`       // m
	Heading float64 `json:"heading"` // rad
}

// Velocity is the instantaneous body velocity over the last step.
type Velocity struct {
	Linear  float64 `json:"linear"`  // m/s
	Angular float64 `json:"angular"` // rad/s
}

// Step is the result of one Update.
type Step struct {
	Stamp    time.Time
	Pose     Pose
	Velocity Velocity

	// Seeded is true for the call that recorded the first encoder baseline.
	Seeded bool
	// DeltaCenter and DeltaHeading are the raw increments of this step.
	DeltaCenter  float64
	DeltaHeading float64
}

// Integrator holds the dead-reckoning state. It is not safe for concurrent
// use; the owner serializes calls (see app.Node).
type Integrator struct {
	params    Params
	tickToRad float64

	pose Pose

	haveBaseline bool
	lastLeft     int64
	lastRight    int64
	lastUpdate   time.Time
}

// NewIntegrator returns an integrator at pose (0, 0, 0) with no baseline.
func NewIntegrator(p Params) (*Integrator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Mode == "" {
		p.Mode = IntegratePostHeading
	}
	return &Integrator{
		params:    p,
		tickToRad: p.TickToRad(),
	}, nil
}

// Params returns the parameters the integrator was built with.
func (in *Integrator) Params() Params { return in.params }

// Pose returns the current pose estimate.
func (in *Integrator) Pose() Pose { return in.pose }

// HasBaseline reports whether an encoder sample has been observed.
func (in *Integrator) HasBaseline() bool { return in.haveBaseline }

// Reset moves the estimate to pose and forgets the encoder baseline. The next
// Update re-seeds from its sample.
func (in *Integrator) Reset(pose Pose) {
	in.pose = pose
	in.haveBaseline = false
	in.lastLeft, in.lastRight = 0, 0
	in.lastUpdate = time.Time{}
}

// Update advances the pose with the encoder sample observed at now.
//
// The first call only records the baseline and returns zero motion. When now
// is not after the previous update, ErrNonPositiveInterval is returned together
// with the unchanged pose.
func (in *Integrator) Update(s encoder.Sample, now time.Time) (Step, error) {
	if !in.haveBaseline {
		in.haveBaseline = true
		in.lastLeft, in.lastRight = s.Left, s.Right
		in.lastUpdate = now
		return Step{Stamp: now, Pose: in.pose, Seeded: true}, nil
	}

	dt := now.Sub(in.lastUpdate).Seconds()
	if dt <= 0 {
		return Step{Stamp: now, Pose: in.pose}, ErrNonPositiveInterval
	}

	dLeft := in.tickDelta(s.Left, in.lastLeft)
	dRight := in.tickDelta(s.Right, in.lastRight)

	arcLeft := float64(dLeft) * in.tickToRad * in.params.WheelRadius
	arcRight := float64(dRight) * in.tickToRad * in.params.WheelRadius

	dCenter := (arcRight + arcLeft) / 2
	dHeading := (arcRight - arcLeft) / in.params.WheelSeparation

	// The heading advances before the displacement is projected.
	prevHeading := in.pose.Heading
	in.pose.Heading += dHeading

	projection := in.pose.Heading
	if in.params.Mode == IntegrateMidpoint {
		projection = prevHeading + dHeading/2
	}
	in.pose.X += dCenter * math.Cos(projection)
	in.pose.Y += dCenter * math.Sin(projection)

	if in.params.NormalizeHeading {
		in.pose.Heading = NormalizeAngle(in.pose.Heading)
	}

	in.lastLeft, in.lastRight = s.Left, s.Right
	in.lastUpdate = now

	return Step{
		Stamp: now,
		Pose:  in.pose,
		Velocity: Velocity{
			Linear:  dCenter / dt,
			Angular: dHeading / dt,
		},
		DeltaCenter:  dCenter,
		DeltaHeading: dHeading,
	}, nil
}

// tickDelta is cur-prev, folded into the signed range of the hardware counter
// when EncoderBits is set.
func (in *Integrator) tickDelta(cur, prev int64) int64 {
	switch in.params.EncoderBits {
	case 16:
		return int64(int16(cur - prev))
	case 32:
		return int64(int32(cur - prev))
	default:
		return cur - prev
	}
}

// NormalizeAngle wraps an angle in radians into (-pi, pi].
func NormalizeAngle(rad float64) float64 {
	a := math.Atan2(math.Sin(rad), math.Cos(rad))
	if a == -math.Pi {
		a = math.Pi
	}
	return a
}
