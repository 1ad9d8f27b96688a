// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package odometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParams is returned (wrapped) by Params.Validate.
var ErrInvalidParams = errors.New("invalid odometry parameters")

// IntegrationMode selects which heading resolves the x/y displacement.
type IntegrationMode string

const (
	// IntegratePostHeading advances the heading first and projects the
	// displacement onto the new heading.
	IntegratePostHeading IntegrationMode = "post"
	// IntegrateMidpoint projects the displacement onto the average of the
	// old and new heading.
	IntegrateMidpoint IntegrationMode = "midpoint"
)

// Default robot geometry, TurtleBot3 Burger.
const (
	DefaultTicksPerRevolution = 4096
	DefaultWheelRadius        = 0.033 // m
	DefaultWheelSeparation    = 0.160 // m
)

// Params are fixed at construction of an Integrator.
type Params struct {
	TicksPerRevolution int
	WheelRadius        float64 // m
	WheelSeparation    float64 // m, track width

	Mode             IntegrationMode // empty means IntegratePostHeading
	NormalizeHeading bool            // wrap heading into (-pi, pi] after each step
	EncoderBits      int             // 0, 16 or 32; width of the hardware tick counter
}

// DefaultParams returns the TurtleBot3 Burger geometry with unwrapped heading
// and post-heading integration.
func DefaultParams() Params {
	return Params{
		TicksPerRevolution: DefaultTicksPerRevolution,
		WheelRadius:        DefaultWheelRadius,
		WheelSeparation:    DefaultWheelSeparation,
		Mode:               IntegratePostHeading,
	}
}

// TickToRad is the wheel rotation in radians represented by one tick.
func (p Params) TickToRad() float64 {
	return 2 * math.Pi / float64(p.TicksPerRevolution)
}

// Validate reports whether the parameters describe a usable robot.
func (p Params) Validate() error {
	if p.TicksPerRevolution <= 0 {
		return fmt.Errorf("%w: ticks per revolution must be positive, got %d", ErrInvalidParams, p.TicksPerRevolution)
	}
	if !(p.WheelRadius > 0) || math.IsInf(p.WheelRadius, 0) {
		return fmt.Errorf("%w: wheel radius must be positive and finite, got %g", ErrInvalidParams, p.WheelRadius)
	}
	if !(p.WheelSeparation > 0) || math.IsInf(p.WheelSeparation, 0) {
		return fmt.Errorf("%w: wheel separation must be positive and finite, got %g", ErrInvalidParams, p.WheelSeparation)
	}
	switch p.Mode {
	case "", IntegratePostHeading, IntegrateMidpoint:
	default:
		return fmt.Errorf("%w: unknown integration mode %q", ErrInvalidParams, p.Mode)
	}
	switch p.EncoderBits {
	case 0, 16, 32:
	default:
		return fmt.Errorf("%w: encoder bits must be 0, 16 or 32, got %d", ErrInvalidParams, p.EncoderBits)
	}
	return nil
}
