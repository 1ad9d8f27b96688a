// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nav

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/wheel_odometry/internal/odometry"
)

func testStep() odometry.Step {
	return odometry.Step{
		Stamp:    time.Date(2026, 3, 1, 12, 0, 0, 250_000_000, time.FixedZone("CET", 3600)),
		Pose:     odometry.Pose{X: 1.5, Y: -0.25, Heading: math.Pi / 2},
		Velocity: odometry.Velocity{Linear: 0.2, Angular: -0.1},
	}
}

func TestFromStep(t *testing.T) {
	msg := FromStep(testStep(), 7, DefaultFrameID, DefaultChildFrameID)

	assert.Equal(t, uint64(7), msg.Header.Seq)
	assert.Equal(t, "odom", msg.Header.FrameID)
	assert.Equal(t, "base_link", msg.ChildFrameID)
	assert.Equal(t, "2026-03-01T11:00:00.25Z", msg.Header.Stamp)

	pos := msg.Pose.Pose.Position
	assert.Equal(t, 1.5, pos.X)
	assert.Equal(t, -0.25, pos.Y)
	assert.Zero(t, pos.Z)

	assert.Equal(t, Vector3{X: 0.2}, msg.Twist.Twist.Linear)
	assert.Equal(t, Vector3{Z: -0.1}, msg.Twist.Twist.Angular)

	stamp, err := msg.Stamp()
	require.NoError(t, err)
	assert.True(t, stamp.Equal(testStep().Stamp))
}

func TestPlanarPose(t *testing.T) {
	p := FromStep(testStep(), 1, "odom", "base_link").PlanarPose()
	assert.InDelta(t, 1.5, p.X, 1e-12)
	assert.InDelta(t, -0.25, p.Y, 1e-12)
	assert.InDelta(t, math.Pi/2, p.Heading, 1e-12)
}

func TestOdometry_JSONFieldNames(t *testing.T) {
	raw, err := json.Marshal(FromStep(testStep(), 3, "odom", "base_link"))
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))

	assert.Contains(t, generic, "child_frame_id")
	header := generic["header"].(map[string]any)
	assert.Equal(t, "odom", header["frame_id"])
	assert.EqualValues(t, 3, header["seq"])

	pose := generic["pose"].(map[string]any)["pose"].(map[string]any)
	assert.Contains(t, pose, "position")
	assert.Contains(t, pose["orientation"], "w")

	twist := generic["twist"].(map[string]any)["twist"].(map[string]any)
	assert.Contains(t, twist, "linear")
	assert.Contains(t, twist, "angular")
}

func TestPlanarPose_HeadingIsWrapped(t *testing.T) {
	step := testStep()
	step.Pose.Heading = 2*math.Pi + 3*math.Pi/2

	p := FromStep(step, 1, "odom", "base_link").PlanarPose()
	assert.InDelta(t, -math.Pi/2, p.Heading, 1e-9)
}
