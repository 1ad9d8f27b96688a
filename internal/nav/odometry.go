// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nav

import (
	"time"

	"github.com/relabs-tech/wheel_odometry/internal/odometry"
)

// Frame names used when the config does not override them.
const (
	DefaultFrameID      = "odom"
	DefaultChildFrameID = "base_link"
)

// Odometry mirrors nav_msgs/Odometry and is published as JSON.
type Odometry struct {
	Header       Header          `json:"header"`
	ChildFrameID string          `json:"child_frame_id"`
	Pose         PoseStamped     `json:"pose"`
	Twist        TwistWithHeader `json:"twist"`
}

// Header is std_msgs/Header.
type Header struct {
	Seq     uint64 `json:"seq"`
	Stamp   string `json:"stamp"` // RFC3339Nano
	FrameID string `json:"frame_id"`
}

// PoseStamped carries the pose part of nav_msgs/Odometry.
type PoseStamped struct {
	Pose Pose `json:"pose"`
}

// Pose is geometry_msgs/Pose.
type Pose struct {
	Position    Point      `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// TwistWithHeader carries the twist part of nav_msgs/Odometry.
type TwistWithHeader struct {
	Twist Twist `json:"twist"`
}

// Twist is geometry_msgs/Twist, in the child frame.
type Twist struct {
	Linear  Vector3 `json:"linear"`
	Angular Vector3 `json:"angular"`
}

// Point is geometry_msgs/Point.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vector3 is geometry_msgs/Vector3.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FromStep builds the outbound message for one integrator step.
func FromStep(step odometry.Step, seq uint64, frameID, childFrameID string) Odometry {
	return Odometry{
		Header: Header{
			Seq:     seq,
			Stamp:   step.Stamp.UTC().Format(time.RFC3339Nano),
			FrameID: frameID,
		},
		ChildFrameID: childFrameID,
		Pose: PoseStamped{Pose: Pose{
			Position:    Point{X: step.Pose.X, Y: step.Pose.Y, Z: 0},
			Orientation: QuaternionFromYaw(step.Pose.Heading),
		}},
		Twist: TwistWithHeader{Twist: Twist{
			Linear:  Vector3{X: step.Velocity.Linear},
			Angular: Vector3{Z: step.Velocity.Angular},
		}},
	}
}

// Stamp parses the header timestamp.
func (o Odometry) Stamp() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, o.Header.Stamp)
}

// PlanarPose recovers x, y and heading from the message. The heading comes
// back from the quaternion, so it is always in (-pi, pi] even when the node
// publishes an unwrapped heading; full turns are not recoverable.
func (o Odometry) PlanarPose() odometry.Pose {
	return odometry.Pose{
		X:       o.Pose.Pose.Position.X,
		Y:       o.Pose.Pose.Position.Y,
		Heading: YawFromQuaternion(o.Pose.Pose.Orientation),
	}
}
