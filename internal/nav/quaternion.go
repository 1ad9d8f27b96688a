// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package nav

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Quaternion is geometry_msgs/Quaternion.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// QuaternionFromYaw is the yaw-only Euler to quaternion conversion:
// (0, 0, sin(yaw/2), cos(yaw/2)).
func QuaternionFromYaw(yaw float64) Quaternion {
	half := yaw / 2
	return fromNumber(quat.Number{Real: math.Cos(half), Kmag: math.Sin(half)})
}

// YawFromQuaternion extracts the rotation about z:
// atan2(2(wz + xy), 1 - 2(y² + z²)). The input does not need to be normalized.
func YawFromQuaternion(q Quaternion) float64 {
	n := q.number()
	if a := quat.Abs(n); a > 0 && a != 1 {
		n = quat.Scale(1/a, n)
	}
	return math.Atan2(2*(n.Real*n.Kmag+n.Imag*n.Jmag), 1-2*(n.Jmag*n.Jmag+n.Kmag*n.Kmag))
}

// Rotate applies q to the planar vector (x, y, 0) and returns the rotated
// x and y.
func (q Quaternion) Rotate(x, y float64) (float64, float64) {
	n := q.number()
	v := quat.Number{Imag: x, Jmag: y}
	r := quat.Mul(quat.Mul(n, v), quat.Conj(n))
	return r.Imag, r.Jmag
}

func (q Quaternion) number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func fromNumber(n quat.Number) Quaternion {
	return Quaternion{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}
