// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package encoder

import (
	"time"
)

type mockSource struct {
	start time.Time
	now   func() time.Time

	leftTicksPerSec  float64
	rightTicksPerSec float64
}

// NewMockSource creates a source whose wheels turn at constant tick rates,
// which drives the robot along a circular arc (or straight when equal).
func NewMockSource(leftTicksPerSec, rightTicksPerSec float64) Source {
	return newMockSource(leftTicksPerSec, rightTicksPerSec, time.Now)
}

func newMockSource(left, right float64, now func() time.Time) *mockSource {
	return &mockSource{
		start:            now(),
		now:              now,
		leftTicksPerSec:  left,
		rightTicksPerSec: right,
	}
}

func (m *mockSource) Next() (Sample, error) {
	t := m.now()
	elapsed := t.Sub(m.start).Seconds()

	return Sample{
		Left:  int64(elapsed * m.leftTicksPerSec),
		Right: int64(elapsed * m.rightTicksPerSec),
		Stamp: t.UTC().Format(time.RFC3339Nano),
	}, nil
}
