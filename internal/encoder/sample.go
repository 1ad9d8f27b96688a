// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package encoder

// Sample is one sensor_state reading: cumulative tick counts of both wheels.
type Sample struct {
	Left  int64 `json:"left_encoder"`
	Right int64 `json:"right_encoder"`

	Stamp string `json:"stamp,omitempty"` // RFC3339Nano, informational only
}

// Source is anything that can provide encoder samples over time.
type Source interface {
	Next() (Sample, error)
}
