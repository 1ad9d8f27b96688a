// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package encoder

import "sync/atomic"

// invalid marks a transition that skipped a Gray code state (both channels
// changed between two reads).
const invalid = 2

// transitions is indexed by prev<<2 | cur, with states encoded as A<<1 | B.
var transitions = [16]int8{
	0, 1, -1, invalid,
	-1, 0, invalid, 1,
	1, invalid, 0, -1,
	invalid, -1, 1, 0,
}

// Quadrature decodes an A/B channel pair into a signed tick count, counting
// every edge of both channels (4x decoding).
//
// Feed is called from the goroutine watching the pins; Count and Errors may
// be read from anywhere.
type Quadrature struct {
	state    uint8
	inverted bool
	count    atomic.Int64
	errors   atomic.Uint64
}

// NewQuadrature returns a decoder starting from the given channel levels.
// inverted flips the sign, for the wheel mounted mirrored.
func NewQuadrature(a, b bool, inverted bool) *Quadrature {
	return &Quadrature{state: levels(a, b), inverted: inverted}
}

func levels(a, b bool) uint8 {
	var s uint8
	if a {
		s |= 2
	}
	if b {
		s |= 1
	}
	return s
}

// Feed applies the current channel levels.
func (q *Quadrature) Feed(a, b bool) {
	cur := levels(a, b)
	step := transitions[q.state<<2|cur]
	q.state = cur
	switch step {
	case 0:
	case invalid:
		q.errors.Add(1)
	default:
		if q.inverted {
			step = -step
		}
		q.count.Add(int64(step))
	}
}

// Count is the accumulated tick count.
func (q *Quadrature) Count() int64 { return q.count.Load() }

// Errors is the number of skipped-state transitions seen.
func (q *Quadrature) Errors() uint64 { return q.errors.Load() }
