// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package encoder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSource_TicksFollowElapsedTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := newMockSource(800, -200, func() time.Time { return now })

	s, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.Left)
	assert.Equal(t, int64(0), s.Right)

	now = now.Add(1500 * time.Millisecond)
	s, err = src.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1200), s.Left)
	assert.Equal(t, int64(-300), s.Right)
	assert.Equal(t, "2026-03-01T12:00:01.5Z", s.Stamp)
}
