// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/wheel_odometry/internal/encoder"
)

func TestBridgeSentences(t *testing.T) {
	input := strings.Join([]string{
		"OpenCR boot v1.4",
		"",
		encoder.FormatSentence(encoder.Sample{Left: 10, Right: 12}),
		"$RBENC,11,13*00",
		"$RBE",
		encoder.FormatSentence(encoder.Sample{Left: 20, Right: 24}) + "\r",
	}, "\n") + "\n"

	var got []encoder.Sample
	stats, err := bridgeSentences(strings.NewReader(input), func(s encoder.Sample) error {
		got = append(got, s)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.published)
	assert.Equal(t, 2, stats.rejected)
	require.Len(t, got, 2)
	assert.Equal(t, int64(10), got[0].Left)
	assert.Equal(t, int64(24), got[1].Right)
	assert.NotEmpty(t, got[0].Stamp)
}

func TestBridgeSentences_PublishErrorsAreNotFatal(t *testing.T) {
	input := encoder.FormatSentence(encoder.Sample{Left: 1, Right: 1}) + "\n" +
		encoder.FormatSentence(encoder.Sample{Left: 2, Right: 2}) + "\n"

	calls := 0
	stats, err := bridgeSentences(strings.NewReader(input), func(encoder.Sample) error {
		calls++
		if calls == 1 {
			return errors.New("not connected")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, stats.published)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("device unplugged") }

func TestBridgeSentences_ReadError(t *testing.T) {
	_, err := bridgeSentences(failingReader{}, func(encoder.Sample) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device unplugged")
}
