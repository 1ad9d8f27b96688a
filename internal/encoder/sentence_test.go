// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package encoder

import (
	"testing"

	nmea "github.com/adrianmo/go-nmea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSentence(t *testing.T) {
	line := FormatSentence(Sample{Left: 120, Right: -45})
	assert.Equal(t, "$RBENC,120,-45*"+nmea.Checksum("RBENC,120,-45"), line)
}

func TestParseSentence_RoundTrip(t *testing.T) {
	for _, s := range []Sample{
		{Left: 0, Right: 0},
		{Left: 4096, Right: 8192},
		{Left: -32768, Right: 32767},
		{Left: 1 << 40, Right: -(1 << 40)},
	} {
		got, err := ParseSentence(FormatSentence(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestParseSentence_Errors(t *testing.T) {
	gll := "GPGLL,3723.2475,N,12158.3416,W,161229.487,A,A"

	for _, tc := range []struct {
		name string
		line string
	}{
		{"bad checksum", "$RBENC,10,20*00"},
		{"missing field", "$RBENC,10*" + nmea.Checksum("RBENC,10")},
		{"not a number", "$RBENC,ten,20*" + nmea.Checksum("RBENC,ten,20")},
		{"other sentence type", "$" + gll + "*" + nmea.Checksum(gll)},
		{"no prefix", "RBENC,10,20"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSentence(tc.line)
			assert.Error(t, err)
		})
	}
}
