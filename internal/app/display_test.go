// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func litPixels(img *image1bit.VerticalLSB) int {
	n := 0
	for _, b := range img.Pix {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}

func TestRenderOdometry(t *testing.T) {
	waiting := renderOdometry(sampleOdometry(1, 0), false)
	live := renderOdometry(sampleOdometry(1, 12.345), true)

	assert.Equal(t, displayWidth, live.Bounds().Dx())
	assert.Equal(t, displayHeight, live.Bounds().Dy())
	assert.Positive(t, litPixels(waiting))
	assert.Positive(t, litPixels(live))
	assert.NotEqual(t, waiting.Pix, live.Pix)
}

func TestRenderSplash(t *testing.T) {
	assert.Positive(t, litPixels(renderSplash()))
}

func TestDisplayData(t *testing.T) {
	var d DisplayData
	_, have := d.snapshot()
	assert.False(t, have)

	d.set(sampleOdometry(3, 1))
	o, have := d.snapshot()
	assert.True(t, have)
	assert.Equal(t, uint64(3), o.Header.Seq)
}
