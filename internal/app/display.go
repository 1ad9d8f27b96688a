// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"
	"log"
	"math"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/wheel_odometry/internal/bus"
	"github.com/relabs-tech/wheel_odometry/internal/config"
	"github.com/relabs-tech/wheel_odometry/internal/nav"
)

const (
	displayWidth  = 128
	displayHeight = 64
)

// DisplayData holds the latest odometry for the OLED.
type DisplayData struct {
	mu   sync.RWMutex
	odom nav.Odometry
	have bool
}

func (d *DisplayData) set(o nav.Odometry) {
	d.mu.Lock()
	d.odom = o
	d.have = true
	d.mu.Unlock()
}

func (d *DisplayData) snapshot() (nav.Odometry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.odom, d.have
}

// RunDisplay shows the current pose on an SSD1306 OLED.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	i2cBus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer i2cBus.Close()

	dev, err := ssd1306.NewI2C(i2cBus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: initialized")

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	client, err := bus.Connect(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := bus.SubscribeJSON(client, cfg.TopicOdometry, data.set); err != nil {
		return fmt.Errorf("failed to subscribe for display: %w", err)
	}

	ms := cfg.DisplayUpdateInterval
	if ms <= 0 {
		ms = 200
	}
	ticker := time.NewTicker(time.Duration(ms) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		odom, have := data.snapshot()
		if err := dev.Draw(dev.Bounds(), renderOdometry(odom, have), image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func newDisplayImage() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func renderOdometry(o nav.Odometry, haveData bool) *image1bit.VerticalLSB {
	img, drawer := newDisplayImage()

	if !haveData {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawString("Odometry")
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawString("Waiting...")
		return img
	}

	p := o.PlanarPose()
	t := o.Twist.Twist

	drawer.Dot = fixed.P(0, 13)
	drawer.DrawString(fmt.Sprintf("X: %8.3f m", p.X))

	drawer.Dot = fixed.P(0, 26)
	drawer.DrawString(fmt.Sprintf("Y: %8.3f m", p.Y))

	drawer.Dot = fixed.P(0, 39)
	drawer.DrawString(fmt.Sprintf("H: %7.1f deg", p.Heading*180/math.Pi))

	drawer.Dot = fixed.P(0, 52)
	drawer.DrawString(fmt.Sprintf("v%5.2f w%5.2f", t.Linear.X, t.Angular.Z))

	return img
}

func renderSplash() *image1bit.VerticalLSB {
	img, drawer := newDisplayImage()

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawString("Wheel Odom")

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawString("Waiting for")

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawString("ticks")

	return img
}
