// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/wheel_odometry/internal/bus"
	"github.com/relabs-tech/wheel_odometry/internal/config"
	"github.com/relabs-tech/wheel_odometry/internal/encoder"
)

// edgeTimeout bounds WaitForEdge so watchers notice shutdown.
const edgeTimeout = 200 * time.Millisecond

// wheelEncoder is one quadrature encoder wired to two GPIO pins.
type wheelEncoder struct {
	name string
	a, b gpio.PinIO

	mu  sync.Mutex // serializes Feed between the A and B watchers
	dec *encoder.Quadrature
}

func openWheelEncoder(name, pinA, pinB string, inverted bool) (*wheelEncoder, error) {
	a := gpioreg.ByName(pinA)
	if a == nil {
		return nil, fmt.Errorf("%s encoder: pin A %q not found", name, pinA)
	}
	b := gpioreg.ByName(pinB)
	if b == nil {
		return nil, fmt.Errorf("%s encoder: pin B %q not found", name, pinB)
	}
	for _, p := range []gpio.PinIO{a, b} {
		if err := p.In(gpio.PullUp, gpio.BothEdges); err != nil {
			return nil, fmt.Errorf("%s encoder: configure %s: %w", name, p.Name(), err)
		}
	}

	return &wheelEncoder{
		name: name,
		a:    a,
		b:    b,
		dec:  encoder.NewQuadrature(a.Read() == gpio.High, b.Read() == gpio.High, inverted),
	}, nil
}

// watch feeds the decoder on every edge of pin until ctx is done.
func (w *wheelEncoder) watch(ctx context.Context, wg *sync.WaitGroup, pin gpio.PinIO) {
	defer wg.Done()
	for ctx.Err() == nil {
		if !pin.WaitForEdge(edgeTimeout) {
			continue
		}
		w.mu.Lock()
		w.dec.Feed(w.a.Read() == gpio.High, w.b.Read() == gpio.High)
		w.mu.Unlock()
	}
}

// RunGPIOEncoder decodes two quadrature encoders on GPIO pins and publishes
// their counts as sensor_state at ENCODER_PUBLISH_INTERVAL.
func RunGPIOEncoder() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}

	// The left motor is mounted mirrored, so forward motion counts down.
	left, err := openWheelEncoder("left", cfg.EncoderLeftPinA, cfg.EncoderLeftPinB, true)
	if err != nil {
		return err
	}
	right, err := openWheelEncoder("right", cfg.EncoderRightPinA, cfg.EncoderRightPinB, false)
	if err != nil {
		return err
	}
	log.Printf("gpio_encoder: left on %s/%s, right on %s/%s",
		cfg.EncoderLeftPinA, cfg.EncoderLeftPinB, cfg.EncoderRightPinA, cfg.EncoderRightPinB)

	client, err := bus.Connect(cfg.MQTTBroker, cfg.MQTTClientIDGPIO)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for _, w := range []*wheelEncoder{left, right} {
		wg.Add(2)
		go w.watch(ctx, &wg, w.a)
		go w.watch(ctx, &wg, w.b)
	}
	defer wg.Wait()

	ms := cfg.EncoderPublishInterval
	if ms <= 0 {
		ms = 20
	}
	ticker := time.NewTicker(time.Duration(ms) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("gpio_encoder: stopping (decode errors left=%d right=%d)",
				left.dec.Errors(), right.dec.Errors())
			return nil
		case t := <-ticker.C:
			s := encoder.Sample{
				Left:  left.dec.Count(),
				Right: right.dec.Count(),
				Stamp: t.UTC().Format(time.RFC3339Nano),
			}
			if err := client.PublishJSON(cfg.TopicSensorState, false, s); err != nil {
				log.Printf("gpio_encoder: %v", err)
			}
		}
	}
}
