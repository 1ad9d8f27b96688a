// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/wheel_odometry/internal/bus"
	"github.com/relabs-tech/wheel_odometry/internal/config"
	"github.com/relabs-tech/wheel_odometry/internal/nav"
	"github.com/relabs-tech/wheel_odometry/internal/recorder"
)

// RunRecorder stores every odometry message in a new recorder session until
// SIGINT/SIGTERM, then logs the distance travelled.
func RunRecorder(note string) error {
	cfg := config.Get()

	store, err := recorder.Open(cfg.RecorderDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sessionID, err := store.StartSession(note, time.Now())
	if err != nil {
		return err
	}
	log.Printf("recorder: session %s started in %s", sessionID, cfg.RecorderDBPath)

	// Messages arrive on the paho goroutine; inserts happen on this one.
	records := make(chan nav.Odometry, 64)

	client, err := bus.Connect(cfg.MQTTBroker, cfg.MQTTClientIDRecorder)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := bus.SubscribeJSON(client, cfg.TopicOdometry, func(o nav.Odometry) {
		select {
		case records <- o:
		default:
			log.Printf("recorder: dropping seq %d, writer behind", o.Header.Seq)
		}
	}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	written := 0
	for {
		select {
		case <-ctx.Done():
			track, err := store.Track(sessionID)
			if err != nil {
				return err
			}
			log.Printf("recorder: session %s closed, %d points, %.3f m travelled",
				sessionID, written, recorder.PathLength(track))
			return nil
		case o := <-records:
			if err := store.Record(sessionID, o); err != nil {
				log.Printf("recorder: %v", err)
				continue
			}
			written++
		}
	}
}
