// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"time"

	"github.com/relabs-tech/wheel_odometry/internal/app"
	"github.com/relabs-tech/wheel_odometry/internal/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to configuration file")
	left := flag.Float64("left", 800, "left wheel ticks per second")
	right := flag.Float64("right", 1000, "right wheel ticks per second")
	interval := flag.Duration("interval", 33*time.Millisecond, "publish interval")
	flag.Parse()

	log.Println("starting mock encoder producer (mock → MQTT)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunMockEncoder(*left, *right, *interval); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
