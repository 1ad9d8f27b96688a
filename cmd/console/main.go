// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/wheel_odometry/internal/app"
	"github.com/relabs-tech/wheel_odometry/internal/config"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config file")
	left := flag.Float64("left", 800, "simulated left wheel ticks per second")
	right := flag.Float64("right", 1000, "simulated right wheel ticks per second")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	log.Println("starting wheel-odometry (mock console)")

	if err := app.RunMockConsole(*left, *right); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
