// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"

	"github.com/relabs-tech/phone_teleop/internal/app"
	"github.com/relabs-tech/phone_teleop/internal/config"
)

func main() {
	log.Println("starting phone-teleop bridge")

	// Load configuration
	if err := config.InitGlobal("teleop_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunBridge(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
