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
	log.Println("starting phone-teleop web server (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal("teleop_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	log.Println("Note: wrist values appear once the bridge is calibrated (publish \"calibrate\" on the command topic)")

	if err := app.RunWeb(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
