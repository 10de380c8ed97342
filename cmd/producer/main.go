package main

import (
	"log"

	"github.com/relabs-tech/phone_teleop/internal/app"
	"github.com/relabs-tech/phone_teleop/internal/config"
)

func main() {
	log.Println("starting phone-teleop MQTT producer (mock phone)")

	// Load configuration
	if err := config.InitGlobal("teleop_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunMockProducer(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
