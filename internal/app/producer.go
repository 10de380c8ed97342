package app

import (
	"encoding/json"
	"log"
	"time"

	"github.com/relabs-tech/phone_teleop/internal/config"
	"github.com/relabs-tech/phone_teleop/internal/orientation"
)

// RunMockProducer publishes synthetic phone messages to the raw phone topic,
// standing in for a real phone during development.
func RunMockProducer() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	pub := mqttPublisher{client: client}

	src := orientation.NewMockSource(cfg.MockFPS)
	ticker := time.NewTicker(time.Duration(cfg.ProducerInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("producer: connected to MQTT, starting publish loop")

	sent := 0
	for t := range ticker.C {
		m, err := src.Next()
		if err != nil {
			log.Printf("producer: mock source error: %v", err)
			continue
		}

		payload, err := json.Marshal(m)
		if err != nil {
			log.Printf("producer: json marshal error: %v", err)
			continue
		}
		if err := pub.Publish(cfg.TopicPhoneRaw, payload); err != nil {
			log.Printf("producer: %v", err)
			continue
		}

		sent++
		if sent%100 == 0 {
			log.Printf("%s producer: published %d messages, last %+v", t.Format(time.RFC3339), sent, m)
		}
	}
	return nil
}
