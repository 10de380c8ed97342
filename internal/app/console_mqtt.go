package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/phone_teleop/internal/config"
	"github.com/relabs-tech/phone_teleop/internal/control"
	"github.com/relabs-tech/phone_teleop/internal/orientation"
	"github.com/relabs-tech/phone_teleop/internal/posemath"
)

func formatPose(d orientation.Display) string {
	return fmt.Sprintf(
		"[POSE]  x=%7.3f y=%7.3f z=%7.3f  ROLL=%7.2f PITCH=%7.2f YAW=%7.2f  fps=%4.1f",
		d.Position[0], d.Position[1], d.Position[2],
		d.EulerDeg[0], d.EulerDeg[1], d.EulerDeg[2],
		d.FPS,
	)
}

func formatWrist(d control.Deltas) string {
	return fmt.Sprintf(
		"[WRIST] pitch=%7.2f° roll=%7.2f°  (%+.4f, %+.4f rad)  cal=%s",
		posemath.Degrees(d.PitchRad), posemath.Degrees(d.RollRad),
		d.PitchRad, d.RollRad,
		d.CalibrationID.String()[:8],
	)
}

// RunConsoleMQTT prints world poses and wrist deltas as they are published.
func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}

	if err := subscribe(client, cfg.TopicPoseWorld, func(_ mqtt.Client, msg mqtt.Message) {
		var d orientation.Display
		if err := json.Unmarshal(msg.Payload(), &d); err != nil {
			log.Printf("console: pose unmarshal error: %v", err)
			return
		}
		fmt.Println(formatPose(d))
	}); err != nil {
		return err
	}

	if err := subscribe(client, cfg.TopicWrist, func(_ mqtt.Client, msg mqtt.Message) {
		var d control.Deltas
		if err := json.Unmarshal(msg.Payload(), &d); err != nil {
			log.Printf("console: wrist unmarshal error: %v", err)
			return
		}
		fmt.Println(formatWrist(d))
	}); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
