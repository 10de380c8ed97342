// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/phone_teleop/internal/actuator"
	"github.com/relabs-tech/phone_teleop/internal/config"
	"github.com/relabs-tech/phone_teleop/internal/control"
	"github.com/relabs-tech/phone_teleop/internal/orientation"
	"github.com/relabs-tech/phone_teleop/internal/posemath"
)

// Commands accepted on the command topic.
const (
	CommandCalibrate = "calibrate"
	CommandReset     = "reset"
)

// ArmMessage is a forearm orientation published by the robot, scalar-first.
type ArmMessage struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// WristSink receives wrist deltas, e.g. the serial actuator link.
type WristSink interface {
	Send(control.Deltas) error
}

// Bridge converts phone poses into world poses and wrist deltas.
type Bridge struct {
	topicPose  string
	topicWrist string

	conv    *orientation.Converter
	smooth  *orientation.Smoother
	session *control.Session
	pub     Publisher
	sink    WristSink // optional
}

// NewBridge wires a bridge from configuration. sink may be nil.
func NewBridge(cfg *config.Config, pub Publisher, sink WristSink) (*Bridge, error) {
	smooth, err := orientation.NewSmoother(cfg.SmoothingAlpha)
	if err != nil {
		return nil, err
	}
	return &Bridge{
		topicPose:  cfg.TopicPoseWorld,
		topicWrist: cfg.TopicWrist,
		conv:       orientation.NewConverter(cfg.InitialRollDeg, cfg.InitialPitchDeg, cfg.InitialYawDeg),
		smooth:     smooth,
		session: control.NewSession(control.Limits{
			MaxPitchRad: posemath.Radians(cfg.WristMaxPitchDeg),
			MaxRollRad:  posemath.Radians(cfg.WristMaxRollDeg),
		}),
		pub:  pub,
		sink: sink,
	}, nil
}

// Session exposes the wrist control session.
func (b *Bridge) Session() *control.Session {
	return b.session
}

// HandlePhone processes one phone message received at the given instant.
func (b *Bridge) HandlePhone(m orientation.Message, at time.Time) error {
	s, err := b.conv.Convert(m, at)
	if err != nil {
		return err
	}
	s = b.smooth.Add(s)

	if err := publishJSON(b.pub, b.topicPose, orientation.ToDisplay(s)); err != nil {
		return err
	}

	b.session.UpdatePhone(s.Rotation(), s.At)

	d, err := b.session.Deltas()
	if errors.Is(err, control.ErrNotCalibrated) {
		return nil
	}
	if err != nil {
		return err
	}
	return b.emitWrist(d)
}

func (b *Bridge) emitWrist(d control.Deltas) error {
	if err := publishJSON(b.pub, b.topicWrist, d); err != nil {
		return err
	}
	if b.sink != nil {
		if err := b.sink.Send(d); err != nil {
			return err
		}
	}
	return nil
}

// HandleArm records a forearm orientation.
func (b *Bridge) HandleArm(q quat.Number) error {
	if quat.Abs(q) == 0 {
		return errors.New("zero arm quaternion")
	}
	b.session.UpdateArm(posemath.RotationFromQuat(q))
	return nil
}

// HandleCommand applies a session command.
func (b *Bridge) HandleCommand(cmd string) error {
	switch strings.TrimSpace(strings.ToLower(cmd)) {
	case CommandCalibrate:
		snap, err := b.session.Calibrate()
		if err != nil {
			return fmt.Errorf("calibrate: %w", err)
		}
		log.Printf("bridge: calibrated wrist session %s", snap.ID)
	case CommandReset:
		b.session.Reset()
		b.smooth.Reset()
		log.Println("bridge: wrist session reset")
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// RunBridge runs the phone-to-robot bridge until interrupted.
func RunBridge() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDBridge)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	var link *actuator.Link
	var sink WristSink
	if cfg.ActuatorSerialPort != "" {
		link, err = actuator.OpenSerial(cfg.ActuatorSerialPort, cfg.ActuatorBaudRate)
		if err != nil {
			return err
		}
		defer link.Close()
		sink = link
	}

	bridge, err := NewBridge(cfg, mqttPublisher{client: client}, sink)
	if err != nil {
		return err
	}

	if link != nil {
		go func() {
			err := link.ReadArm(func(q quat.Number) {
				if err := bridge.HandleArm(q); err != nil {
					log.Printf("bridge: serial arm: %v", err)
				}
			})
			if err != nil {
				log.Printf("bridge: serial arm reader stopped: %v", err)
			}
		}()
	}

	if err := subscribe(client, cfg.TopicPhoneRaw, func(_ mqtt.Client, msg mqtt.Message) {
		m, err := orientation.DecodeMessage(msg.Payload())
		if err != nil {
			log.Printf("bridge: phone message: %v", err)
			return
		}
		if err := bridge.HandlePhone(m, time.Now()); err != nil {
			log.Printf("bridge: %v", err)
		}
	}); err != nil {
		return err
	}

	if err := subscribe(client, cfg.TopicArmOrientation, func(_ mqtt.Client, msg mqtt.Message) {
		var a ArmMessage
		if err := json.Unmarshal(msg.Payload(), &a); err != nil {
			log.Printf("bridge: arm unmarshal error: %v", err)
			return
		}
		if err := bridge.HandleArm(quat.Number{Real: a.W, Imag: a.X, Jmag: a.Y, Kmag: a.Z}); err != nil {
			log.Printf("bridge: arm: %v", err)
		}
	}); err != nil {
		return err
	}

	if err := subscribe(client, cfg.TopicCommand, func(_ mqtt.Client, msg mqtt.Message) {
		if err := bridge.HandleCommand(string(msg.Payload())); err != nil {
			log.Printf("bridge: command: %v", err)
		}
	}); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/pose", bridge.ServeWS)
	srv := &http.Server{Addr: cfg.WSListenAddr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("bridge: phone websocket listening on %s/ws/pose", cfg.WSListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Println("bridge: shutting down")
		return srv.Close()
	case err := <-errCh:
		return err
	}
}
