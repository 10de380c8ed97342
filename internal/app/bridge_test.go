// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"

	"github.com/relabs-tech/phone_teleop/internal/config"
	"github.com/relabs-tech/phone_teleop/internal/control"
	"github.com/relabs-tech/phone_teleop/internal/orientation"
	"github.com/relabs-tech/phone_teleop/internal/posemath"
)

type published struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{topic: topic, payload: payload})
	return nil
}

func (p *fakePublisher) on(topic string) [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out [][]byte
	for _, m := range p.msgs {
		if m.topic == topic {
			out = append(out, m.payload)
		}
	}
	return out
}

type fakeSink struct {
	mu   sync.Mutex
	sent []control.Deltas
}

func (s *fakeSink) Send(d control.Deltas) error {
	s.mu.Lock()
	s.sent = append(s.sent, d)
	s.mu.Unlock()
	return nil
}

func newTestBridge(t *testing.T, sink WristSink) (*Bridge, *fakePublisher, *config.Config) {
	t.Helper()
	cfg := config.Default()
	pub := &fakePublisher{}
	b, err := NewBridge(cfg, pub, sink)
	require.NoError(t, err)
	return b, pub, cfg
}

// phoneAboutRight is a phone message rotated about the phone's right axis.
func phoneAboutRight(deg float64) orientation.Message {
	half := posemath.Radians(deg) / 2
	return orientation.Message{
		Orientation: orientation.Quaternion{X: math.Sin(half), W: math.Cos(half)},
		FPS:         30,
	}
}

func TestBridgePublishesPoseBeforeCalibration(t *testing.T) {
	sink := &fakeSink{}
	b, pub, cfg := newTestBridge(t, sink)

	at := time.UnixMilli(1700000000123)
	m := phoneAboutRight(0)
	m.Position = orientation.Position{X: 0.1, Y: 0.2, Z: -0.3}
	require.NoError(t, b.HandlePhone(m, at))

	poses := pub.on(cfg.TopicPoseWorld)
	require.Len(t, poses, 1)
	var d orientation.Display
	require.NoError(t, json.Unmarshal(poses[0], &d))

	// RUB (0.1, 0.2, -0.3) is FLU (0.3, -0.1, 0.2)
	assert.InDelta(t, 0.3, d.Position[0], 1e-9)
	assert.InDelta(t, -0.1, d.Position[1], 1e-9)
	assert.InDelta(t, 0.2, d.Position[2], 1e-9)
	assert.InDelta(t, -45, d.EulerDeg[1], 1e-9)
	assert.Equal(t, at.UnixMilli(), d.TimestampMs)

	assert.Empty(t, pub.on(cfg.TopicWrist))
	assert.Empty(t, sink.sent)
}

func TestBridgeEmitsWristAfterCalibration(t *testing.T) {
	sink := &fakeSink{}
	b, pub, cfg := newTestBridge(t, sink)
	at := time.Now()

	require.NoError(t, b.HandleArm(quat.Number{Real: 1}))
	require.NoError(t, b.HandlePhone(phoneAboutRight(0), at))
	require.NoError(t, b.HandleCommand("calibrate"))

	snap, ok := b.Session().Calibration()
	require.True(t, ok)

	require.NoError(t, b.HandlePhone(phoneAboutRight(20), at))

	wrist := pub.on(cfg.TopicWrist)
	require.Len(t, wrist, 1)
	var d control.Deltas
	require.NoError(t, json.Unmarshal(wrist[0], &d))
	assert.Equal(t, snap.ID, d.CalibrationID)
	assert.InDelta(t, posemath.Radians(-20), d.PitchRad, 1e-6)
	assert.InDelta(t, 0, d.RollRad, 1e-6)

	require.Len(t, sink.sent, 1)
	assert.Equal(t, d.CalibrationID, sink.sent[0].CalibrationID)
	assert.InDelta(t, d.PitchRad, sink.sent[0].PitchRad, 1e-12)
}

func TestBridgeWristLimits(t *testing.T) {
	cfg := config.Default()
	cfg.WristMaxPitchDeg = 10
	pub := &fakePublisher{}
	b, err := NewBridge(cfg, pub, nil)
	require.NoError(t, err)

	require.NoError(t, b.HandleArm(quat.Number{Real: 1}))
	require.NoError(t, b.HandlePhone(phoneAboutRight(0), time.Now()))
	require.NoError(t, b.HandleCommand(CommandCalibrate))
	require.NoError(t, b.HandlePhone(phoneAboutRight(30), time.Now()))

	wrist := pub.on(cfg.TopicWrist)
	require.Len(t, wrist, 1)
	var d control.Deltas
	require.NoError(t, json.Unmarshal(wrist[0], &d))
	assert.InDelta(t, posemath.Radians(-10), d.PitchRad, 1e-9)
}

func TestBridgeResetStopsWrist(t *testing.T) {
	b, pub, cfg := newTestBridge(t, nil)

	require.NoError(t, b.HandleArm(quat.Number{Real: 1}))
	require.NoError(t, b.HandlePhone(phoneAboutRight(0), time.Now()))
	require.NoError(t, b.HandleCommand(" Calibrate\n"))
	require.NoError(t, b.HandleCommand(CommandReset))
	require.NoError(t, b.HandlePhone(phoneAboutRight(15), time.Now()))

	assert.Empty(t, pub.on(cfg.TopicWrist))
	assert.Len(t, pub.on(cfg.TopicPoseWorld), 2)
}

func TestBridgeCommandErrors(t *testing.T) {
	b, _, _ := newTestBridge(t, nil)

	err := b.HandleCommand(CommandCalibrate)
	assert.ErrorIs(t, err, control.ErrNoOrientation)

	err = b.HandleCommand("jump")
	assert.ErrorContains(t, err, "unknown command")

	assert.Error(t, b.HandleArm(quat.Number{}))
}

func TestBridgeRejectsInvalidPhone(t *testing.T) {
	b, pub, _ := newTestBridge(t, nil)

	err := b.HandlePhone(orientation.Message{}, time.Now())
	assert.ErrorIs(t, err, orientation.ErrInvalidMessage)
	assert.Empty(t, pub.on(config.Default().TopicPoseWorld))
}

func TestBridgePublishError(t *testing.T) {
	b, pub, _ := newTestBridge(t, nil)
	pub.err = errors.New("broker down")

	err := b.HandlePhone(phoneAboutRight(0), time.Now())
	assert.ErrorContains(t, err, "broker down")
}

func TestBridgeServeWS(t *testing.T) {
	b, pub, cfg := newTestBridge(t, nil)
	srv := httptest.NewServer(http.HandlerFunc(b.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(phoneAboutRight(0)))
	require.Eventually(t, func() bool {
		return len(pub.on(cfg.TopicPoseWorld)) == 1
	}, time.Second, 10*time.Millisecond)

	// no forearm yet, so calibration is refused
	require.NoError(t, conn.WriteJSON(map[string]string{"action": "calibrate"}))
	var resp WSResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "error", resp.Type)

	require.NoError(t, b.HandleArm(quat.Number{Real: 1}))
	require.NoError(t, conn.WriteJSON(map[string]string{"action": "calibrate"}))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, WSResponse{Type: "ok", Message: "calibrate"}, resp)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "error", resp.Type)

	require.NoError(t, conn.WriteJSON(phoneAboutRight(10)))
	require.Eventually(t, func() bool {
		return len(pub.on(cfg.TopicWrist)) == 1
	}, time.Second, 10*time.Millisecond)
}
