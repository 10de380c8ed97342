// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"time"

	"github.com/golang/geo/r3"

	"github.com/relabs-tech/phone_teleop/internal/posemath"
)

type mockSource struct {
	start time.Time
	now   func() time.Time
	fps   float64
}

// NewMockSource creates a mock phone that sweeps smoothly through small
// translations and wrist-like rotations, reported in the phone's own
// right-up-back frame like a real ARCore stream.
func NewMockSource(fps float64) Source {
	return &mockSource{start: time.Now(), now: time.Now, fps: fps}
}

func (m *mockSource) Next() (Message, error) {
	elapsed := m.now().Sub(m.start).Seconds()

	pos := r3.Vector{
		X: 0.10 * math.Sin(elapsed*0.5),
		Y: 0.05 * math.Sin(elapsed*0.9),
		Z: -0.08 * math.Cos(elapsed*0.3),
	}

	// RUB axes: x right, y up, z back
	r := posemath.RotationFromEuler(
		posemath.Radians(20*math.Sin(elapsed)),     // tilt about right: wrist flex
		posemath.Radians(15*math.Cos(elapsed*0.7)), // turn about up: yaw
		posemath.Radians(25*math.Sin(elapsed*0.4)), // spin about back: wrist roll
	)
	xyzw := posemath.QuatToXYZW(posemath.QuatFromRotation(r))

	return Message{
		Position:    Position{X: pos.X, Y: pos.Y, Z: pos.Z},
		Orientation: Quaternion{X: xyzw[0], Y: xyzw[1], Z: xyzw[2], W: xyzw[3]},
		FPS:         m.fps,
	}, nil
}
