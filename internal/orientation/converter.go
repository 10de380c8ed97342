// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"time"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/relabs-tech/phone_teleop/internal/posemath"
)

// DefaultInitialPitchDeg is the pitch correction applied to every pose: the
// phone is expected to be held tilted 45 degrees towards the operator.
const DefaultInitialPitchDeg = -45.0

// Sample is a world-frame (forward-left-up) pose at a capture instant.
type Sample struct {
	Pose *mat.Dense
	At   time.Time
	FPS  float64
}

// Rotation returns the 3x3 orientation of the sample.
func (s Sample) Rotation() *mat.Dense {
	return posemath.RotationOf(s.Pose)
}

// Converter turns raw phone messages into world-frame samples.
type Converter struct {
	initial *mat.Dense
}

// NewConverter returns a converter whose initial-orientation correction is a
// static-xyz rotation of the given angles in degrees.
func NewConverter(rollDeg, pitchDeg, yawDeg float64) *Converter {
	r := posemath.RotationFromEuler(
		posemath.Radians(rollDeg),
		posemath.Radians(pitchDeg),
		posemath.Radians(yawDeg),
	)
	return &Converter{initial: posemath.Compose(r3.Vector{}, r)}
}

// Convert validates m and re-expresses it in the world frame.
func (c *Converter) Convert(m Message, at time.Time) (Sample, error) {
	if err := m.Validate(); err != nil {
		return Sample{}, err
	}

	rub := posemath.Compose(
		r3.Vector{X: m.Position.X, Y: m.Position.Y, Z: m.Position.Z},
		posemath.RotationFromQuat(m.Quat()),
	)

	// correct for the phone's holding angle after the change of basis
	var world mat.Dense
	world.Mul(posemath.ConvertPose(rub, posemath.RUBToFLU()), c.initial)

	return Sample{Pose: &world, At: at, FPS: m.FPS}, nil
}

// Display is a world-frame pose in the units the dashboard expects.
type Display struct {
	Position    [3]float64 `json:"position"`     // meters, forward-left-up
	EulerDeg    [3]float64 `json:"euler_deg"`    // roll, pitch, yaw
	QuatXYZW    [4]float64 `json:"quat_xyzw"`    // scalar-last
	TimestampMs int64      `json:"timestamp_ms"` // capture time
	FPS         float64    `json:"fps"`
}

// ToDisplay converts a sample into display units. This is the only place
// angles become degrees.
func ToDisplay(s Sample) Display {
	r := s.Rotation()
	roll, pitch, yaw := posemath.EulerFromRotation(r)
	p := posemath.Translation(s.Pose)

	return Display{
		Position:    [3]float64{p.X, p.Y, p.Z},
		EulerDeg:    [3]float64{posemath.Degrees(roll), posemath.Degrees(pitch), posemath.Degrees(yaw)},
		QuatXYZW:    posemath.QuatToXYZW(posemath.QuatFromRotation(r)),
		TimestampMs: s.At.UnixMilli(),
		FPS:         s.FPS,
	}
}
