// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package posemath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func mul(ms ...mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Product(ms...)
	return &out
}

func TestWristDeltasAtCalibration(t *testing.T) {
	phone := RotationFromEuler(0.2, 0.3, 0.4)
	arm := RotationFromEuler(-0.1, 0.5, 1)

	pitch, roll := WristDeltas(phone, arm, phone, arm)
	assert.InDelta(t, 0.0, pitch, 1e-12)
	assert.InDelta(t, 0.0, roll, 1e-12)
}

func TestWristDeltasPurePitch(t *testing.T) {
	phone := RotationFromEuler(0, Radians(20), 0)

	pitch, roll := WristDeltas(phone, eye(3), eye(3), eye(3))
	assert.InDelta(t, 0.349, pitch, 1e-3)
	assert.InDelta(t, Radians(20), pitch, tol)
	assert.InDelta(t, 0.0, roll, tol)
}

func TestWristDeltasArmMotionIsolated(t *testing.T) {
	armInit := RotationFromEuler(0.1, -0.2, 0.3)
	phoneInit := RotationFromEuler(0.4, 0.1, -0.2)

	// forearm yaws 30 degrees about its own axis, phone rigidly attached
	arm := mul(armInit, RotationFromEuler(0, 0, Radians(30)))
	phone := mul(arm, armInit.T(), phoneInit)

	pitch, roll := WristDeltas(phone, arm, phoneInit, armInit)
	assert.InDelta(t, 0.0, pitch, tol)

	wantRoll, _, _ := EulerFromRotation(mul(phoneInit.T(), phone))
	assert.InDelta(t, wantRoll, roll, tol)
}

func TestWristDeltasRollIgnoresArm(t *testing.T) {
	phone := RotationFromEuler(Radians(15), 0, 0)

	for _, arm := range []*mat.Dense{
		eye(3),
		RotationFromEuler(Radians(40), 0, 0),
		RotationFromEuler(0.2, -0.3, 0.9),
	} {
		_, roll := WristDeltas(phone, arm, eye(3), eye(3))
		assert.InDelta(t, Radians(15), roll, tol)
	}
}

func TestWristDeltasPitchFollowsArmFrame(t *testing.T) {
	// the forearm pitches down 25 degrees while the phone stays level:
	// relative to the forearm the wrist extended by 25 degrees
	arm := RotationFromEuler(0, Radians(25), 0)

	pitch, _ := WristDeltas(eye(3), arm, eye(3), eye(3))
	assert.InDelta(t, Radians(-25), pitch, tol)
}

func TestWristDeltasShape(t *testing.T) {
	assert.Panics(t, func() { WristDeltas(eye(4), eye(3), eye(3), eye(3)) })
}
