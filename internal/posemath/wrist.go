// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package posemath

import (
	"gonum.org/v1/gonum/mat"
)

// WristDeltas computes the wrist flex (pitch) and roll control values, in
// radians, from the current and calibration-time world orientations of the
// phone and the robot forearm. All inputs are 3x3 rotations.
//
// Pitch is taken from the phone's rotation relative to the forearm since
// calibration, so forearm motion does not leak into the wrist flex. Roll is
// taken from the phone's own rotation in the world frame, independent of any
// forearm roll.
func WristDeltas(phone, arm, phoneInit, armInit mat.Matrix) (pitch, roll float64) {
	mustDims("WristDeltas", phone, 3, 3)
	mustDims("WristDeltas", arm, 3, 3)
	mustDims("WristDeltas", phoneInit, 3, 3)
	mustDims("WristDeltas", armInit, 3, 3)

	// phone orientation in forearm coordinates
	var wrist, wristInit mat.Dense
	wrist.Mul(arm.T(), phone)
	wristInit.Mul(armInit.T(), phoneInit)

	var delta mat.Dense
	delta.Mul(wristInit.T(), &wrist)
	_, pitch, _ = EulerFromRotation(&delta)

	var deltaWorld mat.Dense
	deltaWorld.Mul(phoneInit.T(), phone)
	roll, _, _ = EulerFromRotation(&deltaWorld)

	return pitch, roll
}
