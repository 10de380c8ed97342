// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package posemath

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RotationFromEuler builds R = Rz(yaw)·Ry(pitch)·Rx(roll), i.e. rotations
// about the static x, y, z axes applied in that order (the "sxyz" convention).
// Angles are in radians.
func RotationFromEuler(roll, pitch, yaw float64) *mat.Dense {
	si, sj, sk := math.Sin(roll), math.Sin(pitch), math.Sin(yaw)
	ci, cj, ck := math.Cos(roll), math.Cos(pitch), math.Cos(yaw)
	cc, cs := ci*ck, ci*sk
	sc, ss := si*ck, si*sk

	return mat.NewDense(3, 3, []float64{
		cj * ck, sj*sc - cs, sj*cc + ss,
		cj * sk, sj*ss + cc, sj*cs - sc,
		-sj, cj * si, cj * ci,
	})
}

// EulerFromRotation decomposes a rotation matrix into static-xyz roll, pitch
// and yaw in radians. It is the inverse of RotationFromEuler for pitch in
// (-pi/2, pi/2). At gimbal lock yaw is reported as zero.
func EulerFromRotation(r mat.Matrix) (roll, pitch, yaw float64) {
	mustDims("EulerFromRotation", r, 3, 3)

	cy := math.Hypot(r.At(0, 0), r.At(1, 0))
	if cy > 4*floatEps {
		roll = math.Atan2(r.At(2, 1), r.At(2, 2))
		pitch = math.Atan2(-r.At(2, 0), cy)
		yaw = math.Atan2(r.At(1, 0), r.At(0, 0))
		return roll, pitch, yaw
	}
	roll = math.Atan2(-r.At(1, 2), r.At(1, 1))
	pitch = math.Atan2(-r.At(2, 0), cy)
	return roll, pitch, 0
}

// rpy extracts roll, pitch and yaw with an asin pitch term. It is used only
// for closeness checks, where the atan2 form above is not needed.
func rpy(r mat.Matrix) (roll, pitch, yaw float64) {
	yaw = math.Atan2(r.At(1, 0), r.At(0, 0))
	pitch = math.Asin(clamp(-r.At(2, 0), -1, 1))
	roll = math.Atan2(r.At(2, 1), r.At(2, 2))
	return roll, pitch, yaw
}

// Degrees converts radians to degrees. Used at the display boundary only.
func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
