// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package posemath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Default tolerances for AreClose.
const (
	DefaultLinearTolerance  = 1e-9
	DefaultAngularTolerance = 1e-9
)

// Identity returns a new 4x4 identity transform.
func Identity() *mat.Dense {
	return eye(4)
}

// Compose builds a 4x4 rigid transform from a translation and a 3x3 rotation.
func Compose(p r3.Vector, r mat.Matrix) *mat.Dense {
	mustDims("Compose", r, 3, 3)
	t := eye(4)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t.Set(i, j, r.At(i, j))
		}
	}
	t.Set(0, 3, p.X)
	t.Set(1, 3, p.Y)
	t.Set(2, 3, p.Z)
	return t
}

// Translation returns the translation column of a 4x4 transform.
func Translation(t mat.Matrix) r3.Vector {
	mustDims("Translation", t, 4, 4)
	return r3.Vector{X: t.At(0, 3), Y: t.At(1, 3), Z: t.At(2, 3)}
}

// RotationOf returns a copy of the rotation block of a 4x4 transform.
func RotationOf(t mat.Matrix) *mat.Dense {
	mustDims("RotationOf", t, 4, 4)
	r := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.Set(i, j, t.At(i, j))
		}
	}
	return r
}

// Invert returns the inverse of a rigid transform, [Rᵀ | -Rᵀp].
func Invert(t mat.Matrix) *mat.Dense {
	r := RotationOf(t)
	p := Translation(t)

	var rt mat.Dense
	rt.CloneFrom(r.T())

	var pv mat.VecDense
	pv.MulVec(&rt, mat.NewVecDense(3, []float64{-p.X, -p.Y, -p.Z}))

	return Compose(r3.Vector{X: pv.AtVec(0), Y: pv.AtVec(1), Z: pv.AtVec(2)}, &rt)
}

// Interpolate blends two rigid transforms: the translation linearly and the
// rotation by quaternion SLERP. It panics if either input is not a rigid
// transform or alpha is outside [0, 1].
// The inputs are not modified.
func Interpolate(t1, t2 mat.Matrix, alpha float64) *mat.Dense {
	mustRigid("Interpolate", t1)
	mustRigid("Interpolate", t2)
	if !(alpha >= 0 && alpha <= 1) {
		panic(fmt.Sprintf("posemath: Interpolate: alpha %v outside [0, 1]", alpha))
	}

	p1, p2 := Translation(t1), Translation(t2)
	p := p1.Mul(1 - alpha).Add(p2.Mul(alpha))

	q1 := QuatFromRotation(RotationOf(t1))
	q2 := QuatFromRotation(RotationOf(t2))
	q := Slerp(q1, q2, alpha)

	return Compose(p, RotationFromQuat(q))
}

// AreClose reports whether a and b differ by less than linTol in each
// translation component and by less than angTol in each of roll, pitch and
// yaw of the relative transform a⁻¹·b. A nil b is the identity transform.
func AreClose(a, b mat.Matrix, linTol, angTol float64) bool {
	if b == nil {
		b = Identity()
	}
	mustDims("AreClose", a, 4, 4)
	mustDims("AreClose", b, 4, 4)

	var d mat.Dense
	d.Mul(Invert(a), b)

	p := Translation(&d)
	if math.Abs(p.X) > linTol || math.Abs(p.Y) > linTol || math.Abs(p.Z) > linTol {
		return false
	}

	roll, pitch, yaw := rpy(RotationOf(&d))
	return math.Abs(roll) <= angTol && math.Abs(pitch) <= angTol && math.Abs(yaw) <= angTol
}

const rigidTolerance = 1e-6

// mustRigid panics unless t is a 4x4 with bottom row (0, 0, 0, 1) and an
// orthonormal, right-handed rotation block.
func mustRigid(op string, t mat.Matrix) {
	mustDims(op, t, 4, 4)
	for j, want := range [4]float64{0, 0, 0, 1} {
		if math.Abs(t.At(3, j)-want) > rigidTolerance {
			panic(fmt.Sprintf("posemath: %s: bottom row is not (0, 0, 0, 1)", op))
		}
	}

	r := RotationOf(t)
	var rtr mat.Dense
	rtr.Mul(r.T(), r)
	if !mat.EqualApprox(&rtr, eye(3), rigidTolerance) {
		panic(fmt.Sprintf("posemath: %s: rotation block is not orthonormal", op))
	}
	if math.Abs(mat.Det(r)-1) > rigidTolerance {
		panic(fmt.Sprintf("posemath: %s: rotation block is a reflection", op))
	}
}
