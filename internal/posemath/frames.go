// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package posemath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// Fixed change-of-basis data. Kept unexported and handed out as copies so the
// constants cannot be mutated through a returned *mat.Dense.
var (
	// ARCore right-up-back to robot forward-left-up.
	rubToFLU = [16]float64{
		0, 0, -1, 0,
		-1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	}
	xyzwToWXYZ = [16]float64{
		0, 0, 0, 1,
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
	}
	wxyzToXYZW = [16]float64{
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
		1, 0, 0, 0,
	}
)

// RUBToFLU returns the 4x4 axis remap from the phone's right-up-back frame to
// the robot's forward-left-up frame.
func RUBToFLU() *mat.Dense { return fromArray(rubToFLU) }

// XYZWToWXYZ returns the permutation reordering a scalar-last quaternion
// vector into scalar-first order.
func XYZWToWXYZ() *mat.Dense { return fromArray(xyzwToWXYZ) }

// WXYZToXYZW returns the inverse of XYZWToWXYZ.
func WXYZToXYZW() *mat.Dense { return fromArray(wxyzToXYZW) }

func fromArray(a [16]float64) *mat.Dense {
	return mat.NewDense(4, 4, a[:])
}

// ConvertRotation re-expresses the rotation r in another frame as C·R·C⁻¹.
// c is a 3x3 change of basis, or a 4x4 transform whose rotation block is used.
func ConvertRotation(r, c mat.Matrix) *mat.Dense {
	mustDims("ConvertRotation", r, 3, 3)
	cb := basisBlock("ConvertRotation", c)

	var cInv mat.Dense
	if err := cInv.Inverse(cb); err != nil {
		panic(fmt.Sprintf("posemath: ConvertRotation: singular change of basis: %v", err))
	}

	var out mat.Dense
	out.Product(cb, r, &cInv)
	return &out
}

// ConvertPose re-expresses a 4x4 pose in another frame: the translation is
// mapped through C and the rotation block by C·R·C⁻¹.
func ConvertPose(t, c mat.Matrix) *mat.Dense {
	mustDims("ConvertPose", t, 4, 4)
	cb := basisBlock("ConvertPose", c)

	p := Translation(t)
	var pv mat.VecDense
	pv.MulVec(cb, mat.NewVecDense(3, []float64{p.X, p.Y, p.Z}))

	return Compose(
		r3.Vector{X: pv.AtVec(0), Y: pv.AtVec(1), Z: pv.AtVec(2)},
		ConvertRotation(RotationOf(t), cb),
	)
}

// ReorderQuaternion applies the permutation p to the quaternion component
// vector v. It only reorders components; it is not a rotation.
func ReorderQuaternion(v [4]float64, p mat.Matrix) [4]float64 {
	mustDims("ReorderQuaternion", p, 4, 4)
	var out mat.VecDense
	out.MulVec(p, mat.NewVecDense(4, v[:]))
	return [4]float64{out.AtVec(0), out.AtVec(1), out.AtVec(2), out.AtVec(3)}
}

// QuatFromXYZW converts scalar-last components into a quaternion.
func QuatFromXYZW(v [4]float64) quat.Number {
	w := ReorderQuaternion(v, XYZWToWXYZ())
	return quat.Number{Real: w[0], Imag: w[1], Jmag: w[2], Kmag: w[3]}
}

// QuatToXYZW returns the components of q in scalar-last order.
func QuatToXYZW(q quat.Number) [4]float64 {
	return ReorderQuaternion([4]float64{q.Real, q.Imag, q.Jmag, q.Kmag}, WXYZToXYZW())
}

func basisBlock(op string, c mat.Matrix) mat.Matrix {
	if c == nil {
		panic(fmt.Sprintf("posemath: %s: nil change of basis", op))
	}
	switch r, cols := c.Dims(); {
	case r == 3 && cols == 3:
		return c
	case r == 4 && cols == 4:
		return RotationOf(c)
	default:
		panic(fmt.Sprintf("posemath: %s: change of basis must be 3x3 or 4x4, got %dx%d", op, r, cols))
	}
}
