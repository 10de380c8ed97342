// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package posemath holds the pose-transform mathematics of the teleop bridge:
// quaternion normalization and SLERP, axis-convention changes, rigid transform
// interpolation and wrist joint extraction.
//
// Quaternions are gonum quat.Number values, which are scalar-first
// (Real=w, Imag=x, Jmag=y, Kmag=z). Rotations and transforms are *mat.Dense
// of size 3x3 and 4x4. Every function is pure and safe for concurrent use.
// Precondition violations (wrong shapes, zero quaternions, alpha out of range)
// are programming errors and panic.
package posemath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// slerpDotThreshold is the dot product above which Slerp falls back to a
// normalized linear interpolation.
const slerpDotThreshold = 0.9995

// Normalize returns q scaled to unit length. It panics on a zero quaternion.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		panic("posemath: cannot normalize a zero quaternion")
	}
	return quat.Scale(1/n, q)
}

// Dot returns the 4-vector dot product of a and b.
func Dot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

// Slerp spherically interpolates between q1 and q2 along the shorter arc.
// Inputs need not be normalized. t is expected in [0, 1].
func Slerp(q1, q2 quat.Number, t float64) quat.Number {
	q1 = Normalize(q1)
	q2 = Normalize(q2)

	dot := Dot(q1, q2)
	if dot < 0 {
		q2 = quat.Scale(-1, q2)
		dot = -dot
	}

	if dot > slerpDotThreshold {
		// nearly parallel: sin(theta) is too small to divide by
		return Normalize(quat.Add(q1, quat.Scale(t, quat.Sub(q2, q1))))
	}

	theta := math.Acos(clamp(dot, -1, 1)) * t
	q3 := Normalize(quat.Sub(q2, quat.Scale(dot, q1)))

	return quat.Add(quat.Scale(math.Cos(theta), q1), quat.Scale(math.Sin(theta), q3))
}

// QuatAlmostEqual reports whether a and b describe the same rotation within
// tol per component. q and -q are treated as equal.
func QuatAlmostEqual(a, b quat.Number, tol float64) bool {
	close := func(x, y quat.Number) bool {
		return math.Abs(x.Real-y.Real) <= tol &&
			math.Abs(x.Imag-y.Imag) <= tol &&
			math.Abs(x.Jmag-y.Jmag) <= tol &&
			math.Abs(x.Kmag-y.Kmag) <= tol
	}
	return close(a, b) || close(a, quat.Scale(-1, b))
}

// RotationFromQuat converts q into a 3x3 rotation matrix. q need not be unit
// length; a quaternion with (near) zero norm yields the identity.
func RotationFromQuat(q quat.Number) *mat.Dense {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	nq := w*w + x*x + y*y + z*z
	if nq < floatEps {
		return eye(3)
	}
	s := 2 / nq
	X, Y, Z := x*s, y*s, z*s
	wX, wY, wZ := w*X, w*Y, w*Z
	xX, xY, xZ := x*X, x*Y, x*Z
	yY, yZ, zZ := y*Y, y*Z, z*Z

	return mat.NewDense(3, 3, []float64{
		1 - (yY + zZ), xY - wZ, xZ + wY,
		xY + wZ, 1 - (xX + zZ), yZ - wX,
		xZ - wY, yZ + wX, 1 - (xX + yY),
	})
}

// QuatFromRotation converts a 3x3 rotation matrix into a unit quaternion with
// a non-negative scalar part.
//
// The quaternion is the eigenvector of the largest eigenvalue of the symmetric
// K matrix (Bar-Itzhack), which stays accurate for slightly non-orthogonal
// input.
func QuatFromRotation(r mat.Matrix) quat.Number {
	mustDims("QuatFromRotation", r, 3, 3)

	qxx, qyx, qzx := r.At(0, 0), r.At(0, 1), r.At(0, 2)
	qxy, qyy, qzy := r.At(1, 0), r.At(1, 1), r.At(1, 2)
	qxz, qyz, qzz := r.At(2, 0), r.At(2, 1), r.At(2, 2)

	k := mat.NewSymDense(4, []float64{
		qxx - qyy - qzz, qyx + qxy, qzx + qxz, qyz - qzy,
		qyx + qxy, qyy - qxx - qzz, qzy + qyz, qzx - qxz,
		qzx + qxz, qzy + qyz, qzz - qxx - qyy, qxy - qyx,
		qyz - qzy, qzx - qxz, qxy - qyx, qxx + qyy + qzz,
	})
	k.ScaleSym(1.0/3.0, k)

	var eig mat.EigenSym
	if ok := eig.Factorize(k, true); !ok {
		panic("posemath: eigen decomposition of rotation failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	best := 0
	for i, v := range vals {
		if v > vals[best] {
			best = i
		}
	}

	q := quat.Number{
		Real: vecs.At(3, best),
		Imag: vecs.At(0, best),
		Jmag: vecs.At(1, best),
		Kmag: vecs.At(2, best),
	}
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return q
}

// floatEps is float64 machine epsilon.
var floatEps = math.Nextafter(1, 2) - 1

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func mustDims(op string, m mat.Matrix, rows, cols int) {
	if m == nil {
		panic(fmt.Sprintf("posemath: %s: nil matrix", op))
	}
	if r, c := m.Dims(); r != rows || c != cols {
		panic(fmt.Sprintf("posemath: %s: want %dx%d matrix, got %dx%d", op, rows, cols, r, c))
	}
}
